package cookiecmd

import (
	"context"
	"github.com/andrew-fenton/sell-bot/pkg/marketerror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"os"
	"os/exec"
	"strings"
)

// Source obtains the session cookie by running an external command,
// typically the browser-automation harvester. The cookie is the first
// non-empty line of the command's stdout.
type Source struct {
	command string
}

func NewSource(command string) Source {
	return Source{
		command: command,
	}
}

func (s Source) FetchSessionCookie(ctx context.Context) (string, error) {
	logger := logging.Logger("cookiecmd")
	logger.With("command", s.command).Debug("running cookie fetch command")

	//nolint:gosec
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", s.command)
	cmd.Env = os.Environ()
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return "", marketerror.CredentialFetchError{Credential: "session cookie", Err: err}
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
	}

	return "", marketerror.CredentialFetchError{
		Credential: "session cookie",
		Err:        errors.New("command produced no output"),
	}
}
