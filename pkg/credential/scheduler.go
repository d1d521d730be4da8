package credential

import (
	"context"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"sync"
	"time"
)

type Provider interface {
	FetchSessionCookie(ctx context.Context) (string, error)
	FetchAccessToken(ctx context.Context, sessionCookie string) (string, error)
}

// Scheduler owns the refresh cadences of both credentials and the
// bootstrap ordering between them. The token interval must stay under the
// token's real expiry so the monitor never observes an expired value.
type Scheduler struct {
	store          *Store
	provider       Provider
	cookieInterval time.Duration
	tokenInterval  time.Duration
	stop           chan struct{}
	wg             sync.WaitGroup
}

func NewScheduler(
	store *Store,
	provider Provider,
	cookieInterval time.Duration,
	tokenInterval time.Duration) *Scheduler {
	return &Scheduler{
		store:          store,
		provider:       provider,
		cookieInterval: cookieInterval,
		tokenInterval:  tokenInterval,
		stop:           make(chan struct{}),
	}
}

// Bootstrap fetches the session cookie and then the access token, in that
// order. The token endpoint authenticates with the cookie, so reversing
// the order can never succeed. This is the only fatal credential path.
func (s *Scheduler) Bootstrap(ctx context.Context) error {
	cookie, err := s.provider.FetchSessionCookie(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to bootstrap session cookie")
	}

	s.store.SetSessionCookie(cookie)

	token, err := s.provider.FetchAccessToken(ctx, cookie)
	if err != nil {
		return errors.Wrap(err, "failed to bootstrap access token")
	}

	s.store.SetAccessToken(token)
	return nil
}

// Start launches the two independent refresh timers. A failed refresh
// leaves the stored value unchanged; the next tick retries.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.refreshLoop("session cookie", s.cookieInterval, s.refreshSessionCookie)
	go s.refreshLoop("access token", s.tokenInterval, s.refreshAccessToken)
}

func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Scheduler) refreshLoop(name string, interval time.Duration, refresh func(ctx context.Context) error) {
	defer s.wg.Done()
	logger := logging.Logger("credential").With("credential", name, "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			logger.Debug("refresh loop stopped")
			return
		case <-ticker.C:
			if err := refresh(context.Background()); err != nil {
				logger.With("err", err).Error("refresh failed, keeping previous value")
				continue
			}
			logger.Debug("refreshed")
		}
	}
}

func (s *Scheduler) refreshSessionCookie(ctx context.Context) error {
	cookie, err := s.provider.FetchSessionCookie(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to refresh session cookie")
	}

	s.store.SetSessionCookie(cookie)
	return nil
}

func (s *Scheduler) refreshAccessToken(ctx context.Context) error {
	token, err := s.provider.FetchAccessToken(ctx, s.store.SessionCookie())
	if err != nil {
		return errors.Wrap(err, "failed to refresh access token")
	}

	s.store.SetAccessToken(token)
	return nil
}
