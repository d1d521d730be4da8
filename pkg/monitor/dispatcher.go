package monitor

import (
	"context"
	logging "github.com/ipfs/go-log/v2"
)

// LoggingDispatcher logs each dispatch request instead of sending it
// anywhere. Deployments wire a real Dispatcher for the trading
// counterpart's system; this keeps the process runnable without one.
type LoggingDispatcher struct{}

func (LoggingDispatcher) DispatchTransfer(
	_ context.Context,
	destination string,
	assetID string,
	sourceTag string,
	metadata map[string]string) error {
	logging.Logger("dispatch").
		With("destination", destination, "assetId", assetID, "sourceTag", sourceTag, "metadata", metadata).
		Info("transfer dispatch requested")
	return nil
}
