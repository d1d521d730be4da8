package monitor

import (
	"context"
	"github.com/andrew-fenton/sell-bot/pkg/classify"
	"github.com/andrew-fenton/sell-bot/pkg/dedup"
	"github.com/andrew-fenton/sell-bot/pkg/journal"
	"github.com/andrew-fenton/sell-bot/pkg/marketerror"
	"github.com/andrew-fenton/sell-bot/pkg/model"
	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"time"
)

type MarketAPI interface {
	ActiveListings(ctx context.Context) ([]model.Listing, error)
	ConfirmSale(ctx context.Context, listingID string) error
}

// Dispatcher initiates the item transfer to a matched buyer. The call is
// fire-and-forget: a nil error means the transfer was handed off, not
// that it settled.
type Dispatcher interface {
	DispatchTransfer(
		ctx context.Context,
		destination string,
		assetID string,
		sourceTag string,
		metadata map[string]string) error
}

type Config struct {
	SellerID     string
	PollInterval time.Duration
	SourceTag    string
}

// Monitor drives the fulfillment cycle: fetch active listings, classify
// each one, confirm requested sales, and dispatch transfers for matched
// buyers at most once per listing lifecycle.
type Monitor struct {
	config     Config
	api        MarketAPI
	tracker    *dedup.Tracker
	dispatcher Dispatcher
	journal    journal.Journal
}

func New(
	config Config,
	api MarketAPI,
	tracker *dedup.Tracker,
	dispatcher Dispatcher,
	saleJournal journal.Journal) *Monitor {
	return &Monitor{
		config:     config,
		api:        api,
		tracker:    tracker,
		dispatcher: dispatcher,
		journal:    saleJournal,
	}
}

// Run polls on a fixed interval until the context is cancelled. Listings
// are processed synchronously inside the tick loop, so a tick never
// overlaps the previous cycle's processing.
func (m *Monitor) Run(ctx context.Context) {
	logger := logging.Logger("monitor").With("pollInterval", m.config.PollInterval)
	logger.Info("monitor started")

	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		m.PollOnce(ctx)

		select {
		case <-ctx.Done():
			logger.Info("monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// PollOnce runs a single fulfillment cycle. A listings fetch failure is
// treated as an empty listing set; an error in one listing's handling
// never aborts its siblings.
func (m *Monitor) PollOnce(ctx context.Context) {
	cycleID := uuid.New().String()
	logger := logging.Logger("monitor").With("cycleId", cycleID)

	listings, err := m.api.ActiveListings(ctx)
	if err != nil {
		logger.With("err", err).Error("failed to fetch active listings, skipping cycle")
		return
	}

	logger.With("count", len(listings)).Debug("fetched active listings")
	for _, listing := range listings {
		m.handleListing(ctx, cycleID, listing)
	}
}

func (m *Monitor) handleListing(ctx context.Context, cycleID string, listing model.Listing) {
	action := classify.Classify(listing, m.config.SellerID, m.tracker.IsDispatched)
	switch action.Kind {
	case classify.ActionAnswerSale:
		m.answerSale(ctx, cycleID, action)
	case classify.ActionDispatchTransfer:
		m.dispatchTransfer(ctx, cycleID, action)
	case classify.ActionNone:
		logging.Logger("monitor").
			With("cycleId", cycleID, "listingId", listing.ID, "status", listing.Status).
			Debug("no action")
	}
}

func (m *Monitor) answerSale(ctx context.Context, cycleID string, action classify.Action) {
	logger := logging.Logger("monitor").With("cycleId", cycleID, "listingId", action.ListingID)

	err := m.api.ConfirmSale(ctx, action.ListingID)
	if err != nil {
		// the next cycle re-observes REQUESTED and retries naturally
		logger.With("err", err).Error("failed to confirm sale")
		m.record(ctx, cycleID, model.NewErrorSaleEvent(action.ListingID, cycleID, err))
		return
	}

	logger.Info("confirmed sale")
	m.record(ctx, cycleID, model.SaleEvent{
		ListingID: action.ListingID,
		Kind:      model.EventSaleConfirmed,
		CycleID:   cycleID,
		CreatedAt: time.Now().UTC(),
	})
}

func (m *Monitor) dispatchTransfer(ctx context.Context, cycleID string, action classify.Action) {
	logger := logging.Logger("monitor").With("cycleId", cycleID, "listingId", action.ListingID)

	// mark before the external call so an interleaved classification of
	// the same snapshot cannot dispatch a second time; the mark is kept
	// even on failure and only the entry's expiry re-opens the listing
	m.tracker.MarkDispatched(action.ListingID)

	metadata := map[string]string{
		"listingId": action.ListingID,
		"itemName":  action.ItemName,
		"cycleId":   cycleID,
	}

	err := m.dispatcher.DispatchTransfer(ctx, action.Destination, action.AssetID, m.config.SourceTag, metadata)
	if err != nil {
		err = marketerror.DispatchError{ListingID: action.ListingID, Err: err}
		logger.With("err", err).Error("failed to dispatch transfer")
		m.record(ctx, cycleID, model.NewErrorSaleEvent(action.ListingID, cycleID, err))
		return
	}

	logger.With("assetId", action.AssetID, "destination", action.Destination).Info("dispatched transfer")
	m.record(ctx, cycleID, model.SaleEvent{
		ListingID:   action.ListingID,
		Kind:        model.EventTransferDispatched,
		ItemName:    action.ItemName,
		AssetID:     action.AssetID,
		Destination: action.Destination,
		CycleID:     cycleID,
		CreatedAt:   time.Now().UTC(),
	})
}

func (m *Monitor) record(ctx context.Context, cycleID string, event model.SaleEvent) {
	if err := m.journal.Record(ctx, event); err != nil {
		logging.Logger("monitor").
			With("cycleId", cycleID, "listingId", event.ListingID, "err", err).
			Error("failed to record sale event")
	}
}
