package monitor

import (
	"context"
	"github.com/andrew-fenton/sell-bot/pkg/dedup"
	"github.com/andrew-fenton/sell-bot/pkg/journal"
	"github.com/andrew-fenton/sell-bot/pkg/marketerror"
	"github.com/andrew-fenton/sell-bot/pkg/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

type fakeAPI struct {
	listings   []model.Listing
	fetchErr   error
	confirmed  []string
	confirmErr error
}

func (f *fakeAPI) ActiveListings(_ context.Context) ([]model.Listing, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.listings, nil
}

func (f *fakeAPI) ConfirmSale(_ context.Context, listingID string) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed = append(f.confirmed, listingID)
	return nil
}

type dispatchCall struct {
	destination string
	assetID     string
	sourceTag   string
	metadata    map[string]string
}

type fakeDispatcher struct {
	calls []dispatchCall
	err   error
}

func (f *fakeDispatcher) DispatchTransfer(
	_ context.Context,
	destination string,
	assetID string,
	sourceTag string,
	metadata map[string]string) error {
	f.calls = append(f.calls, dispatchCall{destination, assetID, sourceTag, metadata})
	return f.err
}

type recordingJournal struct {
	events []model.SaleEvent
}

func (j *recordingJournal) Record(_ context.Context, event model.SaleEvent) error {
	j.events = append(j.events, event)
	return nil
}

func requestedListing() model.Listing {
	return model.Listing{
		ID:       "L1",
		SellerID: "S",
		Status:   model.StatusRequested,
	}
}

func matchedListing() model.Listing {
	return model.Listing{
		ID:       "L2",
		SellerID: "S",
		Status:   model.StatusBuyerMatched,
		Item: model.Item{
			Name:            "Skin",
			TransferAssetID: "A1",
		},
		BuyerDestination: "D1",
	}
}

func newMonitor(api *fakeAPI, dispatcher *fakeDispatcher, saleJournal journal.Journal) (*Monitor, *dedup.Tracker) {
	tracker := dedup.NewTracker(time.Minute)
	config := Config{
		SellerID:     "S",
		PollInterval: 20 * time.Second,
		SourceTag:    "sell-bot",
	}
	return New(config, api, tracker, dispatcher, saleJournal), tracker
}

func TestPollOnceAnswersRequestedSale(t *testing.T) {
	api := &fakeAPI{listings: []model.Listing{requestedListing()}}
	dispatcher := &fakeDispatcher{}
	monitor, tracker := newMonitor(api, dispatcher, journal.Discard{})

	monitor.PollOnce(context.Background())

	assert.Equal(t, []string{"L1"}, api.confirmed)
	assert.Empty(t, dispatcher.calls)
	// answering a sale never creates a dedup entry
	assert.False(t, tracker.IsDispatched("L1"))
	assert.Equal(t, 0, tracker.Len())
}

func TestPollOnceDispatchesMatchedSale(t *testing.T) {
	api := &fakeAPI{listings: []model.Listing{matchedListing()}}
	dispatcher := &fakeDispatcher{}
	saleJournal := &recordingJournal{}
	monitor, tracker := newMonitor(api, dispatcher, saleJournal)

	monitor.PollOnce(context.Background())

	assert.Len(t, dispatcher.calls, 1)
	assert.Equal(t, "D1", dispatcher.calls[0].destination)
	assert.Equal(t, "A1", dispatcher.calls[0].assetID)
	assert.Equal(t, "sell-bot", dispatcher.calls[0].sourceTag)
	assert.Equal(t, "L2", dispatcher.calls[0].metadata["listingId"])
	assert.True(t, tracker.IsDispatched("L2"))

	assert.Len(t, saleJournal.events, 1)
	assert.Equal(t, model.EventTransferDispatched, saleJournal.events[0].Kind)
	assert.Equal(t, "L2", saleJournal.events[0].ListingID)
}

func TestPollTwiceDispatchesOnce(t *testing.T) {
	api := &fakeAPI{listings: []model.Listing{matchedListing()}}
	dispatcher := &fakeDispatcher{}
	monitor, _ := newMonitor(api, dispatcher, journal.Discard{})

	// the marketplace re-serves the same BUYER_MATCHED snapshot
	monitor.PollOnce(context.Background())
	monitor.PollOnce(context.Background())

	assert.Len(t, dispatcher.calls, 1)
}

func TestPollOnceIgnoresForeignListings(t *testing.T) {
	foreign := matchedListing()
	foreign.SellerID = "someone-else"
	api := &fakeAPI{listings: []model.Listing{foreign}}
	dispatcher := &fakeDispatcher{}
	monitor, tracker := newMonitor(api, dispatcher, journal.Discard{})

	monitor.PollOnce(context.Background())

	assert.Empty(t, api.confirmed)
	assert.Empty(t, dispatcher.calls)
	assert.Equal(t, 0, tracker.Len())
}

func TestPollOnceSurvivesFetchFailure(t *testing.T) {
	api := &fakeAPI{fetchErr: marketerror.ListingsFetchError{Err: errors.New("connection refused")}}
	dispatcher := &fakeDispatcher{}
	monitor, tracker := newMonitor(api, dispatcher, journal.Discard{})

	monitor.PollOnce(context.Background())

	assert.Empty(t, api.confirmed)
	assert.Empty(t, dispatcher.calls)
	assert.Equal(t, 0, tracker.Len())
}

func TestPollOnceIsolatesListingFailures(t *testing.T) {
	api := &fakeAPI{
		listings:   []model.Listing{requestedListing(), matchedListing()},
		confirmErr: errors.New("409"),
	}
	dispatcher := &fakeDispatcher{}
	saleJournal := &recordingJournal{}
	monitor, _ := newMonitor(api, dispatcher, saleJournal)

	monitor.PollOnce(context.Background())

	// the failed confirm did not stop the dispatch of the sibling listing
	assert.Len(t, dispatcher.calls, 1)
	assert.Len(t, saleJournal.events, 2)
	assert.Equal(t, model.EventError, saleJournal.events[0].Kind)
	assert.Equal(t, model.EventTransferDispatched, saleJournal.events[1].Kind)
}

func TestDispatchFailureKeepsDedupMark(t *testing.T) {
	api := &fakeAPI{listings: []model.Listing{matchedListing()}}
	dispatcher := &fakeDispatcher{err: errors.New("counterpart unreachable")}
	saleJournal := &recordingJournal{}
	monitor, tracker := newMonitor(api, dispatcher, saleJournal)

	monitor.PollOnce(context.Background())

	// the optimistic mark is committed before the call and not rolled back
	assert.True(t, tracker.IsDispatched("L2"))
	assert.Len(t, saleJournal.events, 1)
	assert.Equal(t, model.EventError, saleJournal.events[0].Kind)
	assert.Equal(t, model.Dispatch, saleJournal.events[0].ErrorCode)

	// and the next cycle does not re-dispatch within the release window
	monitor.PollOnce(context.Background())
	assert.Len(t, dispatcher.calls, 1)
}

func TestDispatchAfterReleaseWindow(t *testing.T) {
	api := &fakeAPI{listings: []model.Listing{matchedListing()}}
	dispatcher := &fakeDispatcher{}
	tracker := dedup.NewTracker(20 * time.Millisecond)
	tracker.Start()
	defer tracker.Stop()

	config := Config{SellerID: "S", PollInterval: 20 * time.Second, SourceTag: "sell-bot"}
	monitor := New(config, api, tracker, dispatcher, journal.Discard{})

	monitor.PollOnce(context.Background())
	assert.Len(t, dispatcher.calls, 1)

	assert.Eventually(t, func() bool {
		return !tracker.IsDispatched("L2")
	}, time.Second, 5*time.Millisecond)

	// a listing still BUYER_MATCHED after the window is dispatched again
	monitor.PollOnce(context.Background())
	assert.Len(t, dispatcher.calls, 2)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	api := &fakeAPI{}
	dispatcher := &fakeDispatcher{}
	config := Config{SellerID: "S", PollInterval: 10 * time.Millisecond, SourceTag: "sell-bot"}
	monitor := New(config, api, dedup.NewTracker(time.Minute), dispatcher, journal.Discard{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after context cancellation")
	}
}
