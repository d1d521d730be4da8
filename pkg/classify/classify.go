package classify

import (
	"github.com/andrew-fenton/sell-bot/pkg/model"
	"golang.org/x/exp/slices"
)

type ActionKind string

const (
	ActionNone             ActionKind = "none"
	ActionAnswerSale       ActionKind = "answer_sale"
	ActionDispatchTransfer ActionKind = "dispatch_transfer"
)

type Action struct {
	Kind        ActionKind
	ListingID   string
	ItemName    string
	AssetID     string
	Destination string
}

//nolint:gochecknoglobals
var actionableStatuses = []model.ListingStatus{
	model.StatusRequested,
	model.StatusBuyerMatched,
}

// Classify maps a listing snapshot to the action the monitor must take.
// It is computed fresh from the snapshot and the dispatched predicate on
// every call; no prior listing state is remembered anywhere.
func Classify(listing model.Listing, sellerID string, dispatched func(listingID string) bool) Action {
	if listing.SellerID != sellerID {
		return Action{Kind: ActionNone}
	}

	if !slices.Contains(actionableStatuses, listing.Status) {
		return Action{Kind: ActionNone}
	}

	if listing.Status == model.StatusRequested {
		return Action{
			Kind:      ActionAnswerSale,
			ListingID: listing.ID,
		}
	}

	// BUYER_MATCHED: dispatch unless a live dedup entry suppresses it
	if dispatched(listing.ID) {
		return Action{Kind: ActionNone}
	}

	return Action{
		Kind:        ActionDispatchTransfer,
		ListingID:   listing.ID,
		ItemName:    listing.Item.Name,
		AssetID:     listing.Item.TransferAssetID,
		Destination: listing.BuyerDestination,
	}
}
