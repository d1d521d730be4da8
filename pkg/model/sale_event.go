package model

import (
	"errors"
	"github.com/andrew-fenton/sell-bot/pkg/marketerror"
	"time"
)

type EventKind string

const (
	EventSaleConfirmed      EventKind = "sale_confirmed"
	EventTransferDispatched EventKind = "transfer_dispatched"
	EventError              EventKind = "error"
)

type ErrorCode string

const (
	ErrorCodeNone   ErrorCode = ""
	CredentialFetch ErrorCode = "credential_fetch"
	ListingsFetch   ErrorCode = "listings_fetch"
	ConfirmSale     ErrorCode = "confirm_sale"
	Dispatch        ErrorCode = "dispatch"
	Unknown         ErrorCode = "unknown"
)

// SaleEvent is the operational record written after each action the
// monitor takes on a listing.
type SaleEvent struct {
	ListingID    string    `bson:"listing_id"`
	Kind         EventKind `bson:"kind"`
	ItemName     string    `bson:"item_name,omitempty"`
	AssetID      string    `bson:"asset_id,omitempty"`
	Destination  string    `bson:"destination,omitempty"`
	ErrorCode    ErrorCode `bson:"error_code,omitempty"`
	ErrorMessage string    `bson:"error_message,omitempty"`
	CycleID      string    `bson:"cycle_id"`
	CreatedAt    time.Time `bson:"created_at"`
}

func NewErrorSaleEvent(listingID, cycleID string, err error) SaleEvent {
	return SaleEvent{
		ListingID:    listingID,
		Kind:         EventError,
		ErrorCode:    ResolveErrorCode(err),
		ErrorMessage: err.Error(),
		CycleID:      cycleID,
		CreatedAt:    time.Now().UTC(),
	}
}

func ResolveErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}

	if errors.As(err, &marketerror.CredentialFetchError{}) {
		return CredentialFetch
	}

	if errors.As(err, &marketerror.ListingsFetchError{}) {
		return ListingsFetch
	}

	if errors.As(err, &marketerror.ConfirmSaleError{}) {
		return ConfirmSale
	}

	if errors.As(err, &marketerror.DispatchError{}) {
		return Dispatch
	}

	return Unknown
}
