package model

type ListingStatus string

const (
	StatusRequested    ListingStatus = "REQUESTED"
	StatusBuyerMatched ListingStatus = "BUYER_MATCHED"
)

type Item struct {
	Name            string `json:"name" bson:"name"`
	TransferAssetID string `json:"transferAssetId" bson:"transfer_asset_id"`
}

// Listing is a marketplace record for an item offered by some seller.
// Status values other than the two recognized ones are carried verbatim
// and never acted upon.
type Listing struct {
	ID               string        `json:"id" bson:"id"`
	SellerID         string        `json:"sellerId" bson:"seller_id"`
	Status           ListingStatus `json:"status" bson:"status"`
	Item             Item          `json:"item" bson:"item"`
	BuyerDestination string        `json:"buyerDestination" bson:"buyer_destination"`
}
