package journal

import (
	"context"
	"github.com/andrew-fenton/sell-bot/pkg/model"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Journal records sale events after each action the monitor takes.
// Recording failures never affect fulfillment.
type Journal interface {
	Record(ctx context.Context, event model.SaleEvent) error
}

type Discard struct{}

func (Discard) Record(_ context.Context, _ model.SaleEvent) error {
	return nil
}

type Mongo struct {
	collection *mongo.Collection
}

func NewMongo(ctx context.Context, uri string, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongo journal")
	}

	return &Mongo{
		collection: client.Database(database).Collection("sale_events"),
	}, nil
}

func (m *Mongo) Record(ctx context.Context, event model.SaleEvent) error {
	result, err := m.collection.InsertOne(ctx, event)
	if err != nil {
		return errors.Wrap(err, "failed to insert sale event")
	}

	logging.Logger("journal").
		With("listingId", event.ListingID, "kind", event.Kind, "InsertedID", result.InsertedID).
		Debug("recorded sale event")
	return nil
}

func (m *Mongo) Close() {
	//nolint:errcheck
	m.collection.Database().Client().Disconnect(context.Background())
}
