package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrew-fenton/sell-bot/pkg/cookiecmd"
	"github.com/andrew-fenton/sell-bot/pkg/credential"
	"github.com/andrew-fenton/sell-bot/pkg/dedup"
	"github.com/andrew-fenton/sell-bot/pkg/env"
	"github.com/andrew-fenton/sell-bot/pkg/journal"
	"github.com/andrew-fenton/sell-bot/pkg/marketapi"
	"github.com/andrew-fenton/sell-bot/pkg/monitor"
	_ "github.com/joho/godotenv/autoload"
)

// provider combines the browser-automation cookie source with the
// marketplace token endpoint into the scheduler's Provider port.
type provider struct {
	cookiecmd.Source
	marketapi.Client
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := &credential.Store{}
	client := marketapi.NewClient(
		env.GetRequiredString(env.MarketAPIBaseURL),
		env.GetDuration(env.MarketRequestTimeout, 30*time.Second),
		store)

	scheduler := credential.NewScheduler(
		store,
		provider{
			Source: cookiecmd.NewSource(env.GetRequiredString(env.CookieFetchCommand)),
			Client: client,
		},
		env.GetDuration(env.CookieRefreshInterval, 4*time.Hour),
		env.GetDuration(env.TokenRefreshInterval, 25*time.Minute))

	if err := scheduler.Bootstrap(ctx); err != nil {
		panic(err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	tracker := dedup.NewTracker(env.GetDuration(env.DedupReleaseDelay, 11*time.Minute))
	tracker.Start()
	defer tracker.Stop()

	var saleJournal journal.Journal = journal.Discard{}
	if uri := env.GetString(env.JournalMongoURI, ""); uri != "" {
		mongoJournal, err := journal.NewMongo(ctx, uri, env.GetString(env.JournalMongoDatabase, "sellbot"))
		if err != nil {
			panic(err)
		}

		defer mongoJournal.Close()
		saleJournal = mongoJournal
	}

	monitor.New(
		monitor.Config{
			SellerID:     env.GetRequiredString(env.MarketSellerID),
			PollInterval: env.GetDuration(env.MarketPollInterval, 20*time.Second),
			SourceTag:    env.GetString(env.TransferSourceTag, "sell-bot"),
		},
		client,
		tracker,
		monitor.LoggingDispatcher{},
		saleJournal).Run(ctx)
}
