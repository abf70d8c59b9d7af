package main

import (
	"fmt"
	"os"
	"time"

	"bookbid/config"
	auction "bookbid/internal/auctionEngine"
	"bookbid/internal/clock"
	escrow "bookbid/internal/escrowEngine"
	"bookbid/internal/events"
	"bookbid/internal/payments"
	"bookbid/internal/repository"
	"bookbid/internal/server"
	"bookbid/utils"
)

func main() {
	cfg, err := config.Load(os.Getenv("BOOKBID_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store := repository.NewMemoryStore()
	pub := events.NewPublisher()
	clk := clock.New()

	auctionEngine := auction.NewEngine(store, pub, clk, auction.Config{
		AntiSnipeWindow: cfg.AntiSnipeWindow,
		MaxExtensions:   cfg.MaxExtensions,
	})
	escrowEngine := escrow.NewEngine(store, payments.NewLogGateway(), pub, clk, escrow.Config{
		FeeBps:           cfg.EscrowFeeBps,
		ProtectionWindow: cfg.ProtectionWindow,
	}, auctionEngine)
	auctionEngine.SetSettlement(escrowEngine)

	startNotificationRelay(pub)
	startSweeper(cfg.SweepInterval, auctionEngine, escrowEngine)

	router := server.SetupRouter(auctionEngine, escrowEngine)

	fmt.Printf("Starting auction server on %s...\n", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// startNotificationRelay subscribes to the event stream on behalf of the
// notification collaborator. Delivery and formatting are its problem;
// here the events are only logged.
func startNotificationRelay(pub *events.Publisher) {
	stream, _ := pub.Subscribe(256)
	go func() {
		for ev := range stream {
			utils.Info("notification event", map[string]any{
				"auction_id": ev.AuctionID,
				"event_type": string(ev.Type),
				"payload":    ev.Payload,
			})
		}
	}()
}

// startSweeper runs the periodic deadline and auto-release sweeps. Closure
// by sweep takes the same per-auction locks as bidding, so a late bid and
// the sweep can never both win.
func startSweeper(interval time.Duration, auctionEngine *auction.Engine, escrowEngine *escrow.Engine) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			if closed := auctionEngine.SweepDeadlines(); closed > 0 {
				utils.Info("deadline sweep closed auctions", map[string]any{"count": closed})
			}
			if released := escrowEngine.SweepReleases(); released > 0 {
				utils.Info("escrow sweep auto-released records", map[string]any{"count": released})
			}
		}
	}()
}
