package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"lobcore/config"
	"lobcore/engine"
	"lobcore/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file (yaml/toml/json); falls back to defaults and LOB_* env vars")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	e := engine.New(log)
	e.RegisterSymbol(cfg.Book.Instrument, cfg.Book.TickSize)

	if cfg.Book.Simulate {
		e.Seed(engine.SeedParams{
			Instrument:     cfg.Book.Instrument,
			TickSize:       cfg.Book.TickSize,
			InitialBestBid: cfg.Book.InitialBestBid,
			InitialBestAsk: cfg.Book.InitialBestAsk,
			InitialLevels:  cfg.Book.InitialLevels,
			InitialOrders:  cfg.Book.InitialOrders,
			InitialVolume:  cfg.Book.InitialOrderVolume,
		})
		e.RunSimulator(cfg.Book.Instrument)
		log.Info().Str("instrument", cfg.Book.Instrument).Msg("stochastic event simulator started")
	}

	go e.RunDispatcher(10*time.Millisecond, engine.DisplayStyle(cfg.Display.Style))

	orderEntryMux := http.NewServeMux()
	orderEntryMux.HandleFunc("/ws", e.ServeOrderEntry)
	orderEntryServer := &http.Server{Addr: cfg.OrderEntry.Addr(), Handler: orderEntryMux}

	marketDataMux := http.NewServeMux()
	marketDataMux.HandleFunc("/ws", e.ServeMarketData)
	marketDataServer := &http.Server{Addr: cfg.MarketData.Addr(), Handler: marketDataMux}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{Addr: ":9102", Handler: metricsMux}

	go serve(log, "order-entry", orderEntryServer)
	go serve(log, "market-data", marketDataServer)
	go serve(log, "metrics", metricsServer)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	e.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = orderEntryServer.Shutdown(ctx)
	_ = marketDataServer.Shutdown(ctx)
	_ = metricsServer.Shutdown(ctx)
}

func serve(log zerolog.Logger, name string, srv *http.Server) {
	log.Info().Str("gateway", name).Str("addr", srv.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Str("gateway", name).Msg("server failed")
	}
}
