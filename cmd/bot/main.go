package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eliseohh/voicecratebot/internal/bot"
	"github.com/eliseohh/voicecratebot/internal/config"
	"github.com/eliseohh/voicecratebot/internal/store"
	"github.com/eliseohh/voicecratebot/internal/telemetry"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		slog.Error("db open failed", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		slog.Error("schema init failed", "err", err)
		os.Exit(1)
	}

	telemetry.Init()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				slog.Error("metrics listener failed", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
	}

	st := store.Open(db)
	slog.Info("store loaded", "records", st.Len(), "path", cfg.DBPath)

	b, err := bot.New(bot.Config{
		Token:    cfg.Token,
		Admins:   cfg.AdminIDs,
		PageSize: cfg.PageSize,
	}, st)
	if err != nil {
		slog.Error("bot init failed", "err", err)
		os.Exit(1)
	}

	b.Start()
}
