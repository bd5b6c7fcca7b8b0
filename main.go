package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wordchain/server/internal/config"
	"github.com/wordchain/server/internal/httpserver"
	"github.com/wordchain/server/internal/ledger"
	"github.com/wordchain/server/internal/pubsub"
	"github.com/wordchain/server/internal/session"
	"github.com/wordchain/server/internal/store"
	"github.com/wordchain/server/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dict, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Int("words", dict.Count()).Msg("dictionary loaded")

	db, err := openDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var recorder session.Recorder = ledger.Disabled{}
	if cfg.EngineURL != "" {
		recorder = ledger.NewEngine(
			cfg.EngineURL,
			cfg.EngineChainID,
			cfg.EngineContract,
			cfg.EngineAccessToken,
			cfg.EngineWalletAddress,
			cfg.EngineTimeout,
		)
		log.Info().Str("chain", cfg.EngineChainID).Msg("win recorder enabled")
	} else {
		log.Info().Msg("win recorder disabled (no ENGINE_URL)")
	}

	hub := pubsub.NewHub()
	mgr := session.New(store.NewSQLite(db), dict, recorder, hub)
	srv := httpserver.New(cfg, db, mgr, hub, dict)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("starting wordchain server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
