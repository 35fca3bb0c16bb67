package main

import (
	"github.com/rotisserie/eris"

	"github.com/reva-ai/extract-cli/internal/checkpoint"
	"github.com/reva-ai/extract-cli/internal/config"
)

// newStore builds the checkpoint backend selected by configuration.
func newStore(cfg config.CheckpointConfig) (checkpoint.Store, error) {
	switch cfg.Backend {
	case "csv", "":
		return checkpoint.NewCSVStore(cfg.Path), nil
	case "sqlite":
		return checkpoint.NewSQLiteStore(cfg.Path)
	default:
		return nil, eris.Errorf("unknown checkpoint backend %q (want csv or sqlite)", cfg.Backend)
	}
}
