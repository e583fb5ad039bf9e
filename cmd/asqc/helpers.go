package main

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/config"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/storage"
)

// openStores loads the global config and opens the asset database
func openStores() (*config.Config, *storage.DB, error) {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	path := dbPath
	if path == "" {
		path = storage.DefaultDBPath()
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open asset db: %w", err)
	}

	return cfg, db, nil
}

// truncate shortens s to maxWidth terminal columns, ellipsizing overflow
func truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}
