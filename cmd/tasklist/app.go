package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fentz26/tasklist/internal/audit"
	"github.com/fentz26/tasklist/internal/config"
	"github.com/fentz26/tasklist/internal/seed"
	"github.com/fentz26/tasklist/internal/store"
	"github.com/fentz26/tasklist/internal/tasks"
)

// app bundles the opened storage, journal sinks and task store for one
// command invocation.
type app struct {
	cfg   *config.Config
	db    *store.Store
	redis *audit.RedisSink
	tasks *tasks.Store
}

// openApp opens storage as configured and loads the task collection. A
// corrupt collection is reported and replaced by an empty one.
func openApp(c *config.Config) (*app, error) {
	a := &app{cfg: c}
	path := c.StoragePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}

	var slot tasks.Persister
	switch c.Storage.Driver {
	case config.DriverFile:
		slot = store.NewFileSlot(path)
	default:
		db, err := store.New(path)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		a.db = db
		slot = db.Slot(c.Storage.Key)
	}

	journal := audit.NewJournal()
	if c.Audit.Enabled {
		if a.db != nil {
			journal.AddSink(a.db)
		}
		if r := c.Audit.Redis; r.Addr != "" {
			a.redis = audit.NewRedisSink(r.Addr, r.Password, r.DB, r.TTL, r.Prefix)
			journal.AddSink(a.redis)
		}
	}

	a.tasks = tasks.New(slot, tasks.WithJournal(journal))
	if err := a.tasks.Load(); err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			a.Close()
			return nil, err
		}
		log.Printf("Warning: %v; starting with an empty list", err)
	}
	return a, nil
}

func (a *app) loader() *seed.Loader {
	return seed.New(a.cfg.Seed.Endpoint, a.cfg.Seed.Limit, a.cfg.Seed.Timeout)
}

// Close releases the database and Redis connections.
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Warning: closing redis: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("Warning: closing store: %v", err)
		}
	}
}
