package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gongahkia/dueday/internal/config"
	"github.com/gongahkia/dueday/internal/log"
	"github.com/gongahkia/dueday/internal/nlp"
	"github.com/gongahkia/dueday/internal/store"
	"github.com/gongahkia/dueday/internal/tasks"
	"github.com/gongahkia/dueday/internal/ui"
)

// env is what the data commands share: the loaded config, the open store and
// the service over it. Close releases the store.
type env struct {
	cfg   *config.Config
	store *store.Store
	svc   *tasks.Service
	zone  string
}

// loadConfig reads the config file, applies the logging and color settings
// and returns it. --verbose wins over log_level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.SetLevel(log.LevelDebug)
	}
	ui.SetMode(ui.Mode(cfg.Color))
	return cfg, nil
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open task store %s: %w", cfg.DBPath, err)
	}
	parser := nlp.New(nlp.Options{DefaultHour: cfg.DefaultDueHour, DateLocale: cfg.DateLocale})
	svc := tasks.New(st, parser, cfg.Location(), cfg.MaxOccurrences)

	zone, _ := cmd.Flags().GetString("tz")
	log.Debug("environment ready", "db", cfg.DBPath, "zone", svc.Zone.String())
	return &env{cfg: cfg, store: st, svc: svc, zone: zone}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// loc is the zone for display: --tz when given, else default_timezone.
func (e *env) loc() *time.Location {
	if e.zone != "" {
		if loc, err := time.LoadLocation(e.zone); err == nil {
			return loc
		}
		log.Warn("unknown timezone, using UTC", "zone", e.zone)
		return time.UTC
	}
	return e.svc.Zone
}
