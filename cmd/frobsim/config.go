package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds frobsim settings. Environment first, flags override.
type Config struct {
	Level      string        `env:"FROBSIM_LEVEL"       envDefault:"vault"`
	PrefabDir  string        `env:"FROBSIM_PREFAB_DIR"  envDefault:"prefabs"`
	LevelDir   string        `env:"FROBSIM_LEVEL_DIR"   envDefault:"levels"`
	SaveDB     string        `env:"FROBSIM_SAVE_DB"     envDefault:"frobsim.db"`
	Frobs      []string      `env:"FROBSIM_FROBS"       envSeparator:","`
	Ticks      int           `env:"FROBSIM_TICKS"       envDefault:"2"`
	SaveSlot   string        `env:"FROBSIM_SAVE_SLOT"`
	LoadSlot   string        `env:"FROBSIM_LOAD_SLOT"`
	ListSlots  bool          `env:"FROBSIM_LIST_SLOTS"`
	Watch      bool          `env:"FROBSIM_WATCH"`
	WatchDelay time.Duration `env:"FROBSIM_WATCH_DEBOUNCE" envDefault:"200ms"`
}

// ParseConfig parses env then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	frobs := strings.Join(cfg.Frobs, ",")
	fs.StringVar(&cfg.Level, "level", cfg.Level, "level name in the level dir (basename, .yaml optional)")
	fs.StringVar(&cfg.PrefabDir, "prefabs", cfg.PrefabDir, "prefab and script directory checked before the embedded copies")
	fs.StringVar(&cfg.LevelDir, "levels", cfg.LevelDir, "level directory checked before the embedded copies")
	fs.StringVar(&cfg.SaveDB, "db", cfg.SaveDB, "sqlite file holding save slots")
	fs.StringVar(&frobs, "frob", frobs, "comma separated entity names the player frobs, in order")
	fs.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "ticks to run after each frob")
	fs.StringVar(&cfg.SaveSlot, "save", cfg.SaveSlot, "save slot written after the run")
	fs.StringVar(&cfg.LoadSlot, "load", cfg.LoadSlot, "save slot restored before the run")
	fs.BoolVar(&cfg.ListSlots, "slots", cfg.ListSlots, "list save slots and exit")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "keep running and reload scripts when they change")
	fs.DurationVar(&cfg.WatchDelay, "debounce", cfg.WatchDelay, "script reload debounce")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Frobs = splitFrobs(frobs)
	if cfg.Ticks < 0 {
		return Config{}, fmt.Errorf("ticks must be >= 0, got %d", cfg.Ticks)
	}
	return cfg, nil
}

func splitFrobs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
