package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/battlescape"
	"github.com/Garsondee/Battlescape/internal/config"
	"github.com/Garsondee/Battlescape/internal/logging"
	"github.com/Garsondee/Battlescape/internal/rules"
	"github.com/Garsondee/Battlescape/internal/viewer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so the session log is always closed.
func run(args []string) error {
	var cfgPath string
	var scenario string
	var seed int64
	var tileSize int
	var auto bool

	fs := flag.NewFlagSet("battleview", flag.ContinueOnError)
	fs.StringVar(&cfgPath, "config", "", "optional YAML config file")
	fs.StringVar(&scenario, "scenario", "", "builtin scenario name or scenario YAML file (overrides scenario.file)")
	fs.Int64Var(&seed, "seed", 0, "RNG seed (0 keeps the configured one)")
	fs.IntVar(&tileSize, "tile", 24, "tile size in pixels")
	fs.BoolVar(&auto, "auto", false, "let the AI play the player squad too")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log, closeLog := openLogger(cfg.Log)
	defer closeLog()

	rs := rules.Default()
	if cfg.Rules.File != "" {
		if rs, err = rules.LoadFile(cfg.Rules.File); err != nil {
			log.Error().Err(err).Str("file", cfg.Rules.File).Msg("loading rules")
			return fmt.Errorf("loading rules: %w", err)
		}
	}

	if scenario == "" {
		scenario = cfg.Scenario.File
	}
	if scenario == "" {
		scenario = "farmhouse"
	}
	sc, err := battlescape.ResolveScenario(scenario)
	if err != nil {
		log.Error().Err(err).Msg("loading scenario")
		return fmt.Errorf("loading scenario: %w", err)
	}

	settings := cfg.Settings()
	settings.AutoPlayer = settings.AutoPlayer || auto
	opts := append(sc.Options(),
		battlescape.WithSettings(settings),
		battlescape.WithRules(rs),
		battlescape.WithLogger(log),
	)
	if seed != 0 {
		opts = append(opts, battlescape.WithSeed(seed))
	}
	g, err := battlescape.New(opts...)
	if err != nil {
		log.Error().Err(err).Msg("building battle")
		return fmt.Errorf("building battle: %w", err)
	}

	v := viewer.New(g, viewer.Options{
		TileSize: tileSize,
		Faction:  battlefield.FactionPlayer,
		Copy:     clipboard.WriteAll,
		Log:      log,
	})
	w, h := v.Size()
	ebiten.SetWindowTitle("Battlescape - " + sc.Name)
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(v); err != nil {
		log.Error().Err(err).Msg("viewer stopped")
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// openLogger logs to stderr and, when log.dir is set, to a session file.
func openLogger(c config.LogConfig) (zerolog.Logger, func()) {
	opts := logging.Options{Level: c.Level, Format: c.Format}
	if c.Dir == "" {
		return logging.New(opts), func() {}
	}
	if err := os.MkdirAll(c.Dir, 0o750); err != nil {
		fmt.Fprintln(os.Stderr, "warning: log dir:", err)
		return logging.New(opts), func() {}
	}
	path := logging.FilePath(c.Dir, "battleview", time.Now())
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: log file:", err)
		return logging.New(opts), func() {}
	}
	opts.File = f
	return logging.New(opts), func() { _ = f.Close() }
}
