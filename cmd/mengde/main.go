// Mengde is a turn-based tactics battle engine driven by Lua stage scripts.
// Usage: mengde [--version] [--plain] [--script <file>] [--trace] [--seed <n>]
// [--log <level>] [--rules <file>] <stage.lua>
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kangjianbin/mengde/cli"
	"github.com/kangjianbin/mengde/engine"
	"github.com/kangjianbin/mengde/gamedata"
	"github.com/kangjianbin/mengde/script"
	"github.com/kangjianbin/mengde/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: mengde [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--log <level>] [--rules <file>] <stage.lua>"

func main() {
	plain := false
	trace := false
	rulesFile := "data/ruleset.yaml"
	logLevel := ""
	seed := time.Now().UnixNano()
	var stageFile string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("mengde %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script", "--rules", "--log", "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			i++
			switch args[i-1] {
			case "--script":
				scriptFile = args[i]
			case "--rules":
				rulesFile = args[i]
			case "--log":
				logLevel = args[i]
			case "--seed":
				n, err := strconv.ParseInt(args[i], 10, 64)
				if err != nil {
					fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
					os.Exit(1)
				}
				seed = n
			}
		default:
			if stageFile == "" {
				stageFile = args[i]
			}
		}
	}

	if stageFile == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	log, err := newLogger(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	g, stage, err := setup(rulesFile, stageFile, seed, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading stage: %v\n", err)
		os.Exit(1)
	}
	defer stage.Close()

	// Script mode: read commands from a file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(g)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(g)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(g, stageFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the ruleset and the stage, builds the battle and runs the
// stage's on_deploy hook.
func setup(rulesFile, stageFile string, seed int64, log *zap.Logger) (*engine.Game, *script.Stage, error) {
	rules, err := gamedata.Load(rulesFile)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range rules.Warnings {
		log.Warn("ruleset", zap.String("warning", w))
	}

	stage, err := script.Load(stageFile)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := stage.Config(rules)
	if err != nil {
		stage.Close()
		return nil, nil, err
	}
	cfg.Dice = engine.NewRNG(seed)
	cfg.Logger = log.Named("battle")

	g, err := engine.New(cfg)
	if err != nil {
		stage.Close()
		return nil, nil, err
	}
	stage.Bind(g)
	log.Info("stage loaded", zap.String("stage", stage.Path()), zap.Int64("seed", seed))
	if err := g.Open(); err != nil {
		stage.Close()
		return nil, nil, err
	}
	return g, stage, nil
}

// newLogger returns a development logger on stderr at the given level, or
// a no-op logger when level is empty.
func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("--log: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
