// Package main is the entry point for Hotkey Typer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/hotkeytyper/internal/alert"
	"github.com/dshills/hotkeytyper/internal/app"
	"github.com/dshills/hotkeytyper/internal/config"
	"github.com/dshills/hotkeytyper/internal/console"
	"github.com/dshills/hotkeytyper/internal/hotkey"
	"github.com/dshills/hotkeytyper/internal/inject"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	prefsPath    string
	settingsPath string
	logLevel     string
	headless     bool
	exportPath   string
	importPath   string
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	prefs, err := config.NewPreferencesLoader().Load(f.prefsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if f.settingsPath != "" {
		prefs.Settings.Path = f.settingsPath
	}
	if f.logLevel != "" {
		prefs.Log.Level = f.logLevel
	}
	level, ok := app.ParseLogLevel(prefs.Log.Level)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", prefs.Log.Level)
		return 1
	}

	useConsole := prefs.UI.Console && !f.headless && term.IsTerminal(int(os.Stdout.Fd()))

	logOut, closeLog, err := openLog(prefs.Log.File, useConsole)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	logCfg := app.DefaultLoggerConfig()
	logCfg.Level = level
	logCfg.Output = logOut
	log := app.NewLogger(logCfg)
	log.Info("Hotkey Typer %s starting, settings at %s", version, prefs.Settings.Path)

	store := config.NewStore(prefs.Settings.Path, config.WithStoreLogger(log.WithComponent("config")))

	if f.exportPath != "" || f.importPath != "" {
		if err := transfer(store, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	platform, err := inject.NewPlatform()
	if err != nil {
		log.Warn("fallback injector unavailable: %v", err)
	}

	host, err := hotkey.NewHost(log.WithComponent("host"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create hotkey host: %v\n", err)
		return 1
	}

	opts := app.Options{
		Host:     host,
		Platform: platform,
		Store:    store,
		Alerter:  alert.New(prefs.UI.Notifications, log.WithComponent("alert")),
		Logger:   log,
	}

	if prefs.Settings.Watch {
		w, err := config.NewWatcher(store.Path(), config.WithWatcherLogger(log.WithComponent("watcher")))
		if err != nil {
			log.Warn("settings will not reload automatically: %v", err)
		} else {
			opts.Watcher = w
		}
	}

	if useConsole {
		c, err := startConsole()
		if err != nil {
			log.Warn("%v", err)
		} else {
			opts.Console = c
		}
	}

	application, err := app.New(opts)
	if err != nil {
		_ = host.Close()
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// transfer copies snippet settings out to or in from another file.
func transfer(store *config.Store, f flags) error {
	if f.importPath != "" {
		cfg, err := store.Import(f.importPath)
		if err != nil {
			return app.NewOperationError("import", f.importPath, err)
		}
		if err := store.Save(cfg); err != nil {
			return app.NewOperationError("save", store.Path(), err)
		}
		fmt.Printf("Imported %d snippet sets into %s\n", len(cfg.Sets), store.Path())
	}
	if f.exportPath != "" {
		cfg, err := store.Load()
		if err != nil {
			return app.NewOperationError("load", store.Path(), err)
		}
		if err := store.Export(cfg, f.exportPath); err != nil {
			return app.NewOperationError("export", f.exportPath, err)
		}
		fmt.Printf("Exported %d snippet sets to %s\n", len(cfg.Sets), f.exportPath)
	}
	return nil
}

func startConsole() (*console.Console, error) {
	c, err := console.NewTerminal()
	if err != nil {
		return nil, app.NewComponentError("console", "create", err)
	}
	if err := c.Start(); err != nil {
		return nil, app.NewComponentError("console", "start", err)
	}
	return c, nil
}

// openLog returns the log destination. Without a log file, logs go to
// stderr unless the console owns the terminal.
func openLog(path string, quiet bool) (io.Writer, func(), error) {
	if path == "" {
		if quiet {
			return io.Discard, func() {}, nil
		}
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func parseFlags() flags {
	var f flags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.prefsPath, "config", config.DefaultPreferencesPath(), "Path to preferences file")
	flag.StringVar(&f.prefsPath, "c", config.DefaultPreferencesPath(), "Path to preferences file (shorthand)")
	flag.StringVar(&f.settingsPath, "settings", "", "Path to snippet settings (overrides preferences)")
	flag.StringVar(&f.settingsPath, "s", "", "Path to snippet settings (shorthand)")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&f.headless, "headless", false, "Run without the terminal console")
	flag.StringVar(&f.exportPath, "export", "", "Write snippet settings to this file and exit")
	flag.StringVar(&f.importPath, "import", "", "Replace snippet settings with this file and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Hotkey Typer - types snippets on CTRL+SHIFT+1..9\n\n")
		fmt.Fprintf(os.Stderr, "Usage: hotkeytyper [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %sLOG_LEVEL, %sLOG_FILE, %sSETTINGS_PATH,\n", config.EnvPrefix, config.EnvPrefix, config.EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %sWATCH, %sCONSOLE, %sNOTIFICATIONS\n", config.EnvPrefix, config.EnvPrefix, config.EnvPrefix)
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Hotkey Typer %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return f
}
