/*
Package main implements the chord resolution server and CLI [DBG]
application.

ChordServe turns six-key chord bitmasks into text through a layered
layout (letters, numbers, symbols overlay, shift) and serves predictive
completions from four ranked sources: the user's learned bigrams and
words, then the bundled bigram and word dictionaries. Learned data is
persisted per language with debounced writes.

# Usage

Start the server with default settings:

	chordserve

Use a custom data directory and enable debug mode:

	chordserve -data /path/to/data -d

Run in CLI mode for interactive testing:

	chordserve -c -lang en

The data directory holds word lists named wordlists/<lang>.txt (word
and frequency per line, most frequent first), gzip compressed bigram
tables named bigrams/<lang>.gz, and the per language learned files
user_dict_<lang>.txt and user_bigrams_<lang>.txt.

# Configuration

Runtime configuration is managed through a TOML file:

	[server]
	max_limit = 16
	min_prefix = 1
	max_prefix = 60

	[dict]
	data_dir = "data/"
	language = "en"
	layout = ""

	[suggest]
	max_suggestions = 3
	min_word_length = 2
	save_delay_ms = 30000

The config file is automatically created with defaults if it doesn't
exist. A malformed file degrades to defaults section by section instead
of failing outright.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Requests are
processed synchronously with microsecond timing information included in
responses. See pkg/server for message structures.

Send a chord:

	{"id": "ch1", "op": "chord", "b": 24, "tb": "the "}

Receive the edit to apply plus refreshed suggestions:

	{"id": "ch1", "ok": true, "txt": "q", "s": [{"w": "quick", "r": 1}], "st": {"m": "ABC"}, "t": 145}

# CLI Mode

CLI mode provides an interactive interface for testing layouts and
suggestion ranking. It reads prefixes from stdin and displays ranked
suggestions; ":chord N" resolves a bitmask against the active layout.

# Layouts

The active layout is a TOML file mapping chord ordinals 1-63 to the
six value slots (abc, abc_shift, num, num_shift, symb, symb_shift).
When no layout file is configured the built-in English layout is used.
A configured layout file is watched and hot-reloaded on change, so
edits take effect without restarting the server.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/chordserve/internal/cli"
	"github.com/bastiangx/chordserve/pkg/config"
	"github.com/bastiangx/chordserve/pkg/dictionary"
	"github.com/bastiangx/chordserve/pkg/engine"
	"github.com/bastiangx/chordserve/pkg/layout"
	"github.com/bastiangx/chordserve/pkg/learned"
	"github.com/bastiangx/chordserve/pkg/server"
	"github.com/bastiangx/chordserve/pkg/session"
	"github.com/bastiangx/chordserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "chordserve"
	gh      = "https://github.com/bastiangx/chordserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler(onExit func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		onExit()
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "", "Directory containing dictionaries and learned data")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	lang := flag.String("lang", "", "Language id for dictionaries and learned data")
	layoutPath := flag.String("layout", "", "Layout TOML file (built-in English layout if empty)")
	configPath := flag.String("config", "", "Config file path (default: [UserConfigDir]/chordserve/config.toml)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, loadedFrom, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if loadedFrom != "" {
		log.Debugf("Using config file: (%s)", loadedFrom)
	}

	// Flags override the config file.
	if *dataDir != "" {
		appConfig.Dict.DataDir = *dataDir
	}
	if *lang != "" {
		appConfig.Dict.Language = *lang
	}
	if *layoutPath != "" {
		appConfig.Dict.Layout = *layoutPath
	}

	eng := engine.New()
	watcher := setupLayout(eng, appConfig.Dict.Layout)
	if watcher != nil {
		defer watcher.Close()
	}

	language := appConfig.Dict.Language
	resolvedDataDir := appConfig.Dict.DataDir
	log.Debugf("Using data dir at: %s", resolvedDataDir)

	words := dictionary.NewWordSource()
	bigrams := dictionary.NewBigramSource()
	saveDelay := time.Duration(appConfig.Suggest.SaveDelayMs) * time.Millisecond
	userWords := learned.NewWordStore(appConfig.Suggest.MinWordLength, saveDelay)
	userBigrams := learned.NewBigramStore(saveDelay)

	ranker := suggest.NewRanker(userBigrams, bigrams, userWords, words, appConfig.Suggest.MaxSuggestions)
	sources := session.Sources{
		UserWords:   userWords,
		UserBigrams: userBigrams,
		Words:       words,
		Bigrams:     bigrams,
	}

	sigHandler(func() {
		userWords.Close()
		userBigrams.Close()
	})

	if *cliMode {
		log.SetReportTimestamp(false)
		words.Load(resolvedDataDir, language)
		bigrams.Load(resolvedDataDir, language)
		userWords.Load(resolvedDataDir, language)
		userBigrams.Load(resolvedDataDir, language)
		inputHandler := cli.NewInputHandler(ranker, eng,
			appConfig.Server.MinPrefix, appConfig.Server.MaxPrefix)
		if err := inputHandler.Start(); err != nil {
			userWords.Close()
			userBigrams.Close()
			log.Fatalf("CLI error: %v", err)
		}
		userWords.Close()
		userBigrams.Close()
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(eng, ranker, sources, appConfig, resolvedDataDir)
	srv.Session().SwitchLanguage(resolvedDataDir, language)

	showStartupInfo(resolvedDataDir, language)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// setupLayout installs the configured layout on the engine and starts a
// file watcher for it. Falls back to the built-in layout when no file is
// configured or the file cannot be parsed.
func setupLayout(eng *engine.Engine, path string) *layout.Watcher {
	if path == "" {
		eng.SetLayout(layout.Default())
		log.Debug("Using built-in layout")
		return nil
	}

	l, err := layout.LoadFile(path)
	if err != nil {
		log.Warnf("Failed to load layout %s: %v. Using built-in layout...", path, err)
		eng.SetLayout(layout.Default())
		return nil
	}
	eng.SetLayout(l)
	log.Debugf("Loaded layout %q from %s", l.Name(), path)

	watcher, err := layout.Watch(path, func(reloaded *layout.Layout) {
		eng.SetLayout(reloaded)
		log.Infof("Reloaded layout %q", reloaded.Name())
	})
	if err != nil {
		log.Warnf("Layout watcher unavailable: %v", err)
		return nil
	}
	return watcher
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ ChordServe ] Chords in, words out!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataDir, lang string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("============")
	println(" ChordServe ")
	println("============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("language: ( %s )", lang)
	log.Info("status: ready")
	println("============")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
