// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the spelling correction server and CLI [DBG] application.

wordfix picks the most probable intended word for a possibly misspelled
input. A word frequency model is built once at startup from a corpus; each
input is then compared against every known word within one or two edits
(deletes, transposes, replaces and inserts over a-z), and the most frequent
candidate of the nearest non-empty tier wins. Unknown words with nothing
close by are returned unchanged.

# Usage

Start the IPC server over the default corpus:

	wordfix

Use a different corpus and enable debug mode:

	wordfix -corpus /path/to/big.txt -d

Correct a few words and exit:

	wordfix speling korrectud

Run in CLI mode for interactive testing:

	wordfix -c -limit 10

# Corpus

The model can be built from three kinds of source, picked by extension or
by the -format flag:

	.txt          raw text, tokenized into lowercase words and counted
	.freq, .tsv   one "word count" pair per line
	dict_*.bin    binary chunks; pass the directory holding them

Extra vocabulary can be merged from Redis with -redis: a hash of word to
count and a set of words counted once each.

# Configuration

Runtime configuration is read from a TOML file, created with defaults if
it doesn't exist:

	[server]
	max_batch = 256
	max_word_len = 60
	max_candidates = 8
	cache_size = 4096
	enable_filter = true

	[corpus]
	path = "data/big.txt"
	format = "auto"

	[redis]
	enabled = false
	addr = "localhost:6379"

WORDFIX_* environment variables override the file, and a .env file in the
working directory is loaded first. Flags override both.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout:

	{"id": "req1", "w": "speling"}

	{"id": "req1", "i": "speling", "c": "spelling", "tier": "edit1", "p": 0.00012, "s": [...], "t": 85}

See package server for the batch, vocab, stats and health actions.

# Command Line Flags

	-version     Show current version
	-corpus      Corpus file or chunk directory (default from config)
	-format      Corpus format: auto, text, freq or chunk
	-config      Path to a config file
	-d           Enable debug mode with detailed logging
	-c           Run in CLI mode instead of server mode
	-limit       Number of candidates to show in CLI mode
	-workers     Goroutines used for batch corrections (0 for all CPUs)
	-no-filter   Disable input filtering (DBG only)
	-redis       Merge extra vocabulary from Redis
	-export      Write the loaded model as dict_NNNN.bin chunks into a directory and exit
	-chunk       Words per exported chunk

Converting a large text corpus to chunks once makes later startups faster:

	wordfix -corpus big.txt -export data/chunks
	wordfix -corpus data/chunks
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bastiangx/wordfix/internal/cli"
	"github.com/bastiangx/wordfix/internal/logger"
	"github.com/bastiangx/wordfix/internal/utils"
	"github.com/bastiangx/wordfix/pkg/config"
	"github.com/bastiangx/wordfix/pkg/dictionary"
	"github.com/bastiangx/wordfix/pkg/model"
	"github.com/bastiangx/wordfix/pkg/server"
	"github.com/bastiangx/wordfix/pkg/spell"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordfix"
	gh      = "https://github.com/bastiangx/wordfix"

	redisTimeout = 5 * time.Second
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, corpus loading and the corrector, then hands off to
// one-shot, CLI or server mode. It does not implement logic for them.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	corpusPath := flag.String("corpus", "", "Corpus file or chunk directory (default from config)")
	formatName := flag.String("format", "", "Corpus format: auto, text, freq or chunk (default from config)")
	configPath := flag.String("config", "", "Path to a config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of candidates to show in CLI mode")
	workers := flag.Int("workers", defaultConfig.Server.Workers, "Goroutines used for batch corrections (0 for all CPUs)")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only) - corrects numbers and symbols too")
	useRedis := flag.Bool("redis", false, "Merge extra vocabulary from Redis")
	exportDir := flag.String("export", "", "Write the loaded model as chunk files into this directory and exit")
	chunkSize := flag.Int("chunk", dictionary.DefaultChunkSize, "Number of words per exported chunk")

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

	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	appConfig, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(activeConfig))

	// explicitly set flags win over config and env
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if *corpusPath != "" {
		appConfig.Corpus.Path = *corpusPath
	}
	if *formatName != "" {
		appConfig.Corpus.Format = *formatName
	}
	if setFlags["workers"] {
		appConfig.Server.Workers = *workers
	}
	if setFlags["limit"] {
		appConfig.CLI.DefaultLimit = *limit
	}
	if setFlags["no-filter"] {
		appConfig.CLI.DefaultNoFilter = *noFilter
		appConfig.Server.EnableFilter = !*noFilter
	}
	if *useRedis {
		appConfig.Redis.Enabled = true
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	resolvedCorpus := pathResolver.ResolveCorpus(appConfig.Corpus.Path)

	m, err := buildModel(resolvedCorpus, appConfig)
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	if *exportDir != "" {
		files, err := dictionary.SaveChunks(*exportDir, m, *chunkSize)
		if err != nil {
			log.Fatalf("Failed to export chunks: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Exported %s words into %d chunks at %s\n",
			utils.FormatWithCommas(m.Len()), len(files), *exportDir)
		return
	}

	corrector := spell.New(m,
		spell.WithWorkers(appConfig.Server.Workers),
		spell.WithMaxCandidates(appConfig.Server.MaxCandidates),
		spell.WithCacheSize(appConfig.Server.CacheSize),
	)
	ctx := context.Background()

	if args := flag.Args(); len(args) > 0 {
		out := make([]string, len(args))
		for i, arg := range args {
			out[i] = utils.ApplyCase(arg, corrector.Correction(arg))
		}
		fmt.Println(strings.Join(out, " "))
		return
	}

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minLen", appConfig.CLI.DefaultMinLen,
			"maxLen", appConfig.CLI.DefaultMaxLen,
			"limit", appConfig.CLI.DefaultLimit,
			"noFilter", appConfig.CLI.DefaultNoFilter)

		inputHandler := cli.NewInputHandler(corrector,
			appConfig.CLI.DefaultMinLen,
			appConfig.CLI.DefaultMaxLen,
			appConfig.CLI.DefaultLimit,
			appConfig.CLI.DefaultNoFilter,
			appConfig.CLI.ShowCandidates)
		if err := inputHandler.Start(ctx); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(corrector, m, appConfig)

	showStartupInfo(resolvedCorpus, m)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// buildModel loads the corpus and, when enabled, the Redis vocabulary.
// Redis failures are logged and the corpus alone is used.
func buildModel(corpus string, cfg *config.Config) (*model.Model, error) {
	format, err := dictionary.ParseFormat(cfg.Corpus.Format)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loading corpus %s (format %s)", corpus, format)

	b := model.NewBuilder()
	if err := dictionary.LoadInto(corpus, format, b); err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled {
		client := dictionary.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		src := dictionary.NewRedisSource(client, cfg.Redis.CountsKey, cfg.Redis.WordsKey)
		if _, err := src.LoadInto(ctx, b); err != nil {
			log.Warnf("Skipping redis vocabulary at %s: %v", cfg.Redis.Addr, err)
		}
	}

	if b.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", corpus, dictionary.ErrEmptyCorpus)
	}
	return b.Build(), nil
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Printf("[ %s ] Fixes misspelled words by frequency!", AppName)
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(corpus string, m *model.Model) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	stats := m.Stats()
	println("===========")
	println("  wordfix  ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("corpus: ( %s )", corpus)
	log.Infof("words: %s  tokens: %s", utils.FormatWithCommas(stats["words"]), utils.FormatWithCommas(stats["total"]))
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
