package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/webdumper/pkg/config"
	"github.com/Sriram-PR/webdumper/pkg/crawler"
	"github.com/Sriram-PR/webdumper/pkg/fetch"
	"github.com/Sriram-PR/webdumper/pkg/output"
	"github.com/Sriram-PR/webdumper/pkg/process"
	"github.com/Sriram-PR/webdumper/pkg/progress"
	"github.com/Sriram-PR/webdumper/pkg/storage"
)

const usageLine = "Usage: webdumper [flags] <URL> [Depth]"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cliOptions is the parsed command line. setFlags records which flags were given explicitly,
// so only those override values from the config file.
type cliOptions struct {
	configFile      string
	outputDir       string
	logLevel        string
	stateDir        string
	writeVisitedLog bool
	writeTree       bool

	seedURL string
	depth   *int

	setFlags map[string]bool
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	printBanner(stdout)

	opts, exitCode, ok := parseArgs(args, stdout, stderr)
	if !ok {
		return exitCode
	}

	log := setupLogger(opts.logLevel, stderr)

	appCfg, err := buildAppConfig(opts)
	if err != nil {
		log.Errorf("Config error: %v", err)
		return 1
	}
	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Errorf("Config error: %v", err)
		return 1
	}

	crawlCfg, err := config.NewCrawlConfig(opts.seedURL, appCfg)
	if err != nil {
		log.Errorf("Error: %v", err)
		return 1
	}
	logAppConfig(&appCfg, log)

	if err := execute(crawlCfg, &appCfg, log); err != nil {
		log.Errorf("Crawl finished with error: %v", err)
		return 1
	}
	return 0
}

// parseArgs parses flags and positionals. When ok is false the caller exits with exitCode.
// A wrong number of positionals prints usage and exits 0; a non-integer depth exits 1.
func parseArgs(args []string, stdout, stderr io.Writer) (opts *cliOptions, exitCode int, ok bool) {
	opts = &cliOptions{setFlags: make(map[string]bool)}

	fs := flag.NewFlagSet("webdumper", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stdout, usageLine)
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Flags:")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		fs.SetOutput(stderr)
	}
	fs.StringVar(&opts.configFile, "config", "", "Path to optional YAML config file")
	fs.StringVar(&opts.outputDir, "output", config.DefaultOutputDir, "Output directory for the mirror")
	fs.StringVar(&opts.logLevel, "loglevel", "info", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&opts.stateDir, "state-dir", "", "Directory for the on-disk visited set (default: in memory)")
	fs.BoolVar(&opts.writeVisitedLog, "write-visited-log", false, "Write a log of all visited URLs (requires -state-dir)")
	fs.BoolVar(&opts.writeTree, "write-tree", false, "Write a text tree of the mirror after the crawl")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, 0, false
		}
		return nil, 1, false
	}
	fs.Visit(func(f *flag.Flag) { opts.setFlags[f.Name] = true })

	positional := fs.Args()
	if len(positional) < 1 || len(positional) > 2 {
		fmt.Fprintln(stdout, usageLine)
		return nil, 0, false
	}
	opts.seedURL = positional[0]

	if len(positional) == 2 {
		depth, err := strconv.Atoi(strings.TrimSpace(positional[1]))
		if err != nil {
			fmt.Fprintf(stderr, "Error: depth must be an integer, got '%s'\n", positional[1])
			return nil, 1, false
		}
		opts.depth = &depth
	}
	return opts, 0, true
}

// buildAppConfig loads the optional config file and applies explicit CLI overrides.
// Defaults are applied later by Validate.
func buildAppConfig(opts *cliOptions) (config.AppConfig, error) {
	var appCfg config.AppConfig
	if opts.configFile != "" {
		loaded, err := config.LoadAppConfig(opts.configFile)
		if err != nil {
			return appCfg, err
		}
		appCfg = loaded
	}

	if opts.setFlags["output"] || appCfg.OutputDir == "" {
		appCfg.OutputDir = opts.outputDir
	}
	if opts.setFlags["state-dir"] {
		appCfg.StateDir = opts.stateDir
	}
	if opts.setFlags["write-visited-log"] {
		appCfg.WriteVisitedLog = opts.writeVisitedLog
	}
	if opts.setFlags["write-tree"] {
		appCfg.WriteTreeFile = opts.writeTree
	}
	if opts.depth != nil {
		depth := *opts.depth
		appCfg.MaxDepth = &depth
	}
	return appCfg, nil
}

// execute wires the components and runs one crawl.
func execute(crawlCfg *config.CrawlConfig, appCfg *config.AppConfig, log *logrus.Logger) error {
	baseLog := logrus.NewEntry(log)
	ctx := context.Background()

	// --- Storage ---
	var store storage.VisitedStore
	var badgerStore *storage.BadgerStore
	if crawlCfg.StateDir() != "" {
		var err error
		badgerStore, err = storage.NewBadgerStore(crawlCfg.StateDir(), crawlCfg.AllowedHost(), baseLog)
		if err != nil {
			return err
		}
		gcCtx, stopGC := context.WithCancel(ctx)
		defer stopGC()
		go badgerStore.RunGC(gcCtx, 10*time.Minute)
		store = badgerStore
	} else {
		log.Debug("No state directory configured, using in-memory visited set.")
		store = storage.NewMemoryStore()
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("Error closing visited store: %v", err)
		}
	}()

	// --- HTTP Fetching Components ---
	httpClient := fetch.NewClient(appCfg.HTTPClientSettings, baseLog)
	fetcher := fetch.NewFetcher(httpClient, fetch.Options{
		UserAgent:             crawlCfg.UserAgent(),
		Timeout:               crawlCfg.RequestTimeout(),
		MaxBodyBytes:          crawlCfg.MaxPageSizeBytes(),
		MaxConcurrentRequests: crawlCfg.MaxConcurrentRequests(),
	}, baseLog)

	// --- Output ---
	var managerOpts output.ManagerOptions
	if appCfg.EnableOutputMapping {
		managerOpts.MappingFilename = appCfg.EffectiveMappingFilename()
	}
	if appCfg.EnableMetadataYAML {
		managerOpts.MetadataFilename = appCfg.EffectiveMetadataFilename()
	}
	if appCfg.WriteTreeFile {
		managerOpts.TreeFilename = appCfg.EffectiveTreeFilename()
	}
	manager := output.NewManager(crawlCfg.OutputRoot(), managerOpts, baseLog)
	writer := output.NewWriter(crawlCfg.OutputRoot())
	counter := &progress.Counter{}

	// --- Crawler Instance ---
	c := crawler.New(
		crawlCfg,
		store,
		process.NewPageFetcher(fetcher, writer, counter),
		process.NewAssetExtractor(fetcher, writer, crawlCfg.AssetTags(), crawlCfg.MaxAssetSizeBytes(), counter, manager),
		manager,
		counter,
		baseLog,
	)
	if err := c.Run(ctx); err != nil {
		return err
	}

	// --- Final Visited Log File Generation (Optional) ---
	if badgerStore != nil && appCfg.WriteVisitedLog {
		visitedPath := filepath.Join(crawlCfg.OutputRoot(), config.DefaultVisitedLogName)
		if err := badgerStore.WriteVisitedLog(ctx, visitedPath); err != nil {
			log.Errorf("Error writing visited log: %v", err)
		}
	}
	return nil
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "=========================================")
	fmt.Fprintln(w, "   WebDumper - Website Scraper")
	fmt.Fprintln(w, "=========================================")
}

// setupLogger creates a configured logrus.Logger with the given log level.
func setupLogger(logLevelStr string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
		log.Debugf("Setting log level to: %s", level.String())
	}
	return log
}

// logAppConfig logs the effective configuration
func logAppConfig(appCfg *config.AppConfig, log *logrus.Logger) {
	log.Infof("Config: OutputDir:%s, MaxDepth:%d, StateDir:'%s', MaxConcurrentRequests:%d",
		appCfg.OutputDir, appCfg.EffectiveMaxDepth(), appCfg.StateDir, appCfg.MaxConcurrentRequests)
	log.Infof("Config Timeouts: Request:%v, HTTPClient:%v, Dialer:%v",
		appCfg.RequestTimeout, appCfg.HTTPClientSettings.Timeout, appCfg.HTTPClientSettings.DialerTimeout)
	log.Infof("Config Limits: MaxPageSize:%d bytes, MaxAssetSize:%d bytes, MaxRedirects:%d",
		appCfg.MaxPageSizeBytes, appCfg.MaxAssetSizeBytes, appCfg.HTTPClientSettings.MaxRedirects)
	log.Infof("Config Outputs: Mapping:%t ('%s'), MetadataYAML:%t ('%s'), Tree:%t, VisitedLog:%t",
		appCfg.EnableOutputMapping, appCfg.OutputMappingFilename,
		appCfg.EnableMetadataYAML, appCfg.MetadataYAMLFilename,
		appCfg.WriteTreeFile, appCfg.WriteVisitedLog)
	for _, tag := range appCfg.AssetTags {
		log.Debugf("Asset tag: %s", tag.Selector())
	}
}
