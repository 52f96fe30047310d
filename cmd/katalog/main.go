// Package main is the katalog CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/katalog/internal/catalog"
	"github.com/hyperjump/katalog/internal/cli"
	"github.com/hyperjump/katalog/internal/config"
	"github.com/hyperjump/katalog/internal/metrics"
	"github.com/hyperjump/katalog/internal/models"
	"github.com/hyperjump/katalog/internal/query"
	"github.com/hyperjump/katalog/internal/search"
	"github.com/hyperjump/katalog/internal/server"
	"github.com/hyperjump/katalog/internal/watcher"
	"github.com/hyperjump/katalog/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/katalog/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// If neither exists, built-in defaults are used (embedded demo catalog) and the
// returned path is empty. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		if path == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
			var defaults config.Config
			config.ApplyDefaults(&defaults)
			return &defaults, "", nil
		}
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch("search", "")
	case "filter":
		runSearch("filter", string(search.ModeFacet))
	case "parse":
		runParse()
	case "categories":
		runCategories()
	case "import":
		runImport()
	case "version", "--version", "-v":
		fmt.Printf("katalog version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.Bool("debug", debugMode),
	)

	m := metrics.New()
	components, err := initializeComponents(context.Background(), cfg, logger, m)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Catalog.Watch && cfg.Catalog.Source == config.SourceFile {
		cat := components.Catalog
		watchSvc, err := watcher.NewWatcher(
			[]string{cfg.Catalog.Path},
			func(path string) {
				if _, err := cat.Reload(watchCtx); err != nil {
					logger.Warn("catalog reload after change failed", zap.String("path", path), zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
		)
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(components.Engine, &cfg.Server, m, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search/filter subcommand usage.
func printSearchUsage(fs *flag.FlagSet, name string) {
	fmt.Fprintf(fs.Output(), "Usage: katalog %s [flags] [query]\n\n", name)
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  katalog search electronics under $150 with good reviews
  katalog search "top rated shoes"                      # same as without quotes
  katalog search --mode combined --min-rating 4.5 headphones
  katalog filter --category Electronics --max-price 100
  katalog search --output json coffee beans
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "katalog search shoes -output json"
// would otherwise leave -output unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// facetFlags holds the raw facet flag values. They stay strings so that an
// omitted flag and an invalid value both mean "no constraint".
type facetFlags struct {
	category, minPrice, maxPrice, minRating string
}

// buildSearchRequest assembles a request. Facets are only attached when at
// least one facet flag was given.
func buildSearchRequest(queryStr, mode string, f facetFlags) *models.SearchRequest {
	req := &models.SearchRequest{Query: queryStr, Mode: mode}
	if f.category != "" || f.minPrice != "" || f.maxPrice != "" || f.minRating != "" {
		facets := models.ParseFacetSelection(f.category, f.minPrice, f.maxPrice, f.minRating)
		req.Facets = &facets
	}
	return req
}

func runSearch(name, fixedMode string) {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = search the configured catalog directly)")
	mode := fs.String("mode", fixedMode, "search mode: natural, facet or combined (default from config)")
	var facets facetFlags
	fs.StringVar(&facets.category, "category", "", "facet: exact category (case-insensitive)")
	fs.StringVar(&facets.minPrice, "min-price", "", "facet: minimum price")
	fs.StringVar(&facets.maxPrice, "max-price", "", "facet: maximum price (0 = any)")
	fs.StringVar(&facets.minRating, "min-rating", "", "facet: minimum rating")
	outputFormat := fs.String("output", "text", "output format: text (product cards), compact (one product per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs, name) }
	_ = fs.Parse(searchArgs)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if fixedMode != "" {
		*mode = fixedMode
	}
	req := buildSearchRequest(buildSearchQuery(fs.Args()), *mode, facets)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	out := cli.Writer{Format: format, DescriptionLength: cfg.Search.DescriptionLength}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, req)
	} else {
		response, err = searchLocal(cfg, req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := out.WriteSearchResults(os.Stdout, response); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchLocal(cfg *config.Config, req *models.SearchRequest) (*models.SearchResponse, error) {
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	return components.Engine.Search(ctx, req)
}

func searchViaHTTP(serverURL string, req *models.SearchRequest) (*models.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func parseViaHTTP(serverURL, text string) (*models.ParseResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/parse?q=" + url.QueryEscape(text))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out models.ParseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runParse() {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	serverURL := fs.String("server", "", "server URL (empty = parse locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	text := buildSearchQuery(fs.Args())

	var response *models.ParseResponse
	if *serverURL != "" {
		response, err = parseViaHTTP(*serverURL, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		parsed := query.Parse(text)
		response = &models.ParseResponse{Parsed: parsed, Understanding: query.Summary(parsed)}
	}
	if err := (cli.Writer{Format: format}).WriteParse(os.Stdout, response); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runCategories() {
	fs := flag.NewFlagSet("categories", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	canonical := fs.Bool("canonical", false, "list the categories the query parser recognises instead of the catalog's")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out := cli.Writer{Format: format}

	if *canonical {
		_ = out.WriteCategories(os.Stdout, query.Categories())
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(context.Background(), cfg, logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()
	_ = out.WriteCategories(os.Stdout, components.Catalog.Categories())
}

// importProducts loads products from a catalog file and writes them into the
// SQLite database at dbPath. Returns the number of products written.
func importProducts(ctx context.Context, filePath, dbPath string, replace bool) (int, error) {
	src, err := catalog.NewFileSource(filePath)
	if err != nil {
		return 0, err
	}
	products, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}
	db, err := catalog.NewSQLiteSource(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return db.Import(ctx, products, replace)
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dbPath := fs.String("db", "", "SQLite database (default: catalog.path when catalog.source is sqlite)")
	replace := fs.Bool("replace", false, "remove existing products before importing")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: katalog import [flags] <catalog.yaml|catalog.json|catalog.xlsx>")
		os.Exit(1)
	}

	target := *dbPath
	if target == "" {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		if cfg.Catalog.Source != config.SourceSQLite {
			fmt.Println("No database to import into: pass --db or set catalog.source to sqlite")
			os.Exit(1)
		}
		target = cfg.Catalog.Path
	}

	n, err := importProducts(context.Background(), fs.Arg(0), target, *replace)
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d product(s) into %s\n", n, target)
}

// Components holds initialized services.
type Components struct {
	Catalog *catalog.Catalog
	Engine  *search.Engine
}

func (c *Components) Close() {
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Components, error) {
	source, err := catalog.NewSource(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog source: %w", err)
	}
	cat, err := catalog.Open(ctx, source, catalog.WithLogger(logger), catalog.WithMetrics(m))
	if err != nil {
		if closer, ok := source.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	engine := search.NewEngine(cat, &cfg.Search, search.WithLogger(logger), search.WithMetrics(m))
	return &Components{Catalog: cat, Engine: engine}, nil
}

func printUsage() {
	fmt.Println(`katalog - Natural-language product catalog search

Usage:
  katalog server [flags]              Start the HTTP server
  katalog search [flags] [query]      Search the catalog with a free-text query
  katalog filter [flags]              Filter the catalog by category, price and rating
  katalog parse [flags] <query>       Show what a query is understood as
  katalog categories [flags]          List catalog categories
  katalog import [flags] <file>       Import a catalog file into SQLite
  katalog version                     Show version
  katalog help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/katalog/config.yaml)
  --debug            Enable debug logging

Search / Filter Flags:
  --config string      Config file path
  --server string      Server URL; empty searches the configured catalog directly
  --mode string        natural, facet or combined (search only)
  --category string    Facet: category
  --min-price string   Facet: minimum price
  --max-price string   Facet: maximum price (0 = any)
  --min-rating string  Facet: minimum rating
  --output string      Output format: text, compact or json (default: text)

Parse Flags:
  --server string    Server URL; empty parses locally
  --output string    Output format: text or json

Categories Flags:
  --config string    Config file path
  --canonical        List parser categories instead of catalog categories

Import Flags:
  --config string    Config file path
  --db string        SQLite database path (default: catalog.path)
  --replace          Replace existing products

Examples:
  katalog server
  katalog search "electronics under $150 with good reviews"
  katalog search --output json top rated shoes
  katalog filter --category Footwear --min-rating 4.5
  katalog parse office chairs between $200 and $400
  katalog import --db catalog.db products.xlsx`)
}
