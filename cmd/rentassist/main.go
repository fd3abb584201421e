// Package main is the rentassist CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/rentassist/internal/catalogimport"
	"github.com/hyperjump/rentassist/internal/chat"
	"github.com/hyperjump/rentassist/internal/cli"
	"github.com/hyperjump/rentassist/internal/compose"
	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/conversation"
	"github.com/hyperjump/rentassist/internal/indexer"
	"github.com/hyperjump/rentassist/internal/intent"
	"github.com/hyperjump/rentassist/internal/keyword"
	"github.com/hyperjump/rentassist/internal/lexicon"
	"github.com/hyperjump/rentassist/internal/llm"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/recommend"
	"github.com/hyperjump/rentassist/internal/search"
	"github.com/hyperjump/rentassist/internal/server"
	"github.com/hyperjump/rentassist/internal/storage"
	"github.com/hyperjump/rentassist/pkg/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/rentassist/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
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
	case "chat":
		runChat()
	case "search":
		runSearch()
	case "parse":
		runParse()
	case "import":
		runImport()
	case "reindex":
		runReindex()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("rentassist version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config, creates the logger and wires all components. It exits
// the process on failure.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Lexicon.TablesPath != "" && cfg.Lexicon.WatchOrDefault() {
		if _, err := components.Lexicon.Watch(watchCtx); err != nil {
			logger.Warn("lexicon watch disabled", zap.String("path", cfg.Lexicon.TablesPath), zap.Error(err))
		}
	}
	if cfg.Storage.InboxDir != "" {
		if _, err := components.Importer.WatchInbox(watchCtx, cfg.Storage.InboxDir); err != nil {
			logger.Fatal("Failed to watch inbox", zap.String("dir", cfg.Storage.InboxDir), zap.Error(err))
		}
		logger.Info("watching inbox", zap.String("dir", cfg.Storage.InboxDir))
	}

	srv := server.NewServer(server.Dependencies{
		Chat:     components.Chat,
		Catalog:  components.Search,
		Parser:   components.Parser,
		Products: components.Indexer,
		Counter:  components.Catalog,
	}, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
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

// buildQuery joins all positional args with spaces so multi-word messages
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "rentassist search máy ảnh -limit 3"
// would otherwise leave -limit unparsed.
func argsReorder(args []string) []string {
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

// parsePrice reads an optional price flag; empty means no bound.
func parsePrice(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("invalid price %q", s)
	}
	return &v, nil
}

// buildSearchFilters assembles filters from the search flags.
func buildSearchFilters(query, city, district, minPrice, maxPrice, sortType string, limit int) (models.SearchFilters, error) {
	f := models.SearchFilters{
		Q:        query,
		City:     strings.TrimSpace(city),
		District: strings.TrimSpace(district),
		Limit:    limit,
	}
	var err error
	if f.MinPrice, err = parsePrice(minPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(maxPrice); err != nil {
		return f, err
	}
	if sortType != "" {
		st := models.Intent(sortType)
		if !st.IsSort() {
			return f, fmt.Errorf("unknown sort %q", sortType)
		}
		f.SortType = st
	}
	return f, nil
}

func outputFormat(s string) cli.OutputFormat {
	format, err := cli.ParseFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: rentassist search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Sorts: cheap, expensive, closest, most_rented, most_favorited, most_viewed.

Examples:
  rentassist search máy ảnh
  rentassist search --city "Hồ Chí Minh" --max-price 500000 --sort cheap máy ảnh
  rentassist search --output json lều cắm trại
`)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	city := fs.String("city", "", "city filter")
	district := fs.String("district", "", "district filter")
	minPrice := fs.String("min-price", "", "minimum base price")
	maxPrice := fs.String("max-price", "", "maximum base price")
	sortType := fs.String("sort", "", "sort order")
	limit := fs.Int("limit", 10, "number of results")
	output := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	filters, err := buildSearchFilters(query, *city, *district, *minPrice, *maxPrice, *sortType, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	format := outputFormat(*output)
	res := &cli.SearchResults{Query: query, Filters: filters}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids Bleve/SQLite lock conflict).
		var body struct {
			Products      []*models.ProductCandidate `json:"products"`
			SpellingHints []string                   `json:"spelling_hints"`
		}
		if err := postJSON(*serverURL+"/api/v1/search", filters, &body); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		res.Products, res.SpellingHints = body.Products, body.SpellingHints
	} else {
		_, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		ctx := context.Background()
		res.Products = components.Search.Search(ctx, filters)
		if len(res.Products) == 0 && query != "" {
			res.SpellingHints = components.Search.SpellingHints(ctx, query)
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, res, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	session := fs.String("session", "", "session id to continue")
	address := fs.String("address", "", "user address")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	message := buildQuery(fs.Args())
	if message == "" {
		fmt.Println("Usage: rentassist chat [flags] <message>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	format := outputFormat(*output)
	req := models.ChatRequest{SessionID: *session, Message: message, UserAddress: *address}

	var resp *models.ChatResponse
	if *serverURL != "" {
		resp = &models.ChatResponse{}
		if err := postJSON(*serverURL+"/api/v1/chat", req, resp); err != nil {
			fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		resp = components.Chat.Handle(context.Background(), req)
	}
	if err := cli.WriteChatResponse(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runParse() {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	tablesPath := fs.String("tables", "", "lexicon tables file (empty = built-in tables)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	message := buildQuery(fs.Args())
	if message == "" {
		fmt.Println("Usage: rentassist parse [flags] <message>")
		os.Exit(1)
	}
	format := outputFormat(*output)
	lx, err := lexicon.NewProvider(*tablesPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load lexicon: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteParsedFilters(os.Stdout, intent.NewParser(lx).Parse(message), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: rentassist import [flags] <file-or-directory>")
		fmt.Printf("Supported files: %s\n", strings.Join(catalogimport.Extensions, ", "))
		os.Exit(1)
	}
	_, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	path := fs.Arg(0)
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	var results []*catalogimport.Result
	if info.IsDir() {
		results, err = components.Importer.ImportDirectory(ctx, path)
	} else {
		var res *catalogimport.Result
		res, err = components.Importer.ImportFile(ctx, path)
		if res != nil {
			results = append(results, res)
		}
	}
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	failed := 0
	for _, res := range results {
		fmt.Printf("%s: %d product(s) imported\n", res.File, res.Imported)
		for _, rowErr := range res.Errors {
			fmt.Printf("  row %s: %v\n", rowErr.Row, rowErr.Err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(2)
	}
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()
	n, err := components.Indexer.Reindex(context.Background())
	if err != nil {
		fmt.Printf("Reindex failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reindexed %d visible product(s)\n", n)
}

// statusResponse is the shape of the status output.
type statusResponse struct {
	Items      int64  `json:"items"`
	IndexTerms uint64 `json:"index_docs,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Store      string `json:"conversation_store,omitempty"`
	Lexicon    int    `json:"lexicon_version,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := outputFormat(*output)

	var status statusResponse
	if *serverURL != "" {
		if err := getJSON(*serverURL+"/api/v1/status", &status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		n, err := components.Catalog.CountItems(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count items failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{Items: n, Generator: components.GeneratorName, Store: "memory",
			Lexicon: components.Lexicon.Current().Version()}
		if cfg.Conversation.RedisAddr != "" {
			status.Store = "redis"
		}
		if components.Terms != nil {
			status.IndexTerms, _ = components.Terms.DocCount()
		}
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Printf("items:              %d   # catalog records, hidden included\n", status.Items)
	if status.IndexTerms > 0 {
		fmt.Printf("index_docs:         %d   # products in the term index\n", status.IndexTerms)
	}
	if status.Generator != "" {
		fmt.Printf("generator:          %s\n", status.Generator)
		fmt.Printf("conversation_store: %s\n", status.Store)
		fmt.Printf("lexicon_version:    %d\n", status.Lexicon)
	}
}

func postJSON(url string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func getJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Components holds everything a command needs.
type Components struct {
	Catalog       *storage.SQLiteCatalog
	Terms         *keyword.BleveIndex
	Redis         *redis.Client
	Lexicon       *lexicon.Provider
	Parser        *intent.Parser
	Search        *search.Engine
	Recommender   *recommend.Recommender
	Indexer       *indexer.Indexer
	Importer      *catalogimport.Importer
	Chat          *chat.Engine
	GeneratorName string
}

func (c *Components) Close() {
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
	if c.Terms != nil {
		_ = c.Terms.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	logger = utils.OrNop(logger)
	c := &Components{}
	var err error
	c.Catalog, err = storage.NewSQLiteCatalog(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	var (
		terms keyword.TermIndex
		spell *keyword.SpellChecker
	)
	if cfg.Storage.BleveIndexPath != "" {
		c.Terms, err = keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize term index: %w", err)
		}
		terms = c.Terms
		spell = keyword.NewSpellChecker(c.Terms)
	}

	c.Lexicon, err = lexicon.NewProvider(cfg.Lexicon.TablesPath, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	c.Parser = intent.NewParser(c.Lexicon,
		intent.WithSortLimit(cfg.Search.DefaultSortLimit),
		intent.WithMaxLimit(cfg.Search.MaxLimit),
	)

	searchOpts := []search.Option{search.WithLogger(logger)}
	if spell != nil {
		searchOpts = append(searchOpts, search.WithSpellChecker(spell))
	}
	c.Search = search.NewEngine(c.Catalog, &cfg.Search, searchOpts...)
	c.Recommender = recommend.NewRecommender(c.Search, &cfg.Recommend, recommend.WithLogger(logger))

	idxOpts := []indexer.IndexerOption{indexer.WithLogger(logger)}
	if spell != nil {
		idxOpts = append(idxOpts, indexer.WithSpellChecker(spell))
	}
	c.Indexer = indexer.NewIndexer(c.Catalog, terms, idxOpts...)
	c.Importer = catalogimport.NewImporter(c.Indexer, catalogimport.WithLogger(logger))

	var generator llm.Generator
	if cfg.Generation.ResolveAPIKey() != "" {
		generator = llm.NewOpenAIGenerator(cfg.Generation, llm.WithLogger(logger))
		c.GeneratorName = "openai:" + cfg.Generation.Model
	} else {
		logger.Info("no generation API key configured, using catalog-only replies")
		generator = llm.NewMockGenerator(cfg.Chat.FallbackSuggestions)
		c.GeneratorName = "mock"
	}

	var store conversation.Store
	if cfg.Conversation.RedisAddr != "" {
		c.Redis, err = conversation.DialRedis(ctx, cfg.Conversation.RedisAddr, cfg.Conversation.RedisPassword, cfg.Conversation.RedisDB)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect conversation store: %w", err)
		}
		store = conversation.NewRedisStore(c.Redis, cfg.Conversation.TTL(), cfg.Conversation.MaxTurns)
	} else {
		store = conversation.NewMemoryStore(cfg.Conversation.MaxTurns)
	}

	c.Chat = chat.NewEngine(chat.Dependencies{
		Parser:      c.Parser,
		Searcher:    c.Search,
		Recommender: c.Recommender,
		Composer: compose.NewComposer(c.Lexicon,
			compose.WithLogger(logger),
			compose.WithFallbackSuggestions(cfg.Chat.FallbackSuggestions),
		),
		Generator: generator,
		Store:     store,
	}, &cfg.Chat, chat.WithLogger(logger))
	return c, nil
}

func printUsage() {
	fmt.Println(`rentassist - Product search and recommendation chat for a rental marketplace

Usage:
  rentassist server [flags]            Start the HTTP server
  rentassist chat [flags] <message>    Send one chat message
  rentassist search [flags] <query>    Search the catalog
  rentassist parse [flags] <message>   Show how a message is read
  rentassist import [flags] <path>     Import products from .xlsx or .json files
  rentassist reindex [flags]           Rebuild the term index from the catalog
  rentassist status [flags]            Show catalog and component status
  rentassist version                   Show version
  rentassist help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/rentassist/config.yaml)
  --debug            Enable debug logging

Chat Flags:
  --config string    Config file path
  --server string    Server URL; empty uses direct storage
  --session string   Session id to continue (needs redis or --server)
  --address string   User address
  --output string    Output format: text or json (default: text)

Search Flags:
  --city, --district string          Location filters
  --min-price, --max-price string    Price bounds
  --sort string                      cheap, expensive, closest, most_rented, most_favorited, most_viewed
  --limit int                        Number of results (default: 10)
  --server string                    Server URL; empty uses direct storage
  --output string                    Output format: text or json (default: text)

Parse Flags:
  --tables string    Lexicon tables file (default: built-in)

Examples:
  rentassist server
  rentassist chat máy ảnh rẻ nhất ở hcm
  rentassist search --sort cheap --max-price 500000 máy ảnh
  rentassist parse "top 3 xe máy ở quận 1"
  rentassist import ./catalog.xlsx
  rentassist status --output json`)
}
