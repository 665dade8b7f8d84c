package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/markdownload"
	"github.com/fwojciec/markdownload/clip"
	"github.com/fwojciec/markdownload/fs"
	"github.com/fwojciec/markdownload/goquery"
	"github.com/fwojciec/markdownload/htmltomarkdown"
	mdhttp "github.com/fwojciec/markdownload/http"
	"github.com/fwojciec/markdownload/readability"
	"github.com/fwojciec/markdownload/rod"
	mdslog "github.com/fwojciec/markdownload/slog"
	"github.com/fwojciec/markdownload/sqlite"
	"github.com/fwojciec/markdownload/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads the environment option layer. Defaults to os.Getenv.
	Getenv func(string) string

	// SQLite database, opened when --db is set.
	DB *sqlite.DB

	// Sources for end-to-end testing. Nil fields are wired from flags.
	Fetcher  markdownload.Fetcher
	Renderer markdownload.Fetcher
	Images   markdownload.ImageFetcher

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close releases the database and browser opened by Run.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("markdownload"),
		kong.Description("Clip web pages to Markdown"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'markdownload --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.wire(cli, commandName(kongCtx), deps); err != nil {
		return err
	}
	return kongCtx.Run(deps)
}

// wire builds the services the selected command needs.
func (m *Main) wire(cli *CLI, cmd string, deps *Dependencies) error {
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	getenv := m.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	deps.Env = markdownload.EnvOverrides(getenv)

	if cmd == "options" {
		return nil
	}

	// Adapters stay silent; debug logging comes from the decorators.
	debug := slog.New(slog.DiscardHandler)
	if cli.Verbose {
		debug = logger
	}

	var results markdownload.ResultStore = fs.NewResultStore(cli.Output)
	if cli.DB != "" {
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(deps.Stderr, "Hint: Set MARKDOWNLOAD_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		m.closers = append(m.closers, m.DB)
		store := sqlite.NewResultStore(m.DB)
		results = store
		deps.Index = store
	}
	deps.Results = mdslog.NewLoggingResultStore(results, debug)

	if cmd == "list" || cmd == "delete" {
		return nil
	}

	var extractor markdownload.Extractor = readability.NewExtractor()
	if cli.Extractor == "trafilatura" {
		extractor = trafilatura.NewExtractor()
	}
	deps.Parser = mdslog.NewLoggingParser(goquery.NewParser(extractor), debug)

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = mdhttp.NewFetcher(mdhttp.WithTimeout(cli.Timeout))
	}
	renderer := m.Renderer
	if renderer == nil {
		var opts []rod.ManagerOption
		if cli.NoSandbox {
			opts = append(opts, rod.WithNoSandbox())
		}
		browser := rod.NewFetcher(
			rod.WithFetchTimeout(cli.Timeout),
			rod.WithManager(rod.NewBrowserManager(opts...)),
		)
		m.closers = append(m.closers, browser)
		renderer = browser
	}
	images := m.Images
	if images == nil {
		images = mdhttp.NewImageFetcher(mdhttp.WithTimeout(cli.Timeout))
	}

	deps.Clipper = &clip.Service{
		Fetcher:   mdslog.NewLoggingFetcher(fetcher, debug),
		Renderer:  mdslog.NewLoggingFetcher(renderer, debug),
		Parser:    deps.Parser,
		Converter: htmltomarkdown.NewConverter(),
		Materializer: &clip.Materializer{
			Images:      mdslog.NewLoggingImageFetcher(images, debug),
			Assets:      fs.NewAssetStore(cli.Output),
			RateLimiter: clip.NewDomainLimiter(cli.ImageRate, cli.ImageConcurrency),
			Concurrency: cli.ImageConcurrency,
		},
		Store:  deps.Results,
		Env:    deps.Env,
		Logger: logger,
	}
	return nil
}

// commandName returns the first word of the selected command, such as
// "clip" for "clip <url>".
func commandName(ctx *kong.Context) string {
	name, _, _ := strings.Cut(ctx.Command(), " ")
	return name
}
