package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/markdownload"
	"github.com/fwojciec/markdownload/clip"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Env is the environment option layer.
	Env markdownload.Overrides

	Clipper *clip.Service
	Parser  markdownload.ArticleParser
	Results markdownload.ResultStore

	// Index is set only when results are kept in a database.
	Index markdownload.ResultIndex
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose          bool          `short:"v" help:"Log debug output to stderr"`
	DB               string        `name:"db" env:"MARKDOWNLOAD_DB" help:"SQLite database for clipped results (default: files in --output)"`
	Output           string        `short:"o" env:"OUTPUT_DIR" default:"output" help:"Directory for clipped documents and images"`
	Extractor        string        `enum:"readability,trafilatura" default:"readability" help:"Article extractor (readability, trafilatura)"`
	Timeout          time.Duration `default:"10s" help:"Timeout for each page or image fetch"`
	NoSandbox        bool          `help:"Run the headless browser without its sandbox"`
	ImageConcurrency int           `default:"10" help:"Concurrent image downloads"`
	ImageRate        float64       `default:"0" help:"Image requests per second per host (0 for unlimited)"`

	Serve   ServeCmd   `cmd:"" help:"Serve the clipping HTTP API"`
	Clip    ClipCmd    `cmd:"" help:"Clip a URL to Markdown"`
	Convert ConvertCmd `cmd:"" help:"Convert a saved HTML file to Markdown"`
	Options OptionsCmd `cmd:"" help:"Print the effective options"`
	List    ListCmd    `cmd:"" help:"List clipped results (requires --db)"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a clipped result (requires --db)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Port   string `env:"PORT" default:"3000" help:"Port or address to listen on"`
	Public string `help:"Directory of static files to serve"`
}

// ClipCmd is the "clip" subcommand.
type ClipCmd struct {
	URL string            `arg:"" help:"Page URL (http, https or data)"`
	Set map[string]string `short:"s" help:"Option override as key=value (repeatable)"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	File string            `arg:"" help:"HTML file to convert, or - for stdin"`
	URL  string            `name:"url" help:"URL the page was saved from"`
	Set  map[string]string `short:"s" help:"Option override as key=value (repeatable)"`
}

// OptionsCmd is the "options" subcommand.
type OptionsCmd struct {
	Set map[string]string `short:"s" help:"Option override as key=value (repeatable)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	URL    string `name:"url" help:"Only results clipped from this URL"`
	Limit  int    `default:"20" help:"Maximum results to show"`
	Offset int    `help:"Results to skip"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Result ID"`
	Force bool   `help:"Confirm deletion"`
}
