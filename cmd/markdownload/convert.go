package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/markdownload"
)

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	html, err := readInput(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	a, err := deps.Parser.ParseArticle(html, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", markdownload.ErrorMessage(err))
		return err
	}

	r, err := deps.Clipper.ConvertArticle(deps.Ctx, a, parseOverrides(c.Set))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", markdownload.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, r.Markdown)
	reportAssets(deps, r)
	return nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", markdownload.Errorf(markdownload.EINVALID, "cannot read %s: %v", path, err)
	}
	return string(data), nil
}
