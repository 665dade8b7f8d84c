package main

import (
	"fmt"

	"github.com/fwojciec/markdownload"
)

// Run executes the clip command.
func (c *ClipCmd) Run(deps *Dependencies) error {
	r, err := deps.Clipper.Clip(deps.Ctx, c.URL, parseOverrides(c.Set))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", markdownload.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, r.Markdown)
	reportAssets(deps, r)
	fmt.Fprintf(deps.Stderr, "Saved %q as %s\n", r.Title, r.ID)
	return nil
}

// reportAssets lists images that could not be downloaded.
func reportAssets(deps *Dependencies, r *markdownload.Result) {
	for _, a := range r.Assets {
		if a.Err != nil {
			fmt.Fprintf(deps.Stderr, "warning: %s\n", markdownload.ErrorMessage(a.Err))
		}
	}
}
