package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/markdownload"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	if deps.Index == nil {
		fmt.Fprintln(deps.Stderr, "error: list requires --db or MARKDOWNLOAD_DB")
		return markdownload.Errorf(markdownload.EINVALID, "list requires a database")
	}

	filter := markdownload.ResultFilter{Limit: c.Limit, Offset: c.Offset}
	if c.URL != "" {
		filter.SourceURL = &c.URL
	}
	results, err := deps.Index.FindResults(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", markdownload.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results found. Use 'markdownload clip' to create one.")
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", r.ID, r.CreatedAt.Format(time.DateTime), r.Title, r.SourceURL)
	}
	return nil
}
