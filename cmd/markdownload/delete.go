package main

import (
	"fmt"

	"github.com/fwojciec/markdownload"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return markdownload.Errorf(markdownload.EINVALID, "use --force to confirm deletion")
	}
	if deps.Index == nil {
		fmt.Fprintln(deps.Stderr, "error: delete requires --db or MARKDOWNLOAD_DB")
		return markdownload.Errorf(markdownload.EINVALID, "delete requires a database")
	}

	if err := deps.Index.DeleteResult(deps.Ctx, c.ID); err != nil {
		if markdownload.ErrorCode(err) == markdownload.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: result %q not found. Use 'markdownload list' to see stored results.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", markdownload.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted result %q\n", c.ID)
	return nil
}
