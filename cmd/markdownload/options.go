package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/markdownload"
)

// Run executes the options command.
func (c *OptionsCmd) Run(deps *Dependencies) error {
	opts := markdownload.ResolveOptions(deps.Env, parseOverrides(c.Set))
	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, string(data))
	return nil
}
