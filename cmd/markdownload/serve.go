package main

import (
	"fmt"
	"strings"

	mdhttp "github.com/fwojciec/markdownload/http"
)

// Run executes the serve command. It blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	srv := mdhttp.NewServer(deps.Clipper, deps.Results,
		mdhttp.WithAddr(listenAddr(c.Port)),
		mdhttp.WithEnv(deps.Env),
		mdhttp.WithPublicDir(c.Public),
		mdhttp.WithLogger(deps.Logger),
	)
	if err := srv.Open(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", srv.Addr())

	<-deps.Ctx.Done()
	return srv.Close()
}

// listenAddr accepts a bare port, as in PORT=3000, or a full address.
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
