package main

import (
	"context"
	"fmt"
	"net"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/piwi3910/holefit/internal/server"
)

func registerServe(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	var addr, problems, solutions, runs string
	cmd := app.Command("serve", "Serve problems, evaluation and streamed searches over HTTP.")
	cmd.Flag("addr", "Listen address (default from preferences).").StringVar(&addr)
	cmd.Flag("problems", "Problem directory (default from preferences).").StringVar(&problems)
	cmd.Flag("solutions", "Solution directory (default from preferences).").StringVar(&solutions)
	cmd.Flag("runs", "Run archive directory (default from preferences).").StringVar(&runs)

	commands[cmd.FullCommand()] = func(ctx context.Context) error {
		cfg := c.cfg
		override(&cfg.ListenAddr, addr)
		override(&cfg.ProblemDir, problems)
		override(&cfg.SolutionDir, solutions)
		override(&cfg.ArchiveDir, runs)

		l, err := net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
		}
		return server.New(cfg).Run(ctx, l)
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
