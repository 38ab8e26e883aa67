package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/0x6d61/connected/pkg/schema"
)

// agents は "agents validate <file>" を処理する。
func (a *app) agents(args []string, stdout, stderr io.Writer) int {
	if len(args) != 2 || args[0] != "validate" {
		fmt.Fprintln(stderr, "usage: connected agents validate <file>")
		return exitUsage
	}
	path := args[1]

	agents, err := schema.LoadAgents(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	if len(agents) == 0 {
		fmt.Fprintf(stderr, "%s: no agents defined\n", path)
		return exitFailed
	}

	invalid := 0
	for _, ag := range agents {
		if err := a.prober.ValidateAgent(ag); err != nil {
			invalid++
			fmt.Fprintf(stdout, "✗ %s\n  %v\n", ag.Name, err)
			continue
		}
		fmt.Fprintf(stdout, "✓ %s (%d tools)\n", ag.Name, len(ag.Tools))
	}
	a.logger.Info("agents validated",
		slog.String("path", path),
		slog.Int("total", len(agents)),
		slog.Int("invalid", invalid),
	)
	if invalid > 0 {
		return exitFailed
	}
	return exitOK
}
