package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fieldinspect/internal/config"
	"fieldinspect/internal/preflight"
	"fieldinspect/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, database, and configuration health",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Daemon", colorize)...)
			daemonCheck := preflight.CheckDaemon(cmdContext(cmd), baseURL(ctx.daemonAddress()), ctx.token())
			if daemonCheck.Passed {
				lines = append(lines, renderStatusLine("Daemon", statusOK, "Running on "+ctx.daemonAddress(), colorize))
			} else {
				lines = append(lines, renderStatusLine("Daemon", statusInfo, daemonCheck.Detail, colorize))
			}

			err := ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Checks", colorize)...)
				for _, r := range preflight.RunAll(cmdContext(cmd), cfg, st) {
					lines = append(lines, resultLine(r, colorize))
				}

				stats, err := st.Stats(cmdContext(cmd))
				if err != nil {
					return err
				}
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Inspections", colorize)...)
				lines = append(lines,
					renderStatusLine("Returns", statusInfo, fmt.Sprintf("%d", stats.Returns), colorize),
					renderStatusLine("Checklists", statusInfo, fmt.Sprintf("%d", stats.Checklists), colorize),
					renderStatusLine("Stages", statusInfo, fmt.Sprintf("%d pending, %d resolved", stats.PendingStages, stats.ResolvedStages), colorize),
				)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

func baseURL(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.Contains(addr, "://") {
		return addr
	}
	return "http://" + addr
}
