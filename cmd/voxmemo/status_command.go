package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voxmemo/internal/deps"
	"voxmemo/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, dependencies and the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				writeSection(out, "Preflight", preflightLines(preflight.RunAll(cmd.Context(), a.cfg), colorize), colorize)
				writeSection(out, "Dependencies", dependencyLines(preflight.CheckSystemDeps(a.cfg), colorize), colorize)

				var catalogLines []string
				location := a.cfg.CatalogFilePath()
				if a.cfg.Catalog.Backend == "sqlite" {
					location = a.cfg.CatalogDBPath()
				}
				catalogLines = append(catalogLines, renderStatusLine("Backend", statusInfo, fmt.Sprintf("%s (%s)", a.cfg.Catalog.Backend, location), colorize))
				entries, err := a.catalog.Load(cmd.Context())
				if err != nil {
					catalogLines = append(catalogLines, renderStatusLine("Recordings", statusError, err.Error(), colorize))
				} else {
					catalogLines = append(catalogLines, renderStatusLine("Recordings", statusOK, fmt.Sprintf("%d in catalog", len(entries)), colorize))
				}
				writeSection(out, "Catalog", catalogLines, colorize)
				return nil
			})
		},
	}
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
			if result.Name == "Notifications" {
				kind = statusWarn
			}
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := deps.Missing(statuses)
	if len(missing) == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, "All dependencies available", colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d required dependency missing", len(missing)), colorize))
	}

	for _, dep := range statuses {
		if dep.Available {
			lines = append(lines, renderStatusLine(dep.Name, statusOK, fmt.Sprintf("Ready (command: %s)", dep.Command), colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, dep := range missing {
			names = append(names, dep.Name)
		}
		lines = append(lines, statusIndent+"Missing dependencies: "+strings.Join(names, ", "))
	}
	return lines
}
