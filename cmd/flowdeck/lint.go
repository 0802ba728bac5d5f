package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flowdeck-io/flowdeck/internal/workflow"
)

var (
	errColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
)

var lintCmd = &cobra.Command{
	Use:   "lint <workflow.yaml> [more...]",
	Short: "Validate workflow node configuration",
	Long: `Lint parses one or more workflow documents and validates every node's
decision configuration: switch operators and output ports, merge wait modes
and timeouts, sandbox resource limits, and database connection security.

Errors block saving the workflow; warnings are advisory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

type lintReport struct {
	path   string
	issues []workflow.Issue
	err    error
}

func runLint(cmd *cobra.Command, args []string) error {
	reports := make([]lintReport, len(args))

	var g errgroup.Group
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			doc, err := workflow.LoadDocument(path)
			report := lintReport{path: path, err: err}
			if err == nil {
				report.issues = workflow.LintDocument(doc)
			}
			reports[i] = report
			return nil
		})
	}
	// Parse errors are reported per file, not returned.
	_ = g.Wait()

	failed := false
	for _, report := range reports {
		if report.err != nil {
			errColor.Fprintf(cmd.OutOrStdout(), "%s: %v\n", report.path, report.err)
			failed = true
			continue
		}

		if len(report.issues) == 0 {
			okColor.Fprintf(cmd.OutOrStdout(), "%s: ok\n", report.path)
			continue
		}

		issues := report.issues
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].Severity == workflow.SeverityError &&
				issues[j].Severity != workflow.SeverityError
		})

		for _, is := range issues {
			c := warnColor
			if is.Severity == workflow.SeverityError {
				c = errColor
			}
			c.Fprintf(cmd.OutOrStdout(), "%s: %s [%s] %s\n", report.path, is.Severity, is.NodeName, is.Message)
		}

		if workflow.HasErrors(issues) || cfg.Lint.WarningsAsErrors {
			failed = true
		}

		logger.Debug("Linted workflow document",
			"path", report.path,
			"issue_count", len(issues),
		)
	}

	if failed {
		return fmt.Errorf("lint found blocking issues")
	}
	return nil
}
