package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkCommand creates the check command: run the pipeline for its
// diagnostics only, failing on structural problems.
func (c *CLI) checkCommand() *cobra.Command {
	opts := struct {
		policyFlags
		parts       []string
		failOnCycle bool
	}{}

	cmd := &cobra.Command{
		Use:   "check <edge-file>",
		Short: "Validate BOM exports without emitting anything",
		Long: `Check runs resolution and graph construction to surface data-quality
problems: unknown names, ambiguous names, duplicate rows, self-references,
and cycles. Nothing is written.

Use --strict to fail on any unknown or ambiguous name; the error lists
every offending token. Use --fail-on-cycle to treat a cycle as an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd, true, "")
			if err != nil {
				return err
			}

			spin := newSpinner(cmd.Context(), "checking "+args[0])
			spin.Start()
			res, err := runner.Execute(cmd.Context(), opts.pipelineOptions(opts.parts, args[0], true))
			if err != nil {
				spin.StopWithError("check failed")
				return err
			}
			spin.Stop()

			printRunSummary(res)

			report := res.Dataset.Diagnostics
			if report.Graph.DuplicateEdges > 0 {
				printInfo("%d duplicate rows collapsed", report.Graph.DuplicateEdges)
			}
			if report.Graph.Cycle != nil {
				if opts.failOnCycle {
					return fmt.Errorf("%s", report.Graph.Cycle.Error())
				}
				return nil
			}
			printSuccess("Structure OK")
			return nil
		},
	}

	opts.policyFlags.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.parts, "parts", "p", nil, "parts export (repeatable, merged in order)")
	cmd.Flags().BoolVar(&opts.failOnCycle, "fail-on-cycle", false, "exit non-zero when the hierarchy contains a cycle")
	_ = cmd.MarkFlagRequired("parts")
	return cmd
}
