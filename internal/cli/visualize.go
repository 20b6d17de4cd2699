package cli

import (
	"github.com/spf13/cobra"

	"github.com/bomgraph/bomgraph/pkg/emit"
)

// visualizeCommand creates the visualize command: render the assembly
// graph as DOT or SVG for inspection of small exports.
func (c *CLI) visualizeCommand() *cobra.Command {
	opts := struct {
		policyFlags
		parts    []string
		output   string
		detailed bool
		reverse  bool
		noCache  bool
	}{}

	cmd := &cobra.Command{
		Use:   "visualize <edge-file>",
		Short: "Render the assembly graph as DOT or SVG",
		Long: `Visualize runs the pipeline and renders the resulting graph with
Graphviz. A .svg output path renders in process; any other path gets the
raw DOT text.

Examples:
  bomgraph visualize bom.csv --parts parts.csv -o graph.svg
  bomgraph visualize bom.csv --parts parts.csv -o graph.dot --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd, opts.noCache, "")
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			res, err := runner.Execute(cmd.Context(), opts.pipelineOptions(opts.parts, args[0], false))
			if err != nil {
				return err
			}

			em := &emit.DOTEmitter{
				Path:    opts.output,
				Options: emit.DOTOptions{Detailed: opts.detailed, Reverse: opts.reverse},
			}
			if err := em.Emit(cmd.Context(), res.Dataset); err != nil {
				return err
			}
			printSuccess("Rendered %d parts", len(res.Dataset.Nodes))
			printFile(opts.output)
			return nil
		},
	}

	opts.policyFlags.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.parts, "parts", "p", nil, "parts export (repeatable, merged in order)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "graph.svg", "output file (.svg renders, anything else gets DOT)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include revision, view, and container in labels")
	cmd.Flags().BoolVar(&opts.reverse, "reverse", false, "draw the derived used-in edges instead")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	_ = cmd.MarkFlagRequired("parts")
	return cmd
}
