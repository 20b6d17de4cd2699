package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bomgraph/bomgraph/pkg/part"
	"github.com/bomgraph/bomgraph/pkg/source"
)

// xrefCommand creates the xref command: build and dump the cross-reference
// index without touching edges.
func (c *CLI) xrefCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "xref <parts-file>...",
		Short: "Dump the part number / name cross-reference",
		Long: `Xref builds the cross-reference index from one or more parts exports and
dumps it for inspection. Parts recorded under more than one distinct name
are flagged, since disagreeing sources are reported rather than merged.

Examples:
  bomgraph xref parts.csv
  bomgraph xref a.csv b.csv --format json -o xref.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []part.Record
			for _, path := range args {
				batch, err := source.LoadParts(path)
				if err != nil {
					return err
				}
				records = append(records, batch...)
			}
			idx := part.BuildIndex(records)

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			var err error
			switch format {
			case "json":
				err = writeXrefJSON(out, idx)
			case "csv":
				err = writeXrefCSV(out, idx)
			default:
				return fmt.Errorf("invalid format: %q (must be csv or json)", format)
			}
			if err != nil {
				return err
			}

			if output != "" {
				printSuccess("Wrote %d parts", idx.Len())
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	return cmd
}

func writeXrefCSV(w io.Writer, idx *part.Index) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"number", "name", "revision", "view", "container", "other names"}); err != nil {
		return err
	}
	multi := idx.MultiNamed()
	for _, number := range idx.Numbers() {
		name, _ := idx.NameFor(number)
		meta, _ := idx.MetaFor(number)
		var others []string
		for _, n := range multi[number] {
			if n != name {
				others = append(others, n)
			}
		}
		row := []string{number, name, meta.Revision, meta.View, meta.Container, strings.Join(others, "; ")}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type xrefEntry struct {
	Number     string    `json:"number"`
	Name       string    `json:"name,omitempty"`
	Meta       part.Meta `json:"meta"`
	OtherNames []string  `json:"other_names,omitempty"`
}

func writeXrefJSON(w io.Writer, idx *part.Index) error {
	multi := idx.MultiNamed()
	entries := make([]xrefEntry, 0, idx.Len())
	for _, number := range idx.Numbers() {
		name, _ := idx.NameFor(number)
		meta, _ := idx.MetaFor(number)
		entry := xrefEntry{Number: number, Name: name, Meta: meta}
		for _, n := range multi[number] {
			if n != name {
				entry.OtherNames = append(entry.OtherNames, n)
			}
		}
		entries = append(entries, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
