package emit

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// DOTOptions configures Graphviz output.
type DOTOptions struct {
	// Detailed includes revision, view, and container in node labels.
	// When false, only the part number and name are shown.
	Detailed bool
	// Reverse draws the derived used-in edges instead of the direct
	// has-component edges.
	Reverse bool
}

// ToDOT converts a dataset to Graphviz DOT format for inspection of small
// assemblies. The resulting string can be rendered with [RenderSVG].
//
// Parts flagged as recorded under more than one name are drawn with dashed
// outlines so naming conflicts stand out in review.
func ToDOT(ds *Dataset, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph bom {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range ds.Nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(ds, n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Number, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	edges := ds.DirectEdges
	if opts.Reverse {
		edges = ds.ReverseEdges
	}
	for _, e := range edges {
		if e.Count > 1 {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Parent, e.Child, fmt.Sprintf("x%d", e.Count))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Parent, e.Child)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n Node, detailed bool) string {
	label := n.Number
	if n.Name != "" {
		label += "\n" + n.Name
	}
	if !detailed {
		return label
	}
	if n.Meta.Revision != "" {
		label += "\nrev: " + n.Meta.Revision
	}
	if n.Meta.View != "" {
		label += "\nview: " + n.Meta.View
	}
	if n.Meta.Container != "" {
		label += "\ncontainer: " + n.Meta.Container
	}
	return label
}

func fmtAttrs(ds *Dataset, n Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if _, conflicted := ds.Diagnostics.MultiNamed[n.Number]; conflicted {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// DOTEmitter writes Graphviz output, as DOT text or rendered SVG, to a
// file path based on its extension.
type DOTEmitter struct {
	Path    string
	Options DOTOptions
}

// Emit implements [Emitter]. A .svg path renders in process; anything
// else gets the raw DOT text.
func (e *DOTEmitter) Emit(ctx context.Context, ds *Dataset) error {
	dot := ToDOT(ds, e.Options)
	if strings.HasSuffix(e.Path, ".svg") {
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		return writeFile(e.Path, svg)
	}
	return writeFile(e.Path, []byte(dot))
}
