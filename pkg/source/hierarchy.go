package source

import (
	"strconv"

	"github.com/bomgraph/bomgraph/pkg/resolve"
)

// readHierarchy converts an indented BOM, rows of (Level, Number) where
// level 0 is a root and level n+1 nests under the most recent level-n row,
// into parent/child number edges.
//
// A stack of "most recent part per level" drives the conversion: each row
// records itself at its level, links to the part one level up if present,
// and clears any deeper levels so siblings never inherit a stale branch.
// Rows with a missing number or a non-numeric level are skipped and
// counted.
func readHierarchy(rows [][]string, levelCol, numberCol int) EdgeBatch {
	batch := EdgeBatch{Mode: EdgeModeNumbers}
	latest := make(map[int]string)

	for _, row := range rows {
		number := cell(row, numberCol)
		rawLevel := cell(row, levelCol)
		if number == "" || rawLevel == "" {
			batch.Skipped++
			continue
		}
		level, err := strconv.Atoi(rawLevel)
		if err != nil {
			batch.Skipped++
			continue
		}

		latest[level] = number
		if parent, ok := latest[level-1]; level > 0 && ok {
			batch.Edges = append(batch.Edges, resolve.Edge{Parent: parent, Child: number})
		}
		for l := range latest {
			if l > level {
				delete(latest, l)
			}
		}
	}
	return batch
}
