// Package source reads part and relationship batches from CSV exports.
//
// These are thin adapters around the core: they map heterogeneous column
// headers onto [part.Record] and [resolve.Edge] values and perform no
// resolution or graph work themselves. Header matching is case-insensitive
// and tolerant of surrounding whitespace, because the upstream exports are
// produced by hand from several PLM views.
package source

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/bomgraph/bomgraph/pkg/errors"
	"github.com/bomgraph/bomgraph/pkg/part"
	"github.com/bomgraph/bomgraph/pkg/resolve"
)

// EdgeMode reports how the tokens of an edge batch are expressed. A batch
// is always one or the other, never mixed.
type EdgeMode string

const (
	// EdgeModeNumbers: tokens are part numbers (Parent Number / Child Number).
	EdgeModeNumbers EdgeMode = "numbers"
	// EdgeModeNames: tokens are display names (Parent Name / Child Name).
	EdgeModeNames EdgeMode = "names"
)

// EdgeBatch is one relationship file read into memory.
type EdgeBatch struct {
	Edges   []resolve.Edge
	Mode    EdgeMode
	Skipped int // rows dropped for missing parent or child
}

// Recognized column spellings. Comparison happens on the trimmed,
// lower-cased header.
var (
	numberCols    = []string{"number", "part number", "id"}
	nameCols      = []string{"name", "part name"}
	revisionCols  = []string{"revision", "rev"}
	viewCols      = []string{"view"}
	containerCols = []string{"container", "context"}
	sourceCols    = []string{"source"}

	parentNumberCols = []string{"parent number", "parent", "parent part number"}
	childNumberCols  = []string{"child number", "child", "component id", "child part number"}
	parentNameCols   = []string{"parent name"}
	childNameCols    = []string{"child name"}
	levelCols        = []string{"level"}
)

// ReadParts reads a parts CSV. The file must carry a Number column;
// Name, Revision, View, Container, and Source are optional. Rows are
// returned as-is; the index build is responsible for dropping records
// without a usable number.
func ReadParts(r io.Reader) ([]part.Record, error) {
	rows, header, err := readAll(r)
	if err != nil {
		return nil, err
	}
	number := header.find(numberCols)
	if number < 0 {
		return nil, errors.New(errors.ErrCodeInvalidPartFile, "parts file has no Number column")
	}
	name := header.find(nameCols)
	revision := header.find(revisionCols)
	view := header.find(viewCols)
	container := header.find(containerCols)
	source := header.find(sourceCols)

	records := make([]part.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, part.Record{
			Number: cell(row, number),
			Name:   cell(row, name),
			Meta: part.Meta{
				Revision:  cell(row, revision),
				View:      cell(row, view),
				Container: cell(row, container),
				Source:    cell(row, source),
			},
		})
	}
	return records, nil
}

// LoadParts reads a parts CSV from disk.
func LoadParts(path string) ([]part.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	records, err := ReadParts(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPartFile, err, "parse %s", path)
	}
	return records, nil
}

// ReadEdges reads a relationship CSV and detects its shape from the
// header:
//
//   - Level + Number columns: a hierarchical (indented) BOM, converted
//     with the level-stack algorithm into number-mode edges
//   - Parent Number / Child Number: number-mode edges
//   - Parent Name / Child Name: name-mode edges
//
// Rows missing either token are skipped and counted, never fatal.
func ReadEdges(r io.Reader) (EdgeBatch, error) {
	rows, header, err := readAll(r)
	if err != nil {
		return EdgeBatch{}, err
	}

	if level, number := header.find(levelCols), header.find(numberCols); level >= 0 && number >= 0 {
		return readHierarchy(rows, level, number), nil
	}

	if p, c := header.find(parentNumberCols), header.find(childNumberCols); p >= 0 && c >= 0 {
		batch := readPairs(rows, p, c)
		batch.Mode = EdgeModeNumbers
		return batch, nil
	}

	if p, c := header.find(parentNameCols), header.find(childNameCols); p >= 0 && c >= 0 {
		batch := readPairs(rows, p, c)
		batch.Mode = EdgeModeNames
		return batch, nil
	}

	return EdgeBatch{}, errors.New(errors.ErrCodeInvalidEdgeFile,
		"edge file has neither Parent/Child Number, Parent/Child Name, nor Level/Number columns")
}

// LoadEdges reads a relationship CSV from disk.
func LoadEdges(path string) (EdgeBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return EdgeBatch{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	batch, err := ReadEdges(f)
	if err != nil {
		return EdgeBatch{}, errors.Wrap(errors.ErrCodeInvalidEdgeFile, err, "parse %s", path)
	}
	return batch, nil
}

func readPairs(rows [][]string, parentCol, childCol int) EdgeBatch {
	var batch EdgeBatch
	for _, row := range rows {
		p := cell(row, parentCol)
		c := cell(row, childCol)
		if p == "" || c == "" {
			batch.Skipped++
			continue
		}
		batch.Edges = append(batch.Edges, resolve.Edge{Parent: p, Child: c})
	}
	return batch
}

// header maps lower-cased column names to their positions.
type header map[string]int

// find returns the position of the first matching column name, or -1.
func (h header) find(names []string) int {
	for _, n := range names {
		if i, ok := h[n]; ok {
			return i
		}
	}
	return -1
}

// readAll consumes the CSV, returning data rows and the header map.
// Records may have varying field counts; short rows are tolerated.
func readAll(r io.Reader) ([][]string, header, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read csv")
	}
	if len(rows) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "empty csv")
	}

	h := make(header, len(rows[0]))
	for i, col := range rows[0] {
		h[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return rows[1:], h, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
