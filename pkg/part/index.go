package part

import (
	"slices"
	"strings"
)

// Candidate is one part number recorded under a display name, together
// with the metadata used to break ties when the name is ambiguous.
type Candidate struct {
	Number string
	Meta   Meta
}

// IndexStats reports what happened during index construction. Dropped
// records are a data-quality signal, never an error: upstream exports are
// expected to be imperfect.
type IndexStats struct {
	Records        int // input records seen
	Parts          int // distinct part numbers indexed
	Dropped        int // records without a usable part number
	Unnamed        int // parts indexed by number only (empty name)
	MultiNameParts int // parts recorded under more than one distinct name
}

// Index is the immutable cross-reference between part numbers and display
// names for one run. Construct with [BuildIndex]; all query methods are
// safe for concurrent use once construction returns.
type Index struct {
	nameByNumber map[string]string
	metaByNumber map[string]Meta
	byName       map[string][]Candidate
	byFolded     map[string][]Candidate
	multiName    map[string][]string // number -> distinct names, only when >1
	stats        IndexStats
}

// BuildIndex aggregates records from all input batches into an Index in a
// single pass. Records without a part number are dropped and counted.
// No record is rejected for missing metadata; a record with an empty name
// is indexed by number only.
func BuildIndex(records []Record) *Index {
	idx := &Index{
		nameByNumber: make(map[string]string, len(records)),
		metaByNumber: make(map[string]Meta, len(records)),
		byName:       make(map[string][]Candidate),
		byFolded:     make(map[string][]Candidate),
		multiName:    make(map[string][]string),
	}
	namesSeen := make(map[string][]string)

	for _, r := range records {
		idx.stats.Records++
		number := NormalizeIdentifier(r.Number)
		if number == "" {
			idx.stats.Dropped++
			continue
		}
		name := NormalizeIdentifier(r.Name)

		if _, known := idx.nameByNumber[number]; !known {
			idx.nameByNumber[number] = name
		} else if name != "" {
			// Last writer wins, but an empty name never erases one.
			idx.nameByNumber[number] = name
		}
		idx.metaByNumber[number] = mergeMeta(idx.metaByNumber[number], r.Meta)

		if name == "" {
			continue
		}
		if !slices.Contains(namesSeen[number], name) {
			namesSeen[number] = append(namesSeen[number], name)
		}
		upsert(idx.byName, name, number, r.Meta)
		upsert(idx.byFolded, strings.ToLower(name), number, r.Meta)
	}

	for number, names := range namesSeen {
		if len(names) > 1 {
			slices.Sort(names)
			idx.multiName[number] = names
		}
	}
	for _, name := range idx.nameByNumber {
		if name == "" {
			idx.stats.Unnamed++
		}
	}

	// Candidate lists are sorted by number so index contents never depend
	// on input record order.
	for name := range idx.byName {
		sortCandidates(idx.byName[name])
	}
	for name := range idx.byFolded {
		sortCandidates(idx.byFolded[name])
	}

	idx.stats.Parts = len(idx.nameByNumber)
	idx.stats.MultiNameParts = len(idx.multiName)
	return idx
}

// upsert adds number under key, or merges its metadata field-wise if the
// number is already listed there, matching how metaByNumber accumulates.
func upsert(m map[string][]Candidate, key, number string, meta Meta) {
	list := m[key]
	for i := range list {
		if list[i].Number == number {
			list[i].Meta = mergeMeta(list[i].Meta, meta)
			return
		}
	}
	m[key] = append(list, Candidate{Number: number, Meta: meta})
}

func sortCandidates(list []Candidate) {
	slices.SortFunc(list, func(a, b Candidate) int {
		return strings.Compare(a.Number, b.Number)
	})
}

// mergeMeta overlays newer metadata on old, field by field. A later record
// overwrites what it provides and leaves the rest intact.
func mergeMeta(old, newer Meta) Meta {
	if newer.Revision != "" {
		old.Revision = newer.Revision
	}
	if newer.View != "" {
		old.View = newer.View
	}
	if newer.Container != "" {
		old.Container = newer.Container
	}
	if newer.Source != "" {
		old.Source = newer.Source
	}
	return old
}

// NameFor returns the display name recorded for a part number.
// The second result is false if the number is not indexed.
func (idx *Index) NameFor(number string) (string, bool) {
	name, ok := idx.nameByNumber[NormalizeIdentifier(number)]
	return name, ok
}

// MetaFor returns the merged metadata recorded for a part number. The
// second result is false if the number is not indexed.
func (idx *Index) MetaFor(number string) (Meta, bool) {
	number = NormalizeIdentifier(number)
	if _, ok := idx.nameByNumber[number]; !ok {
		return Meta{}, false
	}
	return idx.metaByNumber[number], true
}

// Known reports whether the token, normalized, is an indexed part number.
// Resolution uses this for the numeric fallback: a "name" column that
// actually contains a bare part number.
func (idx *Index) Known(token string) bool {
	_, ok := idx.nameByNumber[NormalizeIdentifier(token)]
	return ok
}

// Candidates returns the candidate list for a name using the normalized,
// case-preserved form. The slice is shared with the index; callers must
// not modify it.
func (idx *Index) Candidates(name string) []Candidate {
	return idx.byName[NormalizeIdentifier(name)]
}

// FoldedCandidates returns the candidate list for a name using case-folded
// comparison. The slice is shared with the index; callers must not modify it.
func (idx *Index) FoldedCandidates(name string) []Candidate {
	return idx.byFolded[FoldName(name)]
}

// Numbers returns every indexed part number in sorted order.
func (idx *Index) Numbers() []string {
	numbers := make([]string, 0, len(idx.nameByNumber))
	for number := range idx.nameByNumber {
		numbers = append(numbers, number)
	}
	slices.Sort(numbers)
	return numbers
}

// Len returns the number of distinct part numbers indexed.
func (idx *Index) Len() int { return len(idx.nameByNumber) }

// MultiNamed returns, per part number recorded under more than one
// distinct name, the sorted list of those names. Disagreeing sources are
// reported this way rather than silently merged.
func (idx *Index) MultiNamed() map[string][]string {
	out := make(map[string][]string, len(idx.multiName))
	for number, names := range idx.multiName {
		out[number] = slices.Clone(names)
	}
	return out
}

// Stats returns construction statistics.
func (idx *Index) Stats() IndexStats { return idx.stats }
