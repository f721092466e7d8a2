package engine

import "fmt"

// Index maps a key column to row positions of a single table.
// Duplicate keys keep the first row, like a front-to-back scan would.
type Index struct {
	table *Table
	data  map[string]int
}

// BuildIndex indexes table on column. The table is not modified.
func BuildIndex(table *Table, column string) (*Index, error) {
	col := table.Schema.Index(column)
	if col < 0 {
		return nil, fmt.Errorf("index %s: unknown column %q", table.Schema.Name, column)
	}
	idx := &Index{table: table, data: make(map[string]int, len(table.Rows))}
	for i, r := range table.Rows {
		k := r.at(col)
		if _, exists := idx.data[k]; !exists {
			idx.data[k] = i
		}
	}
	return idx, nil
}

// Lookup returns the row whose key equals key.
func (idx *Index) Lookup(key string) (Row, bool) {
	i, ok := idx.data[key]
	if !ok {
		return Row{}, false
	}
	return idx.table.Rows[i], true
}

func (idx *Index) Len() int { return len(idx.data) }

// ScanLookup resolves key with a full scan of table.
func ScanLookup(table *Table, column, key string) (Row, bool) {
	col := table.Schema.Index(column)
	if col < 0 {
		return Row{}, false
	}
	for _, r := range table.Rows {
		if r.at(col) == key {
			return r, true
		}
	}
	return Row{}, false
}

// Grouping lists, per key, the positions of every row carrying it in file order.
type Grouping struct {
	table  *Table
	groups map[string][]int
}

// GroupBy groups table rows on column.
func GroupBy(table *Table, column string) (*Grouping, error) {
	col := table.Schema.Index(column)
	if col < 0 {
		return nil, fmt.Errorf("group %s: unknown column %q", table.Schema.Name, column)
	}
	g := &Grouping{table: table, groups: make(map[string][]int)}
	for i, r := range table.Rows {
		k := r.at(col)
		g.groups[k] = append(g.groups[k], i)
	}
	return g, nil
}

// Rows returns the rows with key, or nil.
func (g *Grouping) Rows(key string) []Row {
	pos := g.groups[key]
	if len(pos) == 0 {
		return nil
	}
	out := make([]Row, len(pos))
	for i, p := range pos {
		out[i] = g.table.Rows[p]
	}
	return out
}

// Each calls fn for every row with key until fn returns an error.
func (g *Grouping) Each(key string, fn func(Row) error) error {
	for _, p := range g.groups[key] {
		if err := fn(g.table.Rows[p]); err != nil {
			return err
		}
	}
	return nil
}
