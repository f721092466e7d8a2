package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Row builders fill the columns the query reads and a placeholder elsewhere.

func region(key, name string) []string { return []string{key, name, "c"} }

func nation(key, name, regionKey string) []string { return []string{key, name, regionKey, "c"} }

func customer(key, nationKey string) []string {
	return []string{key, "Customer#" + key, "addr", nationKey, "10-000", "0.00", "BUILDING", "c"}
}

func supplier(key, nationKey string) []string {
	return []string{key, "Supplier#" + key, "addr", nationKey, "10-000", "0.00", "c"}
}

func order(key, custKey, date string) []string {
	return []string{key, custKey, "O", "0.00", date, "1-URGENT", "Clerk#1", "0", "c"}
}

func lineitem(orderKey, suppKey, price, discount string) []string {
	return []string{orderKey, "1", suppKey, "1", "1", price, discount, "0.00",
		"N", "O", "1994-01-02", "1994-01-02", "1994-01-02", "NONE", "AIR", "c"}
}

// geoStore holds two regions, three nations, one customer and one supplier
// per nation. Orders and lineitems are supplied by the caller.
func geoStore(orders [][]string, lineitems [][]string) *Store {
	return &Store{
		Region: NewTable(RegionSchema, region("0", "EUROPE"), region("1", "ASIA")),
		Nation: NewTable(NationSchema,
			nation("6", "FRANCE", "0"), nation("7", "GERMANY", "0"), nation("12", "JAPAN", "1")),
		Customer: NewTable(CustomerSchema, customer("1", "6"), customer("2", "7"), customer("3", "12")),
		Supplier: NewTable(SupplierSchema, supplier("10", "6"), supplier("11", "7"), supplier("12", "12")),
		Orders:   NewTable(OrdersSchema, orders...),
		Lineitem: NewTable(LineitemSchema, lineitems...),
	}
}

func newTestEngine(t *testing.T, store *Store) *Engine {
	t.Helper()
	eng, err := NewEngine(store)
	require.NoError(t, err)
	return eng
}

// writeTable writes rows in dbgen format (every record ends with '|').
func writeTable(t *testing.T, dir string, schema *Schema, rows ...[]string) {
	t.Helper()
	var sb strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s|\n", strings.Join(r, "|"))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, schema.File()), []byte(sb.String()), 0o644))
}

func writeStore(t *testing.T, dir string, s *Store) {
	t.Helper()
	for _, tbl := range s.Tables() {
		rows := make([][]string, len(tbl.Rows))
		for i, r := range tbl.Rows {
			rows[i] = r.values
		}
		writeTable(t, dir, tbl.Schema, rows...)
	}
}
