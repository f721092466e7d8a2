package engine

// Schema is the fixed column layout of one TPC-H table.
type Schema struct {
	Name    string
	Columns []string

	pos map[string]int
}

func newSchema(name string, cols ...string) *Schema {
	s := &Schema{Name: name, Columns: cols, pos: make(map[string]int, len(cols))}
	for i, c := range cols {
		s.pos[c] = i
	}
	return s
}

// File is the flat file holding the table inside a table directory.
func (s *Schema) File() string { return s.Name + ".tbl" }

// Index returns the position of column, or -1.
func (s *Schema) Index(column string) int {
	if i, ok := s.pos[column]; ok {
		return i
	}
	return -1
}

var (
	CustomerSchema = newSchema("customer",
		"c_custkey", "c_name", "c_address", "c_nationkey", "c_phone", "c_acctbal", "c_mktsegment", "c_comment")
	OrdersSchema = newSchema("orders",
		"o_orderkey", "o_custkey", "o_orderstatus", "o_totalprice", "o_orderdate", "o_orderpriority", "o_clerk", "o_shippriority", "o_comment")
	LineitemSchema = newSchema("lineitem",
		"l_orderkey", "l_partkey", "l_suppkey", "l_linenumber", "l_quantity", "l_extendedprice", "l_discount", "l_tax",
		"l_returnflag", "l_linestatus", "l_shipdate", "l_commitdate", "l_receiptdate", "l_shipinstruct", "l_shipmode", "l_comment")
	SupplierSchema = newSchema("supplier",
		"s_suppkey", "s_name", "s_address", "s_nationkey", "s_phone", "s_acctbal", "s_comment")
	NationSchema = newSchema("nation",
		"n_nationkey", "n_name", "n_regionkey", "n_comment")
	RegionSchema = newSchema("region",
		"r_regionkey", "r_name", "r_comment")
)

// Schemas lists every table the query reads, in load order.
var Schemas = []*Schema{CustomerSchema, OrdersSchema, LineitemSchema, SupplierSchema, NationSchema, RegionSchema}

// Row is one record. Values are kept as loaded; numeric columns are parsed
// where they are consumed.
type Row struct {
	schema *Schema
	values []string
}

// NewRow builds a row for schema. values must hold one entry per column.
func NewRow(schema *Schema, values ...string) Row {
	return Row{schema: schema, values: values}
}

// Get returns the value of column and whether the row has it.
func (r Row) Get(column string) (string, bool) {
	if r.schema == nil {
		return "", false
	}
	i := r.schema.Index(column)
	if i < 0 || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Value is Get without the presence flag.
func (r Row) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

// at reads a value by pre-resolved position.
func (r Row) at(i int) string { return r.values[i] }

// Table holds the rows of one file in file order.
type Table struct {
	Schema *Schema
	Rows   []Row
}

// NewTable builds a table from raw values. Short rows are padded with empty
// values so every row carries the full schema.
func NewTable(schema *Schema, rows ...[]string) *Table {
	t := &Table{Schema: schema, Rows: make([]Row, 0, len(rows))}
	for _, v := range rows {
		values := make([]string, len(schema.Columns))
		copy(values, v)
		t.Rows = append(t.Rows, NewRow(schema, values...))
	}
	return t
}

func (t *Table) Len() int { return len(t.Rows) }

// Store holds the six tables. It is read-only once loaded.
type Store struct {
	Customer *Table
	Orders   *Table
	Lineitem *Table
	Supplier *Table
	Nation   *Table
	Region   *Table
}

// Tables returns the tables in the same order as Schemas.
func (s *Store) Tables() []*Table {
	return []*Table{s.Customer, s.Orders, s.Lineitem, s.Supplier, s.Nation, s.Region}
}

func (s *Store) set(t *Table) {
	switch t.Schema {
	case CustomerSchema:
		s.Customer = t
	case OrdersSchema:
		s.Orders = t
	case LineitemSchema:
		s.Lineitem = t
	case SupplierSchema:
		s.Supplier = t
	case NationSchema:
		s.Nation = t
	case RegionSchema:
		s.Region = t
	}
}

// Stats reports the row count of every table.
func (s *Store) Stats() map[string]int {
	out := make(map[string]int, len(Schemas))
	for _, t := range s.Tables() {
		if t != nil {
			out[t.Schema.Name] = t.Len()
		}
	}
	return out
}
