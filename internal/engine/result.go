package engine

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"tpchq5/internal/models"
)

// ResultHeader is the first line of a result file.
const ResultHeader = "c_custkey|revenue"

// Result is the revenue per nation of one query.
type Result map[string]float64

// Sorted orders the result by revenue, highest first. Equal revenues are
// ordered by nation name.
func (r Result) Sorted() []models.NationRevenue {
	out := make([]models.NationRevenue, 0, len(r))
	for nation, rev := range r {
		out = append(out, models.NationRevenue{Nation: nation, Revenue: rev})
	}
	slices.SortFunc(out, func(a, b models.NationRevenue) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Nation, b.Nation)
	})
	return out
}

// Encode writes the header and one "<nation>|<revenue>" line per nation.
func (r Result) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, ResultHeader); err != nil {
		return err
	}
	for _, nr := range r.Sorted() {
		if _, err := fmt.Fprintf(bw, "%s|%.2f\n", nr.Nation, nr.Revenue); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteResult writes r to path. The file is replaced atomically.
func WriteResult(path string, r Result) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := r.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write result %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	return nil
}

var arrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "n_name", Type: arrow.BinaryTypes.String},
	{Name: "revenue", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// ArrowRecord returns the sorted result as a record. Callers must Release it.
func (r Result) ArrowRecord(mem memory.Allocator) arrow.Record {
	b := array.NewRecordBuilder(mem, arrowSchema)
	defer b.Release()
	names := b.Field(0).(*array.StringBuilder)
	revs := b.Field(1).(*array.Float64Builder)
	for _, nr := range r.Sorted() {
		names.Append(nr.Nation)
		revs.Append(nr.Revenue)
	}
	return b.NewRecord()
}

// WriteArrow streams r to w in Arrow IPC stream format.
func WriteArrow(w io.Writer, r Result) error {
	rec := r.ArrowRecord(memory.DefaultAllocator)
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(arrowSchema))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("arrow stream: %w", err)
	}
	return iw.Close()
}
