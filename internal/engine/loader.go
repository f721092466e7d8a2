package engine

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// LoadError reports a table that could not be loaded.
type LoadError struct {
	Table string
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Table, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var errEmptyTable = errors.New("table has no rows")

// LoadStore loads every table of the query from dir/<table>.tbl. Tables are
// loaded concurrently; the first failure aborts the load.
func LoadStore(dir string) (*Store, error) {
	start := time.Now()
	log.Printf("Loading TPC-H tables from %s...", dir)

	tables := make([]*Table, len(Schemas))
	var g errgroup.Group
	for i, schema := range Schemas {
		i, schema := i, schema
		g.Go(func() error {
			t, err := LoadTable(filepath.Join(dir, schema.File()), schema)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := &Store{}
	for _, t := range tables {
		store.set(t)
	}
	log.Printf("Load Complete. Rows: %v. Time: %v", store.Stats(), time.Since(start))
	return store, nil
}

// LoadTable reads one '|'-delimited file. The file is split into
// newline-aligned chunks that are parsed in parallel; rows keep file order.
func LoadTable(path string, schema *Schema) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Table: schema.Name, Path: path, Err: err}
	}

	numWorkers := runtime.NumCPU()
	if len(content) < 64*1024 {
		numWorkers = 1
	}
	chunkSize := len(content) / numWorkers

	parts := make([][]Row, numWorkers)
	var g errgroup.Group
	for i := 0; i < numWorkers; i++ {
		i := i
		start, end := i*chunkSize, (i+1)*chunkSize
		if i == numWorkers-1 {
			end = len(content)
		}
		g.Go(func() error {
			start, end := alignChunk(content, start, end)
			rows, err := parseChunk(content[start:end], schema)
			parts[i] = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &LoadError{Table: schema.Name, Path: path, Err: err}
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if total == 0 {
		return nil, &LoadError{Table: schema.Name, Path: path, Err: errEmptyTable}
	}
	t := &Table{Schema: schema, Rows: make([]Row, 0, total)}
	for _, p := range parts {
		t.Rows = append(t.Rows, p...)
	}
	return t, nil
}

// alignChunk moves both bounds forward to the byte after the next newline so
// that every line belongs to exactly one chunk.
func alignChunk(content []byte, start, end int) (int, int) {
	if start > 0 {
		if i := bytes.IndexByte(content[start-1:], '\n'); i != -1 {
			start += i
		} else {
			start = len(content)
		}
	}
	if end < len(content) && end > 0 {
		if i := bytes.IndexByte(content[end-1:], '\n'); i != -1 {
			end += i
		} else {
			end = len(content)
		}
	}
	if end < start {
		end = start
	}
	return start, end
}

func parseChunk(chunk []byte, schema *Schema) ([]Row, error) {
	want := len(schema.Columns)
	rows := make([]Row, 0, bytes.Count(chunk, []byte{'\n'})+1)
	for len(chunk) > 0 {
		var line []byte
		if i := bytes.IndexByte(chunk, '\n'); i != -1 {
			line, chunk = chunk[:i], chunk[i+1:]
		} else {
			line, chunk = chunk, nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}

		// dbgen terminates every record with '|'; surplus fields are dropped
		fields := strings.Split(string(line), "|")
		if len(fields) < want {
			return nil, fmt.Errorf("record %q has %d fields, want %d", line, len(fields), want)
		}
		rows = append(rows, Row{schema: schema, values: fields[:want:want]})
	}
	return rows, nil
}
