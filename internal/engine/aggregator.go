package engine

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Column positions used by the join chain.
var (
	oOrderKey  = OrdersSchema.Index("o_orderkey")
	oCustKey   = OrdersSchema.Index("o_custkey")
	oOrderDate = OrdersSchema.Index("o_orderdate")

	cNationKey = CustomerSchema.Index("c_nationkey")

	nName      = NationSchema.Index("n_name")
	nRegionKey = NationSchema.Index("n_regionkey")

	rName = RegionSchema.Index("r_name")

	lSuppKey       = LineitemSchema.Index("l_suppkey")
	lExtendedPrice = LineitemSchema.Index("l_extendedprice")
	lDiscount      = LineitemSchema.Index("l_discount")

	sNationKey = SupplierSchema.Index("s_nationkey")
)

// ParseError reports a numeric column that does not hold a number.
type ParseError struct {
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Span is a half-open range [Start, End) of order positions.
type Span struct {
	Start, End int
}

// Partition splits [0, n) into t contiguous spans. The last span takes the
// remainder of n/t. t must be at least 1.
func Partition(n, t int) []Span {
	chunkSize := n / t
	spans := make([]Span, t)
	for i := 0; i < t; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if i == t-1 {
			end = n
		}
		spans[i] = Span{Start: start, End: end}
	}
	return spans
}

// Partial is the revenue per nation accumulated by one worker.
type Partial map[string]float64

// sharedResult is the query-wide result. Workers only touch it in merge.
type sharedResult struct {
	mu  sync.Mutex
	rev map[string]float64
}

func (s *sharedResult) merge(p Partial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for nation, rev := range p {
		s.rev[nation] += rev
	}
}

// Engine runs the revenue query against a loaded Store. All lookup
// structures are built once in NewEngine; an Engine is safe for concurrent Run.
type Engine struct {
	store *Store

	customers *Index
	suppliers *Index
	nations   *Index
	regions   *Index
	lineitems *Grouping
}

func NewEngine(store *Store) (*Engine, error) {
	for i, t := range store.Tables() {
		if t == nil {
			return nil, fmt.Errorf("store is missing table %s", Schemas[i].Name)
		}
	}
	e := &Engine{store: store}
	var err error
	if e.customers, err = BuildIndex(store.Customer, "c_custkey"); err != nil {
		return nil, err
	}
	if e.suppliers, err = BuildIndex(store.Supplier, "s_suppkey"); err != nil {
		return nil, err
	}
	if e.nations, err = BuildIndex(store.Nation, "n_nationkey"); err != nil {
		return nil, err
	}
	if e.regions, err = BuildIndex(store.Region, "r_regionkey"); err != nil {
		return nil, err
	}
	if e.lineitems, err = GroupBy(store.Lineitem, "l_orderkey"); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Store() *Store { return e.store }

// Run executes the query with p.Threads workers, each owning a contiguous
// span of the orders table. A failing worker fails the whole query and no
// result is returned.
func (e *Engine) Run(p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t0 := time.Now()
	orders := e.store.Orders.Rows
	spans := Partition(len(orders), p.Threads)
	log.Printf("Starting query execution with %d threads over %d orders.", len(spans), len(orders))

	shared := &sharedResult{rev: make(map[string]float64)}
	var g errgroup.Group
	for w, span := range spans {
		w, span := w, span
		g.Go(func() error {
			local := make(Partial)
			for _, o := range orders[span.Start:span.End] {
				if err := e.evalOrder(o, p, local); err != nil {
					return fmt.Errorf("worker %d [%d, %d): %w", w, span.Start, span.End, err)
				}
			}
			shared.merge(local)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("Query complete. Nations: %d. Time: %v", len(shared.rev), time.Since(t0))
	return Result(shared.rev), nil
}

// evalOrder adds the revenue of every qualifying lineitem of o to acc.
// Lookup misses drop the order or lineitem silently.
func (e *Engine) evalOrder(o Row, p Params, acc Partial) error {
	if !p.inWindow(o.at(oOrderDate)) {
		return nil
	}
	cust, ok := e.customers.Lookup(o.at(oCustKey))
	if !ok {
		return nil
	}
	custNationKey := cust.at(cNationKey)
	custNation, ok := e.nations.Lookup(custNationKey)
	if !ok {
		return nil
	}
	region, ok := e.regions.Lookup(custNation.at(nRegionKey))
	if !ok || region.at(rName) != p.Region {
		return nil
	}
	nation := custNation.at(nName)

	return e.lineitems.Each(o.at(oOrderKey), func(l Row) error {
		supp, ok := e.suppliers.Lookup(l.at(lSuppKey))
		if !ok || supp.at(sNationKey) != custNationKey {
			return nil
		}
		if _, ok := e.nations.Lookup(supp.at(sNationKey)); !ok {
			return nil
		}
		rev, err := revenue(l)
		if err != nil {
			return err
		}
		acc[nation] += rev
		return nil
	})
}

// revenue is extendedprice * (1 - discount).
func revenue(l Row) (float64, error) {
	price, err := parseFloat("l_extendedprice", l.at(lExtendedPrice))
	if err != nil {
		return 0, err
	}
	disc, err := parseFloat("l_discount", l.at(lDiscount))
	if err != nil {
		return 0, err
	}
	return price * (1 - disc), nil
}

func parseFloat(column, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ParseError{Column: column, Value: v, Err: err}
	}
	return f, nil
}
