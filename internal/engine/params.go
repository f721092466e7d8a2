package engine

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// MaxThreads bounds the worker count of a single query.
const MaxThreads = 1024

var ErrInvalidParams = errors.New("invalid query parameters")

// Params are the invocation parameters of the revenue query.
// Dates are ISO-8601 (YYYY-MM-DD); the window is [StartDate, EndDate).
type Params struct {
	Region    string
	StartDate string
	EndDate   string
	Threads   int
}

// Validate checks p and clamps Threads to MaxThreads.
func (p *Params) Validate() error {
	if p.Region == "" {
		return fmt.Errorf("%w: region name is required", ErrInvalidParams)
	}
	for _, d := range []struct{ name, v string }{{"start_date", p.StartDate}, {"end_date", p.EndDate}} {
		if _, err := time.Parse(time.DateOnly, d.v); err != nil {
			return fmt.Errorf("%w: %s %q is not a YYYY-MM-DD date", ErrInvalidParams, d.name, d.v)
		}
	}
	if p.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalidParams, p.Threads)
	}
	if p.Threads > MaxThreads {
		log.Printf("Clamping %d threads to %d", p.Threads, MaxThreads)
		p.Threads = MaxThreads
	}
	return nil
}

func (p Params) inWindow(date string) bool {
	return date >= p.StartDate && date < p.EndDate
}
