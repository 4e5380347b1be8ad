// Package pipeline orchestrates the two processing stages: concurrent
// ticket enrichment followed by strictly sequential routing.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qazfin/fireroute/engine/enrich"
	"github.com/qazfin/fireroute/engine/metrics"
	"github.com/qazfin/fireroute/engine/model"
	"github.com/qazfin/fireroute/engine/router"
)

// DefaultWorkers bounds the enrichment stage concurrency.
const DefaultWorkers = 20

// Pipeline runs tickets through enrichment and routing.
//
// Enrichment is read-only per ticket and safe to parallelise. Routing
// mutates shared manager loads and rotation counters, so it runs on a
// single goroutine in input order.
type Pipeline struct {
	enricher *enrich.Enricher
	router   *router.Router
	workers  int
	exporter *metrics.Exporter
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the enrichment concurrency bound.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithExporter attaches a metrics exporter.
func WithExporter(e *metrics.Exporter) Option {
	return func(p *Pipeline) { p.exporter = e }
}

// New creates a pipeline over an enricher and a router.
func New(enricher *enrich.Enricher, rtr *router.Router, opts ...Option) *Pipeline {
	p := &Pipeline{
		enricher: enricher,
		router:   rtr,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes all tickets and returns one assignment per ticket, in
// input order. A context cancellation aborts the enrichment stage and
// returns the error; no partial assignments are produced.
func (p *Pipeline) Run(ctx context.Context, tickets []model.Ticket) ([]model.Assignment, error) {
	start := time.Now()

	enriched := make([]model.EnrichedTicket, len(tickets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, t := range tickets {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			enriched[i] = p.enricher.Enrich(gctx, t)
			if p.exporter != nil {
				p.exporter.RecordEnrichment(enriched[i], time.Since(began))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assignments := make([]model.Assignment, 0, len(enriched))
	for _, et := range enriched {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		began := time.Now()
		a := p.router.Assign(et)
		if p.exporter != nil {
			p.exporter.RecordAssignment(a, time.Since(began))
		}
		assignments = append(assignments, a)
	}

	slog.Info("pipeline: run complete",
		"tickets", len(tickets),
		"workers", p.workers,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return assignments, nil
}
