// Package engine wires the enrichment and routing components together.
package engine

import (
	"time"

	"github.com/qazfin/fireroute/engine/enrich"
	"github.com/qazfin/fireroute/engine/geo"
	"github.com/qazfin/fireroute/engine/llm"
	"github.com/qazfin/fireroute/engine/metrics"
	"github.com/qazfin/fireroute/engine/model"
	"github.com/qazfin/fireroute/engine/pipeline"
	"github.com/qazfin/fireroute/engine/router"
	"github.com/qazfin/fireroute/internal/profile"
)

// Config represents engine configuration.
type Config struct {
	Workers  int
	LLM      llm.Config
	Priority enrich.PriorityWeights
	Router   router.Config
}

// NewConfigFromProfile creates engine config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Workers:  p.Workers,
		Priority: enrich.DefaultPriorityWeights(),
		Router:   router.DefaultConfig(),
	}
	if cfg.Workers <= 0 {
		cfg.Workers = pipeline.DefaultWorkers
	}

	if p.IsAIEnabled() {
		cfg.LLM = llm.Config{
			APIKey:      p.LLMAPIKey,
			BaseURL:     p.LLMBaseURL,
			Model:       p.LLMModel,
			Timeout:     time.Duration(p.LLMTimeoutMS) * time.Millisecond,
			RPS:         p.LLMRPS,
			Temperature: 0.2,
		}
	}
	return cfg
}

// New builds a ready pipeline over the given manager and office corpus.
// The exporter may be nil.
func New(cfg *Config, managers []model.Manager, offices []model.Office, exporter *metrics.Exporter) *pipeline.Pipeline {
	idx := geo.NewIndex()

	opts := []enrich.Option{enrich.WithPriorityWeights(cfg.Priority)}
	if adapter := llm.New(cfg.LLM); adapter != nil {
		opts = append(opts, enrich.WithAnalyzer(adapter))
		if exporter != nil {
			opts = append(opts, enrich.WithLLMObserver(exporter))
		}
	}
	enricher := enrich.New(idx, opts...)

	rtr := router.New(idx, managers, offices, cfg.Router)

	popts := []pipeline.Option{pipeline.WithWorkers(cfg.Workers)}
	if exporter != nil {
		popts = append(popts, pipeline.WithExporter(exporter))
	}
	return pipeline.New(enricher, rtr, popts...)
}
