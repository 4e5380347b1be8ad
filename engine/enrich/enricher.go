// Package enrich orchestrates the analysis components into a single
// enrichment entry point for the pipeline.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/qazfin/fireroute/engine/geo"
	"github.com/qazfin/fireroute/engine/llm"
	"github.com/qazfin/fireroute/engine/model"
	"github.com/qazfin/fireroute/engine/nlp"
	"github.com/qazfin/fireroute/engine/sentiment"
	"github.com/qazfin/fireroute/engine/summary"
)

// PriorityWeights are the additive priority components, kept configurable
// so tests can exercise the boundaries.
type PriorityWeights struct {
	Base              int
	HighCategoryBonus int
	NegativeBonus     int
	VIPSegmentBonus   int
}

// DefaultPriorityWeights returns the production weights.
func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{Base: 5, HighCategoryBonus: 3, NegativeBonus: 2, VIPSegmentBonus: 2}
}

const (
	priorityMin = 1
	priorityMax = 10
)

// highPriorityCategories push priority up by HighCategoryBonus.
var highPriorityCategories = map[model.Category]struct{}{
	model.CategoryFraud:     {},
	model.CategoryComplaint: {},
	model.CategoryClaim:     {},
}

// Analyzer is the optional LLM collaborator. A nil Analyzer (or any failed
// call) routes summarisation through the deterministic fallback.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*llm.Insight, error)
}

// LLMObserver receives the outcome of each analyzer call.
type LLMObserver interface {
	RecordLLMRequest(latency time.Duration, success bool)
}

// Enricher derives analytic attributes from ticket bodies. All components
// are stateless after construction; Enrich may be called from any number of
// workers.
type Enricher struct {
	classifier *nlp.Classifier
	sentiments *sentiment.Engine
	geoIndex   *geo.Index
	analyzer   Analyzer
	observer   LLMObserver
	weights    PriorityWeights
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithAnalyzer attaches an LLM analyzer.
func WithAnalyzer(a Analyzer) Option {
	return func(e *Enricher) { e.analyzer = a }
}

// WithLLMObserver attaches a metrics sink for analyzer calls.
func WithLLMObserver(o LLMObserver) Option {
	return func(e *Enricher) { e.observer = o }
}

// WithPriorityWeights overrides the default priority weights.
func WithPriorityWeights(w PriorityWeights) Option {
	return func(e *Enricher) { e.weights = w }
}

// New builds an Enricher over the shared geo index.
func New(geoIndex *geo.Index, opts ...Option) *Enricher {
	e := &Enricher{
		classifier: nlp.NewClassifier(),
		sentiments: sentiment.NewEngine(),
		geoIndex:   geoIndex,
		weights:    DefaultPriorityWeights(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich derives the full enrichment record for one ticket. It never fails:
// missing or corrupt fields degrade to defaults.
func (e *Enricher) Enrich(ctx context.Context, t model.Ticket) model.EnrichedTicket {
	segment := model.NormalizeSegment(t.Segment)
	city := CleanCity(t.City)

	category, score := e.classifier.ClassifyWithScore(t.Text)
	language := nlp.DetectLanguage(t.Text)
	polarity := e.sentiments.Analyze(t.Text)
	priority := e.priority(category, polarity, segment)

	enrichment := model.Enrichment{
		Category:  category,
		Language:  language,
		Sentiment: polarity,
		Priority:  priority,
	}

	if pt, ok := e.geoIndex.Geocode(city, t.Region); ok {
		lat, lon := pt.Lat(), pt.Lon()
		enrichment.Lat, enrichment.Lon = &lat, &lon
	}

	if insight := e.analyze(ctx, t); insight != nil {
		enrichment.Summary = insight.Summary
		enrichment.Recommendation = insight.Recommendation
	} else {
		enrichment.Summary = summary.Summarize(t.Text)
		enrichment.Recommendation = summary.Recommend(category, priority, polarity)
	}

	slog.Debug("enrich: ticket analyzed",
		"guid", t.GUID,
		"category", enrichment.Category,
		"language", enrichment.Language,
		"sentiment", enrichment.Sentiment,
		"priority", enrichment.Priority,
		"classifier_score", score,
	)

	return model.EnrichedTicket{Ticket: t, Enrichment: enrichment, Segment: segment}
}

func (e *Enricher) analyze(ctx context.Context, t model.Ticket) *llm.Insight {
	if e.analyzer == nil || strings.TrimSpace(t.Text) == "" {
		return nil
	}
	start := time.Now()
	insight, err := e.analyzer.Analyze(ctx, t.Text)
	if e.observer != nil {
		e.observer.RecordLLMRequest(time.Since(start), err == nil)
	}
	if err != nil {
		// Transient by contract: the deterministic fallback takes over.
		return nil
	}
	return insight
}

// priority computes the additive score, clamped to [1, 10].
func (e *Enricher) priority(category model.Category, polarity model.Sentiment, segment string) int {
	score := e.weights.Base
	if _, ok := highPriorityCategories[category]; ok {
		score += e.weights.HighCategoryBonus
	}
	if polarity == model.SentimentNegative {
		score += e.weights.NegativeBonus
	}
	if model.RequiresVIP(segment) {
		score += e.weights.VIPSegmentBonus
	}
	return clamp(score, priorityMin, priorityMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CleanCity reduces a raw city string to a geocodable form: the part before
// any '/', '|' or '\', parenthesised fragments removed, placeholder
// literals treated as empty.
func CleanCity(raw string) string {
	s := raw
	if idx := strings.IndexAny(s, `/|\`); idx >= 0 {
		s = s[:idx]
	}
	for {
		open := strings.Index(s, "(")
		if open < 0 {
			break
		}
		closing := strings.Index(s[open:], ")")
		if closing < 0 {
			s = s[:open]
			break
		}
		s = s[:open] + s[open+closing+1:]
	}
	s = strings.TrimSpace(s)
	if model.IsMissing(s) {
		return ""
	}
	return s
}
