// Package router assigns enriched tickets to managers: home-office
// selection from ticket geography, hierarchical skill filtering, weighted
// round-robin balancing, nearest-office fallback and explicit escalation.
package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/qazfin/fireroute/engine/geo"
	"github.com/qazfin/fireroute/engine/model"
)

// EscalationReasonNoManager is recorded in the trace when every
// office-pass combination came up empty.
const EscalationReasonNoManager = "no_suitable_manager_in_home_office"

// Config carries the routing knobs.
type Config struct {
	// RRSpreadThreshold: when max(load)-min(load) of a candidate pool
	// exceeds this, round-robin is bypassed in favour of the strictly
	// least-loaded agent.
	RRSpreadThreshold int
	// FallbackCapitals is the ordered office pair used for the 50/50 and
	// coordinate-less fallback paths. Resolved against actual office
	// names by substring when possible.
	FallbackCapitals [2]string
}

// DefaultConfig returns the production routing configuration.
func DefaultConfig() Config {
	return Config{
		RRSpreadThreshold: 3,
		FallbackCapitals:  [2]string{"Астана", "Алматы"},
	}
}

// agent is a manager with routing pre-computation applied.
type agent struct {
	name   string
	office string
	skills model.SkillSet
	chief  bool
	load   int
}

type rrKey struct {
	office   string
	language model.Language
}

// Router owns the mutable routing state for one pipeline run: manager
// loads and round-robin counters. Assign must be called from a single
// goroutine.
type Router struct {
	geoIndex *geo.Index
	cfg      Config

	offices      []model.Office
	officeCoords map[string]orb.Point
	byOffice     map[string][]*agent

	capitals   [2]string
	rrCounters map[rrKey]int
	fiftyFifty int
}

// New pre-computes the routing indexes. Duplicate manager names are
// dropped (first occurrence wins) and corrupt loads coerced to zero.
func New(geoIndex *geo.Index, managers []model.Manager, offices []model.Office, cfg Config) *Router {
	if cfg.RRSpreadThreshold <= 0 {
		cfg.RRSpreadThreshold = DefaultConfig().RRSpreadThreshold
	}
	if cfg.FallbackCapitals[0] == "" || cfg.FallbackCapitals[1] == "" {
		cfg.FallbackCapitals = DefaultConfig().FallbackCapitals
	}

	r := &Router{
		geoIndex:     geoIndex,
		cfg:          cfg,
		offices:      offices,
		officeCoords: make(map[string]orb.Point, len(offices)),
		byOffice:     make(map[string][]*agent),
		rrCounters:   make(map[rrKey]int),
	}

	for _, office := range offices {
		if pt, ok := geoIndex.OfficeCoords(office); ok {
			r.officeCoords[office.Name] = pt
		}
	}

	seen := make(map[string]struct{}, len(managers))
	for _, m := range managers {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			slog.Warn("router: duplicate manager name, keeping first occurrence", "name", name)
			continue
		}
		seen[name] = struct{}{}

		load := m.Load
		if load < 0 {
			load = 0
		}
		office := strings.TrimSpace(m.Office)
		r.byOffice[office] = append(r.byOffice[office], &agent{
			name:   name,
			office: office,
			skills: m.Skills,
			chief:  model.IsChiefPosition(m.Position),
			load:   load,
		})
	}

	r.capitals = [2]string{
		r.findOffice(strings.ToLower(cfg.FallbackCapitals[0]), cfg.FallbackCapitals[0]),
		r.findOffice(strings.ToLower(cfg.FallbackCapitals[1]), cfg.FallbackCapitals[1]),
	}
	return r
}

// findOffice resolves a capital by substring over actual office names,
// falling back to the configured literal.
func (r *Router) findOffice(pattern, fallback string) string {
	for _, office := range r.offices {
		if strings.Contains(strings.ToLower(office.Name), pattern) {
			return office.Name
		}
	}
	return fallback
}

// Loads returns the current manager load snapshot, for reporting.
func (r *Router) Loads() map[string]int {
	loads := make(map[string]int)
	for _, pool := range r.byOffice {
		for _, a := range pool {
			loads[a.name] = a.load
		}
	}
	return loads
}

// Assign routes one enriched ticket. It always produces an assignment; the
// only failure surface is the escalation sentinel.
func (r *Router) Assign(et model.EnrichedTicket) model.Assignment {
	start := time.Now()

	office, reason, distance, origin, originKnown := r.homeOffice(et)

	trace := model.Trace{
		Office:       office,
		OfficeReason: reason,
		DistanceKM:   distance,
		InitialPool:  len(r.byOffice[office]),
	}

	need := requirementsFor(et)
	pool := r.filterWithTrace(r.byOffice[office], need, &trace)

	assignment := model.Assignment{
		GUID:         et.Ticket.GUID,
		Enrichment:   et.Enrichment,
		Office:       office,
		OfficeReason: reason,
		DistanceKM:   distance,
	}

	if len(pool) == 0 {
		pool = r.redirect(need, office, origin, originKnown, &assignment, &trace)
	}

	if len(pool) == 0 {
		trace.Escalation = true
		trace.EscalationReason = EscalationReasonNoManager
		trace.Selected = model.EscalationSentinel
		trace.RoutingMs = time.Since(start).Milliseconds()
		assignment.Manager = model.EscalationSentinel
		assignment.Trace = trace
		slog.Warn("router: escalation", "guid", et.Ticket.GUID, "office", office)
		return assignment
	}

	chosen := r.pick(pool, assignment.Office, et.Enrichment.Language, &trace)
	chosen.load++

	trace.Selected = chosen.name
	trace.RoutingMs = time.Since(start).Milliseconds()
	assignment.Manager = chosen.name
	assignment.Trace = trace
	return assignment
}

// requirements captures which filters are mandatory for a ticket.
type requirements struct {
	vip      bool
	chief    bool
	language model.Language // empty when no language skill required
}

func requirementsFor(et model.EnrichedTicket) requirements {
	need := requirements{
		vip:   model.RequiresVIP(et.Segment),
		chief: et.Enrichment.Category == model.CategoryChangeOfData,
	}
	if model.RequiresLanguageSkill(et.Enrichment.Language) {
		need.language = et.Enrichment.Language
	}
	return need
}

// filterWithTrace applies the required filters in order, recording the
// pool size after each applied step.
func (r *Router) filterWithTrace(pool []*agent, need requirements, trace *model.Trace) []*agent {
	subset := pool
	if need.vip {
		subset = filter(subset, hasVIP)
		n := len(subset)
		trace.AfterVIP = &n
	}
	if need.chief {
		subset = filter(subset, isChief)
		n := len(subset)
		trace.AfterChief = &n
	}
	if need.language != "" {
		subset = filter(subset, hasLanguage(need.language))
		n := len(subset)
		trace.AfterLang = &n
	}
	return subset
}

// homeOffice selects the office from ticket geography alone. Returns the
// origin point used for distance ranking when one is known.
func (r *Router) homeOffice(et model.EnrichedTicket) (string, model.OfficeReason, *float64, orb.Point, bool) {
	// 1) Explicit coordinates on the ticket.
	if et.Ticket.HasCoords() {
		origin := orb.Point{*et.Ticket.Lon, *et.Ticket.Lat}
		if nearest, km, ok := r.nearestOffice(origin); ok {
			d := geo.Round2(km)
			return nearest, model.ReasonByCoords, &d, origin, true
		}
	}

	// 2) Geocoded city. The enricher already resolved it when possible.
	if et.Enrichment.Lat != nil && et.Enrichment.Lon != nil {
		origin := orb.Point{*et.Enrichment.Lon, *et.Enrichment.Lat}
		if nearest, km, ok := r.nearestOffice(origin); ok {
			d := geo.Round2(km)
			return nearest, model.ReasonByDistance, &d, origin, true
		}
	}

	// 3) Office name substring match against the city string.
	cityNorm := geo.Normalize(et.Ticket.City)
	if cityNorm != "" {
		for _, office := range r.offices {
			officeNorm := geo.Normalize(office.Name)
			if officeNorm == "" {
				continue
			}
			if strings.Contains(cityNorm, officeNorm) || strings.Contains(officeNorm, cityNorm) {
				return office.Name, model.ReasonByMatch, nil, orb.Point{}, false
			}
		}
	}

	// 4) Clearly non-domestic tickets alternate between the capitals.
	country := strings.ToLower(strings.TrimSpace(et.Ticket.Country))
	domestic := strings.Contains(country, "kaz") || strings.Contains(country, "каз")
	unknown := model.IsMissing(country)
	if !domestic && !unknown {
		office := r.capitals[r.fiftyFifty%2]
		r.fiftyFifty++
		return office, model.ReasonFiftyFifty, nil, orb.Point{}, false
	}

	// 5) Everything else lands on the first capital.
	return r.capitals[0], model.ReasonDefault, nil, orb.Point{}, false
}

func (r *Router) nearestOffice(from orb.Point) (string, float64, bool) {
	ranked := r.geoIndex.RankOfficesByDistance(from, r.offices)
	if len(ranked) == 0 {
		return "", 0, false
	}
	return ranked[0].Name, ranked[0].KM, true
}
