package router

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/qazfin/fireroute/engine/geo"
	"github.com/qazfin/fireroute/engine/model"
)

// pass is one relaxation step of the fallback ladder: a conjunction of the
// boolean filters still enforced at that step.
type pass struct {
	vip      bool
	chief    bool
	language bool
}

// ladder returns the relaxation passes for the given requirements, most
// strict first. The VIP-only pass exists only when VIP was required, since
// otherwise it degenerates into the "anyone" pass.
func ladder(need requirements) []pass {
	passes := []pass{
		{vip: true, chief: true, language: true},
		{vip: true, chief: true, language: false},
	}
	if need.vip {
		passes = append(passes, pass{vip: true, chief: false, language: false})
	}
	passes = append(passes, pass{})
	return passes
}

// applyPass filters a pool with the subset of required filters a pass
// still enforces.
func applyPass(pool []*agent, need requirements, p pass) []*agent {
	subset := pool
	if p.vip && need.vip {
		subset = filter(subset, hasVIP)
	}
	if p.chief && need.chief {
		subset = filter(subset, isChief)
	}
	if p.language && need.language != "" {
		subset = filter(subset, hasLanguage(need.language))
	}
	return subset
}

// redirect walks candidate offices in ascending distance from the ticket
// origin (or the capitals when the origin is unknown), running each
// relaxation pass across all offices before moving to a more lenient one.
// On success it rewrites the assignment office and reason and returns the
// non-empty pool; otherwise it returns nil and escalation follows.
func (r *Router) redirect(need requirements, homeOffice string, origin orb.Point, originKnown bool, assignment *model.Assignment, trace *model.Trace) []*agent {
	type candidate struct {
		office string
		km     *float64
	}

	var candidates []candidate
	if originKnown {
		for _, od := range r.geoIndex.RankOfficesByDistance(origin, r.offices) {
			if od.Name == homeOffice {
				continue
			}
			km := geo.Round2(od.KM)
			candidates = append(candidates, candidate{office: od.Name, km: &km})
		}
	} else {
		for _, capital := range r.capitals {
			if capital == homeOffice {
				continue
			}
			candidates = append(candidates, candidate{office: capital})
		}
	}

	for _, p := range ladder(need) {
		for _, c := range candidates {
			pool := applyPass(r.byOffice[c.office], need, p)
			if len(pool) == 0 {
				continue
			}
			assignment.Office = c.office
			assignment.OfficeReason = model.ReasonNearestOffice
			assignment.DistanceKM = c.km
			trace.Redirect = c.office
			trace.RedirectKM = c.km
			slog.Debug("router: nearest-office redirect",
				"from", homeOffice,
				"to", c.office,
				"vip", p.vip && need.vip,
				"chief", p.chief && need.chief,
				"language", p.language && need.language != "",
			)
			return pool
		}
	}
	return nil
}

func filter(pool []*agent, keep func(*agent) bool) []*agent {
	out := make([]*agent, 0, len(pool))
	for _, a := range pool {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func hasVIP(a *agent) bool {
	return a.skills.Has(model.SegmentVIP)
}

func isChief(a *agent) bool {
	return a.chief
}

func hasLanguage(lang model.Language) func(*agent) bool {
	return func(a *agent) bool {
		return a.skills.Has(string(lang))
	}
}
