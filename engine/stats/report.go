// Package stats builds an aggregate analysis report over routed
// assignments: category, language and office breakdowns, manager load
// fairness, and keywords from negative tickets.
package stats

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/qazfin/fireroute/engine/model"
)

var ruStop = map[string]struct{}{}
var enStop = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"и в во на но а я мы вы он она они это то же как что чтобы к ко с со за " +
			"у от до по из или ли не нет да ну при для про над под там тут здесь " +
			"меня мне мой моя мои ваш ваша ваши " +
			"пожалуйста здравствуйте добрый день вечер привет") {
		ruStop[w] = struct{}{}
	}
	for _, w := range strings.Fields(
		"the a an and or to in on at for of with " +
			"i you we they he she it is are was were " +
			"my your our their please hello hi") {
		enStop[w] = struct{}{}
	}
}

var wordRe = regexp.MustCompile(`[a-zа-яё0-9]+`)

// Tokenize lowercases the text and keeps words longer than two runes
// that are not stopwords.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(w)) <= 2 {
			continue
		}
		if _, ok := ruStop[w]; ok {
			continue
		}
		if _, ok := enStop[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Gini computes the Gini coefficient of a load distribution. Zero means
// perfectly even; values approach one as the load concentrates.
func Gini(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	vals := make([]int, 0, len(values))
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		vals = append(vals, v)
	}
	sort.Ints(vals)

	n := len(vals)
	var sum, cum int
	for i, v := range vals {
		sum += v
		cum += (i + 1) * v
	}
	if sum == 0 {
		return 0
	}
	return float64(2*cum)/float64(n*sum) - float64(n+1)/float64(n)
}

// Block is one aggregation bucket.
type Block struct {
	Count             int     `json:"count"`
	Escalations       int     `json:"escalations"`
	EscalationRatePct float64 `json:"escalation_rate_pct"`
	AvgPriority       float64 `json:"avg_priority"`
}

// Fairness summarises the manager load distribution.
type Fairness struct {
	ManagersWithTickets int     `json:"managers_with_tickets"`
	Min                 int     `json:"min"`
	Max                 int     `json:"max"`
	Avg                 float64 `json:"avg"`
	Std                 float64 `json:"std"`
	Gini                float64 `json:"gini"`
}

// WordCount is one entry in the negative-keyword top list.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Totals holds the headline numbers.
type Totals struct {
	Tickets           int     `json:"tickets"`
	Escalations       int     `json:"escalations"`
	EscalationRatePct float64 `json:"escalation_rate_pct"`
	AvgPriority       float64 `json:"avg_priority"`
}

// Geo holds office-selection aggregates.
type Geo struct {
	OfficeReason  map[string]Block `json:"office_reason"`
	AvgDistanceKM *float64         `json:"avg_distance_km_when_by_distance"`
}

// Managers holds per-manager load data.
type Managers struct {
	LoadCounts map[string]int `json:"load_counts"`
	Fairness   Fairness       `json:"fairness"`
}

// NegInsights holds keyword analysis of negative tickets.
type NegInsights struct {
	TopWords []WordCount `json:"top_words"`
}

// Report is the full analysis document.
type Report struct {
	Source      string           `json:"source"`
	Totals      Totals           `json:"totals"`
	ByOffice    map[string]Block `json:"by_office"`
	ByType      map[string]Block `json:"by_type"`
	ByLang      map[string]Block `json:"by_lang"`
	BySentiment map[string]Block `json:"by_sentiment"`
	ByPriority  map[string]int   `json:"by_priority"`
	Geo         Geo              `json:"geo"`
	Managers    Managers         `json:"managers"`
	NegInsights NegInsights      `json:"neg_insights"`
}

// topWordsLimit bounds the negative-keyword list.
const topWordsLimit = 30

// Build computes the full report over a batch of assignments.
func Build(assignments []model.Assignment, source string) Report {
	r := Report{
		Source:      source,
		ByOffice:    map[string]Block{},
		ByType:      map[string]Block{},
		ByLang:      map[string]Block{},
		BySentiment: map[string]Block{},
		ByPriority:  map[string]int{},
		Geo:         Geo{OfficeReason: map[string]Block{}},
		Managers:    Managers{LoadCounts: map[string]int{}},
	}

	type bucket struct {
		count       int
		escalations int
		prioritySum int
	}
	collect := func(m map[string]*bucket, key string, a model.Assignment) {
		b := m[key]
		if b == nil {
			b = &bucket{}
			m[key] = b
		}
		b.count++
		if a.Escalated() {
			b.escalations++
		}
		b.prioritySum += a.Enrichment.Priority
	}
	finish := func(m map[string]*bucket) map[string]Block {
		out := make(map[string]Block, len(m))
		for k, b := range m {
			out[k] = Block{
				Count:             b.count,
				Escalations:       b.escalations,
				EscalationRatePct: round(float64(b.escalations)/float64(b.count)*100, 2),
				AvgPriority:       round(float64(b.prioritySum)/float64(b.count), 2),
			}
		}
		return out
	}

	byOffice := map[string]*bucket{}
	byType := map[string]*bucket{}
	byLang := map[string]*bucket{}
	bySentiment := map[string]*bucket{}
	byReason := map[string]*bucket{}

	var escalations, prioritySum int
	var distSum float64
	var distCount int
	negTokens := map[string]int{}

	for _, a := range assignments {
		if a.Escalated() {
			escalations++
		} else {
			r.Managers.LoadCounts[a.Manager]++
		}
		prioritySum += a.Enrichment.Priority
		r.ByPriority[strconv.Itoa(a.Enrichment.Priority)]++

		collect(byOffice, a.Office, a)
		collect(byType, string(a.Enrichment.Category), a)
		collect(byLang, string(a.Enrichment.Language), a)
		collect(bySentiment, string(a.Enrichment.Sentiment), a)
		collect(byReason, string(a.OfficeReason), a)

		if a.OfficeReason == model.ReasonByDistance && a.DistanceKM != nil {
			distSum += *a.DistanceKM
			distCount++
		}

		if a.Enrichment.Sentiment == model.SentimentNegative {
			for _, w := range Tokenize(a.Enrichment.Summary) {
				negTokens[w]++
			}
		}
	}

	total := len(assignments)
	r.Totals = Totals{Tickets: total, Escalations: escalations}
	if total > 0 {
		r.Totals.EscalationRatePct = round(float64(escalations)/float64(total)*100, 2)
		r.Totals.AvgPriority = round(float64(prioritySum)/float64(total), 2)
	}

	r.ByOffice = finish(byOffice)
	r.ByType = finish(byType)
	r.ByLang = finish(byLang)
	r.BySentiment = finish(bySentiment)
	r.Geo.OfficeReason = finish(byReason)
	if distCount > 0 {
		avg := round(distSum/float64(distCount), 2)
		r.Geo.AvgDistanceKM = &avg
	}

	r.Managers.Fairness = fairness(r.Managers.LoadCounts)
	r.NegInsights.TopWords = topWords(negTokens, topWordsLimit)
	return r
}

func fairness(loadCounts map[string]int) Fairness {
	loads := make([]int, 0, len(loadCounts))
	for _, v := range loadCounts {
		loads = append(loads, v)
	}
	f := Fairness{ManagersWithTickets: len(loads), Gini: round(Gini(loads), 4)}
	if len(loads) == 0 {
		return f
	}

	f.Min, f.Max = loads[0], loads[0]
	var sum int
	for _, v := range loads {
		if v < f.Min {
			f.Min = v
		}
		if v > f.Max {
			f.Max = v
		}
		sum += v
	}
	avg := float64(sum) / float64(len(loads))
	f.Avg = round(avg, 3)

	var variance float64
	for _, v := range loads {
		d := float64(v) - avg
		variance += d * d
	}
	f.Std = round(math.Sqrt(variance/float64(len(loads))), 3)
	return f
}

// topWords returns the most frequent tokens, ties broken alphabetically.
func topWords(counts map[string]int, limit int) []WordCount {
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
