package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazfin/fireroute/engine/geo"
	"github.com/qazfin/fireroute/engine/llm"
	"github.com/qazfin/fireroute/engine/model"
)

type stubAnalyzer struct {
	insight *llm.Insight
	err     error
	calls   int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string) (*llm.Insight, error) {
	s.calls++
	return s.insight, s.err
}

func TestEnrichFraudVIP(t *testing.T) {
	e := New(geo.NewIndex())

	et := e.Enrich(context.Background(), model.Ticket{
		GUID:    "t-1",
		Text:    "Мошенники украли деньги со счёта без моего ведома",
		City:    "Алматы",
		Country: "Казахстан",
		Segment: "VIP",
	})

	assert.Equal(t, model.CategoryFraud, et.Enrichment.Category)
	assert.Equal(t, model.SentimentNegative, et.Enrichment.Sentiment)
	assert.Equal(t, model.LanguageRU, et.Enrichment.Language)
	// 5 + 3 (fraud) + 2 (negative) + 2 (VIP), clamped to 10.
	assert.Equal(t, 10, et.Enrichment.Priority)
	assert.Equal(t, model.SegmentVIP, et.Segment)
	require.NotNil(t, et.Enrichment.Lat)
	assert.InDelta(t, 43.2389, *et.Enrichment.Lat, 1e-6)
	assert.NotEmpty(t, et.Enrichment.Summary)
	assert.Contains(t, et.Enrichment.Recommendation, "службу безопасности")
}

func TestEnrichEmptyBodyDefaults(t *testing.T) {
	e := New(geo.NewIndex())

	et := e.Enrich(context.Background(), model.Ticket{GUID: "t-2"})

	assert.Equal(t, model.CategoryConsultation, et.Enrichment.Category)
	assert.Equal(t, model.LanguageRU, et.Enrichment.Language)
	assert.Equal(t, model.SentimentNeutral, et.Enrichment.Sentiment)
	assert.Equal(t, 5, et.Enrichment.Priority)
	assert.Empty(t, et.Enrichment.Summary)
	assert.Nil(t, et.Enrichment.Lat)
}

func TestEnrichEmptyBodyKeepsSegmentBonus(t *testing.T) {
	e := New(geo.NewIndex())

	et := e.Enrich(context.Background(), model.Ticket{GUID: "t-3", Segment: "вип"})
	assert.Equal(t, model.SegmentVIP, et.Segment)
	assert.Equal(t, 7, et.Enrichment.Priority)
}

func TestEnrichUsesLLMInsight(t *testing.T) {
	stub := &stubAnalyzer{insight: &llm.Insight{Summary: "Краткое содержание", Recommendation: "Действие"}}
	e := New(geo.NewIndex(), WithAnalyzer(stub))

	et := e.Enrich(context.Background(), model.Ticket{GUID: "t-4", Text: "Подскажите, есть вопрос по тарифам"})

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "Краткое содержание", et.Enrichment.Summary)
	assert.Equal(t, "Действие", et.Enrichment.Recommendation)
}

func TestEnrichFallsBackWhenLLMFails(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("timeout")}
	e := New(geo.NewIndex(), WithAnalyzer(stub))

	et := e.Enrich(context.Background(), model.Ticket{GUID: "t-5", Text: "Приложение не работает. Помогите восстановить доступ."})

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "Приложение не работает. Помогите восстановить доступ.", et.Enrichment.Summary)
	assert.NotEmpty(t, et.Enrichment.Recommendation)
}

func TestEnrichSkipsLLMForEmptyBody(t *testing.T) {
	stub := &stubAnalyzer{insight: &llm.Insight{Summary: "s", Recommendation: "r"}}
	e := New(geo.NewIndex(), WithAnalyzer(stub))

	e.Enrich(context.Background(), model.Ticket{GUID: "t-6", Text: "   "})
	assert.Zero(t, stub.calls)
}

type stubObserver struct {
	calls     int
	successes int
}

func (s *stubObserver) RecordLLMRequest(_ time.Duration, success bool) {
	s.calls++
	if success {
		s.successes++
	}
}

func TestEnrichReportsLLMOutcome(t *testing.T) {
	obs := &stubObserver{}
	stub := &stubAnalyzer{insight: &llm.Insight{Summary: "s", Recommendation: "r"}}
	e := New(geo.NewIndex(), WithAnalyzer(stub), WithLLMObserver(obs))

	e.Enrich(context.Background(), model.Ticket{GUID: "t-7", Text: "Вопрос по тарифам"})
	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, 1, obs.successes)

	failing := &stubAnalyzer{err: errors.New("timeout")}
	e = New(geo.NewIndex(), WithAnalyzer(failing), WithLLMObserver(obs))

	e.Enrich(context.Background(), model.Ticket{GUID: "t-8", Text: "Вопрос по тарифам"})
	assert.Equal(t, 2, obs.calls)
	assert.Equal(t, 1, obs.successes)
}

func TestPriorityWeightsConfigurable(t *testing.T) {
	e := New(geo.NewIndex(), WithPriorityWeights(PriorityWeights{Base: 1, HighCategoryBonus: 9, NegativeBonus: 9, VIPSegmentBonus: 9}))

	et := e.Enrich(context.Background(), model.Ticket{Text: "Мошенники украли деньги", Segment: "VIP"})
	assert.Equal(t, 10, et.Enrichment.Priority, "must clamp to upper bound")
}

func TestCleanCity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Алматы", "Алматы"},
		{"Алматы/Медеуский район", "Алматы"},
		{`Астана\Есиль`, "Астана"},
		{"Орал|ЗКО", "Орал"},
		{"Караганда (центр)", "Караганда"},
		{"NULL", ""},
		{"nan", ""},
		{"none", ""},
		{"-", ""},
		{"", ""},
		{"  Тараз  ", "Тараз"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CleanCity(tc.in), "input %q", tc.in)
	}
}
