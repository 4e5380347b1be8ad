package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazfin/fireroute/engine/enrich"
	"github.com/qazfin/fireroute/engine/geo"
	"github.com/qazfin/fireroute/engine/model"
	"github.com/qazfin/fireroute/engine/router"
)

func newTestPipeline(opts ...Option) *Pipeline {
	idx := geo.NewIndex()
	managers := []model.Manager{
		{Name: "A1", Position: "специалист", Office: "Астана", Skills: model.SkillSet{}, Load: 0},
		{Name: "A2", Position: "специалист", Office: "Астана", Skills: model.SkillSet{}, Load: 0},
	}
	offices := []model.Office{{Name: "Астана"}, {Name: "Алматы"}}
	rtr := router.New(idx, managers, offices, router.DefaultConfig())
	return New(enrich.New(idx), rtr, opts...)
}

func TestRunPreservesInputOrder(t *testing.T) {
	p := newTestPipeline(WithWorkers(4))

	var tickets []model.Ticket
	for i := 0; i < 40; i++ {
		tickets = append(tickets, model.Ticket{
			GUID:    fmt.Sprintf("t%02d", i),
			Text:    "Подскажите, как получить справку?",
			City:    "Астана",
			Country: "Казахстан",
			Segment: "MASS",
		})
	}

	assignments, err := p.Run(context.Background(), tickets)
	require.NoError(t, err)
	require.Len(t, assignments, len(tickets))
	for i, a := range assignments {
		assert.Equal(t, tickets[i].GUID, a.GUID)
	}
}

func TestRunRoutesSequentially(t *testing.T) {
	p := newTestPipeline()

	tickets := []model.Ticket{
		{GUID: "a", Text: "вопрос по карте", City: "Астана", Country: "Казахстан", Segment: "MASS"},
		{GUID: "b", Text: "вопрос по карте", City: "Астана", Country: "Казахстан", Segment: "MASS"},
	}

	assignments, err := p.Run(context.Background(), tickets)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	// Both managers start at load zero, so sequential round-robin must
	// spread the two tickets over both of them.
	assert.NotEqual(t, assignments[0].Manager, assignments[1].Manager)
}

func TestRunCancelledContext(t *testing.T) {
	p := newTestPipeline()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, []model.Ticket{{GUID: "x", Text: "тест"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyInput(t *testing.T) {
	p := newTestPipeline()

	assignments, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestRunIsDeterministicAcrossRuns(t *testing.T) {
	tickets := []model.Ticket{
		{GUID: "a", Text: "вопрос по карте", City: "Астана", Country: "Казахстан", Segment: "MASS"},
		{GUID: "b", Text: "перевод не прошел", City: "Алматы", Country: "Казахстан", Segment: "VIP"},
		{GUID: "c", Text: "how do I open an account", City: "Бостон", Country: "USA", Segment: "MASS"},
		{GUID: "d", Text: "мошенники списали деньги", City: "Караганда", Country: "Казахстан", Segment: "MASS"},
	}

	first, err := newTestPipeline(WithWorkers(4)).Run(context.Background(), tickets)
	require.NoError(t, err)
	second, err := newTestPipeline(WithWorkers(4)).Run(context.Background(), tickets)
	require.NoError(t, err)

	// Timing is the only field allowed to differ between runs.
	for i := range first {
		first[i].Trace.RoutingMs = 0
		second[i].Trace.RoutingMs = 0
	}
	assert.Equal(t, first, second)
}

func TestWorkerOptionIgnoresNonPositive(t *testing.T) {
	p := newTestPipeline(WithWorkers(0))
	assert.Equal(t, DefaultWorkers, p.workers)
}
