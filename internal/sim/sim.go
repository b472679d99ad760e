// Package sim generates random deliveries for demos and tests.
package sim

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/model"
)

// Outcome is a delivery with its relative likelihood.
type Outcome struct {
	Event  model.BallEvent
	Weight float64
}

// DefaultOutcomes is a rough distribution for a short-format gully match.
var DefaultOutcomes = []Outcome{
	{Event: model.BallEvent{Kind: model.KindRun, Value: 0}, Weight: 30},
	{Event: model.BallEvent{Kind: model.KindRun, Value: 1}, Weight: 28},
	{Event: model.BallEvent{Kind: model.KindRun, Value: 2}, Weight: 10},
	{Event: model.BallEvent{Kind: model.KindRun, Value: 3}, Weight: 2},
	{Event: model.BallEvent{Kind: model.KindRun, Value: 4}, Weight: 10},
	{Event: model.BallEvent{Kind: model.KindRun, Value: 6}, Weight: 5},
	{Event: model.BallEvent{Kind: model.KindWicket}, Weight: 6},
	{Event: model.BallEvent{Kind: model.KindWide}, Weight: 4},
	{Event: model.BallEvent{Kind: model.KindWide, Value: 1}, Weight: 1},
	{Event: model.BallEvent{Kind: model.KindNoBall}, Weight: 2},
	{Event: model.BallEvent{Kind: model.KindNoBall, Value: 4}, Weight: 1},
}

// Generator produces weighted random deliveries.
type Generator struct {
	rnd      *rand.Rand
	outcomes []Outcome
	total    float64
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed and DefaultOutcomes.
func NewSeeded(seed int64) *Generator {
	return NewWithOutcomes(seed, DefaultOutcomes)
}

// NewWithOutcomes returns a Generator over a custom distribution. Outcomes
// with a non-positive weight are never chosen.
func NewWithOutcomes(seed int64, outcomes []Outcome) *Generator {
	g := &Generator{rnd: rand.New(rand.NewSource(seed))}
	for _, o := range outcomes {
		if o.Weight <= 0 {
			continue
		}
		g.outcomes = append(g.outcomes, o)
		g.total += o.Weight
	}
	return g
}

// Next picks one delivery.
func (g *Generator) Next() model.BallEvent {
	if len(g.outcomes) == 0 {
		return model.BallEvent{Kind: model.KindRun}
	}
	r := g.rnd.Float64() * g.total
	acc := 0.0
	for _, o := range g.outcomes {
		acc += o.Weight
		if r <= acc {
			return o.Event
		}
	}
	return g.outcomes[len(g.outcomes)-1].Event
}

// Sequence returns count deliveries.
func (g *Generator) Sequence(count int) []model.BallEvent {
	events := make([]model.BallEvent, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, g.Next())
	}
	return events
}

// PlayMatch starts a match from setup and bowls deliveries until it ends.
// Every intermediate snapshot is passed to observe when it is non-nil.
func (g *Generator) PlayMatch(setup model.MatchSetup, observe func(model.BallEvent, model.Match)) model.Match {
	m := engine.StartMatch(setup)
	// Each innings ends after at most OversLimit*6 legal balls; the bound
	// only matters for distributions made entirely of extras.
	limit := 2 * (m.OversLimit*engine.BallsPerOver + 1) * 50
	for i := 0; i < limit && !m.Ended; i++ {
		ev := g.Next()
		m = engine.RecordBall(m, ev)
		if observe != nil {
			observe(ev, m)
		}
	}
	if !m.Ended {
		m = engine.EndMatch(m)
	}
	return m
}
