package engine

import (
	"fmt"

	"github.com/verte-zerg/gullyscore/internal/model"
)

// CurrentOverIndex returns the zero-based over the next legal ball belongs to.
func CurrentOverIndex(inn model.Innings) int {
	return inn.Balls / BallsPerOver
}

// FormatOvers renders a legal-ball count as overs, e.g. 17 -> "2.5".
func FormatOvers(balls int) string {
	return fmt.Sprintf("%d.%d", balls/BallsPerOver, balls%BallsPerOver)
}

// Target returns the score the chasing side needs. It is only defined during
// the second innings.
func Target(m model.Match) (int, bool) {
	if m.CurrentInnings != 1 || len(m.Innings) == 0 {
		return 0, false
	}
	return m.Innings[0].Runs + 1, true
}

// RunsNeeded returns how many more runs the chasing side needs to win.
func RunsNeeded(m model.Match) (int, bool) {
	target, ok := Target(m)
	if !ok {
		return 0, false
	}
	inn, ok := m.Current()
	if !ok {
		return 0, false
	}
	return max(0, target-inn.Runs), true
}

// BallsRemaining returns the legal deliveries left in the innings in play.
func BallsRemaining(m model.Match) int {
	inn, ok := m.Current()
	if !ok {
		return 0
	}
	return max(0, m.OversLimit*BallsPerOver-inn.Balls)
}

// RunRate returns runs per over for an innings.
func RunRate(inn model.Innings) float64 {
	if inn.Balls == 0 {
		return 0
	}
	return float64(inn.Runs) * BallsPerOver / float64(inn.Balls)
}

// RequiredRunRate returns the runs per over the chasing side needs from the
// remaining balls.
func RequiredRunRate(m model.Match) (float64, bool) {
	needed, ok := RunsNeeded(m)
	if !ok {
		return 0, false
	}
	balls := BallsRemaining(m)
	if balls == 0 {
		return 0, true
	}
	return float64(needed) * BallsPerOver / float64(balls), true
}

// ResultText describes the outcome of an ended match.
func ResultText(m model.Match) string {
	if !m.Ended || len(m.Innings) == 0 {
		return ""
	}
	first := m.Innings[0]
	if len(m.Innings) < 2 {
		return fmt.Sprintf("%s scored %d/%d in %s overs.", first.BattingTeam, first.Runs, first.Wickets, FormatOvers(first.Balls))
	}
	second := m.Innings[1]
	switch {
	case second.Runs > first.Runs:
		inHand := MaxWickets - second.Wickets
		return fmt.Sprintf("%s won by %d %s.", second.BattingTeam, inHand, plural(inHand, "wicket"))
	case second.Runs < first.Runs:
		margin := first.Runs - second.Runs
		return fmt.Sprintf("%s won by %d %s.", first.BattingTeam, margin, plural(margin, "run"))
	default:
		return "Match tied."
	}
}

// Record summarises an ended match for the archive.
func Record(m model.Match) (model.MatchRecord, bool) {
	if !m.Ended || len(m.Innings) == 0 {
		return model.MatchRecord{}, false
	}
	rec := model.MatchRecord{
		ID:         m.ID,
		TeamA:      m.TeamA,
		TeamB:      m.TeamB,
		OversLimit: m.OversLimit,
		FirstRuns:  m.Innings[0].Runs,
		FirstWkts:  m.Innings[0].Wickets,
		FirstBalls: m.Innings[0].Balls,
		Innings:    len(m.Innings),
		Result:     ResultText(m),
	}
	if len(m.Innings) > 1 {
		rec.SecondRuns = m.Innings[1].Runs
		rec.SecondWkts = m.Innings[1].Wickets
		rec.SecondBalls = m.Innings[1].Balls
	}
	return rec, true
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// RunsPerOver returns the runs conceded in each over slot of an innings.
func RunsPerOver(inn model.Innings) []int {
	out := make([]int, len(inn.Overs))
	for _, e := range inn.Applied() {
		if e.OverIndex >= 0 && e.OverIndex < len(out) {
			out[e.OverIndex] += e.RunsAdded
		}
	}
	return out
}
