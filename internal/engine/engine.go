// Package engine implements the match scoring state machine.
//
// Every transition takes a Match snapshot and returns the next one. Inputs
// are never modified: the innings being scored is copied before it changes
// and untouched innings are shared between snapshots. Transitions that do not
// apply (match not started, already ended, nothing to undo) return the input
// unchanged.
package engine

import (
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/gullyscore/internal/model"
)

const (
	// BallsPerOver is the number of legal deliveries in an over.
	BallsPerOver = 6
	// MaxWickets ends an innings when reached.
	MaxWickets = 10
	// DefaultOvers is used when no usable overs limit is supplied.
	DefaultOvers = 5

	defaultTeamA = "Team A"
	defaultTeamB = "Team B"
)

// DefaultMatch returns the not-started state.
func DefaultMatch() model.Match {
	return model.Match{
		OversLimit: DefaultOvers,
		TeamA:      defaultTeamA,
		TeamB:      defaultTeamB,
		Innings:    []model.Innings{},
	}
}

// StartMatch begins a new match with TeamA batting first. Blank team names
// and unusable overs limits are replaced by defaults.
func StartMatch(setup model.MatchSetup) model.Match {
	teamA := strings.TrimSpace(setup.TeamA)
	if teamA == "" {
		teamA = defaultTeamA
	}
	teamB := strings.TrimSpace(setup.TeamB)
	if teamB == "" {
		teamB = defaultTeamB
	}
	overs := setup.Overs
	if overs == 0 {
		overs = DefaultOvers
	}
	overs = max(1, overs)

	return model.Match{
		ID:         uuid.NewString(),
		Started:    true,
		OversLimit: overs,
		TeamA:      teamA,
		TeamB:      teamB,
		Innings:    []model.Innings{newInnings(teamA, teamB)},
	}
}

// RecordBall applies one delivery to the innings in play and completes the
// innings (or the match) when overs run out, the side is all out, or the
// chase is won. Unknown delivery kinds are ignored.
func RecordBall(m model.Match, ev model.BallEvent) model.Match {
	if !inPlay(m) || !ev.Kind.Valid() {
		return m
	}
	inn := cloneInnings(m.Innings[m.CurrentInnings])
	entry := entryFor(ev, inn.Balls/BallsPerOver)

	// A fresh delivery invalidates anything that was undone.
	inn.Timeline = append(inn.Timeline[:inn.Cursor], entry)
	return apply(m, inn, entry)
}

// RedoLast re-applies the most recently undone delivery.
func RedoLast(m model.Match) model.Match {
	if !inPlay(m) {
		return m
	}
	cur := m.Innings[m.CurrentInnings]
	if !cur.CanRedo() {
		return m
	}
	inn := cloneInnings(cur)
	entry := inn.Timeline[inn.Cursor]
	entry.OverIndex = inn.Balls / BallsPerOver
	inn.Timeline[inn.Cursor] = entry
	return apply(m, inn, entry)
}

// UndoLast reverses the last applied delivery of the innings in play. It
// never crosses an innings boundary and never reopens an ended match.
func UndoLast(m model.Match) model.Match {
	if !inPlay(m) {
		return m
	}
	cur := m.Innings[m.CurrentInnings]
	if cur.Cursor == 0 {
		return m
	}
	inn := cloneInnings(cur)
	inn.Cursor--
	last := inn.Timeline[inn.Cursor]

	inn.Runs -= last.RunsAdded
	if last.WicketAdded > 0 {
		inn.Wickets = max(0, inn.Wickets-1)
	}
	if last.LegalBall {
		inn.Balls = max(0, inn.Balls-1)
	}

	if last.OverIndex >= 0 && last.OverIndex < len(inn.Overs) {
		over := inn.Overs[last.OverIndex]
		if len(over) > 0 {
			over = over[:len(over)-1]
		}
		inn.Overs[last.OverIndex] = over
		if len(over) == 0 && last.OverIndex == len(inn.Overs)-1 && len(inn.Overs) > 1 {
			inn.Overs = inn.Overs[:len(inn.Overs)-1]
		}
	}

	return replaceCurrent(m, inn)
}

// SwitchInnings hands the bat to the second team before the first innings
// is complete.
func SwitchInnings(m model.Match) model.Match {
	if !inPlay(m) || m.CurrentInnings != 0 {
		return m
	}
	return startSecondInnings(m)
}

// EndMatch stops scoring regardless of the state of play.
func EndMatch(m model.Match) model.Match {
	if !m.Started || m.Ended {
		return m
	}
	m.Ended = true
	return m
}

func inPlay(m model.Match) bool {
	if !m.Started || m.Ended {
		return false
	}
	_, ok := m.Current()
	return ok
}

func entryFor(ev model.BallEvent, overIndex int) model.TimelineEntry {
	value := max(0, ev.Value)
	entry := model.TimelineEntry{OverIndex: overIndex}
	switch ev.Kind {
	case model.KindRun:
		entry.RunsAdded = value
		entry.LegalBall = true
		entry.Label = strconv.Itoa(value)
	case model.KindWicket:
		entry.LegalBall = true
		entry.WicketAdded = 1
		entry.Label = "W"
	case model.KindWide:
		entry.RunsAdded = 1 + value
		entry.Label = "Wd"
	case model.KindNoBall:
		entry.RunsAdded = 1 + value
		entry.Label = "Nb"
	}
	return entry
}

// apply adds entry (already present at inn.Timeline[inn.Cursor]) to the
// running totals and checks whether the innings is over.
func apply(m model.Match, inn model.Innings, entry model.TimelineEntry) model.Match {
	for len(inn.Overs) <= entry.OverIndex {
		inn.Overs = append(inn.Overs, []string{})
	}
	inn.Overs[entry.OverIndex] = append(inn.Overs[entry.OverIndex], entry.Label)

	inn.Runs += entry.RunsAdded
	if entry.WicketAdded > 0 {
		inn.Wickets = min(MaxWickets, inn.Wickets+1)
	}
	if entry.LegalBall {
		inn.Balls++
	}
	inn.Cursor++

	m = replaceCurrent(m, inn)
	if !inningsComplete(m, inn) {
		return m
	}
	if m.CurrentInnings == 0 {
		return startSecondInnings(m)
	}
	m.Ended = true
	return m
}

func inningsComplete(m model.Match, inn model.Innings) bool {
	if inn.Balls >= m.OversLimit*BallsPerOver {
		return true
	}
	if inn.Wickets >= MaxWickets {
		return true
	}
	if m.CurrentInnings == 1 && len(m.Innings) > 0 && inn.Runs >= m.Innings[0].Runs+1 {
		return true
	}
	return false
}

func startSecondInnings(m model.Match) model.Match {
	if len(m.Innings) < 2 {
		innings := make([]model.Innings, len(m.Innings), 2)
		copy(innings, m.Innings)
		m.Innings = append(innings, newInnings(m.TeamB, m.TeamA))
	}
	m.CurrentInnings = 1
	return m
}

func replaceCurrent(m model.Match, inn model.Innings) model.Match {
	innings := slices.Clone(m.Innings)
	innings[m.CurrentInnings] = inn
	m.Innings = innings
	return m
}

func newInnings(batting, bowling string) model.Innings {
	return model.Innings{
		BattingTeam: batting,
		BowlingTeam: bowling,
		Overs:       [][]string{{}},
		Timeline:    []model.TimelineEntry{},
	}
}

func cloneInnings(in model.Innings) model.Innings {
	out := in
	out.Overs = make([][]string, len(in.Overs))
	for i, over := range in.Overs {
		out.Overs[i] = slices.Clone(over)
		if out.Overs[i] == nil {
			out.Overs[i] = []string{}
		}
	}
	out.Timeline = slices.Clone(in.Timeline)
	if out.Timeline == nil {
		out.Timeline = []model.TimelineEntry{}
	}
	return out
}
