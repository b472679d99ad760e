// Package model defines shared data structures.
package model

import (
	"slices"
	"time"
)

// BallKind identifies what happened on a delivery.
type BallKind string

// Delivery kinds.
const (
	KindRun    BallKind = "RUN"
	KindWicket BallKind = "W"
	KindWide   BallKind = "WD"
	KindNoBall BallKind = "NB"
)

// Valid reports whether k is one of the known delivery kinds.
func (k BallKind) Valid() bool {
	switch k {
	case KindRun, KindWicket, KindWide, KindNoBall:
		return true
	}
	return false
}

// BallEvent is a single delivery as entered by the scorer. Value holds the
// runs scored off a RUN, or the extra runs taken on a wide or no-ball.
type BallEvent struct {
	Kind  BallKind `json:"type"`
	Value int      `json:"value,omitempty"`
}

// MatchSetup holds the values entered before a match starts.
type MatchSetup struct {
	TeamA string
	TeamB string
	Overs int
}

// TimelineEntry records the effect of one delivery so it can be reversed.
type TimelineEntry struct {
	OverIndex   int    `json:"overIndex"`
	Label       string `json:"label"`
	RunsAdded   int    `json:"runsAdded"`
	LegalBall   bool   `json:"legalBall"`
	WicketAdded int    `json:"wicketAdded"`
}

// Innings is one team's batting effort.
//
// Timeline is an append-only log; only Timeline[:Cursor] is applied; the
// entries past Cursor were undone and can be redone until a new delivery is
// recorded.
type Innings struct {
	BattingTeam string          `json:"battingTeam"`
	BowlingTeam string          `json:"bowlingTeam"`
	Runs        int             `json:"runs"`
	Wickets     int             `json:"wickets"`
	Balls       int             `json:"balls"`
	Overs       [][]string      `json:"overs"`
	Timeline    []TimelineEntry `json:"timeline"`
	Cursor      int             `json:"cursor"`
}

// Applied returns the part of the timeline that is currently in effect.
func (in Innings) Applied() []TimelineEntry {
	return in.Timeline[:in.Cursor]
}

// CanRedo reports whether undone entries are waiting past the cursor.
func (in Innings) CanRedo() bool {
	return in.Cursor < len(in.Timeline)
}

// Equal compares the applied state of two innings. Undone entries past the
// cursor are ignored.
func (in Innings) Equal(other Innings) bool {
	if in.BattingTeam != other.BattingTeam || in.BowlingTeam != other.BowlingTeam {
		return false
	}
	if in.Runs != other.Runs || in.Wickets != other.Wickets || in.Balls != other.Balls {
		return false
	}
	if !slices.EqualFunc(in.Overs, other.Overs, slices.Equal[[]string]) {
		return false
	}
	return slices.Equal(in.Applied(), other.Applied())
}

// Match is the root aggregate persisted between runs.
type Match struct {
	ID             string    `json:"id,omitempty"`
	Started        bool      `json:"started"`
	Ended          bool      `json:"ended"`
	OversLimit     int       `json:"oversLimit"`
	TeamA          string    `json:"teamA"`
	TeamB          string    `json:"teamB"`
	CurrentInnings int       `json:"currentInnings"`
	Innings        []Innings `json:"innings"`
}

// Current returns the innings in play, if any.
func (m Match) Current() (Innings, bool) {
	if m.CurrentInnings < 0 || m.CurrentInnings >= len(m.Innings) {
		return Innings{}, false
	}
	return m.Innings[m.CurrentInnings], true
}

// Equal compares the applied state of two matches.
func (m Match) Equal(other Match) bool {
	if m.ID != other.ID || m.Started != other.Started || m.Ended != other.Ended {
		return false
	}
	if m.OversLimit != other.OversLimit || m.TeamA != other.TeamA || m.TeamB != other.TeamB {
		return false
	}
	if m.CurrentInnings != other.CurrentInnings {
		return false
	}
	return slices.EqualFunc(m.Innings, other.Innings, Innings.Equal)
}

// MatchRecord is an archived summary of a finished match.
type MatchRecord struct {
	ID          string
	TeamA       string
	TeamB       string
	OversLimit  int
	FirstRuns   int
	FirstWkts   int
	FirstBalls  int
	SecondRuns  int
	SecondWkts  int
	SecondBalls int
	Innings     int
	Result      string
	EndedAt     time.Time
}
