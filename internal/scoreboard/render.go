package scoreboard

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// ScoreLine formats an innings as "Team 45/3 (5.2 ov)".
func ScoreLine(inn model.Innings) string {
	return fmt.Sprintf("%s %d/%d (%s ov)", inn.BattingTeam, inn.Runs, inn.Wickets, engine.FormatOvers(inn.Balls))
}

// RenderScoreboard prints the state of play, the over summary of the innings
// in play, and the result once the match has ended.
func RenderScoreboard(w io.Writer, m model.Match) error {
	if !m.Started {
		_, err := fmt.Fprintf(w, "No match in progress. Start one with: gully new --team-a %q --team-b %q --overs %d\n", m.TeamA, m.TeamB, m.OversLimit)
		return err
	}
	lines := headerLines(m)
	inn, ok := m.Current()
	if ok {
		lines = append(lines, "")
		lines = append(lines, overLines(inn)...)
	}
	if m.Ended {
		lines = append(lines, "")
		lines = append(lines, resultLines(m)...)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func headerLines(m model.Match) []string {
	inn, ok := m.Current()
	if !ok {
		return []string{fmt.Sprintf("%s vs %s", m.TeamA, m.TeamB)}
	}
	lines := []string{
		fmt.Sprintf("%d Over Match · Innings %d", m.OversLimit, m.CurrentInnings+1),
		fmt.Sprintf("%s vs %s", inn.BattingTeam, inn.BowlingTeam),
		fmt.Sprintf("Score: %d/%d  Overs: %s/%d  RR: %.2f", inn.Runs, inn.Wickets, engine.FormatOvers(inn.Balls), m.OversLimit, engine.RunRate(inn)),
	}
	if target, ok := engine.Target(m); ok {
		needed, _ := engine.RunsNeeded(m)
		rrr, _ := engine.RequiredRunRate(m)
		lines = append(lines, fmt.Sprintf("Target: %d  Need %d from %d balls  RRR: %.2f", target, needed, engine.BallsRemaining(m), rrr))
	}
	return lines
}

func overLines(inn model.Innings) []string {
	if len(inn.Overs) == 0 {
		return []string{"No overs yet."}
	}
	current := engine.CurrentOverIndex(inn)
	perOver := engine.RunsPerOver(inn)
	rows := make([][]string, 0, len(inn.Overs))
	for i, over := range inn.Overs {
		balls := strings.Join(over, " ")
		if len(over) == 0 {
			balls = "-"
		}
		marker := ""
		if i == current {
			marker = "*"
		}
		rows = append(rows, []string{marker + "Over " + strconv.Itoa(i+1), balls, strconv.Itoa(perOver[i])})
	}
	lines := formatTable([]string{"Over", "Balls", "Runs"}, rows, map[int]bool{2: true})
	if len(perOver) > 1 {
		values := make([]float64, len(perOver))
		for i, r := range perOver {
			values[i] = float64(r)
		}
		lines = append(lines, "Runs per over: "+Sparkline(values))
	}
	return lines
}

func resultLines(m model.Match) []string {
	lines := []string{"Result: " + engine.ResultText(m)}
	labels := []string{"First innings", "Second innings"}
	for i, inn := range m.Innings {
		if i >= len(labels) {
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %s", labels[i], ScoreLine(inn)))
	}
	return lines
}

// RenderHistory prints archived matches as an aligned table.
func RenderHistory(w io.Writer, records []model.MatchRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No finished matches yet.")
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		second := "-"
		if rec.Innings > 1 {
			second = fmt.Sprintf("%d/%d (%s)", rec.SecondRuns, rec.SecondWkts, engine.FormatOvers(rec.SecondBalls))
		}
		rows = append(rows, []string{
			rec.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%s v %s", rec.TeamA, rec.TeamB),
			strconv.Itoa(rec.OversLimit),
			fmt.Sprintf("%d/%d (%s)", rec.FirstRuns, rec.FirstWkts, engine.FormatOvers(rec.FirstBalls)),
			second,
			rec.Result,
		})
	}
	lines := formatTable([]string{"Ended", "Match", "Overs", "1st", "2nd", "Result"}, rows, map[int]bool{2: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
