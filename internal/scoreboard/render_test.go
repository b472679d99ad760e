package scoreboard

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/model"
)

func runs(m model.Match, values ...int) model.Match {
	for _, v := range values {
		m = engine.RecordBall(m, model.BallEvent{Kind: model.KindRun, Value: v})
	}
	return m
}

func containsAll(t *testing.T, haystack string, needles ...string) {
	t.Helper()
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			t.Fatalf("output missing %q:\n%s", needle, haystack)
		}
	}
}

func TestRenderScoreboardNotStarted(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderScoreboard(&buf, engine.DefaultMatch()); err != nil {
		t.Fatalf("render: %v", err)
	}
	containsAll(t, buf.String(), "No match in progress", "--overs 5")
}

func TestRenderScoreboardFirstInnings(t *testing.T) {
	m := engine.StartMatch(model.MatchSetup{TeamA: "Lions", TeamB: "Tigers", Overs: 3})
	m = runs(m, 4, 0, 1, 6, 2, 1, 1)
	m = engine.RecordBall(m, model.BallEvent{Kind: model.KindWicket})

	var buf bytes.Buffer
	if err := RenderScoreboard(&buf, m); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	containsAll(t, out,
		"3 Over Match · Innings 1",
		"Lions vs Tigers",
		"Score: 15/1  Overs: 1.2/3",
		"Over 1   4 0 1 6 2 1",
		"*Over 2  1 W",
		"Runs per over:",
	)
	if strings.Contains(out, "Target") || strings.Contains(out, "Result") {
		t.Fatalf("unexpected chase or result lines:\n%s", out)
	}
}

func TestRenderScoreboardChaseAndResult(t *testing.T) {
	m := engine.StartMatch(model.MatchSetup{TeamA: "A", TeamB: "B", Overs: 1})
	m = runs(m, 1, 1, 1, 1, 1, 1)
	m = runs(m, 2)

	var buf bytes.Buffer
	if err := RenderScoreboard(&buf, m); err != nil {
		t.Fatalf("render: %v", err)
	}
	containsAll(t, buf.String(), "Innings 2", "B vs A", "Target: 7  Need 5 from 5 balls  RRR: 6.00")

	m = runs(m, 6)
	buf.Reset()
	if err := RenderScoreboard(&buf, m); err != nil {
		t.Fatalf("render: %v", err)
	}
	containsAll(t, buf.String(),
		"Result: B won by 10 wickets.",
		"First innings: A 6/0 (1.0 ov)",
		"Second innings: B 8/0 (0.2 ov)",
	)
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	containsAll(t, buf.String(), "No finished matches yet.")

	buf.Reset()
	records := []model.MatchRecord{
		{TeamA: "Lions", TeamB: "Tigers", OversLimit: 5, FirstRuns: 52, FirstWkts: 3, FirstBalls: 30, SecondRuns: 40, SecondWkts: 10, SecondBalls: 27, Innings: 2, Result: "Lions won by 12 runs.", EndedAt: time.Now()},
		{TeamA: "A", TeamB: "B", OversLimit: 2, FirstRuns: 9, FirstWkts: 1, FirstBalls: 4, Innings: 1, Result: "A scored 9/1 in 0.4 overs.", EndedAt: time.Now()},
	}
	if err := RenderHistory(&buf, records); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	containsAll(t, out, "Lions v Tigers", "52/3 (5.0)", "40/10 (4.3)", "Lions won by 12 runs.", "A scored 9/1")
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	if got := Sparkline([]float64{0, 18}); got != " @" {
		t.Fatalf("expected min/max sparkline, got %q", got)
	}
}

func TestWormSeries(t *testing.T) {
	m := engine.StartMatch(model.MatchSetup{TeamA: "A", TeamB: "B", Overs: 2})
	m = runs(m, 1, 1, 1, 1, 1, 1, 4, 4, 4, 4, 4, 4)
	m = runs(m, 6, 6)

	series := WormSeries(m)
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	want := []float64{0, 6, 30}
	for i, v := range want {
		if series[0].Values[i] != v {
			t.Fatalf("unexpected first innings worm: %v", series[0].Values)
		}
	}
	if series[1].Name != "B" || len(series[1].Values) != 2 || series[1].Values[1] != 12 {
		t.Fatalf("unexpected second innings worm: %+v", series[1])
	}
}

func TestPlotWorm(t *testing.T) {
	m := engine.StartMatch(model.MatchSetup{TeamA: "A", TeamB: "B", Overs: 2})
	m = runs(m, 1, 1, 1, 1, 1, 1, 4, 4, 4, 4, 4, 4)
	m = runs(m, 6, 6, 6)

	var buf bytes.Buffer
	if err := PlotWorm(&buf, m, 20, 4, false); err != nil {
		t.Fatalf("plot worm: %v", err)
	}
	out := buf.String()
	containsAll(t, out, "Worm (runs by over)", "Legend:", "A 30 (solid)", "B 18 (dashed)")
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes when writing to a buffer")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "30 │ ") || !strings.HasPrefix(lines[4], " 0 │ ") {
		t.Fatalf("unexpected axis labels:\n%s", out)
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-3-3 {
		t.Fatalf("expected 74, got %d", got)
	}
	if got := PlotWidthFor(0); got != minWormWidth {
		t.Fatalf("expected min width, got %d", got)
	}
}
