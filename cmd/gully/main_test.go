package main

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/gullyscore/internal/config"
	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/store"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(t.TempDir(), "data"))
	t.Setenv("NO_COLOR", "1")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("gully %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func expectOutput(t *testing.T, out string, needles ...string) {
	t.Helper()
	for _, needle := range needles {
		if !strings.Contains(out, needle) {
			t.Fatalf("output missing %q:\n%s", needle, out)
		}
	}
}

func TestCLIScoringFlow(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "new", "--team-a", "Lions", "--team-b", "Tigers", "--overs", "1")
	expectOutput(t, out, "1 Over Match · Innings 1", "Lions vs Tigers", "Score: 0/0")

	expectOutput(t, mustRun(t, "ball", "4"), "Score: 4/0  Overs: 0.1/1")
	expectOutput(t, mustRun(t, "ball", "wd2"), "Score: 7/0  Overs: 0.1/1")
	expectOutput(t, mustRun(t, "undo"), "Score: 4/0")
	expectOutput(t, mustRun(t, "redo"), "Score: 7/0")
	expectOutput(t, mustRun(t, "ball", "nb", "+", "4"), "Score: 12/0")

	if _, err := runCLI(t, "new"); err == nil || !strings.Contains(err.Error(), "still in play") {
		t.Fatalf("expected new to refuse while a match is in play, got %v", err)
	}

	expectOutput(t, mustRun(t, "switch"), "Innings 2", "Tigers vs Lions", "Target: 13")
	if _, err := runCLI(t, "switch"); err == nil {
		t.Fatalf("expected second switch to fail")
	}

	expectOutput(t, mustRun(t, "end"), "Result: Lions won by 12 runs.")
	if _, err := runCLI(t, "ball", "1"); err == nil {
		t.Fatalf("expected ball after end to fail")
	}
	if _, err := runCLI(t, "undo"); err == nil {
		t.Fatalf("expected undo after end to fail")
	}

	expectOutput(t, mustRun(t, "history"), "Lions v Tigers", "12/0 (0.1)", "Lions won by 12 runs.")

	expectOutput(t, mustRun(t, "new", "--team-a", "Ants"), "Ants vs Team B")
}

func TestCLIChaseArchivesMatch(t *testing.T) {
	setupEnv(t)
	mustRun(t, "new", "--team-a", "A", "--team-b", "B", "--overs", "1")
	for i := 0; i < 6; i++ {
		mustRun(t, "ball", "1")
	}
	mustRun(t, "ball", "6")
	out := mustRun(t, "ball", "1")
	expectOutput(t, out, "Result: B won by 10 wickets.", "First innings: A 6/0 (1.0 ov)")

	hist := mustRun(t, "history", "--limit", "1")
	expectOutput(t, hist, "A v B", "B won by 10 wickets.")
}

func TestCLIRejectsUnknownBall(t *testing.T) {
	setupEnv(t)
	mustRun(t, "new")
	_, err := runCLI(t, "ball", "x")
	if !errors.Is(err, engine.ErrUnknownBall) {
		t.Fatalf("expected ErrUnknownBall, got %v", err)
	}
	expectOutput(t, mustRun(t, "show"), "Score: 0/0")
}

func TestCLIBallWithoutMatch(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "ball", "4"); err == nil || !strings.Contains(err.Error(), "no match in play") {
		t.Fatalf("expected no match error, got %v", err)
	}
	expectOutput(t, mustRun(t, "show"), "No match in progress")
}

func TestCLIConfigDefaults(t *testing.T) {
	setupEnv(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := "[match]\nteam-a = \"Ants\"\novers = 3\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	expectOutput(t, mustRun(t, "new"), "3 Over Match", "Ants vs Team B")
	expectOutput(t, mustRun(t, "new", "--force", "--overs", "2", "--team-a", "Bats"), "2 Over Match", "Bats vs Team B")
}

func TestCLIDBFlag(t *testing.T) {
	setupEnv(t)
	db := filepath.Join(t.TempDir(), "nested", "scores.db")
	mustRun(t, "--db", db, "new")
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("expected database at --db path: %v", err)
	}
	expectOutput(t, mustRun(t, "show"), "No match in progress")
	expectOutput(t, mustRun(t, "--db", db, "show"), "Team A vs Team B")
}

func TestCLIDemoLeavesSnapshot(t *testing.T) {
	setupEnv(t)
	mustRun(t, "new", "--team-a", "Lions")
	mustRun(t, "ball", "6")

	out := mustRun(t, "demo", "--seed", "3", "--overs", "2", "--team-a", "Sim A", "--team-b", "Sim B")
	expectOutput(t, out, "Sim A", "Result: ")
	again := mustRun(t, "demo", "--seed", "3", "--overs", "2", "--team-a", "Sim A", "--team-b", "Sim B")
	if again != out {
		t.Fatalf("expected seeded demo to be deterministic")
	}

	expectOutput(t, mustRun(t, "show", "--worm=false"), "Lions vs Team B", "Score: 6/0")
}

func TestCLIDemoVerbose(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "demo", "--seed", "1", "--overs", "1", "--verbose")
	lines := strings.Split(out, "\n")
	if len(lines) < 3 || !strings.Contains(lines[0], "Team A ") {
		t.Fatalf("expected one line per delivery:\n%s", out)
	}
}

func TestCLIReset(t *testing.T) {
	setupEnv(t)
	mustRun(t, "new")
	mustRun(t, "ball", "4")
	expectOutput(t, mustRun(t, "reset"), "Match reset.")
	expectOutput(t, mustRun(t, "show"), "No match in progress")
	expectOutput(t, mustRun(t, "history"), "No finished matches yet.")
}

func TestCLIHistoryRejectsNegativeLimit(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "history", "--limit", "-1"); err == nil {
		t.Fatalf("expected error for negative limit")
	}
}

func TestCLIRejectsZeroOvers(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "new", "--overs", "0"); err == nil {
		t.Fatalf("expected error for zero overs")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("decode template: %v", err)
	}
	if cfg.Match.TeamA != nil || cfg.Match.Overs != nil || cfg.Store.Path != nil {
		t.Fatalf("expected all template values to be commented out")
	}
}

func TestCLIKeepsCorruptSnapshotOnRejectedCommand(t *testing.T) {
	setupEnv(t)
	mustRun(t, "show")

	const corrupt = `{"started":true,"innings":[{`
	db, err := sql.Open("sqlite", config.DefaultDBPath())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if _, err := db.Exec(`INSERT OR REPLACE INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)`,
		store.SnapshotKey, corrupt, "2026-01-01T00:00:00.000000000Z"); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	if _, err := runCLI(t, "undo"); err == nil || !strings.Contains(err.Error(), "nothing to undo") {
		t.Fatalf("expected undo to be rejected, got %v", err)
	}
	var data string
	if err := db.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, store.SnapshotKey).Scan(&data); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if data != corrupt {
		t.Fatalf("expected rejected command to leave the snapshot alone, got %s", data)
	}

	expectOutput(t, mustRun(t, "new", "--team-a", "Lions"), "Lions vs Team B")
	expectOutput(t, mustRun(t, "show"), "Score: 0/0")
}
