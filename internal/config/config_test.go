package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}
	if cfg.Match.TeamA != nil || cfg.Match.Overs != nil || cfg.Store.Path != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := writeConfig(t, `
[match]
team-a = "Lions"
team-b = "Tigers"
overs = 8

[store]
path = "/tmp/gully.db"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Match.TeamA == nil || *cfg.Match.TeamA != "Lions" {
		t.Fatalf("unexpected team-a: %v", cfg.Match.TeamA)
	}
	if cfg.Match.TeamB == nil || *cfg.Match.TeamB != "Tigers" {
		t.Fatalf("unexpected team-b: %v", cfg.Match.TeamB)
	}
	if cfg.Match.Overs == nil || *cfg.Match.Overs != 8 {
		t.Fatalf("unexpected overs: %v", cfg.Match.Overs)
	}
	if cfg.Store.Path == nil || *cfg.Store.Path != "/tmp/gully.db" {
		t.Fatalf("unexpected store path: %v", cfg.Store.Path)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[match]\novers = 3\n"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Match.TeamA != nil || cfg.Store.Path != nil {
		t.Fatalf("expected unset fields to stay nil: %+v", cfg)
	}
	if cfg.Match.Overs == nil || *cfg.Match.Overs != 3 {
		t.Fatalf("unexpected overs: %v", cfg.Match.Overs)
	}
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"syntax":      "[match\n",
		"unknown key": "[match]\nplayers = 11\n",
		"zero overs":  "[match]\novers = 0\n",
		"wrong type":  "[match]\novers = \"five\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "gully", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "gully", "gully.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if !strings.HasSuffix(DefaultDBPath(), ".db") {
		t.Fatalf("expected sqlite file name")
	}
}
