// Package main provides the CLI entrypoint for gully.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/gullyscore/internal/config"
	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/model"
	"github.com/verte-zerg/gullyscore/internal/store"
	"github.com/verte-zerg/gullyscore/internal/tui"
)

const (
	defaultTeamA = "Team A"
	defaultTeamB = "Team B"
)

var (
	dbPath string

	matchTeamA string
	matchTeamB string
	matchOvers int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gully",
		Short:         "Gully cricket scorekeeper",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runScorerCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database (default: XDG data home)")
	addSetupFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newBallCmd())
	rootCmd.AddCommand(newTransitionCmd("undo", "Undo the last delivery of the innings in play", engine.UndoLast, "nothing to undo in this innings"))
	rootCmd.AddCommand(newTransitionCmd("redo", "Redo the last undone delivery", engine.RedoLast, "nothing to redo"))
	rootCmd.AddCommand(newTransitionCmd("switch", "Start the second innings now", engine.SwitchInnings, "innings can only be switched during the first innings"))
	rootCmd.AddCommand(newTransitionCmd("end", "End the match", engine.EndMatch, "no match in play"))
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newDemoCmd())

	return rootCmd
}

func addSetupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&matchTeamA, "team-a", defaultTeamA, "team batting first")
	cmd.Flags().StringVar(&matchTeamB, "team-b", defaultTeamB, "team bowling first")
	cmd.Flags().IntVar(&matchOvers, "overs", engine.DefaultOvers, "overs per innings")
}

// resolveSetup merges the config file into the setup flags. Flags set on the
// command line win.
func resolveSetup(cmd *cobra.Command, fileCfg config.FileConfig) (model.MatchSetup, error) {
	applyStringConfig(cmd, "team-a", &matchTeamA, fileCfg.Match.TeamA)
	applyStringConfig(cmd, "team-b", &matchTeamB, fileCfg.Match.TeamB)
	applyIntConfig(cmd, "overs", &matchOvers, fileCfg.Match.Overs)
	if matchOvers < 1 {
		return model.MatchSetup{}, fmt.Errorf("--overs must be >= 1")
	}
	return model.MatchSetup{TeamA: matchTeamA, TeamB: matchTeamB, Overs: matchOvers}, nil
}

func loadConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func openStore(cmd *cobra.Command, fileCfg config.FileConfig) (*store.Store, error) {
	path := config.DefaultDBPath()
	applyStringConfig(cmd, "db", &path, fileCfg.Store.Path)
	if cmd.Flags().Changed("db") {
		path = dbPath
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

// loadMatch reads the current snapshot. A corrupt snapshot is reported and
// replaced by the not-started match.
func loadMatch(ctx context.Context, st *store.Store) (model.Match, error) {
	m, err := st.LoadMatch(ctx)
	if err != nil {
		if errors.Is(err, store.ErrCorruptSnapshot) {
			logErrf("warning: %v; starting fresh\n", err)
			return m, nil
		}
		return model.Match{}, fmt.Errorf("failed to load match: %w", err)
	}
	return m, nil
}

func runScorerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	setup, err := resolveSetup(cmd, fileCfg)
	if err != nil {
		return err
	}
	st, err := openStore(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	m, err := loadMatch(cmd.Context(), st)
	if err != nil {
		return err
	}

	scorer := tui.NewModel(st, m, setup)
	program := tea.NewProgram(scorer, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# gully configuration
# Uncomment a value to enable it. CLI flags override config values.

[match]
# team-a = %q        # Team batting first
# team-b = %q        # Team bowling first
# overs = %d              # Overs per innings

[store]
# path = %q   # SQLite database
`,
		defaultTeamA,
		defaultTeamB,
		engine.DefaultOvers,
		config.DefaultDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
