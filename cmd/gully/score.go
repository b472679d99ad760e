package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/model"
	"github.com/verte-zerg/gullyscore/internal/scoreboard"
	"github.com/verte-zerg/gullyscore/internal/sim"
	"github.com/verte-zerg/gullyscore/internal/store"
)

const defaultHistoryLimit = 10

var (
	newForce bool

	showWorm bool

	historyLimit int

	demoSeed    int64
	demoVerbose bool
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new match",
		Args:  cobra.NoArgs,
		RunE:  runNewCmd,
	}
	addSetupFlags(cmd)
	cmd.Flags().BoolVar(&newForce, "force", false, "replace a match that is still in play")
	return cmd
}

func runNewCmd(cmd *cobra.Command, _ []string) error {
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

	inPlay := false
	_, after, err := st.Transition(cmd.Context(), func(m model.Match) model.Match {
		if m.Started && !m.Ended && !newForce {
			inPlay = true
			return m
		}
		return engine.StartMatch(setup)
	})
	if err := transitionErr(err); err != nil {
		return fmt.Errorf("failed to start match: %w", err)
	}
	if inPlay {
		return fmt.Errorf("a match is still in play (use --force or gully reset)")
	}
	return scoreboard.RenderScoreboard(cmd.OutOrStdout(), after)
}

func newBallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ball <delivery>",
		Short: "Record a delivery: 0-7, w, wd[N], nb[+N]",
		Example: `  gully ball 4
  gully ball w
  gully ball wd2
  gully ball nb+4`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBallCmd,
	}
}

func runBallCmd(cmd *cobra.Command, args []string) error {
	ev, err := engine.ParseBallEvent(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return runTransition(cmd, func(m model.Match) model.Match {
		return engine.RecordBall(m, ev)
	}, "no match in play")
}

func newTransitionCmd(use, short string, fn func(model.Match) model.Match, noop string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTransition(cmd, fn, noop)
		},
	}
}

// runTransition applies fn to the stored match and prints the scoreboard.
// A transition that changes nothing is reported as an error.
func runTransition(cmd *cobra.Command, fn func(model.Match) model.Match, noop string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	before, after, err := st.Transition(cmd.Context(), fn)
	if err := transitionErr(err); err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	if after.Equal(before) {
		return fmt.Errorf("%s", noop)
	}
	out := cmd.OutOrStdout()
	if err := scoreboard.RenderScoreboard(out, after); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if after.Ended && !before.Ended {
		logErrln("Match archived. See: gully history")
	}
	return nil
}

// transitionErr reports a corrupt stored snapshot and passes other errors on.
func transitionErr(err error) error {
	if errors.Is(err, store.ErrCorruptSnapshot) {
		logErrf("warning: %v\n", err)
		return nil
	}
	return err
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the current match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileCfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd, fileCfg)
			if err != nil {
				return err
			}
			defer closeStore(st)
			if err := st.ResetMatch(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset match: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Match reset.")
			return err
		},
	}
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the scoreboard",
		Args:  cobra.NoArgs,
		RunE:  runShowCmd,
	}
	cmd.Flags().BoolVar(&showWorm, "worm", true, "plot cumulative runs by over")
	return cmd
}

func runShowCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
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
	return printMatch(cmd.OutOrStdout(), m, showWorm)
}

func printMatch(out io.Writer, m model.Match, worm bool) error {
	if err := scoreboard.RenderScoreboard(out, m); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !worm || !m.Started || len(m.Innings) == 0 || m.Innings[0].Balls < engine.BallsPerOver {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	width := scoreboard.PlotWidthFor(scoreboard.TerminalWidth())
	if err := scoreboard.PlotWorm(out, m, width, 0, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished matches",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "number of matches to list (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	records, err := st.ListMatches(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}
	return scoreboard.RenderHistory(cmd.OutOrStdout(), records)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Simulate a match without touching the saved one",
		Args:  cobra.NoArgs,
		RunE:  runDemoCmd,
	}
	addSetupFlags(cmd)
	cmd.Flags().Int64Var(&demoSeed, "seed", 0, "random seed (default: time based)")
	cmd.Flags().BoolVar(&demoVerbose, "verbose", false, "print every delivery")
	return cmd
}

func runDemoCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	setup, err := resolveSetup(cmd, fileCfg)
	if err != nil {
		return err
	}

	gen := sim.New()
	if cmd.Flags().Changed("seed") {
		gen = sim.NewSeeded(demoSeed)
	}
	out := cmd.OutOrStdout()
	var writeErr error
	observe := func(ev model.BallEvent, m model.Match) {
		if !demoVerbose || writeErr != nil {
			return
		}
		inn, ok := m.Current()
		if !ok {
			return
		}
		_, writeErr = fmt.Fprintf(out, "%-3s %s\n", ballLabel(ev), scoreboard.ScoreLine(inn))
	}
	m := gen.PlayMatch(setup, observe)
	if writeErr != nil {
		return fmt.Errorf("failed to write output: %w", writeErr)
	}
	if demoVerbose {
		if _, err := fmt.Fprintln(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return printMatch(out, m, true)
}

func ballLabel(ev model.BallEvent) string {
	switch ev.Kind {
	case model.KindRun:
		return fmt.Sprint(ev.Value)
	case model.KindWicket:
		return "W"
	case model.KindWide:
		return "Wd"
	case model.KindNoBall:
		return "Nb"
	default:
		return string(ev.Kind)
	}
}
