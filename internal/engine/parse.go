package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/gullyscore/internal/model"
)

// MaxRunsPerBall bounds the runs accepted for a single delivery.
const MaxRunsPerBall = 7

// ErrUnknownBall is returned by ParseBallEvent for unrecognised input.
var ErrUnknownBall = errors.New("unknown delivery")

// ParseBallEvent reads a delivery typed by the scorer. Accepted forms:
//
//	4, run:4     runs off the bat
//	w            wicket
//	wd, wd2      wide, optionally with extra runs taken
//	nb, nb+4     no-ball, optionally with extra runs taken
func ParseBallEvent(input string) (model.BallEvent, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return model.BallEvent{}, fmt.Errorf("%w: empty input", ErrUnknownBall)
	}

	if s == "w" || s == "wkt" || s == "wicket" {
		return model.BallEvent{Kind: model.KindWicket}, nil
	}
	for _, extra := range []struct {
		prefix string
		kind   model.BallKind
	}{
		{"wd", model.KindWide},
		{"nb", model.KindNoBall},
	} {
		rest, ok := strings.CutPrefix(s, extra.prefix)
		if !ok {
			continue
		}
		rest = strings.TrimLeft(rest, "+:")
		if rest == "" {
			return model.BallEvent{Kind: extra.kind}, nil
		}
		n, err := parseRuns(rest)
		if err != nil {
			return model.BallEvent{}, fmt.Errorf("%w %q: %v", ErrUnknownBall, input, err)
		}
		return model.BallEvent{Kind: extra.kind, Value: n}, nil
	}

	s = strings.TrimPrefix(s, "run:")
	n, err := parseRuns(s)
	if err != nil {
		return model.BallEvent{}, fmt.Errorf("%w %q: %v", ErrUnknownBall, input, err)
	}
	return model.BallEvent{Kind: model.KindRun, Value: n}, nil
}

func parseRuns(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if n < 0 || n > MaxRunsPerBall {
		return 0, fmt.Errorf("runs must be between 0 and %d", MaxRunsPerBall)
	}
	return n, nil
}
