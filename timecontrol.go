package chessinsight

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeControl is a base time and a per-move increment, in seconds.
type TimeControl struct {
	Base      float64
	Increment float64
}

// ParseTimeControl parses "<base>+<increment>" or "<base>". Daily controls
// such as "1/86400" keep the part after the last slash.
func ParseTimeControl(s string) (TimeControl, error) {
	raw := s
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeControl{}, fmt.Errorf("%w: empty time control %q", ErrInvalidMetadata, raw)
	}

	parts := strings.Split(s, "+")
	if len(parts) > 2 {
		return TimeControl{}, fmt.Errorf("%w: invalid time control %q", ErrInvalidMetadata, raw)
	}

	var tc TimeControl
	var err error
	if tc.Base, err = parseSeconds(parts[0]); err != nil {
		return TimeControl{}, fmt.Errorf("%w: invalid time control %q: %v", ErrInvalidMetadata, raw, err)
	}
	if len(parts) == 2 {
		if tc.Increment, err = parseSeconds(parts[1]); err != nil {
			return TimeControl{}, fmt.Errorf("%w: invalid time control %q: %v", ErrInvalidMetadata, raw, err)
		}
	}
	return tc, nil
}

func parseSeconds(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative seconds %v", v)
	}
	return v, nil
}

// String formats tc as "<base>+<increment>".
func (tc TimeControl) String() string {
	return strconv.FormatFloat(tc.Base, 'f', -1, 64) + "+" + strconv.FormatFloat(tc.Increment, 'f', -1, 64)
}

// TimeClass is the speed category of a game.
type TimeClass string

// Time classes by base time.
const (
	Bullet    TimeClass = "bullet"
	Blitz     TimeClass = "blitz"
	Rapid     TimeClass = "rapid"
	Classical TimeClass = "classical"
)

// Class returns the time class of tc: under 3 minutes is bullet, under 10
// blitz, under 30 rapid.
func (tc TimeControl) Class() TimeClass {
	switch {
	case tc.Base < 180:
		return Bullet
	case tc.Base < 600:
		return Blitz
	case tc.Base < 1800:
		return Rapid
	default:
		return Classical
	}
}
