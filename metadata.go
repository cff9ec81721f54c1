package chessinsight

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome recorded in a game's headers.
type Result int

// Results.
const (
	ResultOngoing Result = iota
	ResultWhite
	ResultBlack
	ResultDraw
)

// ParseResult parses a PGN result token.
func ParseResult(s string) (Result, error) {
	switch strings.TrimSpace(s) {
	case "1-0":
		return ResultWhite, nil
	case "0-1":
		return ResultBlack, nil
	case "1/2-1/2":
		return ResultDraw, nil
	case "*":
		return ResultOngoing, nil
	default:
		return 0, fmt.Errorf("%w: unknown result %q", ErrInvalidMetadata, s)
	}
}

// String returns "white", "black", "draw" or "ongoing".
func (r Result) String() string {
	switch r {
	case ResultWhite:
		return "white"
	case ResultBlack:
		return "black"
	case ResultDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Winner returns the winning color, or false for draws and unfinished games.
func (r Result) Winner() (Color, bool) {
	switch r {
	case ResultWhite:
		return White, true
	case ResultBlack:
		return Black, true
	default:
		return 0, false
	}
}

// EndReason is why a game ended, as far as its annotations tell.
type EndReason int

// End reasons.
const (
	EndUnknown EndReason = iota
	EndMate
	EndTimeout
	EndResign
)

// String returns "unknown", "mate", "timeout" or "resign".
func (r EndReason) String() string {
	switch r {
	case EndMate:
		return "mate"
	case EndTimeout:
		return "timeout"
	case EndResign:
		return "resign"
	default:
		return "unknown"
	}
}

// parseEndReason reads the reason from the final comment, falling back to
// the Termination header when the comment is empty or only a clock.
func parseEndReason(finalComment, termination string) EndReason {
	text := strings.ToLower(strings.TrimSpace(finalComment))
	if text == "" || (strings.HasPrefix(text, "[%clk") && strings.HasSuffix(text, "]")) {
		text = strings.ToLower(termination)
	}

	switch {
	case strings.Contains(text, "resign"), strings.Contains(text, "abandon"):
		return EndResign
	case strings.Contains(text, "won on time"), strings.Contains(text, "wins on time"), strings.Contains(text, "time forfeit"):
		return EndTimeout
	case strings.Contains(text, "checkmate"):
		return EndMate
	default:
		return EndUnknown
	}
}

// Known game hosts.
const (
	HostLichess  = "lichess.org"
	HostChessCom = "chess.com"
)

// metadata is the validated header data of a game.
type metadata struct {
	white, black       string
	whiteElo, blackElo int
	host, url          string
	date               time.Time
	timeControl        TimeControl
	result             Result
	endReason          EndReason
}

func parseMetadata(headers map[string]string, finalComment string) (metadata, error) {
	var m metadata
	var err error

	if m.white = strings.TrimSpace(headers["White"]); m.white == "" {
		return metadata{}, fmt.Errorf("%w: missing White header", ErrInvalidMetadata)
	}
	if m.black = strings.TrimSpace(headers["Black"]); m.black == "" {
		return metadata{}, fmt.Errorf("%w: missing Black header", ErrInvalidMetadata)
	}
	if m.whiteElo, err = parseElo(headers["WhiteElo"]); err != nil {
		return metadata{}, fmt.Errorf("WhiteElo: %w", err)
	}
	if m.blackElo, err = parseElo(headers["BlackElo"]); err != nil {
		return metadata{}, fmt.Errorf("BlackElo: %w", err)
	}
	if m.host, m.url, err = parseSite(headers["Site"], headers["Link"]); err != nil {
		return metadata{}, err
	}
	if m.timeControl, err = ParseTimeControl(headers["TimeControl"]); err != nil {
		return metadata{}, err
	}
	if m.result, err = ParseResult(headers["Result"]); err != nil {
		return metadata{}, err
	}
	if m.date, err = parseDate(headers["UTCDate"], headers["UTCTime"]); err != nil {
		return metadata{}, err
	}
	m.endReason = parseEndReason(finalComment, headers["Termination"])
	return m, nil
}

func parseElo(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "?" {
		return 0, nil
	}
	elo, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid elo %q", ErrInvalidMetadata, s)
	}
	return elo, nil
}

// parseSite derives the host from Site, or Link when Site has no hostname,
// and picks the URL the host uses to identify the game.
func parseSite(site, link string) (host, gameURL string, err error) {
	host = hostname(site)
	if host == "" {
		host = hostname(link)
	}
	if host == "" {
		return "", "", fmt.Errorf("%w: no host in Site %q or Link %q", ErrInvalidMetadata, site, link)
	}

	switch host {
	case HostLichess:
		return host, site, nil
	case HostChessCom:
		return host, link, nil
	default:
		return "", "", fmt.Errorf("%w: unknown host %q", ErrInvalidMetadata, host)
	}
}

func hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

const dateLayout = "2006.01.02 15:04:05"

func parseDate(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" && clock == "" {
		return time.Time{}, nil
	}
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.ParseInLocation(dateLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q %q", ErrInvalidMetadata, date, clock)
	}
	return t, nil
}
