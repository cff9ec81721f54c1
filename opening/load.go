package opening

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/notnil/chess"

	"github.com/discochess/chessinsight/internal/codec"
	"github.com/discochess/chessinsight/internal/codec/gzipcodec"
	"github.com/discochess/chessinsight/internal/codec/zstdcodec"
	"github.com/discochess/chessinsight/internal/store"
)

//go:embed data/openings.tsv
var defaultTSV []byte

var (
	defaultOnce  sync.Once
	defaultIndex *Index
	defaultErr   error
)

// Default returns the index built from the bundled opening list.
func Default() (*Index, error) {
	defaultOnce.Do(func() {
		defaultIndex, defaultErr = LoadTSV(bytes.NewReader(defaultTSV))
	})
	return defaultIndex, defaultErr
}

// jsonEntry is one opening in a JSON index file.
type jsonEntry struct {
	Name  string `json:"name"`
	FEN   string `json:"fen"`
	ECO   string `json:"eco,omitempty"`
	Depth *int   `json:"depth,omitempty"`
}

// LoadJSON reads an index from JSON.
//
// Two layouts are accepted. The nested layout is an array of arrays where
// element i lists the openings reached after i+1 plies. The flat layout is an
// array of objects each carrying an explicit "depth".
func LoadJSON(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading opening index: %w", err)
	}

	var nested [][]jsonEntry
	if err := json.Unmarshal(data, &nested); err == nil {
		var entries []Entry
		for i, bucket := range nested {
			for _, je := range bucket {
				entries = append(entries, Entry{Depth: i + 1, Key: je.FEN, Name: je.Name, ECO: je.ECO})
			}
		}
		return NewIndex(entries)
	}

	var flat []jsonEntry
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parsing opening index: %w", err)
	}
	entries := make([]Entry, 0, len(flat))
	for i, je := range flat {
		if je.Depth == nil {
			return nil, fmt.Errorf("%w: entry %d (%s) has no depth", ErrInvalidEntry, i, je.Name)
		}
		entries = append(entries, Entry{Depth: *je.Depth, Key: je.FEN, Name: je.Name, ECO: je.ECO})
	}
	return NewIndex(entries)
}

var moveNumber = regexp.MustCompile(`^\d+\.+`)

// LoadTSV reads an index from tab-separated "eco, name, pgn" rows, the
// layout of the lichess chess-openings dataset. Each move list is replayed
// from the initial position to derive the entry's depth and key.
// A header row starting with "eco" is skipped.
func LoadTSV(r io.Reader) (*Index, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: line %d: want 3 tab-separated fields, got %d", ErrInvalidEntry, lineNo, len(fields))
		}
		if lineNo == 1 && strings.EqualFold(fields[0], "eco") {
			continue
		}

		entry, err := replayEntry(fields[0], fields[1], fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading opening index: %w", err)
	}

	return NewIndex(entries)
}

func replayEntry(eco, name, movetext string) (Entry, error) {
	game := chess.NewGame()
	for _, tok := range strings.Fields(movetext) {
		san := moveNumber.ReplaceAllString(tok, "")
		if san == "" {
			continue
		}
		if err := game.MoveStr(san); err != nil {
			return Entry{}, fmt.Errorf("%w: %s: move %q: %v", ErrInvalidEntry, name, san, err)
		}
	}
	return Entry{
		Depth: len(game.Moves()),
		Key:   game.Position().Board().String(),
		Name:  strings.TrimSpace(name),
		ECO:   strings.TrimSpace(eco),
	}, nil
}

// LoadFile reads an index from path. The format follows the extension
// (".json" or ".tsv"), optionally followed by ".zst" or ".gz".
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	name := path
	if c, ok := codec.ForExtension(path, zstdcodec.New(), gzipcodec.New()); ok {
		rc, err := c.Reader(f)
		if err != nil {
			return nil, fmt.Errorf("creating %s decompressor: %w", c.Extension(), err)
		}
		defer rc.Close()
		r = rc
		name = strings.TrimSuffix(path, filepath.Ext(path))
	}

	return load(r, name)
}

// LoadFromStore reads the index stored under key. The store handles
// decompression; the format follows the key's extension.
func LoadFromStore(ctx context.Context, st store.Store, key string) (*Index, error) {
	data, err := st.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return load(bytes.NewReader(data), key)
}

func load(r io.Reader, name string) (*Index, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return LoadJSON(r)
	case ".tsv":
		return LoadTSV(r)
	default:
		return nil, fmt.Errorf("opening: unsupported index format %q", filepath.Ext(name))
	}
}
