package builder

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/discochess/chessinsight/internal/codec"
	"github.com/discochess/chessinsight/internal/codec/gzipcodec"
	"github.com/discochess/chessinsight/internal/codec/zstdcodec"
	"github.com/discochess/chessinsight/internal/search"
	"github.com/discochess/chessinsight/internal/shard"
	"github.com/discochess/chessinsight/internal/shard/fnvshard"
	"github.com/discochess/chessinsight/internal/store/memstore"
)

const testSource = `{"fen":"8/8/8/8/8/8/8/8 w - - 0 1","evals":[{"pvs":[{"cp":0}],"knodes":1,"depth":1}]}
{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1","evals":[{"pvs":[{"cp":20}],"knodes":100,"depth":20}]}
{"fen":"r1bqkbnr/pppppppp/n7/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1","evals":[{"pvs":[{"cp":50}],"knodes":200,"depth":25}]}

not json at all
{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 3 7","evals":[{"pvs":[{"cp":99}],"knodes":1,"depth":1}]}
`

func TestNew_Defaults(t *testing.T) {
	b := New()

	if b.totalShards != shard.DefaultTotalShards {
		t.Errorf("totalShards = %d, want %d", b.totalShards, shard.DefaultTotalShards)
	}
	if b.strategy == nil {
		t.Error("strategy should not be nil")
	}
	if b.codec.Extension() != "zst" {
		t.Errorf("codec = %q, want zst", b.codec.Extension())
	}
	if b.workers != 4 {
		t.Errorf("workers = %d, want 4", b.workers)
	}
}

func TestNew_WithOptions(t *testing.T) {
	b := New(
		WithOutputDir("/tmp/test"),
		WithTotalShards(100),
		WithWorkers(0),
		WithMaxMemoryMB(4096),
		WithCodec(gzipcodec.New()),
	)

	if b.outputDir != "/tmp/test" {
		t.Errorf("outputDir = %q", b.outputDir)
	}
	if b.totalShards != 100 {
		t.Errorf("totalShards = %d", b.totalShards)
	}
	if b.workers != 1 {
		t.Errorf("workers = %d, want clamped to 1", b.workers)
	}
	if b.maxMemoryMB != 4096 {
		t.Errorf("maxMemoryMB = %d", b.maxMemoryMB)
	}
	if b.codec.Extension() != "gz" {
		t.Errorf("codec = %q", b.codec.Extension())
	}
}

func TestBuildFromReader(t *testing.T) {
	dir := t.TempDir()
	mirror := memstore.New()

	var mu sync.Mutex
	phases := make(map[string]int)

	b := New(
		WithOutputDir(dir),
		WithTotalShards(4),
		WithStrategy(fnvshard.New()),
		WithWorkers(2),
		WithMirror(mirror),
		WithProgress(func(p Progress) {
			mu.Lock()
			phases[p.Phase]++
			mu.Unlock()
		}),
	)

	m, err := b.BuildFromReader(context.Background(), strings.NewReader(testSource))
	if err != nil {
		t.Fatalf("BuildFromReader() error = %v", err)
	}

	// The duplicate start position collapses into one record.
	if m.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", m.RecordCount)
	}
	if m.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", m.Skipped)
	}
	if m.Strategy != fnvshard.Name {
		t.Errorf("Strategy = %q, want %q", m.Strategy, fnvshard.Name)
	}
	if m.Codec != "zst" {
		t.Errorf("Codec = %q, want zst", m.Codec)
	}
	if m.ShardCount != mirror.Len() {
		t.Errorf("ShardCount = %d, mirror has %d objects", m.ShardCount, mirror.Len())
	}
	if phases[PhaseShard] != m.ShardCount {
		t.Errorf("shard progress reported %d times, want %d", phases[PhaseShard], m.ShardCount)
	}
	if phases[PhaseDone] != 1 {
		t.Errorf("done progress reported %d times, want 1", phases[PhaseDone])
	}

	start := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	key := shard.Key(fnvshard.New().ShardID(start, 4))

	data, err := mirror.Read(context.Background(), key)
	if err != nil {
		t.Fatalf("mirror.Read(%q) error = %v", key, err)
	}
	rec, err := search.Search(data, start)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rec.FEN != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -" {
		t.Errorf("FEN = %q, want normalized", rec.FEN)
	}
	_, pv := rec.Best()
	if pv == nil || pv.CP == nil || *pv.CP != 20 {
		t.Errorf("Best() = %+v, want cp 20 from the first record", pv)
	}

	compressed, err := os.ReadFile(filepath.Join(dir, "shards", filepath.Base(key)+".zst"))
	if err != nil {
		t.Fatalf("reading shard file: %v", err)
	}
	decoded, err := codec.Decode(zstdcodec.New(), compressed)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("shard file and mirror contents differ")
	}

	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if got.RecordCount != m.RecordCount || got.Version != manifestVersion {
		t.Errorf("ReadManifest() = %+v, want %+v", got, m)
	}
}

func TestBuildFromFile_Compressed(t *testing.T) {
	dir := t.TempDir()

	encoded, err := codec.Encode(gzipcodec.New(), []byte(testSource))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	source := filepath.Join(dir, "evals.jsonl.gz")
	if err := os.WriteFile(source, encoded, 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	out := filepath.Join(dir, "db")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	b := New(WithOutputDir(out), WithTotalShards(2), WithCodec(gzipcodec.New()))

	m, err := b.BuildFromFile(context.Background(), source)
	if err != nil {
		t.Fatalf("BuildFromFile() error = %v", err)
	}
	if m.Source != "evals.jsonl.gz" {
		t.Errorf("Source = %q", m.Source)
	}
	if m.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", m.RecordCount)
	}

	got, err := ReadManifest(out)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if got.Source != m.Source {
		t.Errorf("manifest Source = %q, want %q", got.Source, m.Source)
	}

	entries, err := os.ReadDir(filepath.Join(out, "shards"))
	if err != nil {
		t.Fatalf("reading shards dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".gz" {
			t.Errorf("shard %q has wrong extension", e.Name())
		}
	}
}

func TestBuildFromFile_Missing(t *testing.T) {
	b := New(WithOutputDir(t.TempDir()))
	if _, err := b.BuildFromFile(context.Background(), "/does/not/exist.jsonl"); err == nil {
		t.Error("BuildFromFile() error = nil, want error")
	}
}

func TestBuildFromReader_Cancellation(t *testing.T) {
	var data bytes.Buffer
	for range 1000 {
		data.WriteString(`{"fen":"8/8/8/8/8/8/8/8 w - - 0 1","evals":[]}` + "\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(WithOutputDir(t.TempDir()), WithTotalShards(4))
	_, err := b.BuildFromReader(ctx, &data)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BuildFromReader() error = %v, want context.Canceled", err)
	}
}

func TestPendingShards_Spill(t *testing.T) {
	p := newPendingShards(3, t.TempDir(), 64)

	for i, rec := range []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc", "dddddddddd"} {
		if err := p.add(i%2, []byte(rec)); err != nil {
			t.Fatalf("add() error = %v", err)
		}
	}

	if got := p.count(0); got != 2 {
		t.Errorf("count(0) = %d, want 2", got)
	}
	if got := p.count(2); got != 0 {
		t.Errorf("count(2) = %d, want 0", got)
	}

	records, err := p.drain(0)
	if err != nil {
		t.Fatalf("drain() error = %v", err)
	}
	if len(records) != 2 || string(records[0]) != "aaaaaaaaaa" || string(records[1]) != "cccccccccc" {
		t.Errorf("drain(0) = %q, want [aaaaaaaaaa cccccccccc]", records)
	}
	if got := p.count(0); got != 0 {
		t.Errorf("count(0) after drain = %d, want 0", got)
	}
}

func TestSortRecords(t *testing.T) {
	records := [][]byte{
		[]byte(`{"fen":"c","n":1}`),
		[]byte(`{"fen":"a","n":2}`),
		[]byte(`{"fen":"c","n":3}`),
		[]byte(`{"fen":"b","n":4}`),
	}
	got := sortRecords(records)

	want := []string{`{"fen":"a","n":2}`, `{"fen":"b","n":4}`, `{"fen":"c","n":1}`}
	if len(got) != len(want) {
		t.Fatalf("sortRecords() returned %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Errorf("sortRecords()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNormalizeRecord(t *testing.T) {
	rec, key, ok := normalizeRecord([]byte(`{"fen":"8/8/8/4k3/8/8/4K3/4R3 w - - 12 40","evals":[]}`))
	if !ok {
		t.Fatal("normalizeRecord() ok = false")
	}
	if key != "8/8/8/4k3/8/8/4K3/4R3 w - -" {
		t.Errorf("key = %q", key)
	}
	if search.ExtractFEN(rec) != key {
		t.Errorf("record fen = %q, want %q", search.ExtractFEN(rec), key)
	}

	if _, _, ok := normalizeRecord([]byte(`{"fen":"garbage","evals":[]}`)); ok {
		t.Error("normalizeRecord(garbage) ok = true")
	}
}

func TestReadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadManifest(dir); err == nil {
		t.Error("ReadManifest(missing) error = nil")
	}

	if err := os.WriteFile(filepath.Join(dir, manifestFilename), []byte(`{"total_shards":0}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadManifest(dir); err == nil {
		t.Error("ReadManifest(zero shards) error = nil")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
		{3661 * time.Second, "1h 1m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatDuration(tt.dur)
			if got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.dur, got, tt.want)
			}
		})
	}
}
