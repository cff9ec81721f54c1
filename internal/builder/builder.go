// Package builder builds an evaluation database from a lichess-format JSONL
// export: records are normalized, distributed over shards, sorted by FEN and
// written compressed next to a manifest.
package builder

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/chessinsight/internal/codec"
	"github.com/discochess/chessinsight/internal/codec/gzipcodec"
	"github.com/discochess/chessinsight/internal/codec/zstdcodec"
	"github.com/discochess/chessinsight/internal/fen"
	"github.com/discochess/chessinsight/internal/search"
	"github.com/discochess/chessinsight/internal/shard"
	"github.com/discochess/chessinsight/internal/shard/materialshard"
	"github.com/discochess/chessinsight/internal/store"
)

// Builder writes an evaluation database into an output directory.
type Builder struct {
	outputDir   string
	totalShards int
	strategy    shard.Strategy
	codec       codec.Codec
	workers     int
	maxMemoryMB int
	mirror      store.Writer
	progress    ProgressFunc
	logger      *zap.Logger
}

// Option configures the Builder.
type Option func(*Builder)

// WithOutputDir sets the output directory.
func WithOutputDir(dir string) Option {
	return func(b *Builder) { b.outputDir = dir }
}

// WithTotalShards sets the number of shards.
func WithTotalShards(n int) Option {
	return func(b *Builder) { b.totalShards = n }
}

// WithStrategy sets the sharding strategy.
func WithStrategy(s shard.Strategy) Option {
	return func(b *Builder) { b.strategy = s }
}

// WithCodec sets the codec shards are written with. Default is zstd.
func WithCodec(c codec.Codec) Option {
	return func(b *Builder) { b.codec = c }
}

// WithWorkers sets how many shards are sorted and written in parallel.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithMaxMemoryMB bounds the memory held by pending records before the
// largest shards are spilled to temporary files.
func WithMaxMemoryMB(mb int) Option {
	return func(b *Builder) { b.maxMemoryMB = mb }
}

// WithMirror also writes every finished shard, uncompressed, to w.
func WithMirror(w store.Writer) Option {
	return func(b *Builder) { b.mirror = w }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) { b.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// New creates a Builder with the given options.
func New(opts ...Option) *Builder {
	b := &Builder{
		outputDir:   "./data",
		totalShards: shard.DefaultTotalShards,
		strategy:    materialshard.New(),
		codec:       zstdcodec.New(),
		workers:     4,
		maxMemoryMB: 1024,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers < 1 {
		b.workers = 1
	}
	return b
}

// BuildFromFile builds the database from a local JSONL file, decompressing
// it first when its name ends in ".zst" or ".gz".
func (b *Builder) BuildFromFile(ctx context.Context, sourcePath string) (*Manifest, error) {
	file, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if c, ok := codec.ForExtension(sourcePath, zstdcodec.New(), gzipcodec.New()); ok {
		rc, err := c.Reader(file)
		if err != nil {
			return nil, fmt.Errorf("creating %s decoder: %w", c.Extension(), err)
		}
		defer rc.Close()
		r = rc
	}

	m, err := b.BuildFromReader(ctx, r)
	if err != nil {
		return nil, err
	}
	m.Source = filepath.Base(sourcePath)
	if err := WriteManifest(b.outputDir, m); err != nil {
		return nil, err
	}
	return m, nil
}

// BuildFromReader builds the database from uncompressed JSONL and writes
// its manifest.
func (b *Builder) BuildFromReader(ctx context.Context, r io.Reader) (*Manifest, error) {
	start := time.Now()
	if b.totalShards < 1 {
		return nil, fmt.Errorf("builder: total shards must be positive, got %d", b.totalShards)
	}

	shardsDir := filepath.Join(b.outputDir, "shards")
	if err := os.RemoveAll(shardsDir); err != nil {
		return nil, fmt.Errorf("cleaning shards directory: %w", err)
	}
	if err := os.MkdirAll(shardsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating shards directory: %w", err)
	}
	tempDir, err := os.MkdirTemp(b.outputDir, ".build-")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	pending := newPendingShards(b.totalShards, tempDir, int64(b.maxMemoryMB)<<20)

	read, skipped, err := b.distribute(ctx, r, pending, start)
	if err != nil {
		return nil, err
	}

	written, shards, err := b.writeShards(ctx, pending, read, start)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Version:     manifestVersion,
		TotalShards: b.totalShards,
		Strategy:    b.strategy.Name(),
		RecordCount: written,
		ShardCount:  shards,
		Skipped:     skipped,
		BuiltAt:     time.Now().UTC(),
		Codec:       b.codec.Extension(),
	}
	if err := WriteManifest(b.outputDir, m); err != nil {
		return nil, err
	}

	b.report(Progress{Phase: PhaseDone, RecordsRead: read, RecordsWritten: written, ShardsCreated: shards, ShardsTotal: b.totalShards, StartTime: start})
	b.logger.Info("evaluation database built",
		zap.String("dir", b.outputDir),
		zap.Int64("records", written),
		zap.Int64("skipped", skipped),
		zap.Int("shards", shards),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// distribute reads records and assigns them to shards.
func (b *Builder) distribute(ctx context.Context, r io.Reader, pending *pendingShards, start time.Time) (read, skipped int64, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 10<<20)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return read, skipped, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		record, key, ok := normalizeRecord(line)
		if !ok {
			skipped++
			b.logger.Debug("skipping record without a valid fen", zap.ByteString("line", truncate(line, 120)))
			continue
		}

		id := b.strategy.ShardID(key, b.totalShards)
		if err := pending.add(id, record); err != nil {
			return read, skipped, fmt.Errorf("adding to shard %d: %w", id, err)
		}

		read++
		if read%100_000 == 0 {
			b.report(Progress{Phase: PhaseRead, RecordsRead: read, StartTime: start})
		}
	}
	if err := scanner.Err(); err != nil {
		return read, skipped, fmt.Errorf("reading source: %w", err)
	}
	return read, skipped, nil
}

// writeShards sorts, compresses and writes every non-empty shard.
func (b *Builder) writeShards(ctx context.Context, pending *pendingShards, read int64, start time.Time) (int64, int, error) {
	var written atomic.Int64
	var created atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for id := range b.totalShards {
		if pending.count(id) == 0 {
			continue
		}
		g.Go(func() error {
			n, err := b.writeShard(ctx, id, pending)
			if err != nil {
				return fmt.Errorf("writing shard %d: %w", id, err)
			}
			w := written.Add(int64(n))
			c := created.Add(1)
			b.report(Progress{Phase: PhaseShard, RecordsRead: read, RecordsWritten: w, ShardsCreated: int(c), ShardsTotal: b.totalShards, StartTime: start})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return written.Load(), int(created.Load()), nil
}

func (b *Builder) writeShard(ctx context.Context, id int, pending *pendingShards) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	records, err := pending.drain(id)
	if err != nil {
		return 0, err
	}
	records = sortRecords(records)

	var buf bytes.Buffer
	for _, rec := range records {
		buf.Write(rec)
		buf.WriteByte('\n')
	}

	encoded, err := codec.Encode(b.codec, buf.Bytes())
	if err != nil {
		return 0, err
	}
	key := shard.Key(id)
	path := filepath.Join(b.outputDir, filepath.FromSlash(store.ObjectName(key, b.codec.Extension())))
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return 0, err
	}

	if b.mirror != nil {
		if err := b.mirror.Write(ctx, key, buf.Bytes()); err != nil {
			return 0, fmt.Errorf("mirroring: %w", err)
		}
	}
	return len(records), nil
}

func (b *Builder) report(p Progress) {
	if b.progress != nil {
		b.progress(p)
	}
}

// normalizeRecord rewrites the record's FEN without move counters and
// returns the record with its normalized key.
func normalizeRecord(line []byte) ([]byte, string, bool) {
	raw := search.ExtractFEN(line)
	if raw == "" {
		return nil, "", false
	}
	key, err := fen.Normalize(raw)
	if err != nil {
		return nil, "", false
	}

	record := append([]byte(nil), line...)
	if key != raw {
		record = bytes.Replace(record, []byte(`"fen":"`+raw+`"`), []byte(`"fen":"`+key+`"`), 1)
	}
	return record, key, true
}

// sortRecords orders records by FEN and keeps the first of any duplicates.
func sortRecords(records [][]byte) [][]byte {
	sort.SliceStable(records, func(i, j int) bool {
		return search.ExtractFEN(records[i]) < search.ExtractFEN(records[j])
	})

	out := records[:0]
	var prev string
	for i, rec := range records {
		key := search.ExtractFEN(rec)
		if i > 0 && key == prev {
			continue
		}
		out = append(out, rec)
		prev = key
	}
	return out
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
