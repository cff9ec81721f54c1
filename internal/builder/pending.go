package builder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// pendingShards buffers records per shard until they are written. When the
// buffered bytes exceed the limit, the largest shards are appended to
// temporary files as length-prefixed records.
type pendingShards struct {
	mu       sync.Mutex
	tempDir  string
	maxBytes int64
	total    int64
	shards   []pendingShard
}

type pendingShard struct {
	records [][]byte
	bytes   int64
	spilled int
}

func newPendingShards(n int, tempDir string, maxBytes int64) *pendingShards {
	return &pendingShards{
		tempDir:  tempDir,
		maxBytes: maxBytes,
		shards:   make([]pendingShard, n),
	}
}

// recordOverhead approximates the slice header kept per record.
const recordOverhead = 24

func (p *pendingShards) add(id int, record []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := &p.shards[id]
	s.records = append(s.records, record)
	size := int64(len(record) + recordOverhead)
	s.bytes += size
	p.total += size

	for p.maxBytes > 0 && p.total > p.maxBytes {
		largest := -1
		for i := range p.shards {
			if p.shards[i].bytes > 0 && (largest < 0 || p.shards[i].bytes > p.shards[largest].bytes) {
				largest = i
			}
		}
		if largest < 0 {
			break
		}
		if err := p.spill(largest); err != nil {
			return fmt.Errorf("spilling shard %d: %w", largest, err)
		}
	}
	return nil
}

func (p *pendingShards) count(id int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.shards[id].records) + p.shards[id].spilled
}

// drain returns every record of shard id, spilled ones first, and releases
// the shard's memory.
func (p *pendingShards) drain(id int) ([][]byte, error) {
	p.mu.Lock()
	s := p.shards[id]
	p.shards[id] = pendingShard{}
	p.total -= s.bytes
	p.mu.Unlock()

	records := make([][]byte, 0, len(s.records)+s.spilled)
	if s.spilled > 0 {
		spilled, err := readSpill(p.spillPath(id))
		if err != nil {
			return nil, err
		}
		records = append(records, spilled...)
	}
	return append(records, s.records...), nil
}

// spill must be called with p.mu held.
func (p *pendingShards) spill(id int) error {
	s := &p.shards[id]

	f, err := os.OpenFile(p.spillPath(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, rec := range s.records {
		if err := binary.Write(w, binary.BigEndian, uint32(len(rec))); err != nil {
			f.Close()
			return err
		}
		if _, err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	p.total -= s.bytes
	s.spilled += len(s.records)
	s.records = nil
	s.bytes = 0
	return nil
}

func (p *pendingShards) spillPath(id int) string {
	return filepath.Join(p.tempDir, fmt.Sprintf("shard_%05d.spill", id))
}

func readSpill(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spill file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var records [][]byte
	for {
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return nil, fmt.Errorf("reading record length: %w", err)
		}
		rec := make([]byte, n)
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		records = append(records, rec)
	}
}
