package s3store

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/chessinsight/internal/codec/noopcodec"
	"github.com/discochess/chessinsight/internal/codec/zstdcodec"
	"github.com/discochess/chessinsight/internal/store"
)

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"chessinsight", "chessinsight/"},
		{"chessinsight/", "chessinsight/"},
		{"evals/2024/", "evals/2024/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &Store{}
			if err := WithPrefix(tt.input)(s); err != nil {
				t.Fatalf("WithPrefix() error = %v", err)
			}
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestStore_objectKey(t *testing.T) {
	tests := []struct {
		name    string
		store   *Store
		key     string
		want    string
		wantErr bool
	}{
		{"shard", &Store{codec: zstdcodec.New()}, "shards/00042", "shards/00042.zst", false},
		{"prefixed", &Store{codec: zstdcodec.New(), prefix: "data/v1/"}, "shards/00042", "data/v1/shards/00042.zst", false},
		{"uncompressed", &Store{codec: noopcodec.New()}, "openings.tsv", "openings.tsv", false},
		{"escaping", &Store{codec: noopcodec.New()}, "../x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.store.objectKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("objectKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("objectKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestStore_Read_InvalidKey(t *testing.T) {
	s := &Store{codec: noopcodec.New()}
	if _, err := s.Read(context.Background(), ""); !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("Read() error = %v, want ErrInvalidKey", err)
	}
}

func TestStore_Close(t *testing.T) {
	if err := (&Store{}).Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
