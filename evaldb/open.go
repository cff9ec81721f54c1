package evaldb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/discochess/chessinsight/internal/shard"
	"github.com/discochess/chessinsight/internal/store"
	"github.com/discochess/chessinsight/internal/store/gcsstore"
	"github.com/discochess/chessinsight/internal/store/redisstore"
	"github.com/discochess/chessinsight/internal/store/s3store"
)

// Source locates a database.
//
// A URL without a scheme is a local directory written by the builder; its
// manifest supplies the layout. Remote databases (s3://bucket/prefix,
// gs://bucket/prefix, redis://host:port/db) carry no manifest, so their
// layout comes from Shards, Strategy and Codec.
type Source struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Shards   int    `mapstructure:"shards" yaml:"shards"`
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
	Codec    string `mapstructure:"codec" yaml:"codec"`

	// Cache is the number of shards kept in memory. Zero disables it.
	Cache int `mapstructure:"cache" yaml:"cache"`

	// Region and Endpoint configure S3-compatible services.
	Region   string `mapstructure:"region" yaml:"region"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Prefix namespaces redis keys.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// Remote reports whether the source is read from object storage or redis.
func (s Source) Remote() bool {
	return strings.Contains(s.URL, "://")
}

// Open creates a Client for src. opts are applied after the source's own
// settings.
func Open(ctx context.Context, src Source, opts ...Option) (*Client, error) {
	if src.URL == "" {
		return nil, ErrNoStore
	}

	if !src.Remote() {
		dirOpt, err := WithDataDir(src.URL)
		if err != nil {
			return nil, err
		}
		return New(append([]Option{dirOpt, WithCache(src.Cache)}, opts...)...)
	}

	strategy, err := StrategyByName(src.Strategy)
	if err != nil {
		return nil, err
	}
	st, err := openRemote(ctx, src)
	if err != nil {
		return nil, err
	}

	shards := src.Shards
	if shards == 0 {
		shards = shard.DefaultTotalShards
	}

	client, err := New(append([]Option{
		WithStore(st),
		WithShardStrategy(strategy),
		WithTotalShards(shards),
		WithCache(src.Cache),
	}, opts...)...)
	if err != nil {
		st.Close()
		return nil, err
	}
	return client, nil
}

func openRemote(ctx context.Context, src Source) (store.Store, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("evaldb: parsing source: %w", err)
	}
	c, err := CodecByName(src.Codec)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimPrefix(u.Path, "/")

	switch u.Scheme {
	case "s3":
		var s3opts []s3store.Option
		if src.Region != "" {
			s3opts = append(s3opts, s3store.WithRegion(src.Region))
		}
		if src.Endpoint != "" {
			s3opts = append(s3opts, s3store.WithEndpoint(src.Endpoint))
		}
		s3opts = append(s3opts, s3store.WithPrefix(prefix))
		return s3store.New(ctx, u.Host, c, s3opts...)
	case "gs":
		return gcsstore.New(ctx, u.Host, c, gcsstore.WithPrefix(prefix))
	case "redis", "rediss":
		return redisstore.Open(ctx, src.URL, c, redisstore.WithPrefix(src.Prefix))
	default:
		return nil, fmt.Errorf("evaldb: unsupported source scheme %q", u.Scheme)
	}
}
