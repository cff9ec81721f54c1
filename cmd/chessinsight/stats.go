package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/discochess/chessinsight/evaldb"
	"github.com/discochess/chessinsight/internal/builder"
	"github.com/discochess/chessinsight/internal/codec"
	"github.com/discochess/chessinsight/internal/search"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about a local evaluation database",
	Long: `Display the manifest of the local evaluation database named by --evaldb
(default ./data) together with the number of shards and their size on disk.

With --verify every shard is also decompressed and checked to hold
evaluation records sorted by FEN.`,
	RunE: runStats,
}

var verifyShards bool

func init() {
	statsCmd.Flags().BoolVar(&verifyShards, "verify", false, "decompress every shard and check its records are sorted")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dataDir := cfg.EvalDB.URL
	if dataDir == "" {
		dataDir = "./data"
	}
	if cfg.EvalDB.Remote() {
		return fmt.Errorf("stats needs a local database, got %q", dataDir)
	}

	m, err := builder.ReadManifest(dataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no database in %q; run 'chessinsight build' first", dataDir)
		}
		return err
	}

	files, totalSize, err := shardFiles(filepath.Join(dataDir, "shards"), m.Codec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Data directory: %s\n", dataDir)
	fmt.Fprintf(out, "Built:          %s\n", m.BuiltAt.Format("2006-01-02 15:04:05"))
	if m.Source != "" {
		fmt.Fprintf(out, "Source:         %s\n", m.Source)
	}
	fmt.Fprintf(out, "Records:        %d\n", m.RecordCount)
	fmt.Fprintf(out, "Strategy:       %s\n", m.Strategy)
	fmt.Fprintf(out, "Codec:          %s\n", codecLabel(m.Codec))
	fmt.Fprintf(out, "Shards:         %d of %d\n", len(files), m.TotalShards)
	fmt.Fprintf(out, "Total size:     %s\n", formatBytes(totalSize))

	if !verifyShards {
		return nil
	}

	c, err := evaldb.CodecByName(m.Codec)
	if err != nil {
		return err
	}

	var errCount int
	for i, path := range files {
		name := filepath.Base(path)
		logger.Sugar().Debugf("verifying [%d/%d] %s", i+1, len(files), name)

		if err := verifyShardFile(path, c); err != nil {
			fmt.Fprintf(out, "  ERROR: %s: %v\n", name, err)
			errCount++
		}
	}

	if errCount > 0 {
		return fmt.Errorf("%d shards failed verification", errCount)
	}
	fmt.Fprintln(out, "All shards verified successfully.")
	return nil
}

// shardFiles lists the shard files written with the codec extension ext and
// sums their sizes.
func shardFiles(dir, ext string) ([]string, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading shards directory: %w", err)
	}

	var files []string
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != dotted(ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
		total += info.Size()
	}
	return files, total, nil
}

func dotted(ext string) string {
	if ext == "" {
		return ""
	}
	return "." + ext
}

func codecLabel(ext string) string {
	if ext == "" {
		return "none"
	}
	return ext
}

func verifyShardFile(path string, c codec.Codec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	raw, err := codec.Decode(c, data)
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	return verifyShard(raw)
}

// verifyShard checks that data holds JSONL records sorted by FEN.
func verifyShard(data []byte) error {
	lines := search.Lines(data)
	if len(lines) == 0 {
		return errors.New("empty shard")
	}

	var prevFEN string
	for i, line := range lines {
		fen := search.ExtractFEN(line)
		if fen == "" {
			return fmt.Errorf("line %d: invalid JSON or missing FEN", i+1)
		}
		if fen < prevFEN {
			return fmt.Errorf("lines not sorted: %q comes after %q", fen, prevFEN)
		}
		prevFEN = fen
	}
	return nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
