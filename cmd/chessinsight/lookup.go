package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/chessinsight/evaldb"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [FEN]",
	Short: "Look up the evaluation for a chess position",
	Long: `Look up the engine evaluation for a chess position given in FEN notation.

The FEN string should include at least the piece placement and side to move.
Castling rights and en passant square are optional.

Examples:
  # Starting position
  chessinsight lookup --evaldb ./data "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"

  # After 1.e4, from a redis mirror
  chessinsight lookup --evaldb redis://localhost:6379/0 "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3"`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var (
	outputJSON bool
	showTiming bool
)

func init() {
	lookupCmd.Flags().BoolVar(&outputJSON, "json", false, "output result as JSON")
	lookupCmd.Flags().BoolVar(&showTiming, "timing", false, "show lookup timing")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	if cfg.EvalDB.URL == "" {
		return errors.New("no evaluation database configured; pass --evaldb or run 'chessinsight build' first")
	}

	ctx := cmd.Context()
	client, err := evaldb.Open(ctx, cfg.EvalDB, evaldb.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("opening evaluation database: %w", err)
	}
	defer client.Close()

	start := time.Now()
	eval, err := client.Lookup(ctx, args[0])
	if err != nil {
		if errors.Is(err, evaldb.ErrNotFound) {
			return errors.New("position not found in database")
		}
		return fmt.Errorf("lookup failed: %w", err)
	}
	elapsed := time.Since(start)

	if outputJSON {
		return printEvalJSON(cmd.OutOrStdout(), eval, elapsed)
	}
	printEvalText(cmd.OutOrStdout(), eval, elapsed)
	return nil
}

func printEvalText(w io.Writer, eval *evaldb.Eval, elapsed time.Duration) {
	fmt.Fprintf(w, "FEN:   %s\n", eval.FEN)
	fmt.Fprintf(w, "Score: %s\n", eval.Score())
	fmt.Fprintf(w, "Depth: %d\n", eval.Depth)
	for i, pv := range eval.PVs {
		fmt.Fprintf(w, "PV %d:  %s (%s)\n", i+1, pv.Line, pv.Score())
	}
	if showTiming {
		fmt.Fprintf(w, "Time:  %s\n", elapsed)
	}
}

type evalJSON struct {
	FEN       string   `json:"fen"`
	Score     string   `json:"score"`
	Depth     int      `json:"depth"`
	PVs       []pvJSON `json:"pvs"`
	ElapsedMS *int64   `json:"elapsed_ms,omitempty"`
}

type pvJSON struct {
	CP   *int   `json:"cp,omitempty"`
	Mate *int   `json:"mate,omitempty"`
	Line string `json:"line"`
}

func printEvalJSON(w io.Writer, eval *evaldb.Eval, elapsed time.Duration) error {
	out := evalJSON{
		FEN:   eval.FEN,
		Score: eval.Score().String(),
		Depth: eval.Depth,
		PVs:   make([]pvJSON, len(eval.PVs)),
	}
	for i, pv := range eval.PVs {
		out.PVs[i] = pvJSON{CP: pv.Centipawns, Mate: pv.Mate, Line: pv.Line}
	}
	if showTiming {
		ms := elapsed.Milliseconds()
		out.ElapsedMS = &ms
	}
	return json.NewEncoder(w).Encode(out)
}
