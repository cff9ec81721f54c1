package main

import (
	"cmp"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/chessinsight"
	"github.com/discochess/chessinsight/opening"
)

var openingsCmd = &cobra.Command{
	Use:   "openings [PGN files]",
	Short: "Count the openings played in a set of games",
	Long: `Classify every game of the given PGN files against the opening index
and print how often each opening occurs, most frequent first.

With --list and no files, print the index itself.

Examples:
  # Opening repertoire of a PGN export
  chessinsight openings games.pgn

  # Openings of the first thousand games only
  chessinsight openings games.pgn.zst --limit 1000

  # Dump a custom index as JSON
  chessinsight openings --list --openings openings.tsv -f json`,
	RunE: runOpenings,
}

var listOpenings bool

func init() {
	openingsCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file; the extension selects the format (default standard output)")
	openingsCmd.Flags().BoolVar(&listOpenings, "list", false, "list the opening index instead of classifying games")
	openingsCmd.Flags().IntVar(&gameLimit, "limit", 0, "read at most this many games (0 reads all)")
	rootCmd.AddCommand(openingsCmd)
}

func runOpenings(cmd *cobra.Command, args []string) error {
	idx, err := loadOpenings()
	if err != nil {
		return err
	}

	if listOpenings {
		return writeRows(cmd.OutOrStdout(), outputPath, indexRows(idx))
	}
	if len(args) == 0 {
		return cmd.Usage()
	}

	games, err := readGames(args, cmd.InOrStdin(), gameLimit)
	if err != nil {
		return err
	}

	var records []chessinsight.Record
	for _, g := range games {
		rec, err := chessinsight.ParsePGN(g.Text)
		if err != nil {
			logger.Warn("skipping game", zap.String("file", g.File), zap.Int("game", g.Index+1), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	return writeRows(cmd.OutOrStdout(), outputPath, openingRows(idx, records))
}

// indexRows lists the entries of idx by depth, in match order.
func indexRows(idx *opening.Index) []map[string]any {
	var rows []map[string]any
	for d := 0; d <= idx.MaxDepth(); d++ {
		for _, e := range idx.Entries(d) {
			rows = append(rows, map[string]any{
				"depth": e.Depth,
				"eco":   e.ECO,
				"name":  e.Name,
			})
		}
	}
	return rows
}

// openingRows counts the openings of records. Unrecognized games are
// counted under an empty name.
func openingRows(idx *opening.Index, records []chessinsight.Record) []map[string]any {
	counts := make(map[opening.Match]int)
	for _, rec := range records {
		m := idx.Classify(rec.Positions)
		m.Ply = 0
		counts[m]++
	}

	matches := make([]opening.Match, 0, len(counts))
	for m := range counts {
		matches = append(matches, m)
	}
	slices.SortFunc(matches, func(a, b opening.Match) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ECO, b.ECO)
	})

	rows := make([]map[string]any, len(matches))
	for i, m := range matches {
		rows[i] = map[string]any{
			"opening": m.Name,
			"eco":     m.ECO,
			"games":   counts[m],
		}
	}
	return rows
}
