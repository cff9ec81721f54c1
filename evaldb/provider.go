package evaldb

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/discochess/chessinsight"
)

// Compile-time check that Provider implements chessinsight.EvaluationProvider.
var _ chessinsight.EvaluationProvider = (*Provider)(nil)

// Provider scores positions from the database. Positions that are not in
// the database get an unknown score.
type Provider struct {
	client *Client
}

// NewProvider wraps client as an evaluation provider.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Evaluate returns the stored score of fen.
func (p *Provider) Evaluate(ctx context.Context, fen string) (chessinsight.Score, error) {
	eval, err := p.client.Lookup(ctx, fen)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			p.client.logger.Debug("position not in database", zap.String("fen", fen))
			return chessinsight.Score{}, nil
		}
		return chessinsight.Score{}, err
	}
	return eval.Score(), nil
}
