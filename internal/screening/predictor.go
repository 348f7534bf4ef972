package screening

import (
	"context"

	"github.com/molscreen/molscreen/pkg/client"
)

// Predictor is the external prediction-service collaborator as seen from
// the screening service.  Tests substitute a mock.
type Predictor interface {
	Predict(ctx context.Context, smiles []string) ([]Prediction, error)
}

// clientPredictor adapts the pkg/client SDK to the Predictor interface.
type clientPredictor struct {
	c *client.Client
}

// NewClientPredictor wraps a prediction-service client as a Predictor.
func NewClientPredictor(c *client.Client) Predictor {
	return &clientPredictor{c: c}
}

func (p *clientPredictor) Predict(ctx context.Context, smiles []string) ([]Prediction, error) {
	preds, err := p.c.Predict(ctx, smiles)
	if err != nil {
		return nil, err
	}
	out := make([]Prediction, 0, len(preds))
	for _, pr := range preds {
		out = append(out, Prediction{
			SMILES:         pr.SMILES,
			Classification: Classification(pr.Classification),
			PotencyClass:   pr.PotencyClass,
			IC50:           pr.IC50,
		})
	}
	return out, nil
}
