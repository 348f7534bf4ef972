// Package screening holds the per-visitor screening session state and the
// projections of a prediction result set into display-ready views: table
// rows, classification counts, and potency-class counts.
package screening

// Classification is the top-level outcome the prediction service assigns
// to a compound.
type Classification string

const (
	ClassificationInhibitor Classification = "inhibitor"
	ClassificationDecoy     Classification = "decoy"
)

// Prediction is one per-compound record from the prediction service.
// PotencyClass and IC50 are present only for inhibitors.
type Prediction struct {
	SMILES         string         `json:"smiles"`
	Classification Classification `json:"classification"`
	PotencyClass   *int           `json:"class"`
	IC50           *float64       `json:"ic50"`
}

// Row is one table row of the current result set.  ID is 1-based display
// order, matching submission order.
type Row struct {
	ID             int            `json:"id"`
	SMILES         string         `json:"smiles"`
	Classification Classification `json:"classification"`
	PotencyClass   *int           `json:"class"`
	IC50           *float64       `json:"ic50"`
}

// Summary is the full display-ready projection of a result set.  All three
// views are pure reductions over the prediction list and are recomputed
// wholesale whenever the result set is replaced.
type Summary struct {
	Rows []Row `json:"rows"`

	// TypeCounts maps classification to the number of compounds that
	// received it.
	TypeCounts map[Classification]int `json:"typeCounts"`

	// ClassCounts maps potency class to inhibitor count.  Decoys carry no
	// potency class and do not contribute.
	ClassCounts map[int]int `json:"classCounts"`
}

// Summarize projects a prediction list onto its three display views.
func Summarize(preds []Prediction) Summary {
	s := Summary{
		Rows:        make([]Row, 0, len(preds)),
		TypeCounts:  make(map[Classification]int),
		ClassCounts: make(map[int]int),
	}
	for i, p := range preds {
		s.Rows = append(s.Rows, Row{
			ID:             i + 1,
			SMILES:         p.SMILES,
			Classification: p.Classification,
			PotencyClass:   p.PotencyClass,
			IC50:           p.IC50,
		})
		s.TypeCounts[p.Classification]++
		if p.Classification == ClassificationInhibitor && p.PotencyClass != nil {
			s.ClassCounts[*p.PotencyClass]++
		}
	}
	return s
}
