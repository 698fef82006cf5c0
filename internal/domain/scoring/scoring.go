// Package scoring projects offspring merit for candidate sire/dam pairs
// and applies the inbreeding ceiling.
package scoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/studbook/internal/domain/inbreeding"
	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/pkg/metrics"
)

// CoefficientFunc projects the inbreeding coefficient of the hypothetical
// offspring of two animals. Implementations must not issue external
// lookups; all pedigree data is resolved before scoring starts.
type CoefficientFunc func(ctx context.Context, sireID, damID string) (inbreeding.Result, error)

// Scorer scores candidate pairs against a selection index.
type Scorer struct {
	index         model.SelectionIndex
	maxInbreeding float64
	coefficient   CoefficientFunc
}

// New creates a Scorer for one selection index and inbreeding ceiling.
func New(index model.SelectionIndex, maxInbreeding float64, coefficient CoefficientFunc) *Scorer {
	return &Scorer{
		index:         index,
		maxInbreeding: maxInbreeding,
		coefficient:   coefficient,
	}
}

// Score projects offspring trait values by the midparent method, computes
// the selection-index score, and applies the inbreeding ceiling.
//
// A trait missing on either side is skipped and contributes nothing to the
// score; it is not treated as zero. Trait codes are visited in sorted
// order so the accumulated score is reproducible bit for bit.
func (s *Scorer) Score(ctx context.Context, sire, dam model.AnimalRecord) (model.MatingPair, error) {
	pair := model.MatingPair{SireID: sire.ID, DamID: dam.ID}

	for _, code := range sortedCodes(s.index.Weights) {
		sv, ok := sire.Trait(code)
		if !ok {
			continue
		}
		dv, ok := dam.Trait(code)
		if !ok {
			continue
		}
		projected := (sv.Value + dv.Value) / 2
		pair.Score += s.index.Weights[code] * projected
	}

	res, err := s.coefficient(ctx, sire.ID, dam.ID)
	if err != nil {
		return model.MatingPair{}, fmt.Errorf("projecting inbreeding for %s x %s: %w", sire.ID, dam.ID, err)
	}
	pair.ProjectedInbreeding = res.Coefficient
	pair.Risk = res.Risk
	pair.InbreedingUnknown = res.InsufficientData

	if res.Coefficient > s.maxInbreeding {
		pair.Excluded = true
		pair.ExclusionReason = fmt.Sprintf(
			"projected inbreeding %.4f exceeds ceiling %.4f", res.Coefficient, s.maxInbreeding)
		metrics.RecordPairExcluded()
	}
	metrics.RecordPairScored()

	return pair, nil
}

func sortedCodes(weights map[string]float64) []string {
	codes := make([]string, 0, len(weights))
	for code := range weights {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
