// Package dedupe decides what a set of face-identification candidates
// means for one file: confident duplicate, too-close-to-call conflict,
// reviewable exception, or a genuinely new face.
package dedupe

import (
	"sort"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
)

// Thresholds parameterize the decision rules. All values are confidences
// in [0,1].
type Thresholds struct {
	// Duplicate is the score at or above which a match counts as a
	// confident duplicate.
	Duplicate float64 `toml:"duplicate"`
	// AmbiguityMargin is how close the two best candidates must be for the
	// outcome to be a conflict instead of a duplicate.
	AmbiguityMargin float64 `toml:"ambiguity_margin"`
	// Floor is the score below which a candidate is ignored entirely.
	Floor float64 `toml:"floor"`
}

// DefaultThresholds mirror the tuning of the production pipeline.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Duplicate:       0.90,
		AmbiguityMargin: 0.05,
		Floor:           0.50,
	}
}

type Deduplicator struct {
	thresholds Thresholds
}

func NewDeduplicator(t Thresholds) *Deduplicator {
	if t.Duplicate <= 0 {
		t = DefaultThresholds()
	}
	return &Deduplicator{thresholds: t}
}

// Decide classifies the identification candidates for one file.
// Candidates below the floor are dropped first; the rest are ranked by
// confidence descending.
func (d *Deduplicator) Decide(candidates []model.MatchCandidate) model.MatchResult {
	kept := make([]model.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence >= d.thresholds.Floor {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Confidence > kept[j].Confidence })

	if len(kept) == 0 {
		return model.MatchResult{Decision: model.DecisionUnique}
	}

	top := kept[0].Confidence

	// Two different counterparts scoring within the margin of each other
	// cannot be auto-decided even when both clear the duplicate bar.
	if len(kept) >= 2 && top-kept[1].Confidence < d.thresholds.AmbiguityMargin {
		return model.MatchResult{Decision: model.DecisionConflict, Candidates: kept[:2], TopScore: top}
	}

	if top >= d.thresholds.Duplicate {
		confident := kept[:1]
		for _, c := range kept[1:] {
			if c.Confidence >= d.thresholds.Duplicate {
				confident = append(confident, c)
			}
		}
		return model.MatchResult{Decision: model.DecisionDuplicate, Candidates: confident, TopScore: top}
	}

	return model.MatchResult{Decision: model.DecisionException, Candidates: kept, TopScore: top}
}
