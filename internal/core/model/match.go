package model

// MatchCandidate is one identification hit returned by the face collaborator,
// normalized for the decision engine.
type MatchCandidate struct {
	FileID     string  `json:"file_id,omitempty"`
	FileName   string  `json:"file_name"`
	PersonID   string  `json:"person_id,omitempty"`
	Confidence float64 `json:"confidence"`
}

// MatchDecision is what the decision engine concluded for one file.
type MatchDecision string

const (
	DecisionUnique    MatchDecision = "unique"    // no counterpart, register as new face
	DecisionDuplicate MatchDecision = "duplicate" // confident duplicate(s) found
	DecisionConflict  MatchDecision = "conflict"  // two candidates too close to call
	DecisionException MatchDecision = "exception" // ambiguous, route to manual review
)

// MatchResult pairs a decision with the candidates that drove it.
type MatchResult struct {
	Decision   MatchDecision    `json:"decision"`
	Candidates []MatchCandidate `json:"candidates,omitempty"`
	TopScore   float64          `json:"top_score"`
}
