// Package model contains domain entities passed between the planner layers.
package model

// TraitValue pairs an estimated breeding value with its prediction accuracy.
type TraitValue struct {
	Value    float64
	Accuracy float64 // in [0,1]
}

// AnimalRecord is the resolved identity, parentage, and trait data for one
// animal. Records are immutable for the duration of a planning run.
type AnimalRecord struct {
	ID     string
	SireID string // empty when the sire is unrecorded
	DamID  string // empty when the dam is unrecorded
	Traits map[string]TraitValue
}

// Trait returns the trait value for code and whether it is recorded.
func (r AnimalRecord) Trait(code string) (TraitValue, bool) {
	tv, ok := r.Traits[code]
	return tv, ok
}

// SelectionIndex is a named weighting of trait codes. Weights are signed;
// a negative weight ranks lower trait values as better.
type SelectionIndex struct {
	Name    string
	Weights map[string]float64
}

// RiskLevel classifies a projected inbreeding coefficient.
type RiskLevel string

// Risk bands for projected inbreeding.
const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// SireAllocation pairs a sire id with the number of dams it may cover in
// one plan.
type SireAllocation struct {
	SireID   string
	Capacity int
}

// MatingPair is the scored outcome for one candidate sire/dam combination.
// Pairs are created once during scoring and never mutated afterwards.
type MatingPair struct {
	SireID              string
	DamID               string
	Score               float64
	ProjectedInbreeding float64
	Risk                RiskLevel

	// InbreedingUnknown marks a projection backed by insufficient pedigree
	// data; the coefficient is reported as zero but is not a verified zero.
	InbreedingUnknown bool

	Excluded        bool
	ExclusionReason string
}

// MatingPlan is the terminal output of a planning run.
type MatingPlan struct {
	RunID          string
	Assignments    []MatingPair
	UnassignedDams []string
	ExcludedPairs  []MatingPair
}

// AssignedDams returns the number of dams that received a sire.
func (p *MatingPlan) AssignedDams() int {
	return len(p.Assignments)
}
