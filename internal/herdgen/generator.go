// Package herdgen produces synthetic multi-generation herds for demos and
// integration tests. Pedigree structure and trait values are drawn from a
// seeded source so a given seed always yields the same herd shape.
package herdgen

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/studbook/internal/domain/model"
)

// Default generation parameters.
const (
	defaultFounders    = 20
	defaultGenerations = 3
	defaultSeed        = 1

	baseTraitValue = 100.0
	traitSpread    = 25.0
	traitNoise     = 5.0
	minAccuracy    = 0.5
)

// Herd is a generated record set, with the youngest generation split into
// breeding candidates by sex.
type Herd struct {
	Records []model.AnimalRecord
	SireIDs []string
	DamIDs  []string
}

// Generator builds synthetic herds.
type Generator struct {
	founders    int
	generations int
	traits      []string
	rng         *rand.Rand
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithFounders sets the number of founder animals per generation.
func WithFounders(n int) Option {
	return func(g *Generator) {
		if n >= 2 {
			g.founders = n
		}
	}
}

// WithGenerations sets the number of descendant generations.
func WithGenerations(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.generations = n
		}
	}
}

// WithTraits sets the trait codes carried by every record.
func WithTraits(codes []string) Option {
	return func(g *Generator) {
		if len(codes) > 0 {
			g.traits = codes
		}
	}
}

// WithSeed fixes the random source for reproducible herd shapes.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible herds
	}
}

// New creates a Generator with default configuration.
func New(opts ...Option) *Generator {
	g := &Generator{
		founders:    defaultFounders,
		generations: defaultGenerations,
		traits:      []string{"milk_yield", "fertility"},
		rng:         rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic seed for reproducible herds
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the herd: a founder generation with no recorded parents,
// then descendant generations whose parents are drawn from the previous
// one and whose trait values follow the midparent value plus noise.
func (g *Generator) Generate() Herd {
	var herd Herd

	males, females := g.seedFounders(&herd)
	for gen := 0; gen < g.generations; gen++ {
		males, females = g.descend(&herd, males, females)
	}

	herd.SireIDs = ids(males)
	herd.DamIDs = ids(females)
	return herd
}

func (g *Generator) seedFounders(herd *Herd) (males, females []model.AnimalRecord) {
	for i := 0; i < g.founders; i++ {
		rec := model.AnimalRecord{
			ID:     uuid.NewString(),
			Traits: make(map[string]model.TraitValue, len(g.traits)),
		}
		for _, code := range g.traits {
			rec.Traits[code] = model.TraitValue{
				Value:    baseTraitValue + (g.rng.Float64()*2-1)*traitSpread,
				Accuracy: minAccuracy + g.rng.Float64()*(1-minAccuracy),
			}
		}
		herd.Records = append(herd.Records, rec)
		if i%2 == 0 {
			males = append(males, rec)
		} else {
			females = append(females, rec)
		}
	}
	return males, females
}

func (g *Generator) descend(herd *Herd, prevM, prevF []model.AnimalRecord) (males, females []model.AnimalRecord) {
	for i := 0; i < g.founders; i++ {
		sire := prevM[g.rng.Intn(len(prevM))]
		dam := prevF[g.rng.Intn(len(prevF))]
		rec := model.AnimalRecord{
			ID:     uuid.NewString(),
			SireID: sire.ID,
			DamID:  dam.ID,
			Traits: make(map[string]model.TraitValue, len(g.traits)),
		}
		for _, code := range g.traits {
			mid := (sire.Traits[code].Value + dam.Traits[code].Value) / 2
			rec.Traits[code] = model.TraitValue{
				Value:    mid + (g.rng.Float64()*2-1)*traitNoise,
				Accuracy: minAccuracy + g.rng.Float64()*(1-minAccuracy),
			}
		}
		herd.Records = append(herd.Records, rec)
		if i%2 == 0 {
			males = append(males, rec)
		} else {
			females = append(females, rec)
		}
	}
	return males, females
}

func ids(records []model.AnimalRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
