package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/labwise/lab-api/internal/catalog"
	"github.com/labwise/lab-api/internal/model"
)

const (
	abnormalChance = 0.3

	lowFactorBase    = 0.7
	lowFactorSpread  = 0.2
	highFactorBase   = 1.2
	highFactorSpread = 0.3
)

// Service fabricates plausible analyzer read-outs for demos and load
// testing. Values stay within an order of magnitude of the reference
// ranges, so generated sets never trip plausibility warnings.
type Service struct {
	catalog *catalog.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(c *catalog.Catalog) *Service {
	return NewSeeded(c, time.Now().UnixNano())
}

// NewSeeded returns a generator with a fixed seed. Same seed, same
// parameters, same output.
func NewSeeded(c *catalog.Catalog, seed int64) *Service {
	return &Service{
		catalog: c,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Generate produces one value per requested parameter. Roughly 30% of
// values land outside the normal range, split evenly between low and
// high. An empty parameter list means the whole catalog.
func (s *Service) Generate(parameters []string, gender model.Gender) (model.ResultSet, error) {
	if len(parameters) == 0 {
		parameters = s.catalog.Codes()
	}

	out := make(model.ResultSet, len(parameters))
	for _, code := range parameters {
		def, err := s.catalog.Lookup(code)
		if err != nil {
			return nil, err
		}
		v := s.value(def, gender)
		out[code] = &v
	}
	return out, nil
}

func (s *Service) value(def *model.ParameterDefinition, gender model.Gender) float64 {
	rng := def.Reference
	if resolved, ok := def.RangeFor(gender); ok {
		rng = resolved
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var v float64
	if s.rng.Float64() < abnormalChance {
		if s.rng.Float64() < 0.5 {
			v = rng.Min * (lowFactorBase + s.rng.Float64()*lowFactorSpread)
		} else {
			v = rng.Max * (highFactorBase + s.rng.Float64()*highFactorSpread)
		}
	} else {
		v = rng.Min + (rng.Max-rng.Min)*s.rng.Float64()
	}
	return math.Round(v*100) / 100
}
