package main

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/Likeheart7/jdk12u/heap"
	"github.com/Likeheart7/jdk12u/oop"
)

// Scenario describes a synthetic heap and the pass configuration to run
// over it. Zero fields take defaults.
type Scenario struct {
	Seed     int64 `yaml:"seed"`
	Objects  int   `yaml:"objects"`
	Fanout   int   `yaml:"fanout"`    // max outgoing fields per ordinary object
	Arrays   int   `yaml:"arrays"`    // number of reference arrays
	ArrayLen int   `yaml:"array-len"` // max elements per array
	Roots    int   `yaml:"roots"`
	Workers  int   `yaml:"workers"`

	StackCap    int  `yaml:"stack-cap"`
	ChunkStride int  `yaml:"chunk-stride"`
	Verify      bool `yaml:"verify"`
	Dedup       bool `yaml:"dedup"`

	// Population fractions, each in [0, 1].
	ClosedArchive float64 `yaml:"closed-archive"`
	OpenArchive   float64 `yaml:"open-archive"`
	Hashed        float64 `yaml:"hashed"`  // objects with an identity hash to preserve
	Strings       float64 `yaml:"strings"` // deduplication candidates
}

// DefaultScenario is a medium-sized heap exercising every subsystem.
func DefaultScenario() *Scenario {
	return &Scenario{
		Seed:          1,
		Objects:       200000,
		Fanout:        4,
		Arrays:        64,
		ArrayLen:      20000,
		Roots:         128,
		Workers:       8,
		Verify:        true,
		Dedup:         true,
		ClosedArchive: 0.01,
		OpenArchive:   0.02,
		Hashed:        0.05,
		Strings:       0.10,
	}
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScenario()
	if err := yaml.UnmarshalStrict(data, sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func (s *Scenario) validate() error {
	if s.Objects < 1 {
		return fmt.Errorf("objects must be positive, got %d", s.Objects)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", s.Workers)
	}
	if s.Roots < 1 {
		return fmt.Errorf("roots must be positive, got %d", s.Roots)
	}
	if s.Fanout < 0 || s.Arrays < 0 || s.ArrayLen < 0 {
		return fmt.Errorf("fanout, arrays and array-len must not be negative")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"closed-archive", s.ClosedArchive},
		{"open-archive", s.OpenArchive},
		{"hashed", s.Hashed},
		{"strings", s.Strings},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s must be a fraction in [0, 1], got %v", f.name, f.value)
		}
	}
	if s.ClosedArchive+s.OpenArchive > 1 {
		return fmt.Errorf("archive fractions sum to more than 1")
	}
	return nil
}

// Build constructs the heap and root set. The same seed always produces
// the same graph.
func (s *Scenario) Build() (*heap.Heap, []oop.Ref) {
	rng := rand.New(rand.NewSource(s.Seed))
	h := heap.New()
	total := s.Objects + s.Arrays

	appLoader := &oop.ClassLoaderData{Holder: h.RefAt(1)}
	klasses := []*oop.Klass{
		{Name: "java/lang/Object"}, // bootstrap loader, no holder edge
		{Name: "app/Node", Loader: appLoader},
		{Name: "java/lang/String"},
		{Name: "[Ljava/lang/Object;", Loader: appLoader},
	}

	// randRef picks a field target: nil a quarter of the time, otherwise
	// any object or array slot.
	randRef := func() oop.Ref {
		if rng.Intn(4) == 0 {
			return oop.Nil
		}
		return h.RefAt(uint64(rng.Intn(total) + 1))
	}

	for i := 1; i <= s.Objects; i++ {
		fields := make([]oop.Ref, rng.Intn(s.Fanout+1))
		for j := range fields {
			fields[j] = randRef()
		}
		o := heap.Obj(fields...).WithKlass(klasses[rng.Intn(3)])
		if i > 1 {
			// Slot 1 is the class-loader holder and stays a normal,
			// plain object.
			p := rng.Float64()
			switch {
			case p < s.ClosedArchive:
				o.WithRegion(heap.RegionClosedArchive)
			case p < s.ClosedArchive+s.OpenArchive:
				o.WithRegion(heap.RegionOpenArchive)
			}
			if rng.Float64() < s.Hashed {
				o.WithMark(oop.Neutral.WithHash(uint64(rng.Int63()) | 1))
			}
			if rng.Float64() < s.Strings {
				o.AsString()
			}
		}
		h.Add(h.RefAt(uint64(i)), o)
	}

	for i := s.Objects + 1; i <= total; i++ {
		elems := make([]oop.Ref, rng.Intn(s.ArrayLen+1))
		for j := range elems {
			elems[j] = randRef()
		}
		h.Add(h.RefAt(uint64(i)), heap.Arr(elems...).WithKlass(klasses[3]))
	}

	roots := make([]oop.Ref, 0, s.Roots)
	roots = append(roots, h.RefAt(1))
	for len(roots) < s.Roots {
		roots = append(roots, h.RefAt(uint64(rng.Intn(total)+1)))
	}
	return h, roots
}
