// Package smoketest runs a randomized self-check workload against a
// freshly built tree and verifies the store invariants after every
// operation. It backs the /smoke-test admin endpoint.
package smoketest

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/voxelforge/voxtree/ntree"
)

type Options struct {
	// Seed drives the random operation sequence. Zero picks the
	// current time.
	Seed int64

	// Operations is the number of random writes to apply. Defaults to
	// 256.
	Operations int

	// Dimensions is the number of tree axes. Defaults to 2.
	Dimensions int

	// MaxDepth is the tree subdivision ceiling. Defaults to 5.
	MaxDepth int

	// Arity is the attribute vector length. Defaults to 3.
	Arity int
}

type Results struct {
	RunID      string        `json:"run_id"`
	Seed       int64         `json:"seed"`
	Operations int           `json:"operations"`
	Sets       int           `json:"sets"`
	Deletes    int           `json:"deletes"`
	LeafCount  int           `json:"leaf_count"`
	Duration   time.Duration `json:"duration"`
	Failures   []string      `json:"failures,omitempty"`
	Passed     bool          `json:"passed"`
}

func (o *Options) defaults() {
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.Operations <= 0 {
		o.Operations = 256
	}
	if o.Dimensions <= 0 {
		o.Dimensions = 2
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 5
	}
	if o.Arity <= 0 {
		o.Arity = 3
	}
}

// Run applies a seeded random sequence of sets and deletes and checks
// minimality, round-trip reads and delete semantics after each step.
func Run(ctx context.Context, opts Options) (Results, error) {
	opts.defaults()

	res := Results{
		RunID:      uuid.NewString(),
		Seed:       opts.Seed,
		Operations: opts.Operations,
	}

	cells := 1 << opts.MaxDepth
	bounds := make([][2]float64, opts.Dimensions)
	for i := range bounds {
		bounds[i] = [2]float64{0, float64(cells)}
	}
	defaults := make([]float64, opts.Arity)

	tree, err := ntree.New(ntree.Config{
		Bounds:            bounds,
		MaxDepth:          opts.MaxDepth,
		DefaultAttributes: defaults,
	})
	if err != nil {
		return res, err
	}

	// A small attribute palette keeps sibling collisions frequent so
	// merge actually gets exercised.
	palette := make([][]float64, 4)
	for i := range palette {
		attrs := make([]float64, opts.Arity)
		for j := range attrs {
			attrs[j] = float64(i + j)
		}
		palette[i] = attrs
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	start := time.Now()

	for op := 0; op < opts.Operations; op++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		region := randomRegion(rng, opts.Dimensions, cells)

		var want []float64
		if rng.Intn(10) < 7 {
			want = palette[rng.Intn(len(palette))]
			if err := tree.Set(region, want); err != nil {
				res.Failures = append(res.Failures, fmt.Sprintf("op %d: set failed: %s", op, err))
				continue
			}
			res.Sets++
		} else {
			want = defaults
			if err := tree.Delete(region); err != nil {
				res.Failures = append(res.Failures, fmt.Sprintf("op %d: delete failed: %s", op, err))
				continue
			}
			res.Deletes++
		}

		if err := tree.CheckMinimality(); err != nil {
			res.Failures = append(res.Failures, fmt.Sprintf("op %d: %s", op, err))
		}
		if err := verifyRegion(tree, region, want); err != nil {
			res.Failures = append(res.Failures, fmt.Sprintf("op %d: %s", op, err))
		}
	}

	res.Duration = time.Since(start)
	res.LeafCount = tree.LeafCount()
	res.Passed = len(res.Failures) == 0
	return res, nil
}

func randomRegion(rng *rand.Rand, dims, cells int) ntree.Region {
	region := make(ntree.Region, dims)
	for i := range region {
		start := rng.Intn(cells)
		stop := start + 1 + rng.Intn(cells-start)
		region[i] = ntree.Span(float64(start), float64(stop))
	}
	return region
}

func verifyRegion(tree *ntree.Tree, region ntree.Region, want []float64) error {
	d, err := tree.Get(region)
	if err != nil {
		return errors.New("reading back the region failed").Wrap(err)
	}

	values := d.Values()
	arity := d.Arity()
	for i := 0; i < len(values); i += arity {
		for j := 0; j < arity; j++ {
			if values[i+j] != want[j] {
				return errors.New("region read does not match the written attributes").
					WithType(ntree.ErrTypeInvariant).
					WithTag("cell", i/arity)
			}
		}
	}
	return nil
}

// Handle triggers a run over the admin endpoint and responds with the
// results as JSON.
func Handle(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := Run(r.Context(), opts)
		if err != nil {
			logs.Warn(errors.New("smoke test run failed").Wrap(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if !res.Passed {
			logs.WithTag("run_id", res.RunID).
				WithTag("seed", res.Seed).
				Warn(errors.New("smoke test detected invariant failures").
					WithTag("failures", len(res.Failures)))
		}

		b, err := json.Marshal(res)
		if err != nil {
			logs.Warn(errors.New("encoding smoke test results failed").Wrap(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	}
}
