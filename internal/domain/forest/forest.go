// Package forest implements a random forest of CART classification trees:
// gini impurity, bootstrap sampling and a random subset of sqrt(features)
// candidates per split.
package forest

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
)

// Params are the forest hyperparameters.
type Params struct {
	NumTrees        int   `json:"n_estimators"`
	MaxDepth        int   `json:"max_depth"` // 0 means unlimited
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	Seed            int64 `json:"random_state"`
}

// DefaultParams are used when the training set is too small to search.
func DefaultParams() Params {
	return Params{
		NumTrees:        100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            42,
	}
}

func (p Params) validate() error {
	switch {
	case p.NumTrees < 1:
		return fmt.Errorf("%w: n_estimators=%d", ErrInvalidParams, p.NumTrees)
	case p.MaxDepth < 0:
		return fmt.Errorf("%w: max_depth=%d", ErrInvalidParams, p.MaxDepth)
	case p.MinSamplesSplit < 2:
		return fmt.Errorf("%w: min_samples_split=%d", ErrInvalidParams, p.MinSamplesSplit)
	case p.MinSamplesLeaf < 1:
		return fmt.Errorf("%w: min_samples_leaf=%d", ErrInvalidParams, p.MinSamplesLeaf)
	}
	return nil
}

// Forest is a fitted ensemble. Exported fields exist for gob persistence;
// a fitted forest is never mutated.
type Forest struct {
	Trees       []Tree
	NumClasses  int
	NumFeatures int
	Importances []float64
	Params      Params
}

// Tree is a flattened binary tree; Nodes[0] is the root.
type Tree struct {
	Nodes []Node
}

// Node is either an internal split or a leaf carrying class probabilities.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Leaf      bool
	Proba     []float64
}

// Fit trains a forest on X (rows of equal width) and labels y in
// [0, numClasses).
func Fit(X [][]float64, y []int, numClasses int, p Params) (*Forest, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), width)
		}
	}
	for i, label := range y {
		if label < 0 || label >= numClasses {
			return nil, fmt.Errorf("%w: label %d at row %d outside [0,%d)", ErrShapeMismatch, label, i, numClasses)
		}
	}

	f := &Forest{
		Trees:       make([]Tree, p.NumTrees),
		NumClasses:  numClasses,
		NumFeatures: width,
		Params:      p,
	}
	importances := make([][]float64, p.NumTrees)

	workers := runtime.NumCPU()
	if workers > p.NumTrees {
		workers = p.NumTrees
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				// Each tree owns its generator so results do not depend on scheduling.
				rng := rand.New(rand.NewSource(p.Seed + int64(t)*7919)) //nolint:gosec // reproducible sampling, not security
				b := &builder{X: X, y: y, numClasses: numClasses, params: p, rng: rng, importance: make([]float64, width)}
				b.build(bootstrap(len(X), rng), 0)
				f.Trees[t] = Tree{Nodes: b.nodes}
				importances[t] = normalize(b.importance)
			}
		}()
	}
	for t := 0; t < p.NumTrees; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	f.Importances = make([]float64, width)
	for _, imp := range importances {
		for i, v := range imp {
			f.Importances[i] += v
		}
	}
	f.Importances = normalize(f.Importances)
	return f, nil
}

// PredictProba returns the mean leaf class distribution across trees.
func (f *Forest) PredictProba(x []float64) []float64 {
	out := make([]float64, f.NumClasses)
	if len(f.Trees) == 0 {
		return out
	}
	for i := range f.Trees {
		leaf := f.Trees[i].leaf(x)
		for c, p := range leaf.Proba {
			out[c] += p
		}
	}
	n := float64(len(f.Trees))
	for c := range out {
		out[c] /= n
	}
	return out
}

// Predict returns the most probable class, lowest index on ties.
func (f *Forest) Predict(x []float64) int {
	return argmax(f.PredictProba(x))
}

// Ranked pairs a class index with its probability.
type Ranked struct {
	Class       int
	Probability float64
}

// TopK returns up to k classes with probability strictly above minProb,
// ordered by probability descending then class index.
func TopK(proba []float64, k int, minProb float64) []Ranked {
	out := make([]Ranked, 0, len(proba))
	for c, p := range proba {
		if p > minProb {
			out = append(out, Ranked{Class: c, Probability: p})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func (t *Tree) leaf(x []float64) *Node {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n
		}
		if n.Feature < len(x) && x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func bootstrap(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func normalize(v []float64) []float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	out := make([]float64, len(v))
	if sum <= 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / sum
	}
	return out
}

// featureOrder returns a random feature permutation and the number of
// candidates (sqrt of width) to evaluate per split.
func featureOrder(width int, rng *rand.Rand) ([]int, int) {
	m := int(math.Sqrt(float64(width)))
	if m < 1 {
		m = 1
	}
	return rng.Perm(width), m
}
