package forest

import (
	"math/rand"
	"sort"
)

type builder struct {
	X          [][]float64
	y          []int
	numClasses int
	params     Params
	rng        *rand.Rand
	nodes      []Node
	importance []float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
}

// build grows the subtree for idx and returns its node index.
func (b *builder) build(idx []int, depth int) int {
	counts := b.counts(idx)
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{})

	if b.stop(idx, counts, depth) {
		b.nodes[id] = b.leafNode(counts, len(idx))
		return id
	}
	s, ok := b.bestSplit(idx, counts)
	if !ok {
		b.nodes[id] = b.leafNode(counts, len(idx))
		return id
	}

	b.importance[s.feature] += s.gain
	left := b.build(s.left, depth+1)
	right := b.build(s.right, depth+1)
	b.nodes[id] = Node{Feature: s.feature, Threshold: s.threshold, Left: left, Right: right}
	return id
}

func (b *builder) stop(idx []int, counts []int, depth int) bool {
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return true
	}
	if len(idx) < b.params.MinSamplesSplit || len(idx) < 2*b.params.MinSamplesLeaf {
		return true
	}
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

func (b *builder) leafNode(counts []int, n int) Node {
	proba := make([]float64, b.numClasses)
	for c, k := range counts {
		proba[c] = float64(k) / float64(n)
	}
	return Node{Leaf: true, Proba: proba}
}

func (b *builder) counts(idx []int) []int {
	counts := make([]int, b.numClasses)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	return counts
}

// bestSplit scans every threshold between distinct consecutive values of a
// random feature subset. Gain is the weighted gini decrease in sample units.
func (b *builder) bestSplit(idx []int, counts []int) (split, bool) {
	n := len(idx)
	parent := gini(counts, n)
	best := split{gain: 0}
	found := false

	sorted := make([]int, n)
	features, mtry := featureOrder(len(b.X[0]), b.rng)
	for k, feature := range features {
		// Keep drawing past mtry only while no valid split has been found.
		if k >= mtry && found {
			break
		}
		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.X[sorted[i]][feature] < b.X[sorted[j]][feature]
		})

		leftCounts := make([]int, b.numClasses)
		rightCounts := make([]int, b.numClasses)
		copy(rightCounts, counts)

		for pos := 0; pos < n-1; pos++ {
			c := b.y[sorted[pos]]
			leftCounts[c]++
			rightCounts[c]--

			nl := pos + 1
			nr := n - nl
			cur := b.X[sorted[pos]][feature]
			next := b.X[sorted[pos+1]][feature]
			if cur == next || nl < b.params.MinSamplesLeaf || nr < b.params.MinSamplesLeaf {
				continue
			}
			gain := float64(n)*parent - float64(nl)*gini(leftCounts, nl) - float64(nr)*gini(rightCounts, nr)
			if gain > best.gain+1e-12 {
				best = split{feature: feature, threshold: (cur + next) / 2, gain: gain}
				found = true
			}
		}
	}
	if !found {
		return split{}, false
	}

	for _, i := range idx {
		if b.X[i][best.feature] <= best.threshold {
			best.left = append(best.left, i)
		} else {
			best.right = append(best.right, i)
		}
	}
	return best, true
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		g -= p * p
	}
	return g
}
