package training

import (
	"math"
	"math/rand"
	"sort"
)

// TestFraction is the share of samples held out for evaluation.
const TestFraction = 0.2

// Partition is the result of a train/test split over sample indices.
type Partition struct {
	Train      []int
	Test       []int
	Stratified bool
}

// CanStratify reports whether a stratified split is possible: more than one
// class and every class with at least two members.
func CanStratify(y []int) bool {
	counts := classCounts(y)
	if len(counts) < 2 {
		return false
	}
	for _, c := range counts {
		if c < 2 {
			return false
		}
	}
	return true
}

// Split partitions indices of y into train and test sets, stratifying by
// label when CanStratify holds. Shuffling is seeded.
func Split(y []int, seed int64) Partition {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split
	n := len(y)
	if n < 2 {
		return Partition{Train: seq(n)}
	}

	if !CanStratify(y) {
		idx := rng.Perm(n)
		nTest := int(math.Ceil(TestFraction * float64(n)))
		if nTest > n-1 {
			nTest = n - 1
		}
		return Partition{Train: sorted(idx[nTest:]), Test: sorted(idx[:nTest])}
	}

	var p Partition
	p.Stratified = true
	for _, class := range sortedClasses(y) {
		members := membersOf(y, class)
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		nTest := int(math.Round(TestFraction * float64(len(members))))
		if nTest < 1 {
			nTest = 1
		}
		if nTest > len(members)-1 {
			nTest = len(members) - 1
		}
		p.Test = append(p.Test, members[:nTest]...)
		p.Train = append(p.Train, members[nTest:]...)
	}
	p.Train = sorted(p.Train)
	p.Test = sorted(p.Test)
	return p
}

// StratifiedFolds assigns indices to k folds, dealing each class's shuffled
// members round-robin so every fold sees every class with >= k members.
func StratifiedFolds(idx []int, y []int, k int, seed int64) [][]int {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible folds
	byClass := make(map[int][]int)
	for _, i := range idx {
		byClass[y[i]] = append(byClass[y[i]], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	folds := make([][]int, k)
	next := 0
	for _, c := range classes {
		members := byClass[c]
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		for _, m := range members {
			folds[next%k] = append(folds[next%k], m)
			next++
		}
	}
	return folds
}

// MinClassCount is the size of the smallest class among idx.
func MinClassCount(idx []int, y []int) int {
	counts := make(map[int]int)
	for _, i := range idx {
		counts[y[i]]++
	}
	smallest := 0
	for _, c := range counts {
		if smallest == 0 || c < smallest {
			smallest = c
		}
	}
	return smallest
}

func classCounts(y []int) map[int]int {
	counts := make(map[int]int)
	for _, c := range y {
		counts[c]++
	}
	return counts
}

func sortedClasses(y []int) []int {
	counts := classCounts(y)
	out := make([]int, 0, len(counts))
	for c := range counts {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

func membersOf(y []int, class int) []int {
	var out []int
	for i, c := range y {
		if c == class {
			out = append(out, i)
		}
	}
	return out
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func sorted(v []int) []int {
	out := append([]int(nil), v...)
	sort.Ints(out)
	return out
}
