package training

import "github.com/Ritik-JS/alumni-careerpath/internal/domain/forest"

// SearchKind tags the hyperparameter search policy.
type SearchKind string

// Search policies, from cheapest to most thorough.
const (
	SearchSkip      SearchKind = "skip"
	SearchSmallGrid SearchKind = "small_grid"
	SearchFullGrid  SearchKind = "full_grid"
)

// Size thresholds for the search policy.
const (
	maxFolds          = 3
	samplesPerFold    = 10
	minSearchSamples  = 20
	smallGridCeiling  = 50
	minUsefulFoldSize = 2
)

// SearchStrategy is the tagged result of ChooseSearchStrategy. Folds is
// zero for SearchSkip.
type SearchStrategy struct {
	Kind  SearchKind `json:"kind"`
	Folds int        `json:"folds"`
}

// ChooseSearchStrategy sizes the hyperparameter search to the data. The fold
// count is min(3, trainSize/10, minClassCount); fewer than two folds or
// fewer than twenty training samples skips search entirely.
func ChooseSearchStrategy(trainSize, minClassCount int) SearchStrategy {
	folds := maxFolds
	if f := trainSize / samplesPerFold; f < folds {
		folds = f
	}
	if minClassCount < folds {
		folds = minClassCount
	}
	switch {
	case folds < minUsefulFoldSize || trainSize < minSearchSamples:
		return SearchStrategy{Kind: SearchSkip}
	case trainSize < smallGridCeiling:
		return SearchStrategy{Kind: SearchSmallGrid, Folds: folds}
	default:
		return SearchStrategy{Kind: SearchFullGrid, Folds: folds}
	}
}

// Candidates returns the parameter sets to evaluate, in grid order. Skip
// yields the fixed defaults only.
func (s SearchStrategy) Candidates(seed int64) []forest.Params {
	switch s.Kind {
	case SearchSmallGrid:
		return grid(seed, []int{50, 100}, []int{5, 10}, []int{2}, []int{1})
	case SearchFullGrid:
		return grid(seed, []int{100, 200}, []int{10, 20, 0}, []int{2, 5}, []int{1, 2})
	default:
		p := forest.DefaultParams()
		p.Seed = seed
		return []forest.Params{p}
	}
}

func grid(seed int64, trees, depths, splits, leaves []int) []forest.Params {
	var out []forest.Params
	for _, t := range trees {
		for _, d := range depths {
			for _, s := range splits {
				for _, l := range leaves {
					out = append(out, forest.Params{
						NumTrees:        t,
						MaxDepth:        d,
						MinSamplesSplit: s,
						MinSamplesLeaf:  l,
						Seed:            seed,
					})
				}
			}
		}
	}
	return out
}
