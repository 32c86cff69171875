package training

import (
	"fmt"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/forest"
)

// SearchResult is the winner of a grid search.
type SearchResult struct {
	Params    forest.Params `json:"params"`
	CVScore   float64       `json:"cv_score"`
	Evaluated int           `json:"evaluated"`
}

// Search picks hyperparameters for the training indices. Skip returns the
// defaults unscored; grids are scored by mean stratified k-fold accuracy and
// the first best candidate in grid order wins.
func Search(X [][]float64, y []int, train []int, numClasses int, s SearchStrategy, seed int64) (SearchResult, error) {
	candidates := s.Candidates(seed)
	if s.Kind == SearchSkip {
		return SearchResult{Params: candidates[0]}, nil
	}

	folds := StratifiedFolds(train, y, s.Folds, seed)
	best := SearchResult{CVScore: -1}
	for _, p := range candidates {
		score, err := crossValidate(X, y, folds, numClasses, p)
		if err != nil {
			return SearchResult{}, fmt.Errorf("cross-validate %+v: %w", p, err)
		}
		best.Evaluated++
		if score > best.CVScore {
			best.Params = p
			best.CVScore = score
		}
	}
	return best, nil
}

func crossValidate(X [][]float64, y []int, folds [][]int, numClasses int, p forest.Params) (float64, error) {
	total := 0.0
	for k := range folds {
		var fitIdx []int
		for j, fold := range folds {
			if j != k {
				fitIdx = append(fitIdx, fold...)
			}
		}
		f, err := forest.Fit(rowsAt(X, fitIdx), labelsAt(y, fitIdx), numClasses, p)
		if err != nil {
			return 0, err
		}
		total += Accuracy(labelsAt(y, folds[k]), predictAll(f, X, folds[k]))
	}
	return total / float64(len(folds)), nil
}
