package training

import (
	"sort"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/forest"
)

// TopFeatureCount bounds the importances reported with a model.
const TopFeatureCount = 10

// FeatureImportance is one ranked feature weight.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Metrics are held-out evaluation scores. Precision, recall and F1 are
// support-weighted averages; a class with no predictions scores 0.
type Metrics struct {
	Accuracy    float64             `json:"accuracy"`
	Precision   float64             `json:"precision"`
	Recall      float64             `json:"recall"`
	F1          float64             `json:"f1"`
	TopFeatures []FeatureImportance `json:"top_features"`
}

// Score computes accuracy and weighted precision, recall and F1.
func Score(yTrue, yPred []int) Metrics {
	n := len(yTrue)
	if n == 0 || n != len(yPred) {
		return Metrics{}
	}

	support := make(map[int]int)
	predicted := make(map[int]int)
	truePos := make(map[int]int)
	correct := 0
	for i := range yTrue {
		support[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			truePos[yTrue[i]]++
			correct++
		}
	}

	var m Metrics
	m.Accuracy = float64(correct) / float64(n)
	for class, s := range support {
		tp := float64(truePos[class])
		var precision, recall, f1 float64
		if predicted[class] > 0 {
			precision = tp / float64(predicted[class])
		}
		recall = tp / float64(s)
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		w := float64(s) / float64(n)
		m.Precision += w * precision
		m.Recall += w * recall
		m.F1 += w * f1
	}
	return m
}

// Accuracy is the share of matching labels.
func Accuracy(yTrue, yPred []int) float64 {
	return Score(yTrue, yPred).Accuracy
}

// TopFeatures ranks importances by weight, ties by feature order.
func TopFeatures(names []string, importances []float64, k int) []FeatureImportance {
	out := make([]FeatureImportance, 0, len(importances))
	for i, v := range importances {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		out = append(out, FeatureImportance{Feature: name, Importance: v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func predictAll(f *forest.Forest, X [][]float64, idx []int) []int {
	out := make([]int, len(idx))
	for i, row := range idx {
		out[i] = f.Predict(X[row])
	}
	return out
}

func labelsAt(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, row := range idx {
		out[i] = y[row]
	}
	return out
}

func rowsAt(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, row := range idx {
		out[i] = X[row]
	}
	return out
}
