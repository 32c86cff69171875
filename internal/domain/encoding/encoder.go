// Package encoding turns normalized profiles into fixed-width feature vectors
// and decodes predicted class indices back into role labels.
package encoding

import (
	"bytes"
	"encoding/gob"
	"sort"
	"strings"
)

// UnknownIndex is the index every value outside the fitted vocabulary maps to.
const UnknownIndex = 0

// UnknownLabel names the reserved index 0.
const UnknownLabel = "unknown"

// LabelEncoder maps categorical values to stable integer indices. Known
// values occupy 1..n in sorted order.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// FitLabels builds an encoder over the distinct non-empty values.
func FitLabels(values []string) *LabelEncoder {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for v := range set {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return newLabelEncoder(classes)
}

func newLabelEncoder(classes []string) *LabelEncoder {
	e := &LabelEncoder{classes: classes, index: make(map[string]int, len(classes))}
	for i, c := range classes {
		e.index[c] = i + 1
	}
	return e
}

// Index returns the index of v, or UnknownIndex and false when v was not
// seen at fit time.
func (e *LabelEncoder) Index(v string) (int, bool) {
	i, ok := e.index[strings.TrimSpace(v)]
	if !ok {
		return UnknownIndex, false
	}
	return i, true
}

// Label returns the value at index i.
func (e *LabelEncoder) Label(i int) (string, bool) {
	if i <= UnknownIndex || i > len(e.classes) {
		return "", false
	}
	return e.classes[i-1], true
}

// Classes returns the fitted vocabulary in index order, excluding unknown.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Size is the number of indices including the reserved unknown slot.
func (e *LabelEncoder) Size() int {
	return len(e.classes) + 1
}

// GobEncode implements gob.GobEncoder.
func (e *LabelEncoder) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e.classes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder. The lookup index is rebuilt so a
// decoded encoder is ready for concurrent reads.
func (e *LabelEncoder) GobDecode(data []byte) error {
	var classes []string
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&classes); err != nil {
		return err
	}
	*e = *newLabelEncoder(classes)
	return nil
}
