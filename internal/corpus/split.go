// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

// ErrInvalidFraction reports split fractions that are out of range or
// unordered. The caller must fix its configuration; there is nothing to
// retry.
var ErrInvalidFraction = errors.New("invalid split fraction")

// Splits is a strict partition of a document set into train, dev, and
// test subsets. Every input document appears in exactly one subset.
type Splits struct {
	Train []types.Datasheet
	Dev   []types.Datasheet
	Test  []types.Datasheet
}

// Partition assigns each document to exactly one of train, dev, or test
// based on its rank in ascending ID order. With N documents, rank i goes
// to train when i < trainFrac*N, to dev when i < devFrac*N, and to test
// otherwise. The assignment is a pure function of the document IDs and
// the two fractions, so re-running over the same corpus reproduces the
// same membership.
//
// Fractions must satisfy 0 <= trainFrac <= devFrac <= 1; otherwise
// Partition returns an error wrapping ErrInvalidFraction and no
// assignment. The input slice is not modified. An empty input yields
// three empty subsets.
func Partition(docs []types.Datasheet, trainFrac, devFrac float64) (Splits, error) {
	if trainFrac < 0 || trainFrac > 1 || devFrac < 0 || devFrac > 1 {
		return Splits{}, fmt.Errorf("%w: fractions %v, %v outside [0,1]", ErrInvalidFraction, trainFrac, devFrac)
	}
	if trainFrac > devFrac {
		return Splits{}, fmt.Errorf("%w: train fraction %v exceeds dev fraction %v", ErrInvalidFraction, trainFrac, devFrac)
	}

	sorted := make([]types.Datasheet, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var s Splits
	n := float64(len(sorted))
	for i, d := range sorted {
		switch {
		case float64(i) < trainFrac*n:
			s.Train = append(s.Train, d)
		case float64(i) < devFrac*n:
			s.Dev = append(s.Dev, d)
		default:
			s.Test = append(s.Test, d)
		}
	}
	return s, nil
}

// Label returns the split assignment for a document ID.
func (s Splits) Label(docID string) (types.SplitLabel, bool) {
	for _, d := range s.Train {
		if d.ID == docID {
			return types.SplitTrain, true
		}
	}
	for _, d := range s.Dev {
		if d.ID == docID {
			return types.SplitDev, true
		}
	}
	for _, d := range s.Test {
		if d.ID == docID {
			return types.SplitTest, true
		}
	}
	return "", false
}

// Counts returns the subset sizes keyed by split label.
func (s Splits) Counts() map[types.SplitLabel]int {
	return map[types.SplitLabel]int{
		types.SplitTrain: len(s.Train),
		types.SplitDev:   len(s.Dev),
		types.SplitTest:  len(s.Test),
	}
}

// File builds the persisted form of the assignment for corpus/splits.yaml.
func (s Splits) File(trainFrac, devFrac float64) types.SplitFile {
	assignments := make(map[string]types.SplitLabel, len(s.Train)+len(s.Dev)+len(s.Test))
	for _, d := range s.Train {
		assignments[d.ID] = types.SplitTrain
	}
	for _, d := range s.Dev {
		assignments[d.ID] = types.SplitDev
	}
	for _, d := range s.Test {
		assignments[d.ID] = types.SplitTest
	}
	return types.SplitFile{
		TrainFrac:   trainFrac,
		DevFrac:     devFrac,
		Counts:      s.Counts(),
		Assignments: assignments,
	}
}
