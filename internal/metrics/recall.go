// Package metrics computes ranking-quality metrics over relevance and score matrices.
package metrics

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RecallAtK returns the macro-averaged recall@k of yProb against yTrue.
//
// Each row is a sample and each column an item. A row of yTrue holds 0/1 relevance
// flags, the matching row of yProb holds predicted scores. Rows without a relevant
// item are skipped entirely; when every row is skipped ErrAllSamplesExcluded is returned.
func RecallAtK(yTrue, yProb mat.Matrix, k int) (float64, error) {
	if err := Validate(yTrue, yProb, k); err != nil {
		return 0, err
	}

	rows, _ := yTrue.Dims()

	sum := 0.0
	included := 0
	for rowIdx := range rows {
		sample := rowRecall(yTrue, yProb, rowIdx, k)
		if sample.Excluded {
			continue
		}
		sum += sample.Recall
		included++
	}

	if included == 0 {
		return 0, ErrAllSamplesExcluded
	}

	return sum / float64(included), nil
}

// Validate checks shapes, the cutoff and the relevance encoding before any work is done.
func Validate(yTrue, yProb mat.Matrix, k int) error {
	rows, cols := yTrue.Dims()
	probRows, probCols := yProb.Dims()

	if rows != probRows || cols != probCols {
		return fmt.Errorf("%w: y_true is %dx%d, y_prob is %dx%d", ErrShapeMismatch, rows, cols, probRows, probCols)
	}

	if k < 1 || k > cols {
		return fmt.Errorf("%w: got k=%d with %d columns", ErrInvalidK, k, cols)
	}

	for i := range rows {
		for j := range cols {
			if v := yTrue.At(i, j); v != 0 && v != 1 {
				return fmt.Errorf("%w: y_true[%d][%d] = %v", ErrInvalidRelevance, i, j, v)
			}
		}
	}

	return nil
}

// TopKIndices returns the column indices of the k highest scores, best first.
// Equal scores keep their original order so the lower index wins; NaN ranks last.
func TopKIndices(scores []float64, k int) []int {
	k = min(max(k, 0), len(scores))

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	return order[:k]
}

// SampleRecallAtK computes recall@k for one sample after checking it the way Validate
// checks a matrix. Sample is left at zero.
func SampleRecallAtK(truth, scores []float64, k int) (SampleRecall, error) {
	if len(truth) != len(scores) {
		return SampleRecall{}, fmt.Errorf("%w: truth has %d items, scores has %d", ErrShapeMismatch, len(truth), len(scores))
	}

	if k < 1 || k > len(truth) {
		return SampleRecall{}, fmt.Errorf("%w: got k=%d with %d items", ErrInvalidK, k, len(truth))
	}

	for j, v := range truth {
		if v != 0 && v != 1 {
			return SampleRecall{}, fmt.Errorf("%w: truth[%d] = %v", ErrInvalidRelevance, j, v)
		}
	}

	return sampleRecallAtK(truth, scores, k), nil
}

// sampleRecallAtK assumes truth and scores have passed validation.
func sampleRecallAtK(truth, scores []float64, k int) SampleRecall {
	relevant := int(floats.Sum(truth))
	if relevant == 0 {
		return SampleRecall{Excluded: true}
	}

	captured := 0
	for _, idx := range TopKIndices(scores, k) {
		if truth[idx] == 1 {
			captured++
		}
	}

	return SampleRecall{
		Relevant: relevant,
		Captured: captured,
		Recall:   float64(captured) / float64(relevant),
	}
}

func rowRecall(yTrue, yProb mat.Matrix, rowIdx, k int) SampleRecall {
	sample := sampleRecallAtK(mat.Row(nil, rowIdx, yTrue), mat.Row(nil, rowIdx, yProb), k)
	sample.Sample = rowIdx
	return sample
}
