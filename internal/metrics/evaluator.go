package metrics

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const DefaultK = 1

type RecallEvaluator struct {
	K       int
	Workers int
	Cutoffs []int
}

type RecallEvaluatorOption func(*RecallEvaluator)

func WithK(k int) RecallEvaluatorOption {
	return func(e *RecallEvaluator) {
		e.K = k
	}
}

// WithWorkers bounds the number of rows evaluated concurrently. Values below 1 mean GOMAXPROCS.
func WithWorkers(workers int) RecallEvaluatorOption {
	return func(e *RecallEvaluator) {
		e.Workers = workers
	}
}

func WithCutoffs(cutoffs ...int) RecallEvaluatorOption {
	return func(e *RecallEvaluator) {
		e.Cutoffs = slices.Clone(cutoffs)
	}
}

func NewRecallEvaluator(opts ...RecallEvaluatorOption) *RecallEvaluator {
	e := &RecallEvaluator{
		K:       DefaultK,
		Workers: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.Workers < 1 {
		e.Workers = runtime.GOMAXPROCS(0)
	}

	return e
}

// Evaluate computes recall@K row by row on a bounded worker group and returns the
// per-sample breakdown. The mean is reduced in row order, so it matches RecallAtK exactly.
func (e *RecallEvaluator) Evaluate(ctx context.Context, yTrue, yProb mat.Matrix) (RecallReport, error) {
	return e.evaluate(ctx, yTrue, yProb, e.K)
}

// Curve returns recall at every configured cutoff, keyed by cutoff.
func (e *RecallEvaluator) Curve(ctx context.Context, yTrue, yProb mat.Matrix) (map[int]float64, error) {
	if len(e.Cutoffs) == 0 {
		return nil, fmt.Errorf("%w: no cutoffs configured", ErrInvalidK)
	}

	curve := make(map[int]float64, len(e.Cutoffs))
	for _, k := range e.Cutoffs {
		report, err := e.evaluate(ctx, yTrue, yProb, k)
		if err != nil {
			return nil, fmt.Errorf("recall@%d: %w", k, err)
		}
		curve[k] = report.Recall
	}

	return curve, nil
}

func (e *RecallEvaluator) evaluate(ctx context.Context, yTrue, yProb mat.Matrix, k int) (RecallReport, error) {
	startTime := time.Now()

	if err := Validate(yTrue, yProb, k); err != nil {
		return RecallReport{}, err
	}

	rows, cols := yTrue.Dims()
	log.Debug().Int("samples", rows).Int("items", cols).Int("k", k).Int("workers", e.Workers).
		Msg("evaluating recall")

	samples := make([]SampleRecall, rows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	for rowIdx := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			samples[rowIdx] = rowRecall(yTrue, yProb, rowIdx, k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RecallReport{}, err
	}

	report := RecallReport{K: k, Samples: samples}
	sum := 0.0
	for _, sample := range samples {
		if sample.Excluded {
			report.Excluded++
			continue
		}
		sum += sample.Recall
		report.Included++
	}

	if report.Included == 0 {
		return RecallReport{}, ErrAllSamplesExcluded
	}
	report.Recall = sum / float64(report.Included)

	log.Debug().Int("k", k).Float64("recall", report.Recall).Int("included", report.Included).
		Int("excluded", report.Excluded).Msgf("Evaluated recall@%d in %v", k, time.Since(startTime))

	return report, nil
}
