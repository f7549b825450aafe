package main

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/metriks/internal/config"
	"github.com/tensorplex-labs/metriks/internal/dataset"
	"github.com/tensorplex-labs/metriks/internal/metrics"
	"github.com/tensorplex-labs/metriks/internal/utils/logger"
)

var (
	datasetPath = flag.String("dataset", "", "path to a JSON dataset (.zst for zstd-compressed); overrides RECALL_DATASET")
	kFlag       = flag.Int("k", 0, "cutoff rank; overrides RECALL_K and the dataset's k")
	cutoffsFlag = flag.String("cutoffs", "", "comma separated cutoffs for a recall curve; overrides RECALL_CUTOFFS")
	plot        = flag.Bool("plot", false, "draw per-sample recall in the terminal")
)

type scenario struct {
	name  string
	yTrue [][]float64
	yProb [][]float64
	k     int
}

var referenceScenarios = []scenario{
	{
		name:  "wikipedia",
		yTrue: [][]float64{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}},
		yProb: [][]float64{{0.4, 0.6, 0.3}, {0.1, 0.2, 0.9}, {0.9, 0.6, 0.3}},
		k:     2,
	},
	{
		name:  "perfect",
		yTrue: [][]float64{{0, 1, 0}, {1, 0, 0}, {0, 1, 0}, {1, 0, 0}, {0, 0, 1}},
		yProb: [][]float64{{0.3, 0.7, 0.0}, {0.1, 0.0, 0.0}, {0.1, 0.5, 0.3}, {0.6, 0.2, 0.4}, {0.1, 0.2, 0.3}},
		k:     1,
	},
	{
		name:  "remove zeros",
		yTrue: [][]float64{{0, 0, 1, 1}, {1, 1, 1, 0}, {0, 0, 0, 0}},
		yProb: [][]float64{{0.1, 0.4, 0.35, 0.8}, {0.3, 0.2, 0.7, 0.8}, {0.1, 0.2, 0.3, 0.4}},
		k:     2,
	},
	{
		name:  "few zeros",
		yTrue: [][]float64{{0, 1, 1, 1, 1}, {1, 1, 1, 1, 1}, {1, 1, 1, 1, 0}},
		yProb: [][]float64{{0.1, 0.4, 0.35, 0.8, 0.9}, {0.3, 0.2, 0.7, 0.8, 0.6}, {0.1, 0.2, 0.3, 0.4, 0.5}},
		k:     2,
	},
}

func main() {
	logger.Init()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if *datasetPath != "" {
		cfg.Dataset = *datasetPath
	}
	if *cutoffsFlag != "" {
		cutoffs, err := parseCutoffs(*cutoffsFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -cutoffs")
		}
		cfg.Cutoffs = cutoffs
	}

	ctx := context.Background()

	if cfg.Dataset == "" {
		log.Info().Msg("--- No dataset given, evaluating reference scenarios ---")
		for _, s := range referenceScenarios {
			yTrue, err := dataset.NewMatrix(s.yTrue)
			if err != nil {
				log.Fatal().Err(err).Str("scenario", s.name).Msg("bad scenario")
			}
			yProb, err := dataset.NewMatrix(s.yProb)
			if err != nil {
				log.Fatal().Err(err).Str("scenario", s.name).Msg("bad scenario")
			}
			k, err := resolveK(*kFlag, s.k, cfg.K)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid k")
			}
			if err := run(ctx, cfg, s.name, yTrue, yProb, k); err != nil {
				log.Error().Err(err).Str("scenario", s.name).Msg("evaluation failed")
			}
		}
		return
	}

	ds, err := dataset.Load(cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dataset")
	}
	yTrue, yProb, err := ds.Matrices()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build matrices")
	}

	k, err := resolveK(*kFlag, ds.K, cfg.K)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid k")
	}
	if err := run(ctx, cfg, cfg.Dataset, yTrue, yProb, k); err != nil {
		log.Error().Err(err).Str("dataset", cfg.Dataset).Msg("evaluation failed")
		os.Exit(1)
	}
}

// resolveK picks the cutoff: -k wins over the dataset, which wins over RECALL_K.
// Zero means unset for both the flag and the dataset.
func resolveK(flagK, datasetK, configK int) (int, error) {
	switch {
	case flagK < 0:
		return 0, fmt.Errorf("-k must be positive, got %d", flagK)
	case flagK > 0:
		return flagK, nil
	case datasetK < 0:
		return 0, fmt.Errorf("dataset k must be positive, got %d", datasetK)
	case datasetK > 0:
		return datasetK, nil
	}
	return configK, nil
}

func run(ctx context.Context, cfg *config.AppConfig, name string, yTrue, yProb mat.Matrix, k int) error {
	evaluator := metrics.NewRecallEvaluator(
		metrics.WithK(k),
		metrics.WithWorkers(cfg.Workers),
		metrics.WithCutoffs(cfg.Cutoffs...),
	)

	report, err := evaluator.Evaluate(ctx, yTrue, yProb)
	if err != nil {
		return err
	}
	log.Info().Str("name", name).Int("k", report.K).Int("included", report.Included).
		Int("excluded", report.Excluded).Float64("recall", report.Recall).
		Msgf("%s: recall@%d = %f", name, report.K, report.Recall)

	if len(evaluator.Cutoffs) > 0 {
		curve, err := evaluator.Curve(ctx, yTrue, yProb)
		if err != nil {
			return err
		}
		for _, cutoff := range slices.Sorted(maps.Keys(curve)) {
			log.Info().Str("name", name).Int("k", cutoff).Float64("recall", curve[cutoff]).
				Msgf("%s: recall@%d = %f", name, cutoff, curve[cutoff])
		}
	}

	if *plot {
		metrics.PlotSampleRecallTerminal(os.Stdout, report, name)
	}
	return nil
}

func parseCutoffs(s string) ([]int, error) {
	var cutoffs []int
	for _, part := range strings.Split(s, ",") {
		cutoff, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		cutoffs = append(cutoffs, cutoff)
	}
	return cutoffs, nil
}
