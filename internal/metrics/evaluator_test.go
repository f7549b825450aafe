package metrics

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"
)

type RecallEvaluatorTestSuite struct {
	suite.Suite
	yTrue *mat.Dense
	yProb *mat.Dense
}

func (suite *RecallEvaluatorTestSuite) SetupSuite() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func (suite *RecallEvaluatorTestSuite) SetupTest() {
	suite.yTrue = dense([][]float64{{0, 0, 1, 1}, {1, 1, 1, 0}, {0, 0, 0, 0}})
	suite.yProb = dense([][]float64{{0.1, 0.4, 0.35, 0.8}, {0.3, 0.2, 0.7, 0.8}, {0.1, 0.2, 0.3, 0.4}})
}

func (suite *RecallEvaluatorTestSuite) TestDefaults() {
	e := NewRecallEvaluator()
	suite.Equal(DefaultK, e.K)
	suite.GreaterOrEqual(e.Workers, 1)
	suite.Empty(e.Cutoffs)

	e = NewRecallEvaluator(WithWorkers(-3))
	suite.GreaterOrEqual(e.Workers, 1)
}

func (suite *RecallEvaluatorTestSuite) TestEvaluateReport() {
	report, err := NewRecallEvaluator(WithK(2), WithWorkers(2)).Evaluate(context.Background(), suite.yTrue, suite.yProb)
	suite.Require().NoError(err)

	suite.Equal(2, report.K)
	suite.InDelta(5.0/12.0, report.Recall, 1e-12)
	suite.Equal(2, report.Included)
	suite.Equal(1, report.Excluded)
	suite.Require().Len(report.Samples, 3)

	suite.Equal(SampleRecall{Sample: 0, Relevant: 2, Captured: 1, Recall: 0.5}, report.Samples[0])
	suite.Equal(SampleRecall{Sample: 1, Relevant: 3, Captured: 1, Recall: 1.0 / 3.0}, report.Samples[1])
	suite.Equal(SampleRecall{Sample: 2, Excluded: true}, report.Samples[2])
}

func (suite *RecallEvaluatorTestSuite) TestEvaluateMatchesRecallAtK() {
	rng := rand.New(rand.NewPCG(42, 24))
	yTrue, yProb := randomCase(rng, 300, 20)

	for _, workers := range []int{1, 4, 16} {
		for _, k := range []int{1, 5, 20} {
			expected, err := RecallAtK(yTrue, yProb, k)
			suite.Require().NoError(err)

			report, err := NewRecallEvaluator(WithK(k), WithWorkers(workers)).Evaluate(context.Background(), yTrue, yProb)
			suite.Require().NoError(err)
			suite.Equal(expected, report.Recall, "workers=%d k=%d", workers, k)
		}
	}
}

func (suite *RecallEvaluatorTestSuite) TestEvaluateErrors() {
	e := NewRecallEvaluator(WithK(5))
	_, err := e.Evaluate(context.Background(), suite.yTrue, suite.yProb)
	suite.ErrorIs(err, ErrInvalidK)

	report, err := NewRecallEvaluator().Evaluate(context.Background(), mat.NewDense(2, 4, nil), mat.NewDense(2, 4, nil))
	suite.ErrorIs(err, ErrAllSamplesExcluded)
	suite.Equal(RecallReport{}, report)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRecallEvaluator().Evaluate(ctx, suite.yTrue, suite.yProb)
	suite.ErrorIs(err, context.Canceled)
}

func (suite *RecallEvaluatorTestSuite) TestCurve() {
	e := NewRecallEvaluator(WithCutoffs(1, 2, 3, 4))
	curve, err := e.Curve(context.Background(), suite.yTrue, suite.yProb)
	suite.Require().NoError(err)

	suite.Len(curve, 4)
	suite.InDelta(5.0/12.0, curve[2], 1e-12)
	suite.Equal(1.0, curve[4])
	for k := 2; k <= 4; k++ {
		suite.GreaterOrEqual(curve[k], curve[k-1])
	}

	_, err = NewRecallEvaluator(WithCutoffs(1, 9)).Curve(context.Background(), suite.yTrue, suite.yProb)
	suite.ErrorIs(err, ErrInvalidK)

	_, err = NewRecallEvaluator().Curve(context.Background(), suite.yTrue, suite.yProb)
	suite.ErrorIs(err, ErrInvalidK)
}

func (suite *RecallEvaluatorTestSuite) TestPlot() {
	report, err := NewRecallEvaluator(WithK(2)).Evaluate(context.Background(), suite.yTrue, suite.yProb)
	suite.Require().NoError(err)

	var buf bytes.Buffer
	PlotSampleRecallTerminal(&buf, report, "Sample Recall")

	out := buf.String()
	suite.Contains(out, "Sample Recall (recall@2 = 0.416667)")
	suite.Contains(out, "0.500000 | "+strings.Repeat("█", 25))
	suite.Contains(out, "Excluded (no relevant items): [2]")
	suite.Less(bytes.Index(buf.Bytes(), []byte("0.333333")), bytes.Index(buf.Bytes(), []byte("0.500000")))
}

func TestRecallEvaluatorTestSuite(t *testing.T) {
	suite.Run(t, new(RecallEvaluatorTestSuite))
}
