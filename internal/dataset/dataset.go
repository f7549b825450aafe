// Package dataset reads recall evaluation inputs from JSON files.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrRaggedMatrix = errors.New("matrix rows differ in length")
	ErrEmptyMatrix  = errors.New("matrix has no rows or no columns")
)

// Dataset is the on-disk form of one evaluation: relevance flags, scores and an optional cutoff.
type Dataset struct {
	K     int         `json:"k,omitempty"`
	YTrue [][]float64 `json:"y_true"`
	YProb [][]float64 `json:"y_prob"`
}

// Load reads a dataset from path. Files ending in .zst are zstd-compressed.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".zst") {
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		defer decoder.Close()
		r = decoder
	}

	ds, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func Decode(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	ds := &Dataset{}
	if err := sonic.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// Encode writes ds as JSON, zstd-compressed when compress is set.
func Encode(w io.Writer, ds *Dataset, compress bool) error {
	data, err := sonic.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	if !compress {
		_, err = w.Write(data)
		return err
	}

	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := encoder.Write(data); err != nil {
		encoder.Close()
		return fmt.Errorf("compress dataset: %w", err)
	}
	return encoder.Close()
}

// Matrices converts both tables to dense matrices. Shape agreement between them is
// left to the metric, which reports it as a shape mismatch.
func (ds *Dataset) Matrices() (yTrue, yProb *mat.Dense, err error) {
	yTrue, err = NewMatrix(ds.YTrue)
	if err != nil {
		return nil, nil, fmt.Errorf("y_true: %w", err)
	}
	yProb, err = NewMatrix(ds.YProb)
	if err != nil {
		return nil, nil, fmt.Errorf("y_prob: %w", err)
	}
	return yTrue, yProb, nil
}

func NewMatrix(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyMatrix
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, expected %d", ErrRaggedMatrix, i, len(row), cols)
		}
		data = append(data, row...)
	}

	return mat.NewDense(len(rows), cols, data), nil
}
