// Package quality summarises generator output: moments, range and a
// chi-squared uniformity test over equal-width bins of [0, 1).
package quality

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samcharles93/prngcl/internal/prng"
)

// DefaultBins is the histogram width used when Analyze is given no bin
// count.
const DefaultBins = 64

var ErrNoValues = errors.New("quality: no values")

// Report is the summary of one sample set.
type Report struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Bins   int     `json:"bins"`
	// ChiSquared is the statistic of observed bin counts against a flat
	// histogram; PValue is its upper tail with Bins-1 degrees of freedom.
	ChiSquared float64 `json:"chi_squared"`
	PValue     float64 `json:"p_value"`
}

// Uniform reports whether the chi-squared test does not reject uniformity
// at significance alpha.
func (r Report) Uniform(alpha float64) bool {
	return r.PValue > alpha
}

// Analyze summarises values, which are expected in [0, 1). Values outside
// that range are clamped into the first or last bin.
func Analyze(values []float64, bins int) (Report, error) {
	if len(values) == 0 {
		return Report{}, ErrNoValues
	}
	if bins <= 1 {
		bins = DefaultBins
	}

	data := stats.Float64Data(values)
	mean, err := data.Mean()
	if err != nil {
		return Report{}, fmt.Errorf("quality: mean: %w", err)
	}
	sd, err := data.StandardDeviation()
	if err != nil {
		return Report{}, fmt.Errorf("quality: stddev: %w", err)
	}
	lo, err := data.Min()
	if err != nil {
		return Report{}, fmt.Errorf("quality: min: %w", err)
	}
	hi, err := data.Max()
	if err != nil {
		return Report{}, fmt.Errorf("quality: max: %w", err)
	}

	counts := make([]int, bins)
	for _, v := range values {
		i := int(v * float64(bins))
		i = max(0, min(i, bins-1))
		counts[i]++
	}
	expected := float64(len(values)) / float64(bins)
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	chiDist := distuv.ChiSquared{K: float64(bins - 1)}

	return Report{
		Count:      len(values),
		Mean:       mean,
		StdDev:     sd,
		Min:        lo,
		Max:        hi,
		Bins:       bins,
		ChiSquared: chi2,
		PValue:     chiDist.Survival(chi2),
	}, nil
}

// BoundsError reports the first value outside a descriptor's floating
// range.
type BoundsError struct {
	Generator string
	Index     int
	Value     float64
	Min, Max  float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("quality: %s value %d = %v outside [%v, %v]", e.Generator, e.Index, e.Value, e.Min, e.Max)
}

// CheckBounds verifies every value lies in [MinFP, MaxFP] of d. When
// promote is set the upper bound is d.PromotedMax, which stays below 1.
func CheckBounds(d *prng.Descriptor, values []float64, promote bool) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", prng.ErrInvalidDescriptor)
	}
	upper := d.MaxFP
	if promote {
		upper = d.PromotedMax()
	}
	for i, v := range values {
		if math.IsNaN(v) || v < d.MinFP || v > upper {
			return &BoundsError{Generator: d.Name, Index: i, Value: v, Min: d.MinFP, Max: upper}
		}
	}
	return nil
}
