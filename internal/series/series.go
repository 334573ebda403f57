// Package series provides columnar operations over nullable float64 slices.
// A nil element is a missing cell. All functions return a new slice of the
// same length and never mutate their input.
package series

import (
	"math"
	"sort"
)

// F returns a pointer to v. Convenience for building literal series.
func F(v float64) *float64 { return &v }

// RollingMean computes the unweighted mean over a trailing window. A cell is
// null unless the full trailing window exists and contains no nulls.
func RollingMean(values []*float64, window int) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if i < window-1 {
			continue
		}
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if values[j] == nil {
				ok = false
				break
			}
			sum += *values[j]
		}
		if ok {
			out[i] = F(sum / float64(window))
		}
	}
	return out
}

// RollingStd computes the sample standard deviation (ddof=1) over a trailing
// window, with the same null semantics as RollingMean.
func RollingStd(values []*float64, window int) []*float64 {
	if window < 2 {
		return make([]*float64, len(values))
	}
	means := RollingMean(values, window)
	out := make([]*float64, len(values))
	for i := range values {
		if means[i] == nil {
			continue
		}
		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := *values[j] - *means[i]
			ss += d * d
		}
		out[i] = F(math.Sqrt(ss / float64(window-1)))
	}
	return out
}

// EWM computes a recursive exponentially weighted mean with smoothing factor
// alpha = 2/(span+1). The first non-null value seeds the recursion; there is
// no warm-up null period. A null input yields a null output cell and leaves
// the accumulator untouched.
func EWM(values []*float64, span int) []*float64 {
	alpha := 2.0 / float64(span+1)
	out := make([]*float64, len(values))
	var ema *float64
	for i, v := range values {
		if v == nil {
			continue
		}
		if ema == nil {
			ema = F(*v)
		} else {
			ema = F(alpha*(*v) + (1-alpha)*(*ema))
		}
		out[i] = F(*ema)
	}
	return out
}

// Sub subtracts b from a element-wise; a cell is null if either operand is.
func Sub(a, b []*float64) []*float64 {
	out := make([]*float64, len(a))
	for i := range a {
		if a[i] != nil && b[i] != nil {
			out[i] = F(*a[i] - *b[i])
		}
	}
	return out
}

// Diff computes values[i] - values[i-1]; the first cell is null.
func Diff(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	for i := 1; i < len(values); i++ {
		if values[i] != nil && values[i-1] != nil {
			out[i] = F(*values[i] - *values[i-1])
		}
	}
	return out
}

// PctChange computes the fractional change against the prior cell; the first
// cell is null, as is any cell with a null or zero prior value.
func PctChange(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	for i := 1; i < len(values); i++ {
		if values[i] == nil || values[i-1] == nil || *values[i-1] == 0 {
			continue
		}
		out[i] = F((*values[i] - *values[i-1]) / *values[i-1])
	}
	return out
}

// ForwardFill replaces each null with the last valid prior value.
func ForwardFill(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	var last *float64
	for i, v := range values {
		if v != nil {
			last = v
		}
		if last != nil {
			out[i] = F(*last)
		}
	}
	return out
}

// BackFill replaces each null with the next valid value.
func BackFill(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	var next *float64
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			next = values[i]
		}
		if next != nil {
			out[i] = F(*next)
		}
	}
	return out
}

// Median returns the median over the non-null cells, or nil if every cell is
// null. Even-length medians are the mean of the two middle values.
func Median(values []*float64) *float64 {
	var present []float64
	for _, v := range values {
		if v != nil {
			present = append(present, *v)
		}
	}
	if len(present) == 0 {
		return nil
	}
	sort.Float64s(present)
	mid := len(present) / 2
	if len(present)%2 == 1 {
		return F(present[mid])
	}
	return F((present[mid-1] + present[mid]) / 2)
}

// FillMedian replaces nulls with the median of the non-null cells. An
// all-null column is returned unchanged.
func FillMedian(values []*float64) []*float64 {
	med := Median(values)
	out := make([]*float64, len(values))
	for i, v := range values {
		switch {
		case v != nil:
			out[i] = F(*v)
		case med != nil:
			out[i] = F(*med)
		}
	}
	return out
}

// NullCount returns the number of null cells.
func NullCount(values []*float64) int {
	n := 0
	for _, v := range values {
		if v == nil {
			n++
		}
	}
	return n
}
