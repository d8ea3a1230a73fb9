// Package forecast derives the distribution of draws until the guaranteed
// rarity from a mercy rule and the current pity. It is exact, not sampled:
// the chance of every draw is known, so the first-hit distribution follows
// from a running product of misses.
package forecast

import (
	"math"
	"sort"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

// Stats summarizes a draw-count distribution.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// Distribution is the probability that the first hit lands on draw k+1,
// for k = 0..len(PMF)-1, starting from Pity.
type Distribution struct {
	Pity int
	PMF  []float64
}

// Forecast computes the first-hit distribution for rule starting at pity.
// Draw k is made at pity+k-1 with ComputeChance's probability, so the
// support ends at the hard pity cap.
func Forecast(rule gacha.MercyRule, pity int) Distribution {
	pity = max(pity, 0)
	d := Distribution{Pity: pity}
	survive := 1.0
	for p := pity; ; p++ {
		c := gacha.ComputeChance(rule, p) / 100
		d.PMF = append(d.PMF, survive*c)
		survive *= 1 - c
		if c >= 1 || survive <= 0 {
			break
		}
	}
	return d
}

// Within returns the probability of at least one hit in the next n draws.
func (d Distribution) Within(n int) float64 {
	var acc float64
	for k := 0; k < n && k < len(d.PMF); k++ {
		acc += d.PMF[k]
	}
	return math.Min(acc, 1)
}

// Quantile returns the smallest draw count whose cumulative probability
// reaches q.
func (d Distribution) Quantile(q float64) int {
	if len(d.PMF) == 0 {
		return 0
	}
	var acc float64
	for k, p := range d.PMF {
		acc += p
		if acc >= q-1e-12 {
			return k + 1
		}
	}
	return len(d.PMF)
}

// Stats returns the mean, variance and percentiles of the draw count.
func (d Distribution) Stats() Stats {
	if len(d.PMF) == 0 {
		return Stats{}
	}
	var mean, second float64
	for k, p := range d.PMF {
		x := float64(k + 1)
		mean += x * p
		second += x * x * p
	}
	variance := math.Max(second-mean*mean, 0)
	return Stats{
		Mean:   mean,
		Var:    variance,
		StdDev: math.Sqrt(variance),
		P50:    float64(d.Quantile(0.50)),
		P90:    float64(d.Quantile(0.90)),
		P99:    float64(d.Quantile(0.99)),
	}
}

// Summarize computes mean/variance/percentiles for observed samples, such
// as the lengths of completed pity cycles.
func Summarize(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		if i+1 >= n {
			return float64(cp[n-1])
		}
		f := pos - float64(i)
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:   mean,
		Var:    variance,
		StdDev: math.Sqrt(variance),
		P50:    percentile(0.50),
		P90:    percentile(0.90),
		P99:    percentile(0.99),
	}
}
