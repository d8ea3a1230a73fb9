package forecast

import (
	"math"
	"testing"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func sacred() gacha.MercyRule {
	return gacha.DefaultRuleSet()[gacha.Sacred].PrimaryRule()
}

func TestForecastSumsToOne(t *testing.T) {
	for _, pity := range []int{0, 12, 30, 58} {
		d := Forecast(sacred(), pity)
		var sum float64
		for _, p := range d.PMF {
			sum += p
		}
		if !near(sum, 1) {
			t.Fatalf("pity %d: pmf sums to %v", pity, sum)
		}
		if want := 59 - pity + 1; len(d.PMF) > want {
			t.Fatalf("pity %d: support %d exceeds hard cap (%d)", pity, len(d.PMF), want)
		}
	}
}

func TestForecastAtHardPity(t *testing.T) {
	d := Forecast(sacred(), 59)
	if len(d.PMF) != 1 || d.PMF[0] != 1 {
		t.Fatalf("at hard pity the next draw is certain: %v", d.PMF)
	}
	s := d.Stats()
	if s.Mean != 1 || s.P99 != 1 || s.Var != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if d.Within(0) != 0 || d.Within(1) != 1 {
		t.Fatal("within mismatch")
	}
}

func TestForecastOneBeforeHard(t *testing.T) {
	// pity 58: chance 6 + (58-12)*2 = 98%
	d := Forecast(sacred(), 58)
	if len(d.PMF) != 2 || !near(d.PMF[0], 0.98) || !near(d.PMF[1], 0.02) {
		t.Fatalf("pmf=%v", d.PMF)
	}
	if !near(d.Stats().Mean, 1.02) {
		t.Fatalf("mean=%v", d.Stats().Mean)
	}
	if d.Quantile(0.5) != 1 || d.Quantile(0.99) != 2 {
		t.Fatalf("quantiles %d %d", d.Quantile(0.5), d.Quantile(0.99))
	}
}

func TestWithinIsMonotone(t *testing.T) {
	d := Forecast(gacha.DefaultRuleSet()[gacha.Ancient].PrimaryRule(), 0)
	prev := 0.0
	for n := 0; n <= 230; n++ {
		w := d.Within(n)
		if w < prev-1e-12 {
			t.Fatalf("within(%d)=%v < %v", n, w, prev)
		}
		prev = w
	}
	if !near(prev, 1) {
		t.Fatalf("within past hard cap = %v", prev)
	}
}

func TestSummarize(t *testing.T) {
	if (Summarize(nil) != Stats{}) {
		t.Fatal("empty input")
	}
	s := Summarize([]int{4, 1, 3, 2})
	if s.Mean != 2.5 || !near(s.Var, 1.25) {
		t.Fatalf("stats %+v", s)
	}
	if s.P50 != 2.5 || s.P99 < 3.9 {
		t.Fatalf("percentiles %+v", s)
	}
	one := Summarize([]int{7})
	if one.P50 != 7 || one.P99 != 7 {
		t.Fatalf("single sample %+v", one)
	}
}
