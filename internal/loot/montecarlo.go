package loot

import (
	"errors"
	"math"
	"sort"
)

// ErrNoTrials is returned when a simulation is asked for zero trials.
var ErrNoTrials = errors.New("trials must be > 0")

// Stats summarizes integer samples.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// Report is the outcome of a Monte Carlo run over one drop list.
type Report struct {
	Trials      int            `json:"trials"`
	EmptyTrials int            `json:"empty_trials"` // trials that rewarded nothing
	Rewards     Stats          `json:"rewards"`      // rewarded copies per trial
	ItemCounts  map[string]int `json:"item_counts"`  // copies per item name, all trials
}

// Share returns the fraction of all rewarded copies named one of names.
func (r Report) Share(names ...string) float64 {
	total, hit := 0, 0
	for _, n := range r.ItemCounts {
		total += n
	}
	for _, name := range names {
		hit += r.ItemCounts[name]
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	// mean
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

	// percentiles
	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// RunMonteCarlo evaluates drops trials times against c and summarizes the
// rewards. Unlike LootSeeded it reports bad drops and missing paths as
// errors. A nil rng uses DefaultRNG.
func RunMonteCarlo(c *Catalog, drops []Drop, trials int, rng RandomSource) (Report, error) {
	if trials <= 0 {
		return Report{}, ErrNoTrials
	}
	if err := ValidateDrops(drops); err != nil {
		return Report{}, err
	}
	for _, d := range drops {
		if d.Path == Root {
			continue
		}
		if _, err := c.Find(d.Path); err != nil {
			return Report{}, err
		}
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	report := Report{Trials: trials, ItemCounts: make(map[string]int)}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		rewards := c.LootSeeded(drops, rng)
		samples[i] = len(rewards)
		if len(rewards) == 0 {
			report.EmptyTrials++
		}
		for _, r := range rewards {
			report.ItemCounts[r.Name]++
		}
	}
	report.Rewards = calcStats(samples)
	return report, nil
}
