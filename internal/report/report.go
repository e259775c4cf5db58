// Package report computes descriptive aggregates over processed plays.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

// OutcomeRow is one line of the outcome/concussion crosstab.
type OutcomeRow struct {
	Outcome     punt.Outcome `json:"outcome"`
	Plays       int          `json:"plays"`
	Concussions int          `json:"concussions"`
	Rate        float64      `json:"concussion_rate"` // concussions / plays
}

type Summary struct {
	Plays    int          `json:"plays"`
	Outcomes []OutcomeRow `json:"outcomes"`

	// Returns exclude muffed punts.
	Returns           int     `json:"returns"`
	ReturnYardsMedian float64 `json:"return_yards_median"`

	PuntDistanceMedian float64 `json:"punt_distance_median"`
	PuntDistanceP10    float64 `json:"punt_distance_p10"`

	// Share of plays with a known spot (yard line > 0) that ended inside
	// the 20, and the median spot of those plays.
	Inside20Share  float64 `json:"inside_20_share"`
	Inside20Median float64 `json:"inside_20_median"`
}

// Crosstab counts plays and concussions per outcome, most concussions first.
// Outcomes with no plays are left out.
func Crosstab(plays []punt.Play) []OutcomeRow {
	byOutcome := make(map[punt.Outcome]*OutcomeRow)
	for _, p := range plays {
		r := byOutcome[p.Outcome]
		if r == nil {
			r = &OutcomeRow{Outcome: p.Outcome}
			byOutcome[p.Outcome] = r
		}
		r.Plays++
		if p.Concussion {
			r.Concussions++
		}
	}

	rank := make(map[punt.Outcome]int)
	for i, o := range punt.Outcomes() {
		rank[o] = i
	}
	out := make([]OutcomeRow, 0, len(byOutcome))
	for _, r := range byOutcome {
		r.Rate = float64(r.Concussions) / float64(r.Plays)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Concussions != out[j].Concussions {
			return out[i].Concussions > out[j].Concussions
		}
		return rank[out[i].Outcome] < rank[out[j].Outcome]
	})
	return out
}

// Summarize computes every aggregate. Empty groups report NaN.
func Summarize(plays []punt.Play) Summary {
	s := Summary{Plays: len(plays), Outcomes: Crosstab(plays)}

	var returns, distances, spots, inside []float64
	for _, p := range plays {
		if p.Outcome == punt.Returned && !strings.Contains(p.Description, "MUFFS") {
			returns = append(returns, float64(p.Yardage))
		}
		distances = append(distances, float64(p.PuntDistance))
		if p.YardLine > 0 {
			spots = append(spots, float64(p.YardLine))
			if p.YardLine < 20 {
				inside = append(inside, float64(p.YardLine))
			}
		}
	}

	s.Returns = len(returns)
	s.ReturnYardsMedian = Median(returns)
	s.PuntDistanceMedian = Median(distances)
	s.PuntDistanceP10 = Percentile(distances, 10)
	s.Inside20Share = math.NaN()
	if len(spots) > 0 {
		s.Inside20Share = float64(len(inside)) / float64(len(spots))
	}
	s.Inside20Median = Median(inside)
	return s
}

func Median(xs []float64) float64 { return Percentile(xs, 50) }

// Percentile uses linear interpolation between closest ranks. xs is not
// modified.
func Percentile(xs []float64, pct float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	pos := pct / 100 * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (s[hi]-s[lo])*(pos-float64(lo))
}

// Write renders the summary as aligned text.
func Write(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "OUTCOME\tPLAYS\tCONCUSSIONS\tPCT OF TYPE\n")
	for _, r := range s.Outcomes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f%%\n", r.Outcome, r.Plays, r.Concussions, r.Rate*100)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, `
plays: %d
return yards median: %g (n=%d)
punt distance median: %g
punt distance 10th percentile: %g
inside the 20: %.0f%% of spotted punts, median yard line %g
`, s.Plays, s.ReturnYardsMedian, s.Returns, s.PuntDistanceMedian, s.PuntDistanceP10,
		s.Inside20Share*100, s.Inside20Median)
	return err
}
