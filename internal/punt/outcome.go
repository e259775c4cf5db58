package punt

import (
	"fmt"
	"strings"
)

// Outcome is the single resolved result of a punt play.
type Outcome string

const (
	NotPunted   Outcome = "not_punted"
	OutOfBounds Outcome = "out_of_bounds"
	Downed      Outcome = "downed"
	Touchback   Outcome = "touchback"
	FairCatch   Outcome = "fair_catch"
	Returned    Outcome = "returned"
)

const numOutcomes = 6

// vote order; range rules ("out_of_bounds through downed") walk this order
var outcomeOrder = [numOutcomes]Outcome{
	NotPunted, OutOfBounds, Downed, Touchback, FairCatch, Returned,
}

// Outcomes returns every label in vote order.
func Outcomes() []Outcome {
	out := make([]Outcome, numOutcomes)
	copy(out, outcomeOrder[:])
	return out
}

func (o Outcome) index() int {
	for i, v := range outcomeOrder {
		if v == o {
			return i
		}
	}
	return -1
}

// Valid reports whether o is one of the six labels.
func (o Outcome) Valid() bool { return o.index() >= 0 }

func (o Outcome) String() string { return string(o) }

// ParseOutcome accepts a label in any case, with spaces or underscores.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	if !o.Valid() {
		return "", fmt.Errorf("unknown outcome %q", s)
	}
	return o, nil
}

// votes is one boolean per label, indexed by vote order. It is a value type;
// every mutator returns a new copy.
type votes [numOutcomes]bool

func (v votes) count() int {
	n := 0
	for _, on := range v {
		if on {
			n++
		}
	}
	return n
}

func (v votes) on(o Outcome) bool { return v[o.index()] }

func (v votes) set(o Outcome) votes {
	v[o.index()] = true
	return v
}

func (v votes) clear(outs ...Outcome) votes {
	for _, o := range outs {
		v[o.index()] = false
	}
	return v
}

// clearRange clears from..to inclusive in vote order.
func (v votes) clearRange(from, to Outcome) votes {
	for i := from.index(); i <= to.index(); i++ {
		v[i] = false
	}
	return v
}

func (v votes) intersect(w votes) votes {
	for i := range v {
		v[i] = v[i] && w[i]
	}
	return v
}

func (v votes) labels() []Outcome {
	out := make([]Outcome, 0, numOutcomes)
	for i, on := range v {
		if on {
			out = append(out, outcomeOrder[i])
		}
	}
	return out
}

// single returns the label when exactly one vote is on.
func (v votes) single() (Outcome, bool) {
	if v.count() != 1 {
		return "", false
	}
	return v.labels()[0], true
}
