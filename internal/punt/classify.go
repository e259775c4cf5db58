package punt

import (
	"strings"
)

// Classifier assigns exactly one Outcome to a play description.
// It holds only compiled patterns and is safe for concurrent use.
type Classifier struct {
	table compiledTable
}

// NewClassifier compiles t. Every label must have at least one pattern.
func NewClassifier(t KeywordTable) (*Classifier, error) {
	ct, err := t.compile()
	if err != nil {
		return nil, err
	}
	return &Classifier{table: ct}, nil
}

var defaultClassifier = mustClassifier(DefaultKeywords())

func mustClassifier(t KeywordTable) *Classifier {
	c, err := NewClassifier(t)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the classifier built from DefaultKeywords.
func Default() *Classifier { return defaultClassifier }

// Classify uses the default keyword table.
func Classify(description string) (Outcome, error) {
	return defaultClassifier.Classify(description)
}

// Classify votes every label against the description, then narrows the votes
// with the precedence cascade. The result is exactly one label or an error.
func (c *Classifier) Classify(description string) (Outcome, error) {
	if strings.TrimSpace(description) == "" {
		return "", ErrEmptyDescription
	}

	v := cascade(c.table.vote(description), description)
	if o, ok := v.single(); ok {
		return o, nil
	}
	if o, ok := c.lastKick(v, description); ok {
		return o, nil
	}
	return "", &AmbiguousError{Votes: v.labels()}
}

// cascade applies the disambiguation rules in fixed order. Each rule sees the
// vote state left by the previous one and recounts it.
func cascade(v votes, description string) votes {
	lower := strings.ToLower(description)
	punted := strings.Contains(lower, "punts")

	if punted {
		v = v.clear(NotPunted)
	}
	// no kick at all: nothing else can have happened
	if !punted {
		v = v.clearRange(OutOfBounds, Returned).set(NotPunted)
	}
	if v.count() == 0 {
		v = v.set(Returned)
	}
	// "invalid fair catch" is penalty text once a return happened
	if strings.Contains(lower, "invalid fair catch") && v.on(Returned) && v.count() == 2 {
		v = v.clear(FairCatch)
	}
	if punted && v.on(Returned) && v.count() == 2 {
		v = v.clearRange(NotPunted, OutOfBounds)
	}
	if strings.Contains(lower, "blocked") {
		v = v.clearRange(OutOfBounds, Returned)
	}
	if v.count() == 0 {
		v = v.set(NotPunted)
	}
	if v.on(Touchback) && v.count() == 2 {
		v = v.clearRange(OutOfBounds, Downed)
	}
	if v.on(Returned) && v.count() == 2 {
		v = v.clear(Returned)
	}
	if v.on(FairCatch) && v.count() == 2 {
		v = v.clearRange(OutOfBounds, Downed)
	}
	if v.on(Downed) && v.count() == 2 {
		v = v.clear(OutOfBounds)
	}
	return v
}

// lastKick settles votes left standing on a re-kick: only the text after the
// final "punts" describes the kick that counted. Matches "punts" in any case,
// like the cascade.
func (c *Classifier) lastKick(v votes, description string) (Outcome, bool) {
	lower := strings.ToLower(description)
	if strings.Count(lower, puntToken) < 2 {
		return "", false
	}
	tail := lower[strings.LastIndex(lower, puntToken)+len(puntToken):]
	return v.intersect(c.table.vote(tail)).single()
}
