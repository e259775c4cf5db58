package punt

import (
	"fmt"
	"regexp"
	"strings"
)

// KeywordTable maps each outcome to the phrases or regex fragments that vote
// for it. Matching is case-insensitive and any fragment is enough.
type KeywordTable map[Outcome][]string

// DefaultKeywords is the table the league descriptions were tuned against.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		NotPunted:   {"no play", "delay of game", "false start", "blocked", "incomplete"},
		OutOfBounds: {"out of bounds"},
		Downed:      {"downed"},
		Touchback:   {"touchback"},
		FairCatch:   {"fair catch"},
		Returned:    {"no gain", "for (.*) yard"},
	}
}

// KeywordTableFrom converts a label-keyed string map (as loaded from config).
func KeywordTableFrom(m map[string][]string) (KeywordTable, error) {
	t := make(KeywordTable, len(m))
	for k, v := range m {
		o, err := ParseOutcome(k)
		if err != nil {
			return nil, err
		}
		t[o] = append(t[o], v...)
	}
	return t, nil
}

type compiledTable [numOutcomes]*regexp.Regexp

func (t KeywordTable) compile() (compiledTable, error) {
	var ct compiledTable
	for i, o := range outcomeOrder {
		frags := t[o]
		if len(frags) == 0 {
			return ct, fmt.Errorf("keyword table: no patterns for %s", o)
		}
		re, err := regexp.Compile("(?i)(?:" + strings.Join(frags, "|") + ")")
		if err != nil {
			return ct, fmt.Errorf("keyword table: %s: %w", o, err)
		}
		ct[i] = re
	}
	return ct, nil
}

// vote runs phase one: one vote per label whose patterns hit the text.
func (ct compiledTable) vote(text string) votes {
	var v votes
	for i, re := range ct {
		v[i] = re.MatchString(text)
	}
	return v
}
