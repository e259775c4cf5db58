package punt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// YardLineUndetermined marks a play whose field position could not be read.
	YardLineUndetermined = -1

	TouchbackYardLine = 20
	MidfieldYardLine  = 50
	EndZoneYardLine   = 100

	// DefaultPuntDistance is used when a kick is counted but no distance is written.
	DefaultPuntDistance = 5

	puntToken      = "punts"
	touchdownToken = "TOUCHDOWN"
)

var (
	reReturnYards  = regexp.MustCompile(`for (-?\d{1,3}) yard`)
	rePuntDistance = regexp.MustCompile(`punts?\s(\d{1,2})?`)
	reReturnSpot   = regexp.MustCompile(`[A-Z]{2,3}\s(\d{1,2})\sfor`)
	reSpot         = regexp.MustCompile(`[A-Z]{2,3}\s(\d{1,2})`)
)

// Position is what the resolver reads out of a description.
type Position struct {
	YardLine     int // 0..100, or YardLineUndetermined
	Yardage      int // return yards; 0 unless returned
	PuntDistance int // air yards of the kick that counted; 0 without a kick
}

// HasTouchdown reports a case-exact TOUCHDOWN in the description.
func HasTouchdown(description string) bool {
	return strings.Contains(description, touchdownToken)
}

// Resolve extracts yardage, punt distance and yard line for a play whose
// outcome is already known. A touchdown moves the ball to the end zone no
// matter what the outcome-specific rule found.
func Resolve(outcome Outcome, description string, touchdown bool) (Position, error) {
	if !outcome.Valid() {
		return Position{}, fmt.Errorf("resolve: unknown outcome %q", outcome)
	}
	if strings.TrimSpace(description) == "" {
		return Position{}, ErrEmptyDescription
	}
	return Position{
		YardLine:     yardLine(outcome, description, touchdown),
		Yardage:      returnYardage(outcome, description),
		PuntDistance: puntDistance(description),
	}, nil
}

func returnYardage(outcome Outcome, description string) int {
	if outcome != Returned {
		return 0
	}
	n, ok := firstInt(reReturnYards, description)
	if !ok {
		return 0
	}
	return n
}

// puntDistance reads the kick length. With two kicks the first was wiped out
// by a penalty, so the second one counts.
func puntDistance(description string) int {
	kicks := strings.Count(description, puntToken)
	if kicks == 0 {
		return 0
	}
	idx := 0
	if kicks == 2 {
		idx = 1
	}
	m := rePuntDistance.FindAllStringSubmatch(description, -1)
	if idx >= len(m) || m[idx][1] == "" {
		return DefaultPuntDistance
	}
	n, err := strconv.Atoi(m[idx][1])
	if err != nil {
		return DefaultPuntDistance
	}
	return n
}

func yardLine(outcome Outcome, description string, touchdown bool) int {
	line, found := 0, false
	switch outcome {
	case Returned:
		line, found = firstInt(reReturnSpot, description)
	case FairCatch, OutOfBounds, Downed:
		line, found = firstInt(reSpot, description)
	case Touchback:
		line, found = TouchbackYardLine, true
	case NotPunted:
		line, found = 0, true
	}

	if touchdown {
		return EndZoneYardLine
	}
	if found {
		return line
	}
	switch outcome {
	case Downed, FairCatch, OutOfBounds:
		return MidfieldYardLine
	}
	return YardLineUndetermined
}

func firstInt(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
