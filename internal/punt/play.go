package punt

import (
	"fmt"
	"strconv"
)

// Key identifies a play. (GameKey, PlayID) is unique across the league data.
type Key struct {
	GameKey int
	PlayID  int
}

// String renders the key the way the store partitions it, e.g. "21#3129".
func (k Key) String() string {
	return strconv.Itoa(k.GameKey) + "#" + strconv.Itoa(k.PlayID)
}

// Play is one merged punt-play record. Classification fills Outcome,
// resolution fills Yardage, YardLine and PuntDistance.
type Play struct {
	Key

	Season     int
	SeasonType string
	Week       int
	GameDate   string
	Quarter    int
	GameClock  string

	PossTeam  string
	RecTeam   string
	HomeTeam  string
	VisitTeam string

	YardLineText string // field position before the snap, e.g. "LA 30"
	YardNumber   int
	DistToGoal   int
	HomeScore    int
	VisitScore   int

	Turf        string
	Temperature float64

	Description string
	Touchdown   bool

	Concussion      bool
	ImpactType      string
	InjuredGSISID   int // -99 when no review
	PartnerGSISID   int // -99 when no review or unclear
	InjuredRole     string
	PartnerRole     string
	InjuredNumber   string
	PartnerNumber   string
	InjuredPosition string
	PartnerPosition string

	Outcome      Outcome
	Yardage      int
	YardLine     int
	PuntDistance int
}

// Process classifies and resolves p using the default keyword table.
func Process(p Play) (Play, error) {
	return defaultClassifier.Process(p)
}

// Process returns p with its derived fields set. Errors carry the play key.
func (c *Classifier) Process(p Play) (Play, error) {
	outcome, err := c.Classify(p.Description)
	if err != nil {
		return p, fmt.Errorf("play %s: classify: %w", p.Key, err)
	}
	touchdown := p.Touchdown || HasTouchdown(p.Description)
	pos, err := Resolve(outcome, p.Description, touchdown)
	if err != nil {
		return p, fmt.Errorf("play %s: resolve: %w", p.Key, err)
	}

	p.Outcome = outcome
	p.Touchdown = touchdown
	p.Yardage = pos.Yardage
	p.YardLine = pos.YardLine
	p.PuntDistance = pos.PuntDistance
	return p, nil
}
