package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

// Unspecified fills text fields with no source value.
const Unspecified = "unspecified"

// The Chargers moved; older rows still say SD.
var sdRe = regexp.MustCompile(`\bSD\b`)

func normTeam(s string) string { return sdRe.ReplaceAllString(s, "LAC") }

type roleKey struct {
	GameKey, PlayID, GSISID int
}

type playerInfo struct {
	numbers   []string
	positions []string
}

// Merge joins the sources into one record per play, sorted by key. Plays
// with no review carry Unknown ids and no concussion flag.
func Merge(src Sources) ([]punt.Play, error) {
	games := make(map[int]GameRow, len(src.Games))
	for _, g := range src.Games {
		games[g.GameKey] = g
	}
	reviews := make(map[punt.Key]ReviewRow, len(src.Reviews))
	for _, r := range src.Reviews {
		reviews[punt.Key{GameKey: r.GameKey, PlayID: r.PlayID}] = r
	}
	roles := make(map[roleKey]string, len(src.Roles))
	for _, r := range src.Roles {
		roles[roleKey{r.GameKey, r.PlayID, r.GSISID}] = r.Role
	}
	// a player can appear once per number worn; keep every value
	players := make(map[int]*playerInfo, len(src.Players))
	for _, p := range src.Players {
		pi := players[p.GSISID]
		if pi == nil {
			pi = &playerInfo{}
			players[p.GSISID] = pi
		}
		pi.numbers = append(pi.numbers, p.Number)
		pi.positions = append(pi.positions, p.Position)
	}

	out := make([]punt.Play, 0, len(src.Plays))
	seen := make(map[punt.Key]struct{}, len(src.Plays))
	for _, pr := range src.Plays {
		k := punt.Key{GameKey: pr.GameKey, PlayID: pr.PlayID}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("duplicate play %s", k)
		}
		seen[k] = struct{}{}

		p := punt.Play{
			Key:          k,
			Season:       pr.Season,
			SeasonType:   pr.SeasonType,
			Week:         pr.Week,
			GameDate:     gameDate(pr.GameDate),
			Quarter:      pr.Quarter,
			GameClock:    pr.GameClock,
			PossTeam:     normTeam(pr.PossTeam),
			YardLineText: normTeam(pr.YardLine),
			Description:  normTeam(pr.Description),
			Turf:         Unspecified,
			Temperature:  NoTemperature,
		}

		home, visit := splitTeams(pr.HomeVisit)
		if g, ok := games[pr.GameKey]; ok {
			if g.HomeTeamCode != "" {
				home = g.HomeTeamCode
			}
			if g.VisitTeamCode != "" {
				visit = g.VisitTeamCode
			}
			if g.Turf != "" {
				p.Turf = g.Turf
			}
			p.Temperature = g.Temperature
		}
		p.HomeTeam, p.VisitTeam = normTeam(home), normTeam(visit)
		p.RecTeam = p.HomeTeam
		if p.PossTeam == p.HomeTeam {
			p.RecTeam = p.VisitTeam
		}

		side, yard := splitYardLine(p.YardLineText)
		p.YardNumber = yard
		p.DistToGoal = yard
		if yard != Unknown && side == p.PossTeam {
			p.DistToGoal = yard + 50
		}
		p.HomeScore, p.VisitScore = splitScore(pr.Score)

		p.InjuredGSISID, p.PartnerGSISID = Unknown, Unknown
		p.ImpactType = Unspecified
		if rv, ok := reviews[k]; ok {
			p.InjuredGSISID = rv.GSISID
			p.PartnerGSISID = rv.PartnerGSISID
			if rv.ImpactType != "" {
				p.ImpactType = rv.ImpactType
				p.Concussion = true
			}
		}
		p.InjuredRole = roleOf(roles, k, p.InjuredGSISID)
		p.PartnerRole = roleOf(roles, k, p.PartnerGSISID)
		p.InjuredNumber, p.InjuredPosition = numberOf(players, p.InjuredGSISID)
		p.PartnerNumber, p.PartnerPosition = numberOf(players, p.PartnerGSISID)

		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].GameKey != out[j].GameKey {
			return out[i].GameKey < out[j].GameKey
		}
		return out[i].PlayID < out[j].PlayID
	})
	return out, nil
}

func roleOf(roles map[roleKey]string, k punt.Key, id int) string {
	if id == Unknown {
		return Unspecified
	}
	if r, ok := roles[roleKey{k.GameKey, k.PlayID, id}]; ok && r != "" {
		return r
	}
	return Unspecified
}

func numberOf(players map[int]*playerInfo, id int) (string, string) {
	pi := players[id]
	if id == Unknown || pi == nil {
		return Unspecified, Unspecified
	}
	return strings.Join(pi.numbers, " "), strings.Join(pi.positions, " ")
}

// splitYardLine reads "LA 30" as ("LA", 30).
func splitYardLine(s string) (string, int) {
	f := strings.Fields(s)
	switch len(f) {
	case 0:
		return "", Unknown
	case 1:
		n, err := strconv.Atoi(f[0])
		if err != nil {
			return "", Unknown
		}
		return "", n
	}
	n, err := strconv.Atoi(f[1])
	if err != nil {
		return f[0], Unknown
	}
	return f[0], n
}

// splitScore reads "14 - 7" as home 14, visitor 7.
func splitScore(s string) (int, int) {
	parts := strings.Split(s, " - ")
	if len(parts) != 2 {
		return Unknown, Unknown
	}
	h, herr := strconv.Atoi(strings.TrimSpace(parts[0]))
	v, verr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if herr != nil {
		h = Unknown
	}
	if verr != nil {
		v = Unknown
	}
	return h, v
}

func splitTeams(s string) (string, string) {
	home, visit, ok := strings.Cut(s, "-")
	if !ok {
		return "", ""
	}
	return strings.ToUpper(strings.TrimSpace(home)), strings.ToUpper(strings.TrimSpace(visit))
}

// gameDate normalizes "08/13/2016" to "2016-08-13"; other forms pass through.
func gameDate(s string) string {
	t, err := time.Parse("01/02/2006", s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
