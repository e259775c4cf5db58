package pfr

import "strings"

type Team struct {
	Abbr string // e.g. "SEA"
	Path string // e.g. "sea" (used in https://www.pro-football-reference.com/teams/{Path}/...)
	Name string
}

// AllTeams returns the canonical list used by PFR for team URL paths.
// Note: PFR uses historical 3-letter codes like gnb, sfo, sdg, rai, etc.
func AllTeams() []Team {
	return []Team{
		{Abbr: "ARI", Path: "crd", Name: "Arizona Cardinals"},
		{Abbr: "ATL", Path: "atl", Name: "Atlanta Falcons"},
		{Abbr: "BAL", Path: "rav", Name: "Baltimore Ravens"},
		{Abbr: "BUF", Path: "buf", Name: "Buffalo Bills"},
		{Abbr: "CAR", Path: "car", Name: "Carolina Panthers"},
		{Abbr: "CHI", Path: "chi", Name: "Chicago Bears"},
		{Abbr: "CIN", Path: "cin", Name: "Cincinnati Bengals"},
		{Abbr: "CLE", Path: "cle", Name: "Cleveland Browns"},
		{Abbr: "DAL", Path: "dal", Name: "Dallas Cowboys"},
		{Abbr: "DEN", Path: "den", Name: "Denver Broncos"},
		{Abbr: "DET", Path: "det", Name: "Detroit Lions"},
		{Abbr: "GNB", Path: "gnb", Name: "Green Bay Packers"},
		{Abbr: "HOU", Path: "htx", Name: "Houston Texans"},
		{Abbr: "IND", Path: "clt", Name: "Indianapolis Colts"},
		{Abbr: "JAX", Path: "jax", Name: "Jacksonville Jaguars"},
		{Abbr: "KAN", Path: "kan", Name: "Kansas City Chiefs"},
		{Abbr: "LVR", Path: "rai", Name: "Las Vegas Raiders"},
		{Abbr: "LAC", Path: "sdg", Name: "Los Angeles Chargers"},
		{Abbr: "LAR", Path: "ram", Name: "Los Angeles Rams"},
		{Abbr: "MIA", Path: "mia", Name: "Miami Dolphins"},
		{Abbr: "MIN", Path: "min", Name: "Minnesota Vikings"},
		{Abbr: "NWE", Path: "nwe", Name: "New England Patriots"},
		{Abbr: "NOR", Path: "nor", Name: "New Orleans Saints"},
		{Abbr: "NYG", Path: "nyg", Name: "New York Giants"},
		{Abbr: "NYJ", Path: "nyj", Name: "New York Jets"},
		{Abbr: "PHI", Path: "phi", Name: "Philadelphia Eagles"},
		{Abbr: "PIT", Path: "pit", Name: "Pittsburgh Steelers"},
		{Abbr: "SFO", Path: "sfo", Name: "San Francisco 49ers"},
		{Abbr: "SEA", Path: "sea", Name: "Seattle Seahawks"},
		{Abbr: "TAM", Path: "tam", Name: "Tampa Bay Buccaneers"},
		{Abbr: "TEN", Path: "oti", Name: "Tennessee Titans"},
		{Abbr: "WAS", Path: "was", Name: "Washington Commanders"},
	}
}

// PFR spells a few clubs differently from the league play data.
var leagueCodes = map[string]string{
	"GNB": "GB",
	"KAN": "KC",
	"NWE": "NE",
	"NOR": "NO",
	"SFO": "SF",
	"TAM": "TB",
	"LVR": "OAK",
	"OAK": "OAK",
	"LAR": "LA",
	"SDG": "LAC",
	"SD":  "LAC",
	"STL": "LA",
}

// LeagueCode maps a PFR abbreviation to the league data's team code.
// Codes already in league form pass through upper-cased.
func LeagueCode(abbr string) string {
	a := strings.ToUpper(strings.TrimSpace(abbr))
	if c, ok := leagueCodes[a]; ok {
		return c
	}
	return a
}

// TeamFromGameID returns the home club of a boxscore id such as
// "201609110kan". PFR ids end in the home team's path.
func TeamFromGameID(id string) (Team, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) < 3 {
		return Team{}, false
	}
	suffix := id[len(id)-3:]
	for _, t := range AllTeams() {
		if t.Path == suffix {
			return t, true
		}
	}
	return Team{}, false
}
