package pfr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/logging"
	"github.com/tyler180/punt-outcomes/internal/punt"
)

// PBPRow is one row of a boxscore's play-by-play table.
type PBPRow struct {
	Seq      int // 1-based position among play rows
	Quarter  int
	Clock    string
	Down     int
	ToGo     int
	Location string // "KAN 35"
	Detail   string
}

var (
	wsRe   = regexp.MustCompile(`\s+`)
	puntRe = regexp.MustCompile(`(?i)\bpunt`)
	// PFR writes spots as "KAN 35"; the league data uses its own codes.
	spotRe = regexp.MustCompile(`\b([A-Z]{2,3})(\s\d{1,2})\b`)
)

// stripComments uncomments the tables PFR ships inside <!-- -->.
func stripComments(html string) string {
	clean := strings.ReplaceAll(html, "<!--", "")
	return strings.ReplaceAll(clean, "-->", "")
}

func cellText(tr *goquery.Selection, stat string) string {
	c := tr.Find(`th[data-stat="` + stat + `"], td[data-stat="` + stat + `"]`).First()
	return wsRe.ReplaceAllString(strings.TrimSpace(c.Text()), " ")
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

// ParsePlayByPlay reads every play row of table#pbp.
func ParsePlayByPlay(html string) ([]PBPRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(stripComments(html)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := doc.Find("table#pbp").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no play-by-play table")
	}

	var out []PBPRow
	seq := 0
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cls := tr.AttrOr("class", "")
		if strings.Contains(cls, "thead") {
			return
		}
		detail := cellText(tr, "detail")
		if detail == "" {
			return
		}
		seq++
		out = append(out, PBPRow{
			Seq:      seq,
			Quarter:  atoi(cellText(tr, "quarter"), 0),
			Clock:    cellText(tr, "qtr_time_remain"),
			Down:     atoi(cellText(tr, "down"), 0),
			ToGo:     atoi(cellText(tr, "yds_to_go"), 0),
			Location: cellText(tr, "location"),
			Detail:   detail,
		})
	})
	return out, nil
}

// Punts keeps rows whose detail mentions a punt, blocked and penalized
// ones included, and turns them into plays keyed by gameKey and row order.
func Punts(rows []PBPRow, gameKey, season int) []punt.Play {
	var out []punt.Play
	for _, r := range rows {
		if !puntRe.MatchString(r.Detail) {
			continue
		}
		loc := normSpots(r.Location)
		side, _, _ := strings.Cut(loc, " ")
		out = append(out, punt.Play{
			Key:          punt.Key{GameKey: gameKey, PlayID: r.Seq},
			Season:       season,
			Quarter:      r.Quarter,
			GameClock:    r.Clock,
			YardLineText: loc,
			YardNumber:   atoi(strings.TrimPrefix(loc, side+" "), -99),
			Description:  normSpots(r.Detail),
		})
	}
	return out
}

func normSpots(s string) string {
	return spotRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := spotRe.FindStringSubmatch(m)
		return LeagueCode(sub[1]) + sub[2]
	})
}

// BoxscoreURL returns the page for a PFR game id such as "201609110kan".
func (c *Client) BoxscoreURL(gameID string) string {
	return fmt.Sprintf("%s/boxscores/%s.htm", c.baseURL(), gameID)
}

// FetchPunts downloads one boxscore and returns its punt plays.
func (c *Client) FetchPunts(ctx context.Context, gameID string, gameKey, season int) ([]punt.Play, error) {
	log := logging.OrNop(c.Logger)
	url := c.BoxscoreURL(gameID)
	html, err := c.Get(ctx, url, fmt.Sprintf("%s/years/%d/", c.baseURL(), season))
	if err != nil {
		return nil, fmt.Errorf("fetch boxscore %s: %w", gameID, err)
	}
	rows, err := ParsePlayByPlay(html)
	if err != nil {
		return nil, fmt.Errorf("boxscore %s: %w", gameID, err)
	}
	plays := Punts(rows, gameKey, season)
	if home, ok := TeamFromGameID(gameID); ok {
		for i := range plays {
			plays[i].HomeTeam = LeagueCode(home.Abbr)
		}
	}
	log.Info("scraped boxscore", zap.String("game", gameID), zap.Int("rows", len(rows)), zap.Int("punts", len(plays)))
	return plays, nil
}
