package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

var outcomeHeader = []string{
	"GameKey", "PlayID", "Season_Year", "Week", "Poss_Team", "Rec_team",
	"outcome", "yardage", "yard_line", "punt_distance", "touchdown",
	"concussion", "PlayDescription",
}

// WriteOutcomesCSV writes one row per processed play.
func WriteOutcomesCSV(w io.Writer, plays []punt.Play) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(outcomeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range plays {
		rec := []string{
			strconv.Itoa(p.GameKey),
			strconv.Itoa(p.PlayID),
			strconv.Itoa(p.Season),
			strconv.Itoa(p.Week),
			p.PossTeam,
			p.RecTeam,
			p.Outcome.String(),
			strconv.Itoa(p.Yardage),
			strconv.Itoa(p.YardLine),
			strconv.Itoa(p.PuntDistance),
			strconv.FormatBool(p.Touchdown),
			strconv.FormatBool(p.Concussion),
			p.Description,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write play %s: %w", p.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
