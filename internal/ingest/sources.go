// Package ingest reads the league punt CSVs and merges them into play records.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// File names inside a season's data directory.
const (
	PlaysFile   = "play_information.csv"
	GamesFile   = "game_data.csv"
	ReviewsFile = "video_review.csv"
	RolesFile   = "play_player_role_data.csv"
	PlayersFile = "player_punt_data.csv"
)

// Unknown fills integer ids that are missing or unreadable.
const Unknown = -99

// NoTemperature marks games without a recorded temperature.
const NoTemperature = -999

type PlayRow struct {
	Season      int
	SeasonType  string
	GameKey     int
	GameDate    string
	Week        int
	PlayID      int
	GameClock   string
	YardLine    string // "LA 30"
	Quarter     int
	PlayType    string
	PossTeam    string
	HomeVisit   string // "LA-SEA"
	Score       string // "3 - 0"
	Description string
}

type GameRow struct {
	GameKey       int
	HomeTeamCode  string
	VisitTeamCode string
	Turf          string
	Temperature   float64
}

type ReviewRow struct {
	GameKey       int
	PlayID        int
	GSISID        int
	ImpactType    string
	PartnerGSISID int // Unknown when blank or "Unclear"
}

type RoleRow struct {
	GameKey int
	PlayID  int
	GSISID  int
	Role    string
}

type PlayerRow struct {
	GSISID   int
	Number   string
	Position string
}

// Sources is everything Merge needs. Only Plays is required.
type Sources struct {
	Plays   []PlayRow
	Games   []GameRow
	Reviews []ReviewRow
	Roles   []RoleRow
	Players []PlayerRow
}

func ReadPlays(r io.Reader) ([]PlayRow, error) {
	t, err := newTable(r, "GameKey", "PlayID", "PlayDescription")
	if err != nil {
		return nil, fmt.Errorf("plays: %w", err)
	}
	out := make([]PlayRow, 0, 8192)
	err = t.each(func(_ int, r row) error {
		gk, err := r.num("GameKey")
		if err != nil {
			return err
		}
		pid, err := r.num("PlayID")
		if err != nil {
			return err
		}
		out = append(out, PlayRow{
			Season:      r.numOr("Season_Year", 0),
			SeasonType:  r.str("Season_Type"),
			GameKey:     gk,
			GameDate:    r.str("Game_Date"),
			Week:        r.numOr("Week", 0),
			PlayID:      pid,
			GameClock:   r.str("Game_Clock"),
			YardLine:    r.str("YardLine"),
			Quarter:     r.numOr("Quarter", 0),
			PlayType:    r.str("Play_Type"),
			PossTeam:    strings.ToUpper(r.str("Poss_Team")),
			HomeVisit:   r.str("Home_Team_Visit_Team"),
			Score:       r.str("Score_Home_Visiting"),
			Description: r.str("PlayDescription"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("plays: %w", err)
	}
	return out, nil
}

func ReadGames(r io.Reader) ([]GameRow, error) {
	t, err := newTable(r, "GameKey")
	if err != nil {
		return nil, fmt.Errorf("games: %w", err)
	}
	var out []GameRow
	err = t.each(func(_ int, r row) error {
		gk, err := r.num("GameKey")
		if err != nil {
			return err
		}
		temp := float64(NoTemperature)
		if v := r.str("Temperature"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				temp = f
			}
		}
		out = append(out, GameRow{
			GameKey:       gk,
			HomeTeamCode:  strings.ToUpper(r.str("HomeTeamCode")),
			VisitTeamCode: strings.ToUpper(r.str("VisitTeamCode")),
			Turf:          r.str("Turf"),
			Temperature:   temp,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("games: %w", err)
	}
	return out, nil
}

func ReadReviews(r io.Reader) ([]ReviewRow, error) {
	t, err := newTable(r, "GameKey", "PlayID", "GSISID")
	if err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}
	var out []ReviewRow
	err = t.each(func(_ int, r row) error {
		gk, err := r.num("GameKey")
		if err != nil {
			return err
		}
		pid, err := r.num("PlayID")
		if err != nil {
			return err
		}
		out = append(out, ReviewRow{
			GameKey:       gk,
			PlayID:        pid,
			GSISID:        r.numOr("GSISID", Unknown),
			ImpactType:    r.str("Primary_Impact_Type"),
			PartnerGSISID: r.numOr("Primary_Partner_GSISID", Unknown),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}
	return out, nil
}

func ReadRoles(r io.Reader) ([]RoleRow, error) {
	t, err := newTable(r, "GameKey", "PlayID", "GSISID", "Role")
	if err != nil {
		return nil, fmt.Errorf("roles: %w", err)
	}
	out := make([]RoleRow, 0, 1<<16)
	err = t.each(func(_ int, r row) error {
		gk, err := r.num("GameKey")
		if err != nil {
			return err
		}
		pid, err := r.num("PlayID")
		if err != nil {
			return err
		}
		out = append(out, RoleRow{
			GameKey: gk,
			PlayID:  pid,
			GSISID:  r.numOr("GSISID", Unknown),
			Role:    r.str("Role"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("roles: %w", err)
	}
	return out, nil
}

func ReadPlayerNumbers(r io.Reader) ([]PlayerRow, error) {
	t, err := newTable(r, "GSISID", "Number")
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	var out []PlayerRow
	err = t.each(func(_ int, r row) error {
		id, err := r.num("GSISID")
		if err != nil {
			return err
		}
		out = append(out, PlayerRow{
			GSISID:   id,
			Number:   r.str("Number"),
			Position: strings.ToUpper(r.str("Position")),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	return out, nil
}

// OpenFunc opens a named object, local or remote. A missing object must
// return an error matching fs.ErrNotExist.
type OpenFunc func(ctx context.Context, path string) (io.ReadCloser, error)

// LoadDir reads all five CSVs from dir. Plays and games are required; the
// review, role and player files are optional.
func LoadDir(ctx context.Context, open OpenFunc, dir string) (Sources, error) {
	var src Sources
	base := strings.TrimRight(dir, "/")

	load := func(name string, optional bool, read func(io.Reader) error) error {
		p := name
		if base != "" {
			p = base + "/" + name
		}
		rc, err := open(ctx, p)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("open %s: %w", p, err)
		}
		defer rc.Close()
		return read(rc)
	}

	steps := []struct {
		name     string
		optional bool
		read     func(io.Reader) error
	}{
		{PlaysFile, false, func(r io.Reader) (err error) { src.Plays, err = ReadPlays(r); return }},
		{GamesFile, false, func(r io.Reader) (err error) { src.Games, err = ReadGames(r); return }},
		{ReviewsFile, true, func(r io.Reader) (err error) { src.Reviews, err = ReadReviews(r); return }},
		{RolesFile, true, func(r io.Reader) (err error) { src.Roles, err = ReadRoles(r); return }},
		{PlayersFile, true, func(r io.Reader) (err error) { src.Players, err = ReadPlayerNumbers(r); return }},
	}
	for _, s := range steps {
		if err := load(s.name, s.optional, s.read); err != nil {
			return Sources{}, err
		}
	}
	return src, nil
}
