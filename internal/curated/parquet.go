// Package curated writes processed plays as partitioned parquet and moves
// objects between S3 and the local disk.
package curated

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

// PlayRow is the parquet layout of a processed play. Column names follow
// the league CSVs so existing Athena tables can read them.
type PlayRow struct {
	GameKey      int32   `parquet:"gamekey"`
	PlayID       int32   `parquet:"playid"`
	Season       int32   `parquet:"season_year"`
	SeasonType   string  `parquet:"season_type"`
	Week         int32   `parquet:"week"`
	GameDate     string  `parquet:"game_date"`
	Quarter      int32   `parquet:"quarter"`
	GameClock    string  `parquet:"game_clock"`
	PossTeam     string  `parquet:"poss_team"`
	RecTeam      string  `parquet:"rec_team"`
	HomeTeam     string  `parquet:"hometeamcode"`
	VisitTeam    string  `parquet:"visitteamcode"`
	YardLineText string  `parquet:"yardline_text"`
	YardNumber   int32   `parquet:"yard_number"`
	DistToGoal   int32   `parquet:"dist_togoal"`
	HomeScore    int32   `parquet:"home_score"`
	VisitScore   int32   `parquet:"visit_score"`
	Turf         string  `parquet:"turf"`
	Temperature  float64 `parquet:"temperature"`
	Description  string  `parquet:"playdescription"`
	Touchdown    bool    `parquet:"touchdown"`

	Concussion      bool   `parquet:"concussion"`
	ImpactType      string `parquet:"primary_impact_type"`
	InjuredGSISID   int64  `parquet:"gsisid_player"`
	PartnerGSISID   int64  `parquet:"gsisid_partner"`
	InjuredRole     string `parquet:"role_player"`
	PartnerRole     string `parquet:"role_partner"`
	InjuredNumber   string `parquet:"number_player"`
	PartnerNumber   string `parquet:"number_partner"`
	InjuredPosition string `parquet:"position_player"`
	PartnerPosition string `parquet:"position_partner"`

	Outcome      string `parquet:"outcome"`
	Yardage      int32  `parquet:"yardage"`
	YardLine     int32  `parquet:"yard_line"`
	PuntDistance int32  `parquet:"punt_distance"`
}

var playSchema = parquet.SchemaOf(new(PlayRow))

func FromPlay(p punt.Play) PlayRow {
	return PlayRow{
		GameKey:         int32(p.GameKey),
		PlayID:          int32(p.PlayID),
		Season:          int32(p.Season),
		SeasonType:      p.SeasonType,
		Week:            int32(p.Week),
		GameDate:        p.GameDate,
		Quarter:         int32(p.Quarter),
		GameClock:       p.GameClock,
		PossTeam:        p.PossTeam,
		RecTeam:         p.RecTeam,
		HomeTeam:        p.HomeTeam,
		VisitTeam:       p.VisitTeam,
		YardLineText:    p.YardLineText,
		YardNumber:      int32(p.YardNumber),
		DistToGoal:      int32(p.DistToGoal),
		HomeScore:       int32(p.HomeScore),
		VisitScore:      int32(p.VisitScore),
		Turf:            p.Turf,
		Temperature:     p.Temperature,
		Description:     p.Description,
		Touchdown:       p.Touchdown,
		Concussion:      p.Concussion,
		ImpactType:      p.ImpactType,
		InjuredGSISID:   int64(p.InjuredGSISID),
		PartnerGSISID:   int64(p.PartnerGSISID),
		InjuredRole:     p.InjuredRole,
		PartnerRole:     p.PartnerRole,
		InjuredNumber:   p.InjuredNumber,
		PartnerNumber:   p.PartnerNumber,
		InjuredPosition: p.InjuredPosition,
		PartnerPosition: p.PartnerPosition,
		Outcome:         p.Outcome.String(),
		Yardage:         int32(p.Yardage),
		YardLine:        int32(p.YardLine),
		PuntDistance:    int32(p.PuntDistance),
	}
}

// ToPlay reverses FromPlay. An empty outcome column means the row was never
// classified and stays empty.
func (r PlayRow) ToPlay() punt.Play {
	return punt.Play{
		Key:             punt.Key{GameKey: int(r.GameKey), PlayID: int(r.PlayID)},
		Season:          int(r.Season),
		SeasonType:      r.SeasonType,
		Week:            int(r.Week),
		GameDate:        r.GameDate,
		Quarter:         int(r.Quarter),
		GameClock:       r.GameClock,
		PossTeam:        r.PossTeam,
		RecTeam:         r.RecTeam,
		HomeTeam:        r.HomeTeam,
		VisitTeam:       r.VisitTeam,
		YardLineText:    r.YardLineText,
		YardNumber:      int(r.YardNumber),
		DistToGoal:      int(r.DistToGoal),
		HomeScore:       int(r.HomeScore),
		VisitScore:      int(r.VisitScore),
		Turf:            r.Turf,
		Temperature:     r.Temperature,
		Description:     r.Description,
		Touchdown:       r.Touchdown,
		Concussion:      r.Concussion,
		ImpactType:      r.ImpactType,
		InjuredGSISID:   int(r.InjuredGSISID),
		PartnerGSISID:   int(r.PartnerGSISID),
		InjuredRole:     r.InjuredRole,
		PartnerRole:     r.PartnerRole,
		InjuredNumber:   r.InjuredNumber,
		PartnerNumber:   r.PartnerNumber,
		InjuredPosition: r.InjuredPosition,
		PartnerPosition: r.PartnerPosition,
		Outcome:         punt.Outcome(r.Outcome),
		Yardage:         int(r.Yardage),
		YardLine:        int(r.YardLine),
		PuntDistance:    int(r.PuntDistance),
	}
}

// WritePlays encodes plays as one snappy-compressed parquet file.
func WritePlays(w io.Writer, plays []punt.Play) error {
	pw := parquet.NewWriter(w, playSchema, parquet.Compression(&parquet.Snappy))
	for _, p := range plays {
		if err := pw.Write(FromPlay(p)); err != nil {
			_ = pw.Close()
			return fmt.Errorf("write play %s: %w", p.Key, err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// EncodePlays is WritePlays into memory, ready for PutObject.
func EncodePlays(plays []punt.Play) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePlays(&buf, plays); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadPlays decodes a parquet play table.
func ReadPlays(r io.ReaderAt, size int64) ([]punt.Play, error) {
	rows, err := parquet.Read[PlayRow](r, size)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	out := make([]punt.Play, len(rows))
	for i, row := range rows {
		out[i] = row.ToPlay()
	}
	return out, nil
}

// DecodePlays is ReadPlays over an in-memory object.
func DecodePlays(b []byte) ([]punt.Play, error) {
	return ReadPlays(bytes.NewReader(b), int64(len(b)))
}

// Partition groups plays by season; seasons come back ascending.
func Partition(plays []punt.Play) ([]int, map[int][]punt.Play) {
	parts := make(map[int][]punt.Play)
	for _, p := range plays {
		parts[p.Season] = append(parts[p.Season], p)
	}
	seasons := make([]int, 0, len(parts))
	for s := range parts {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)
	return seasons, parts
}
