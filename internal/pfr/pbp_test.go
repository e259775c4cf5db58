package pfr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

func fixture(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/boxscore.html")
	require.NoError(t, err)
	return string(b)
}

func TestParsePlayByPlay(t *testing.T) {
	rows, err := ParsePlayByPlay(fixture(t))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, PBPRow{
		Seq: 2, Quarter: 1, Clock: "13:12", Down: 4, ToGo: 7, Location: "SDG 28",
		Detail: "Drew Kaser punts 44 yards, fair catch by Tyreek Hill at KAN 28.",
	}, rows[1])
	assert.Equal(t, 5, rows[4].Seq)
}

func TestParsePlayByPlay_NoTable(t *testing.T) {
	_, err := ParsePlayByPlay("<html><body><table id=\"scoring\"></table></body></html>")
	assert.Error(t, err)
}

func TestPunts(t *testing.T) {
	rows, err := ParsePlayByPlay(fixture(t))
	require.NoError(t, err)

	plays := Punts(rows, 57, 2016)
	require.Len(t, plays, 3)

	assert.Equal(t, punt.Key{GameKey: 57, PlayID: 2}, plays[0].Key)
	assert.Equal(t, "LAC 28", plays[0].YardLineText)
	assert.Equal(t, 28, plays[0].YardNumber)
	assert.Equal(t, "Drew Kaser punts 44 yards, fair catch by Tyreek Hill at KC 28.", plays[0].Description)

	var got []punt.Outcome
	for _, p := range plays {
		out, err := punt.Process(p)
		require.NoError(t, err)
		got = append(got, out.Outcome)
	}
	assert.Equal(t, []punt.Outcome{punt.FairCatch, punt.Returned, punt.OutOfBounds}, got)

	ret, err := punt.Process(plays[1])
	require.NoError(t, err)
	assert.Equal(t, 36, ret.YardLine)
	assert.Equal(t, 10, ret.Yardage)
	assert.Equal(t, 52, ret.PuntDistance)
	assert.Equal(t, "GB 40", plays[2].YardLineText)
}

func TestLeagueCode(t *testing.T) {
	assert.Equal(t, "KC", LeagueCode("kan"))
	assert.Equal(t, "LAC", LeagueCode("SDG"))
	assert.Equal(t, "SEA", LeagueCode("SEA"))

	team, ok := TeamFromGameID("201609110kan")
	require.True(t, ok)
	assert.Equal(t, "KAN", team.Abbr)
	assert.Equal(t, "KC", LeagueCode(team.Abbr))
	_, ok = TeamFromGameID("201609110xyz")
	assert.False(t, ok)
	_, ok = TeamFromGameID("kc")
	assert.False(t, ok)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
}

func testClient(t *testing.T, url string) *Client {
	return &Client{
		HTTP:        &http.Client{Timeout: 5 * time.Second},
		BaseURL:     url,
		Logger:      zaptest.NewLogger(t),
		MaxAttempts: 4,
		Base:        time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
		Cooldown:    time.Millisecond,
	}
}

func TestFetchPunts_Retries(t *testing.T) {
	html := fixture(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/boxscores/201609110kan.htm", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "PuntOutcomesBot")
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(html))
		}
	}))
	defer srv.Close()

	plays, err := testClient(t, srv.URL).FetchPunts(context.Background(), "201609110kan", 57, 2016)
	require.NoError(t, err)
	assert.Len(t, plays, 3)
	assert.Equal(t, "KC", plays[0].HomeTeam)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_NotFoundIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Get(context.Background(), srv.URL+"/boxscores/nope.htm", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Get(context.Background(), srv.URL, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted retries")
}
