package punt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name      string
		outcome   Outcome
		desc      string
		touchdown bool
		want      Position
	}{
		{
			name:    "downed spot",
			outcome: Downed,
			desc:    "(Punt formation) J.Smith punts 45 yards to MIA 10, Center-T.Jones, downed by NYJ.",
			want:    Position{YardLine: 10, PuntDistance: 45},
		},
		{
			name:    "touchback is fixed at the 20",
			outcome: Touchback,
			desc:    "(Punt formation) J.Smith punts 40 yards, touchback.",
			want:    Position{YardLine: TouchbackYardLine, PuntDistance: 40},
		},
		{
			name:    "re-kick uses the second distance",
			outcome: FairCatch,
			desc:    "J.Smith punts 50 yards to end zone, Touchback. PENALTY on NYJ, Delay of Game, 5 yards, enforced. J.Smith punts 45 yards to MIA 15, fair catch.",
			want:    Position{YardLine: 15, PuntDistance: 45},
		},
		{
			name:      "touchdown overrides the return spot",
			outcome:   Returned,
			desc:      "T.Brown for 12 yards, TOUCHDOWN.",
			touchdown: true,
			want:      Position{YardLine: EndZoneYardLine, Yardage: 12},
		},
		{
			name:    "no punt",
			outcome: NotPunted,
			desc:    "(Shotgun) Pass incomplete.",
			want:    Position{},
		},
		{
			name:    "return spot precedes for",
			outcome: Returned,
			desc:    "J.Smith punts 45 yards to NYJ 20, Center-J.Doe. T.Brown to NYJ 32 for 12 yards (K.Lee).",
			want:    Position{YardLine: 32, Yardage: 12, PuntDistance: 45},
		},
		{
			name:    "negative return",
			outcome: Returned,
			desc:    "J.Smith punts 51 yards to NYJ 9, Center-J.Doe. T.Brown to NYJ 6 for -3 yards (K.Lee).",
			want:    Position{YardLine: 6, Yardage: -3, PuntDistance: 51},
		},
		{
			name:    "return without a readable spot",
			outcome: Returned,
			desc:    "J.Smith punts 44 yards to NYJ 16, Center-J.Doe. T.Brown MUFFS catch, RECOVERED by MIA.",
			want:    Position{YardLine: YardLineUndetermined, PuntDistance: 44},
		},
		{
			name:    "fair catch at midfield has no team code",
			outcome: FairCatch,
			desc:    "J.Smith punts 30 yards to 50, Center-J.Doe, fair catch by T.Brown.",
			want:    Position{YardLine: MidfieldYardLine, PuntDistance: 30},
		},
		{
			name:    "kick counted without distance",
			outcome: OutOfBounds,
			desc:    "J.Smith punts, ball goes out of bounds at NYJ 35.",
			want:    Position{YardLine: 35, PuntDistance: DefaultPuntDistance},
		},
		{
			name:      "touchdown on a not punted play",
			outcome:   NotPunted,
			desc:      "J.Smith punts 0 yards, blocked by T.Brown, RECOVERED by NYJ-K.Lee at MIA 22. K.Lee for 22 yards, TOUCHDOWN.",
			touchdown: true,
			want:      Position{YardLine: EndZoneYardLine, PuntDistance: 0},
		},
		{
			name:    "yardage only counts on returns",
			outcome: Downed,
			desc:    "J.Smith punts 40 yards to NYJ 12, Center-J.Doe, downed by MIA. PENALTY on NYJ, Holding, 10 yards, enforced at NYJ 12. for 5 yards",
			want:    Position{YardLine: 12, PuntDistance: 40},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.outcome, tc.desc, tc.touchdown)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	_, err := Resolve(Outcome("safety"), "J.Smith punts 40 yards.", false)
	assert.Error(t, err)

	_, err = Resolve(Downed, " ", false)
	assert.ErrorIs(t, err, ErrEmptyDescription)
}

func TestPuntDistance(t *testing.T) {
	assert.Equal(t, 0, puntDistance("(Shotgun) Pass incomplete."))
	assert.Equal(t, 47, puntDistance("J.Smith punts 47 yards to NYJ 13."))
	// three kicks fall back to the first one
	assert.Equal(t, 41, puntDistance("J.Smith punts 41 yards. J.Smith punts 44 yards. J.Smith punts 39 yards."))
	// count is case-exact
	assert.Equal(t, 0, puntDistance("J.Smith PUNTS 40 yards."))
}

func TestHasTouchdown(t *testing.T) {
	assert.True(t, HasTouchdown("T.Brown for 70 yards, TOUCHDOWN."))
	assert.False(t, HasTouchdown("T.Brown for 70 yards, touchdown."))
}
