package punt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	in := Play{
		Key:         Key{GameKey: 21, PlayID: 3129},
		Season:      2016,
		PossTeam:    "MIA",
		Description: "J.Smith punts 50 yards to NYJ 20, Center-J.Doe. T.Brown to NYJ 35 for 65 yards, TOUCHDOWN.",
	}

	out, err := Process(in)
	require.NoError(t, err)
	assert.Equal(t, Returned, out.Outcome)
	assert.True(t, out.Touchdown)
	assert.Equal(t, EndZoneYardLine, out.YardLine)
	assert.Equal(t, 65, out.Yardage)
	assert.Equal(t, 50, out.PuntDistance)
	assert.Equal(t, in.Key, out.Key)
	assert.Equal(t, "MIA", out.PossTeam)
}

func TestProcess_Idempotent(t *testing.T) {
	in := Play{
		Key:         Key{GameKey: 5, PlayID: 77},
		Description: "J.Smith punts 41 yards to NYJ 14, fair catch by T.Brown. Ball downed.",
	}
	once, err := Process(in)
	require.NoError(t, err)
	twice, err := Process(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.Equal(t, FairCatch, twice.Outcome)
	assert.Equal(t, 14, twice.YardLine)
}

func TestProcess_ErrorNamesPlay(t *testing.T) {
	_, err := Process(Play{Key: Key{GameKey: 9, PlayID: 12}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyDescription)
	assert.Contains(t, err.Error(), "9#12")

	_, err = Process(Play{
		Key:         Key{GameKey: 9, PlayID: 13},
		Description: "J.Smith punts 60 yards to end zone, fair catch waived, Touchback.",
	})
	assert.ErrorIs(t, err, ErrAmbiguousOutcome)
	assert.Contains(t, err.Error(), "9#13")
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "21#3129", Key{GameKey: 21, PlayID: 3129}.String())
}
