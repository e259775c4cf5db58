package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"testing"
	"time"

	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

// fake client implementing DynamoDBAPI
type fakeDDB struct {
	calls int
	// simulate first attempt returning unprocessed, second succeeds
	failFirst bool
	writeErr  error
	pageSize  int

	items map[punt.Key]map[string]types.AttributeValue
}

func (f *fakeDDB) BatchWriteItem(ctx context.Context, in *ddb.BatchWriteItemInput, _ ...func(*ddb.Options)) (*ddb.BatchWriteItemOutput, error) {
	f.calls++
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	if f.failFirst {
		f.failFirst = false
		// Echo back all as unprocessed to force a retry
		return &ddb.BatchWriteItemOutput{
			UnprocessedItems: in.RequestItems,
		}, nil
	}
	if f.items == nil {
		f.items = map[punt.Key]map[string]types.AttributeValue{}
	}
	for _, reqs := range in.RequestItems {
		for _, r := range reqs {
			p := playFromItem(r.PutRequest.Item)
			f.items[p.Key] = r.PutRequest.Item
		}
	}
	return &ddb.BatchWriteItemOutput{}, nil
}

func (f *fakeDDB) Query(ctx context.Context, in *ddb.QueryInput, _ ...func(*ddb.Options)) (*ddb.QueryOutput, error) {
	gk, _ := strconv.Atoi(in.ExpressionAttributeValues[":g"].(*types.AttributeValueMemberN).Value)
	var keys []punt.Key
	for k := range f.items {
		if k.GameKey == gk {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].PlayID < keys[j].PlayID })

	start := 0
	if in.ExclusiveStartKey != nil {
		last := getNum(in.ExclusiveStartKey, "PlayID")
		for start < len(keys) && keys[start].PlayID <= last {
			start++
		}
	}
	end := min(start+f.pageSize, len(keys))
	out := &ddb.QueryOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, f.items[k])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"GameKey": &types.AttributeValueMemberN{Value: strconv.Itoa(gk)},
			"PlayID":  &types.AttributeValueMemberN{Value: strconv.Itoa(keys[end-1].PlayID)},
		}
	}
	return out, nil
}

func outcomePlays(n int) []punt.Play {
	var plays []punt.Play
	for i := 0; i < n; i++ {
		plays = append(plays, punt.Play{
			Key:          punt.Key{GameKey: 21 + i%2, PlayID: 100 + i},
			Season:       2017,
			PossTeam:     "MIA",
			RecTeam:      "NYJ",
			Outcome:      punt.FairCatch,
			YardLine:     14,
			PuntDistance: 41,
			Description:  fmt.Sprintf("play %d", i),
		})
	}
	return plays
}

func TestPutPlayOutcomes_BatchingAndRetry(t *testing.T) {
	// 30 plays → 25 + 5 batches
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fc := &fakeDDB{failFirst: true}
	err := PutPlayOutcomes(ctx, fc, "tbl", "run-1", outcomePlays(30))
	require.NoError(t, err)

	// first batch retried once, second batch clean
	assert.Equal(t, 3, fc.calls)
	assert.Len(t, fc.items, 30)
}

func TestPutPlayOutcomes_SkipsUnclassifiedAndDuplicates(t *testing.T) {
	plays := outcomePlays(4)
	plays[1].Outcome = ""
	plays = append(plays, plays[0])

	fc := &fakeDDB{}
	require.NoError(t, PutPlayOutcomes(context.Background(), fc, "tbl", "run-1", plays))
	assert.Equal(t, 1, fc.calls)
	assert.Len(t, fc.items, 3)
}

func TestPutPlayOutcomes_Error(t *testing.T) {
	fc := &fakeDDB{writeErr: errors.New("throttled")}
	err := PutPlayOutcomes(context.Background(), fc, "tbl", "run-1", outcomePlays(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch write outcomes")
}

func TestLoadGameOutcomes_Paginates(t *testing.T) {
	fc := &fakeDDB{pageSize: 4}
	require.NoError(t, PutPlayOutcomes(context.Background(), fc, "tbl", "run-1", outcomePlays(20)))

	got, err := LoadGameOutcomes(context.Background(), fc, "tbl", 21)
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i, p := range got {
		assert.Equal(t, 21, p.GameKey)
		assert.Equal(t, 100+2*i, p.PlayID)
		assert.Equal(t, punt.FairCatch, p.Outcome)
		assert.Equal(t, 14, p.YardLine)
		assert.Equal(t, "NYJ", p.RecTeam)
	}
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 240*time.Millisecond, nextBackoff(120*time.Millisecond))
	assert.Equal(t, 2*time.Second, nextBackoff(1500*time.Millisecond))
}
