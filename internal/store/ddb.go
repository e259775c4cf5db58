// Package store persists classified punt plays in DynamoDB.
package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Outcome rows: PK=GameKey (N), SK=PlayID (N)
func PutPlayOutcomes(ctx context.Context, ddb DynamoDBAPI, table, runID string, plays []punt.Play) error {
	if len(plays) == 0 {
		return nil
	}
	const maxBatch = 25
	now := strconv.FormatInt(time.Now().Unix(), 10)

	// a batch may not name the same key twice
	seen := make(map[punt.Key]struct{}, len(plays))
	reqs := make([]types.WriteRequest, 0, len(plays))
	for _, p := range plays {
		if !p.Outcome.Valid() {
			continue // unclassified
		}
		if _, dup := seen[p.Key]; dup {
			continue
		}
		seen[p.Key] = struct{}{}
		reqs = append(reqs, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: outcomeItem(p, runID, now)},
		})
	}

	for i := 0; i < len(reqs); i += maxBatch {
		end := min(i+maxBatch, len(reqs))
		if err := batchWriteWithRetry(ctx, ddb, table, reqs[i:end]); err != nil {
			return fmt.Errorf("batch write outcomes: %w", err)
		}
	}
	return nil
}

func outcomeItem(p punt.Play, runID, now string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"GameKey":      &types.AttributeValueMemberN{Value: strconv.Itoa(p.GameKey)}, // PK
		"PlayID":       &types.AttributeValueMemberN{Value: strconv.Itoa(p.PlayID)},  // SK
		"Season":       &types.AttributeValueMemberN{Value: strconv.Itoa(p.Season)},
		"Week":         &types.AttributeValueMemberN{Value: strconv.Itoa(p.Week)},
		"PossTeam":     &types.AttributeValueMemberS{Value: p.PossTeam},
		"RecTeam":      &types.AttributeValueMemberS{Value: p.RecTeam},
		"Outcome":      &types.AttributeValueMemberS{Value: p.Outcome.String()},
		"Yardage":      &types.AttributeValueMemberN{Value: strconv.Itoa(p.Yardage)},
		"YardLine":     &types.AttributeValueMemberN{Value: strconv.Itoa(p.YardLine)},
		"PuntDistance": &types.AttributeValueMemberN{Value: strconv.Itoa(p.PuntDistance)},
		"Touchdown":    &types.AttributeValueMemberBOOL{Value: p.Touchdown},
		"Concussion":   &types.AttributeValueMemberBOOL{Value: p.Concussion},
		"Description":  &types.AttributeValueMemberS{Value: p.Description},
		"RunID":        &types.AttributeValueMemberS{Value: runID},
		"UpdatedAt":    &types.AttributeValueMemberN{Value: now},
	}
}

// LoadGameOutcomes reads every stored play of one game, ordered by PlayID.
func LoadGameOutcomes(ctx context.Context, ddb DynamoDBAPI, table string, gameKey int) ([]punt.Play, error) {
	var (
		out     []punt.Play
		lastKey map[string]types.AttributeValue
	)
	for {
		res, err := ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(table),
			KeyConditionExpression:    aws.String("#G = :g"),
			ExpressionAttributeNames:  map[string]string{"#G": "GameKey"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":g": &types.AttributeValueMemberN{Value: strconv.Itoa(gameKey)}},
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query game %d: %w", gameKey, err)
		}
		for _, it := range res.Items {
			out = append(out, playFromItem(it))
		}
		if len(res.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = res.LastEvaluatedKey
	}
	return out, nil
}

func playFromItem(it map[string]types.AttributeValue) punt.Play {
	return punt.Play{
		Key:          punt.Key{GameKey: getNum(it, "GameKey"), PlayID: getNum(it, "PlayID")},
		Season:       getNum(it, "Season"),
		Week:         getNum(it, "Week"),
		PossTeam:     getStr(it, "PossTeam"),
		RecTeam:      getStr(it, "RecTeam"),
		Outcome:      punt.Outcome(getStr(it, "Outcome")),
		Yardage:      getNum(it, "Yardage"),
		YardLine:     getNum(it, "YardLine"),
		PuntDistance: getNum(it, "PuntDistance"),
		Touchdown:    getBool(it, "Touchdown"),
		Concussion:   getBool(it, "Concussion"),
		Description:  getStr(it, "Description"),
	}
}

func getStr(it map[string]types.AttributeValue, k string) string {
	if v, ok := it[k].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func getNum(it map[string]types.AttributeValue, k string) int {
	if v, ok := it[k].(*types.AttributeValueMemberN); ok {
		n, _ := strconv.Atoi(v.Value)
		return n
	}
	return 0
}

func getBool(it map[string]types.AttributeValue, k string) bool {
	if v, ok := it[k].(*types.AttributeValueMemberBOOL); ok {
		return v.Value
	}
	return false
}

func batchWriteWithRetry(ctx context.Context, ddb DynamoDBAPI, table string, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: reqs},
	}
	const maxAttempts = 6
	backoff := 120 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := ddb.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems[table]) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", table)
}

func nextBackoff(cur time.Duration) time.Duration {
	cur *= 2
	if cur > 2*time.Second {
		return 2 * time.Second
	}
	return cur
}
