package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publish appends a question to stream and returns the question id and the entry id.
func Publish(ctx context.Context, client redis.Cmdable, stream string, q QuestionMessage) (string, string, error) {
	values, err := questionValues(&q)
	if err != nil {
		return "", "", err
	}

	entryID, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", "", fmt.Errorf("failed to publish question: %w", err)
	}

	return q.ID, entryID, nil
}

// questionValues fills in a missing id and encodes q the way decodeQuestion reads it.
func questionValues(q *QuestionMessage) (map[string]interface{}, error) {
	if strings.TrimSpace(q.Question) == "" {
		return nil, fmt.Errorf("%w: empty question", ErrBadMessage)
	}
	if strings.TrimSpace(q.ID) == "" {
		q.ID = uuid.NewString()
	}

	payload, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question: %w", err)
	}

	return map[string]interface{}{"payload": string(payload)}, nil
}
