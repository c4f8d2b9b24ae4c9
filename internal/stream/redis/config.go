package redis

import "time"

const (
	DefaultBlock        = 2 * time.Second
	DefaultAnswerMaxLen = 10000
	DefaultPendingBatch = 10
)

type RedisStreamConfig struct {
	QuestionStream string
	AnswerStream   string
	Group          string
	ConsumerName   string
	Block          time.Duration
	AnswerMaxLen   int64
	// PendingBatch is how many of this consumer's unacknowledged entries are re-read per call.
	PendingBatch int64
}

func NewRedisStreamConfig(questionStream string, answerStream string, group string, consumerName string) *RedisStreamConfig {
	return &RedisStreamConfig{
		QuestionStream: questionStream,
		AnswerStream:   answerStream,
		Group:          group,
		ConsumerName:   consumerName,
		Block:          DefaultBlock,
		AnswerMaxLen:   DefaultAnswerMaxLen,
		PendingBatch:   DefaultPendingBatch,
	}
}
