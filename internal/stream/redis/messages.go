package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
)

var ErrBadMessage = errors.New("bad stream message")

// QuestionMessage is the JSON payload of a question stream entry.
type QuestionMessage struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

type sourceField struct {
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
}

// decodeQuestion reads the "payload" field. A missing id is replaced with a new uuid.
func decodeQuestion(values map[string]interface{}) (QuestionMessage, error) {
	payload, ok := values["payload"].(string)
	if !ok {
		return QuestionMessage{}, fmt.Errorf("%w: missing payload field", ErrBadMessage)
	}

	var q QuestionMessage
	if err := json.Unmarshal([]byte(payload), &q); err != nil {
		return QuestionMessage{}, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}

	if strings.TrimSpace(q.ID) == "" {
		q.ID = uuid.NewString()
	}

	return q, nil
}

// answerValues builds the answer stream entry for one question.
func answerValues(id string, answer *qa.Answer, askErr error) map[string]interface{} {
	values := map[string]interface{}{
		"id":     id,
		"answer": "",
		"error":  "",
	}

	if askErr != nil {
		values["error"] = askErr.Error()
		return values
	}

	values["answer"] = answer.Text

	sources := make([]sourceField, len(answer.Sources))
	for i, m := range answer.Sources {
		sources[i] = sourceField{Position: m.Position, Distance: m.Distance}
	}
	if data, err := json.Marshal(sources); err == nil {
		values["sources"] = string(data)
	}

	return values
}
