package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RunRequestMessage asks a worker to run one configured job.
type RunRequestMessage struct {
	RequestID string    `json:"request_id"`
	Job       string    `json:"job"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRunRequestMessage(job, trigger string) *RunRequestMessage {
	return &RunRequestMessage{
		RequestID: uuid.NewString(),
		Job:       job,
		Trigger:   trigger,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RunRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RunRequestMessageFromJSON decodes a message; one without a job name is
// rejected.
func RunRequestMessageFromJSON(data []byte) (*RunRequestMessage, error) {
	var msg RunRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Job == "" {
		return nil, errors.New("run request without job name")
	}
	return &msg, nil
}
