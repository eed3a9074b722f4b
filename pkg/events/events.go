package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Type names a domain event.
type Type string

const (
	TypeGradeCalculated Type = "grade.calculated"
)

const (
	source  = "sma-grading-api"
	version = "1"
)

// Envelope wraps every domain event on the wire.
type Envelope struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
}

// GradeCalculated is emitted after a grade record has been upserted.
type GradeCalculated struct {
	StudentID      string    `json:"student_id"`
	SubjectID      string    `json:"subject_id"`
	ClassID        string    `json:"class_id"`
	AcademicYearID string    `json:"academic_year_id"`
	Semester       string    `json:"semester"`
	FinalScore     float64   `json:"final_score"`
	LetterGrade    string    `json:"letter_grade"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// NewMessage encodes data inside an envelope of type t.
func NewMessage(t Type, data any) (*message.Message, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	env := Envelope{
		ID:        watermill.NewUUID(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   version,
		Data:      payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", t, err)
	}

	msg := message.NewMessage(env.ID, body)
	msg.Metadata.Set("event_type", string(t))
	msg.Metadata.Set("source", source)
	msg.Metadata.Set("version", version)
	msg.Metadata.Set("timestamp", env.Timestamp.Format(time.RFC3339))
	return msg, nil
}

// Decode unwraps msg and unmarshals its data into out.
func Decode(msg *message.Message, out any) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return Envelope{}, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return env, nil
}
