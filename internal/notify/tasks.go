// Package notify delivers placement e-mails through an asynq queue and a mail relay.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"placement/internal/common"
)

const (
	TypeJobPosted          = "notify:job_posted"
	TypeMessagePosted      = "notify:message_posted"
	TypeStudentInvited     = "notify:student_invited"
	TypeInterviewScheduled = "notify:interview_scheduled"

	QueueName = "notifications"
)

type JobPostedPayload struct {
	JobID       common.UUID `json:"job_id"`
	Title       string      `json:"title"`
	Company     string      `json:"company"`
	Departments []string    `json:"departments"`
	Deadline    time.Time   `json:"deadline"`
}

type MessagePostedPayload struct {
	MessageID   common.UUID `json:"message_id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	Departments []string    `json:"departments"`
}

type StudentInvitedPayload struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type InterviewScheduledPayload struct {
	InterviewID common.UUID `json:"interview_id"`
	JobID       common.UUID `json:"job_id"`
	StudentID   common.UUID `json:"student_id"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	Duration    int         `json:"duration"`
	Type        string      `json:"type"`
	Location    string      `json:"location"`
}

func newTask(taskType string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, body), nil
}

func decodePayload(task *asynq.Task, dst interface{}) error {
	if err := json.Unmarshal(task.Payload(), dst); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}
