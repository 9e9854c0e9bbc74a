package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"placement/internal/domain/interview"
	"placement/internal/domain/job"
	"placement/internal/domain/message"
)

// TaskEnqueuer is the subset of *asynq.Client used here.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer turns domain events into notification tasks.
type Enqueuer struct {
	client     TaskEnqueuer
	maxRetries int
}

func NewEnqueuer(client TaskEnqueuer) *Enqueuer {
	return &Enqueuer{client: client, maxRetries: 5}
}

func (e *Enqueuer) JobPosted(ctx context.Context, item job.Job) error {
	return e.enqueue(ctx, TypeJobPosted, JobPostedPayload{
		JobID:       item.ID,
		Title:       item.Title,
		Company:     item.Company,
		Departments: item.Departments,
		Deadline:    item.Deadline,
	}, asynq.TaskID(TypeJobPosted+":"+item.ID.String()))
}

func (e *Enqueuer) MessagePosted(ctx context.Context, item message.Message) error {
	return e.enqueue(ctx, TypeMessagePosted, MessagePostedPayload{
		MessageID:   item.ID,
		Title:       item.Title,
		Content:     item.Content,
		Departments: item.Departments,
	}, asynq.TaskID(TypeMessagePosted+":"+item.ID.String()))
}

func (e *Enqueuer) StudentInvited(ctx context.Context, email, name, password string) error {
	return e.enqueue(ctx, TypeStudentInvited, StudentInvitedPayload{Email: email, Name: name, Password: password})
}

func (e *Enqueuer) InterviewScheduled(ctx context.Context, item interview.Interview) error {
	return e.enqueue(ctx, TypeInterviewScheduled, InterviewScheduledPayload{
		InterviewID: item.ID,
		JobID:       item.JobID,
		StudentID:   item.StudentID,
		ScheduledAt: item.ScheduledAt,
		Duration:    item.Duration,
		Type:        string(item.Type),
		Location:    item.Location,
	})
}

func (e *Enqueuer) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	task, err := newTask(taskType, payload)
	if err != nil {
		return err
	}
	opts = append([]asynq.Option{asynq.Queue(QueueName), asynq.MaxRetry(e.maxRetries), asynq.Timeout(2 * time.Minute)}, opts...)
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
