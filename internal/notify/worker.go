package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"placement/internal/common"
	"placement/internal/domain/job"
	"placement/internal/domain/user"
)

// Recipients resolves who a notification goes to.
type Recipients interface {
	GetByID(ctx context.Context, id common.UUID) (*user.User, error)
	ListStudentEmails(ctx context.Context, departments []string) ([]string, error)
}

type JobLookup interface {
	GetByID(ctx context.Context, id common.UUID) (*job.Job, error)
}

type Worker struct {
	recipients Recipients
	jobs       JobLookup
	mailer     Mailer
	logger     *zap.Logger
	timeout    time.Duration
}

func NewWorker(recipients Recipients, jobs JobLookup, mailer Mailer, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{recipients: recipients, jobs: jobs, mailer: mailer, logger: logger, timeout: time.Minute}
}

func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeJobPosted, w.ProcessJobPosted)
	mux.HandleFunc(TypeMessagePosted, w.ProcessMessagePosted)
	mux.HandleFunc(TypeStudentInvited, w.ProcessStudentInvited)
	mux.HandleFunc(TypeInterviewScheduled, w.ProcessInterviewScheduled)
}

func (w *Worker) ProcessJobPosted(ctx context.Context, task *asynq.Task) error {
	var payload JobPostedPayload
	if err := decodePayload(task, &payload); err != nil {
		return err
	}
	subject := fmt.Sprintf("New opening: %s at %s", payload.Title, payload.Company)
	text := fmt.Sprintf("%s is hiring for %s.\nApply before %s on the placement portal.",
		payload.Company, payload.Title, payload.Deadline.Format("02 Jan 2006 15:04 MST"))
	return w.broadcast(ctx, task.Type(), payload.Departments, subject, text)
}

func (w *Worker) ProcessMessagePosted(ctx context.Context, task *asynq.Task) error {
	var payload MessagePostedPayload
	if err := decodePayload(task, &payload); err != nil {
		return err
	}
	return w.broadcast(ctx, task.Type(), payload.Departments, payload.Title, payload.Content)
}

func (w *Worker) ProcessStudentInvited(ctx context.Context, task *asynq.Task) error {
	var payload StudentInvitedPayload
	if err := decodePayload(task, &payload); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	text := fmt.Sprintf("Hello %s,\n\nAn account was created for you on the placement portal.\nLogin: %s\nTemporary password: %s\n\nPlease change it after signing in.",
		payload.Name, payload.Email, payload.Password)
	return w.mailer.Send(ctx, Mail{To: payload.Email, Subject: "Your placement portal account", Text: text})
}

func (w *Worker) ProcessInterviewScheduled(ctx context.Context, task *asynq.Task) error {
	var payload InterviewScheduledPayload
	if err := decodePayload(task, &payload); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	student, err := w.recipients.GetByID(ctx, payload.StudentID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			w.logger.Info("interview notification dropped, student missing", zap.String("student_id", payload.StudentID.String()))
			return nil
		}
		return err
	}
	title := "your interview"
	if item, err := w.jobs.GetByID(ctx, payload.JobID); err == nil {
		title = fmt.Sprintf("%s at %s", item.Title, item.Company)
	}
	text := fmt.Sprintf("Hello %s,\n\nA %s interview for %s is scheduled on %s (%d minutes).\nLocation: %s",
		student.Name, payload.Type, title, payload.ScheduledAt.Format("02 Jan 2006 15:04 MST"), payload.Duration, payload.Location)
	return w.mailer.Send(ctx, Mail{To: student.Email, Subject: "Interview scheduled: " + title, Text: text})
}

// broadcast mails every student of the departments. Only a complete failure is retried,
// so one bad address does not resend the notice to everybody else.
func (w *Worker) broadcast(ctx context.Context, taskType string, departments []string, subject, text string) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	emails, err := w.recipients.ListStudentEmails(ctx, departments)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	var errs error
	sent := 0
	for _, email := range emails {
		if err := w.mailer.Send(ctx, Mail{To: email, Subject: subject, Text: text}); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		sent++
	}
	failed := len(multierr.Errors(errs))
	w.logger.Info("notification delivered",
		zap.String("task", taskType),
		zap.String("departments", strings.Join(departments, ",")),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)
	if failed > 0 && sent == 0 {
		return errs
	}
	if failed > 0 {
		w.logger.Error("partial notification failure", zap.String("task", taskType), zap.Error(errs))
	}
	return nil
}

// NewServer builds the asynq server that runs the notification queue.
func NewServer(opt asynq.RedisConnOpt, concurrency int, logger *zap.Logger) *asynq.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 5
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueName: 1},
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			delay := time.Duration(1<<uint(n)) * 10 * time.Second
			if delay > 10*time.Minute {
				delay = 10 * time.Minute
			}
			logger.Info("notification retry scheduled", zap.String("task", task.Type()), zap.Int("attempt", n), zap.Duration("delay", delay), zap.Error(err))
			return delay
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("notification task failed", zap.String("task", task.Type()), zap.Error(err))
		}),
		Logger: logger.Sugar(),
	})
}
