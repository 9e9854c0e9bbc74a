package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"placement/internal/common"
	"placement/internal/domain/auth"
	"placement/internal/domain/interview"
	"placement/internal/domain/job"
	"placement/internal/domain/user"
)

type interviewFixture struct {
	service  *InterviewService
	notifier *recordingNotifier
	users    *fakeUserRepo
	job      job.Job
	now      time.Time
}

func newInterviewFixture(t *testing.T) *interviewFixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jobs := newFakeJobRepo()
	item, err := jobs.Create(context.Background(), job.Job{Title: "Backend Engineer", Status: job.StatusOpen, Deadline: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("expected job created, got %v", err)
	}
	f := &interviewFixture{notifier: &recordingNotifier{}, users: newFakeUserRepo(), job: *item, now: now}
	f.service = NewInterviewService(newFakeInterviewRepo(), jobs, newFakeApplicationRepo(), f.users, noopAnalyticsRepo{}, f.notifier, nil)
	f.service.now = fixedClock(now)
	return f
}

func (f *interviewFixture) student(t *testing.T) common.UUID {
	t.Helper()
	return seedUser(t, f.users, string(common.NewUUID())+"@college.edu", user.RoleStudent).ID
}

func interviewInput(jobID, studentID common.UUID, at time.Time) InterviewInput {
	return InterviewInput{
		JobID:       jobID.String(),
		StudentID:   studentID.String(),
		ScheduledAt: &at,
		Duration:    45,
		Type:        "technical",
		Location:    "Room 204",
	}
}

func TestInterviewLifecycle(t *testing.T) {
	f := newInterviewFixture(t)
	service, notifier, item, now := f.service, f.notifier, f.job, f.now
	admin := adminSession()
	studentID := f.student(t)
	student := studentSession(studentID)

	scheduled, err := service.Schedule(context.Background(), admin, interviewInput(item.ID, studentID, now.Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if scheduled.Status != interview.StatusScheduled {
		t.Fatalf("expected scheduled, got %s", scheduled.Status)
	}
	if len(notifier.interviews) != 1 {
		t.Fatalf("expected interview notification, got %d", len(notifier.interviews))
	}

	if _, err := service.Accept(context.Background(), studentSession(common.NewUUID()), scheduled.ID); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden for another student, got %v", err)
	}
	accepted, err := service.Accept(context.Background(), student, scheduled.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !accepted.Accepted {
		t.Fatal("expected interview accepted")
	}

	rescheduled, err := service.RequestReschedule(context.Background(), student, scheduled.ID, RescheduleInput{Reason: "exam clash"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rescheduled.Status != interview.StatusRescheduled || rescheduled.Accepted {
		t.Fatalf("unexpected interview %+v", rescheduled)
	}
	if !strings.Contains(rescheduled.Notes, "exam clash") {
		t.Fatalf("expected reason in notes, got %q", rescheduled.Notes)
	}

	updated, err := service.Update(context.Background(), admin, scheduled.ID, interviewInput(item.ID, studentID, now.Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Status != interview.StatusScheduled {
		t.Fatalf("expected a new time to reschedule, got %s", updated.Status)
	}

	if _, err := service.AddFeedback(context.Background(), admin, scheduled.ID, FeedbackInput{Rating: 6, Recommendation: "proceed"}); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected rating validation error, got %v", err)
	}
	completed, err := service.AddFeedback(context.Background(), admin, scheduled.ID, FeedbackInput{Rating: 4, Recommendation: "proceed", Strengths: "clear thinking"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if completed.Status != interview.StatusCompleted || completed.Feedback == nil || completed.Feedback.Rating != 4 {
		t.Fatalf("unexpected interview %+v", completed)
	}
	if _, err := service.Cancel(context.Background(), admin, scheduled.ID, ReasonInput{Reason: "too late"}); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected completed interview not cancellable, got %v", err)
	}
}

func TestInterviewScheduleValidation(t *testing.T) {
	f := newInterviewFixture(t)
	service, item, now := f.service, f.job, f.now
	admin := adminSession()
	studentID := f.student(t)

	if _, err := service.Schedule(context.Background(), studentSession(studentID), interviewInput(item.ID, studentID, now.Add(time.Hour))); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := service.Schedule(context.Background(), admin, interviewInput(item.ID, studentID, now.Add(-time.Hour))); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected past time refused, got %v", err)
	}
	if _, err := service.Schedule(context.Background(), admin, interviewInput(common.NewUUID(), studentID, now.Add(time.Hour))); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected unknown job, got %v", err)
	}
}

func TestInterviewScheduleRequiresExistingStudent(t *testing.T) {
	f := newInterviewFixture(t)
	adminAccount := seedUser(t, f.users, "cell@college.edu", user.RoleAdmin)
	admin := auth.Session{UserID: adminAccount.ID, Role: user.RoleAdmin}
	at := f.now.Add(time.Hour)

	_, err := f.service.Schedule(context.Background(), admin, interviewInput(f.job.ID, adminAccount.ID, at))
	appErr, ok := common.As(err)
	if !ok || appErr.Code != common.CodeValidation || appErr.Fields["student_id"] == "" {
		t.Fatalf("expected student_id validation error for an admin account, got %v", err)
	}
	if _, err := f.service.Schedule(context.Background(), admin, interviewInput(f.job.ID, common.NewUUID(), at)); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected unknown student to be not found, got %v", err)
	}
	if len(f.notifier.interviews) != 0 {
		t.Fatalf("expected no notifications, got %d", len(f.notifier.interviews))
	}
}

func TestInterviewRescheduleProposal(t *testing.T) {
	f := newInterviewFixture(t)
	admin := adminSession()
	studentID := f.student(t)
	scheduled, err := f.service.Schedule(context.Background(), admin, interviewInput(f.job.ID, studentID, f.now.Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	student := studentSession(studentID)

	past := f.now.Add(-time.Hour)
	if _, err := f.service.RequestReschedule(context.Background(), student, scheduled.ID, RescheduleInput{Reason: "exam clash", ProposedAt: &past}); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected past proposal refused, got %v", err)
	}
	proposed := f.now.Add(72 * time.Hour)
	requested, err := f.service.RequestReschedule(context.Background(), student, scheduled.ID, RescheduleInput{Reason: "exam clash", ProposedAt: &proposed})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if requested.ProposedAt == nil || !requested.ProposedAt.Equal(proposed) {
		t.Fatalf("expected proposed time stored, got %+v", requested.ProposedAt)
	}

	moved, err := f.service.Update(context.Background(), admin, scheduled.ID, interviewInput(f.job.ID, studentID, *requested.ProposedAt))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if moved.Status != interview.StatusScheduled || moved.ProposedAt != nil {
		t.Fatalf("expected proposal consumed by the new schedule, got %+v", moved)
	}
}

func TestInterviewListScopedToStudent(t *testing.T) {
	f := newInterviewFixture(t)
	service, item, now := f.service, f.job, f.now
	admin := adminSession()
	first := f.student(t)
	second := f.student(t)
	for _, studentID := range []common.UUID{first, second} {
		if _, err := service.Schedule(context.Background(), admin, interviewInput(item.ID, studentID, now.Add(time.Hour))); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	own, err := service.List(context.Background(), studentSession(first))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(own) != 1 || own[0].StudentID != first {
		t.Fatalf("expected own interview only, got %+v", own)
	}
	all, err := service.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 interviews, got %d", len(all))
	}
}
