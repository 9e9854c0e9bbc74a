package app

import (
	"context"
	"testing"
	"time"

	"placement/internal/common"
	"placement/internal/domain/message"
	"placement/internal/domain/profile"
)

func TestMessageServiceStudentSeesOwnDepartment(t *testing.T) {
	repo := newFakeMessageRepo()
	students := newFakeStudentRepo()
	notifier := &recordingNotifier{}
	service := NewMessageService(repo, students, noopAnalyticsRepo{}, notifier, nil)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	admin := adminSession()

	post := func(title string, departments []string, pinned bool, at time.Time) *message.Message {
		t.Helper()
		service.now = fixedClock(at)
		created, err := service.Create(context.Background(), admin, MessageInput{
			Title:       title,
			Content:     "Placement drive details follow.",
			Departments: departments,
			Pinned:      pinned,
			SendEmail:   true,
		})
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		return created
	}
	post("Campus drive for everyone", []string{"all"}, false, base)
	pinned := post("Mechanical workshop notice", []string{"me"}, true, base.Add(time.Hour))
	cse := post("CSE coding round schedule", []string{"Computer Science Engineering"}, false, base.Add(2*time.Hour))
	post("IT only update here", []string{"it"}, true, base.Add(3*time.Hour))

	if len(notifier.messages) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(notifier.messages))
	}
	if cse.Category != message.CategoryAnnouncement || cse.Priority != message.PriorityMedium {
		t.Fatalf("expected defaults, got %s %s", cse.Category, cse.Priority)
	}

	studentID := common.NewUUID()
	students.profiles[studentID] = profile.StudentProfile{UserID: studentID, Department: "me"}
	session := studentSession(studentID)
	items, err := service.List(context.Background(), session, 0, 0)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(items))
	}
	if items[0].ID != pinned.ID {
		t.Fatalf("expected pinned message first, got %s", items[0].Title)
	}
	if _, err := service.Get(context.Background(), session, cse.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected other department message hidden, got %v", err)
	}

	all, err := service.List(context.Background(), admin, 10, 0)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected admin to see all 4 messages, got %d", len(all))
	}
}

func TestMessageServiceMarkRead(t *testing.T) {
	repo := newFakeMessageRepo()
	service := NewMessageService(repo, newFakeStudentRepo(), noopAnalyticsRepo{}, nil, nil)
	created, err := service.Create(context.Background(), adminSession(), MessageInput{
		Title:       "Resume deadline reminder",
		Content:     "Upload resumes before Friday.",
		Departments: []string{"all"},
		Priority:    "high",
		Category:    "alert",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	session := studentSession(common.NewUUID())
	if err := service.MarkRead(context.Background(), session, created.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	item, err := service.Get(context.Background(), session, created.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !item.IsRead {
		t.Fatal("expected message marked read")
	}
}

func TestMessageServiceAdminOnlyWrites(t *testing.T) {
	service := NewMessageService(newFakeMessageRepo(), newFakeStudentRepo(), noopAnalyticsRepo{}, nil, nil)
	session := studentSession(common.NewUUID())
	input := MessageInput{Title: "Hello there", Content: "Some content here.", Departments: []string{"all"}}
	if _, err := service.Create(context.Background(), session, input); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := service.Delete(context.Background(), session, common.NewUUID()); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	input.Title = "Hey"
	if _, err := service.Create(context.Background(), adminSession(), input); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
