package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"placement/internal/common"
	"placement/internal/database"
	"placement/internal/domain/application"
	"placement/internal/domain/assessment"
	"placement/internal/domain/auth"
	"placement/internal/domain/event"
	"placement/internal/domain/interview"
	"placement/internal/domain/job"
	"placement/internal/domain/message"
	"placement/internal/domain/profile"
	"placement/internal/domain/user"
)

func startPostgres(t *testing.T, driver string) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "placement",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForExposedPort(),
			),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/placement?sslmode=disable", host, port.Port())
	db := database.NewPostgres(database.PostgresConfig{Driver: driver, DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 5})
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(ctx, db)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, repo *UserRepository, email string, role user.Role) *user.User {
	t.Helper()
	account, err := repo.Create(context.Background(), user.User{Email: email, Name: "Test", Role: role, PasswordHash: "hash"})
	require.NoError(t, err)
	return account
}

func TestRepositories(t *testing.T) {
	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			db := startPostgres(t, driver)
			ctx := context.Background()
			users := NewUserRepository(db)
			profiles := NewStudentProfileRepository(db)
			jobs := NewJobRepository(db)
			apps := NewApplicationRepository(db)

			admin := seedUser(t, users, "cell@college.edu", user.RoleAdmin)
			student := seedUser(t, users, "Asha@College.edu", user.RoleStudent)

			t.Run("duplicate email is a conflict", func(t *testing.T) {
				_, err := users.Create(ctx, user.User{Email: "asha@college.edu", Name: "Again", Role: user.RoleStudent, PasswordHash: "hash"})
				assert.True(t, common.Is(err, common.CodeConflict), "got %v", err)
			})

			t.Run("profile round trip", func(t *testing.T) {
				_, err := profiles.Upsert(ctx, profile.StudentProfile{
					UserID:     student.ID,
					Department: "cse",
					CGPA:       7.5,
					Skills:     []string{"go"},
					Education:  []profile.Education{{ID: common.NewUUID(), Institution: "NIT", Degree: "BTech", StartDate: time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)}},
				})
				require.NoError(t, err)
				stored, err := profiles.GetByUserID(ctx, student.ID)
				require.NoError(t, err)
				assert.Equal(t, "cse", stored.Department)
				assert.InDelta(t, 7.5, stored.CGPA, 0.001)
				assert.Equal(t, []string{"go"}, stored.Skills)
				assert.Len(t, stored.Education, 1)

				emails, err := users.ListStudentEmails(ctx, []string{"cse"})
				require.NoError(t, err)
				assert.Equal(t, []string{"asha@college.edu"}, emails)
				emails, err = users.ListStudentEmails(ctx, []string{"me"})
				require.NoError(t, err)
				assert.Empty(t, emails)
			})

			created, err := jobs.Create(ctx, job.Job{
				Title:         "Backend Engineer",
				Company:       "Acme",
				Location:      "Pune",
				Description:   "Build services",
				Requirements:  []string{"Go"},
				Salary:        "12 LPA",
				Type:          job.TypeFullTime,
				Departments:   []string{"cse", "it"},
				MinCGPA:       7,
				Deadline:      time.Now().Add(24 * time.Hour).UTC(),
				ExcludePlaced: true,
				Status:        job.StatusOpen,
				PostedBy:      admin.ID,
			})
			require.NoError(t, err)

			t.Run("job filters", func(t *testing.T) {
				items, err := jobs.List(ctx, job.Filter{Status: job.StatusOpen, Department: "it", Now: time.Now().UTC(), Limit: 10})
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.Equal(t, []string{"cse", "it"}, items[0].Departments)

				items, err = jobs.List(ctx, job.Filter{Department: "me", Limit: 10})
				require.NoError(t, err)
				assert.Empty(t, items)

				items, err = jobs.List(ctx, job.Filter{Status: job.StatusClosed, Now: time.Now().Add(48 * time.Hour).UTC()})
				require.NoError(t, err)
				assert.Len(t, items, 1)
			})

			t.Run("concurrent applies insert one row", func(t *testing.T) {
				var wg sync.WaitGroup
				results := make(chan error, 8)
				for i := 0; i < 8; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, err := apps.Create(ctx, application.Application{JobID: created.ID, StudentID: student.ID, Status: application.StatusPending})
						results <- err
					}()
				}
				wg.Wait()
				close(results)
				successes := 0
				for err := range results {
					if err == nil {
						successes++
						continue
					}
					assert.True(t, common.Is(err, common.CodeAlreadyApplied), "got %v", err)
				}
				assert.Equal(t, 1, successes)
			})

			t.Run("placement check", func(t *testing.T) {
				existing, err := apps.FindByJobAndStudent(ctx, created.ID, student.ID)
				require.NoError(t, err)
				_, err = apps.UpdateStatus(ctx, existing.ID, application.StatusAccepted, "offer")
				require.NoError(t, err)

				placed, err := apps.HasAcceptedElsewhere(ctx, student.ID, common.NewUUID())
				require.NoError(t, err)
				assert.True(t, placed)
				placed, err = apps.HasAcceptedElsewhere(ctx, student.ID, created.ID)
				require.NoError(t, err)
				assert.False(t, placed)
			})

			t.Run("messages pinned first with read receipts", func(t *testing.T) {
				repo := NewMessageRepository(db)
				base := time.Now().UTC()
				_, err := repo.Create(ctx, message.Message{Title: "For all", Content: "c", Departments: []string{"all"}, Category: message.CategoryAnnouncement, Priority: message.PriorityLow, AuthorID: admin.ID, CreatedAt: base})
				require.NoError(t, err)
				pinned, err := repo.Create(ctx, message.Message{Title: "CSE pinned", Content: "c", Departments: []string{"cse"}, Category: message.CategoryAlert, Priority: message.PriorityHigh, Pinned: true, AuthorID: admin.ID, CreatedAt: base.Add(-time.Hour)})
				require.NoError(t, err)
				_, err = repo.Create(ctx, message.Message{Title: "ME only", Content: "c", Departments: []string{"me"}, Category: message.CategoryNotification, Priority: message.PriorityLow, AuthorID: admin.ID, CreatedAt: base})
				require.NoError(t, err)

				require.NoError(t, repo.MarkRead(ctx, pinned.ID, student.ID))
				require.NoError(t, repo.MarkRead(ctx, pinned.ID, student.ID))

				items, err := repo.List(ctx, student.ID, []string{"all", "cse"}, 10, 0)
				require.NoError(t, err)
				require.Len(t, items, 2)
				assert.Equal(t, pinned.ID, items[0].ID)
				assert.True(t, items[0].IsRead)
				assert.False(t, items[1].IsRead)

				all, err := repo.List(ctx, admin.ID, nil, 10, 0)
				require.NoError(t, err)
				assert.Len(t, all, 3)
			})

			t.Run("one submission per student", func(t *testing.T) {
				assessments := NewAssessmentRepository(db)
				submissions := NewSubmissionRepository(db)
				item, err := assessments.Create(ctx, assessment.Assessment{
					Title:      "Aptitude",
					Type:       assessment.TypeQuiz,
					Deadline:   time.Now().Add(time.Hour).UTC(),
					Duration:   30,
					TotalScore: 10,
					CreatedBy:  admin.ID,
					Questions:  []assessment.Question{{ID: "q1", Text: "2+2", Type: assessment.QuestionMultipleChoice, Options: []string{"3", "4"}, Points: 10}},
				})
				require.NoError(t, err)
				first, err := submissions.Create(ctx, assessment.Submission{AssessmentID: item.ID, StudentID: student.ID, Status: assessment.SubmissionSubmitted})
				require.NoError(t, err)
				_, err = submissions.Create(ctx, assessment.Submission{AssessmentID: item.ID, StudentID: student.ID, Status: assessment.SubmissionSubmitted})
				assert.True(t, common.Is(err, common.CodeAlreadyApplied), "got %v", err)

				graded, err := submissions.Grade(ctx, first.ID, 8, "good")
				require.NoError(t, err)
				require.NotNil(t, graded.Score)
				assert.Equal(t, 8, *graded.Score)
				assert.Equal(t, assessment.SubmissionGraded, graded.Status)

				stored, err := assessments.GetByID(ctx, item.ID)
				require.NoError(t, err)
				assert.Equal(t, []string{"3", "4"}, stored.Questions[0].Options)
			})

			t.Run("refresh rotation revokes once", func(t *testing.T) {
				tokens := NewRefreshTokenRepository(db)
				now := time.Now().UTC()
				for _, raw := range []string{"first", "second"} {
					require.NoError(t, tokens.Store(ctx, auth.RefreshToken{ID: common.NewUUID(), UserID: student.ID, Token: raw, ExpiresAt: now.Add(time.Hour), CreatedAt: now}))
				}
				rotated, err := tokens.Revoke(ctx, "first", now)
				require.NoError(t, err)
				assert.True(t, rotated)
				rotated, err = tokens.Revoke(ctx, "first", now)
				require.NoError(t, err)
				assert.False(t, rotated)

				stored, err := tokens.GetByToken(ctx, "first")
				require.NoError(t, err)
				assert.NotNil(t, stored.RevokedAt)

				revoked, err := tokens.RevokeAll(ctx, student.ID, now)
				require.NoError(t, err)
				assert.Equal(t, int64(1), revoked)
			})

			t.Run("directory filters by role and department", func(t *testing.T) {
				students, err := users.List(ctx, user.Filter{Role: user.RoleStudent, Limit: 10})
				require.NoError(t, err)
				require.Len(t, students, 1)
				assert.Equal(t, "cse", students[0].Department)
				require.NotNil(t, students[0].CGPA)

				everyone, err := users.List(ctx, user.Filter{Limit: 10})
				require.NoError(t, err)
				assert.Len(t, everyone, 2)

				none, err := users.List(ctx, user.Filter{Department: "me", Limit: 10})
				require.NoError(t, err)
				assert.Empty(t, none)
			})

			t.Run("upcoming events skip the past", func(t *testing.T) {
				events := NewEventRepository(db)
				now := time.Now().UTC()
				for i, title := range []string{"Resume Workshop", "Mock Interview Session", "Orientation"} {
					_, err := events.Create(ctx, event.Event{Title: title, Type: event.TypeWorkshop, Date: now.Add(time.Duration(2-i) * 24 * time.Hour), CreatedBy: admin.ID, CreatedAt: now})
					require.NoError(t, err)
				}
				items, err := events.Upcoming(ctx, now, 10)
				require.NoError(t, err)
				require.Len(t, items, 2)
				assert.Equal(t, "Mock Interview Session", items[0].Title)

				err = events.Delete(ctx, common.NewUUID())
				assert.True(t, common.Is(err, common.CodeNotFound), "got %v", err)
			})

			t.Run("interview keeps the proposed slot", func(t *testing.T) {
				interviews := NewInterviewRepository(db)
				item, err := interviews.Create(ctx, interview.Interview{JobID: created.ID, StudentID: student.ID, ScheduledAt: time.Now().Add(48 * time.Hour).UTC(), Duration: 30, Type: interview.TypeTechnical, Location: "Room 4", Status: interview.StatusScheduled})
				require.NoError(t, err)
				proposed := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
				item.ProposedAt = &proposed
				item.Status = interview.StatusRescheduled
				_, err = interviews.Update(ctx, *item)
				require.NoError(t, err)

				stored, err := interviews.GetByID(ctx, item.ID)
				require.NoError(t, err)
				require.NotNil(t, stored.ProposedAt)
				assert.True(t, proposed.Equal(*stored.ProposedAt))
			})

			t.Run("missing rows are not found", func(t *testing.T) {
				_, err := jobs.GetByID(ctx, common.NewUUID())
				assert.True(t, common.Is(err, common.CodeNotFound))
				err = jobs.Delete(ctx, common.NewUUID())
				assert.True(t, common.Is(err, common.CodeNotFound))
			})
		})
	}
}
