package app

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"placement/internal/common"
	"placement/internal/domain/analytics"
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

type fakeUserRepo struct {
	mu          sync.Mutex
	byEmail     map[string]*user.User
	byID        map[common.UUID]*user.User
	departments map[common.UUID]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*user.User),
		byID:    make(map[common.UUID]*user.User),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, account user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[account.Email]; ok {
		return nil, common.NewError(common.CodeConflict, "email already registered", nil)
	}
	now := time.Now().UTC()
	account.ID = common.NewUUID()
	account.CreatedAt = now
	account.UpdatedAt = now
	stored := account
	r.byEmail[account.Email] = &stored
	r.byID[account.ID] = &stored
	return &account, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account := r.byID[id]
	if account == nil {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	copy := *account
	return &copy, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account := r.byEmail[user.NormalizeEmail(email)]
	if account == nil {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	copy := *account
	return &copy, nil
}

func (r *fakeUserRepo) ListStudentEmails(ctx context.Context, departments []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for email, account := range r.byEmail {
		if account.Role == user.RoleStudent {
			out = append(out, email)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter user.Filter) ([]user.DirectoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.DirectoryEntry
	for _, account := range r.byID {
		if filter.Role != "" && account.Role != filter.Role {
			continue
		}
		entry := user.DirectoryEntry{User: *account}
		if r.departments != nil {
			entry.Department = r.departments[account.ID]
		}
		if filter.Department != "" && entry.Department != filter.Department {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeStudentRepo struct {
	mu       sync.Mutex
	profiles map[common.UUID]profile.StudentProfile
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{profiles: make(map[common.UUID]profile.StudentProfile)}
}

func (r *fakeStudentRepo) GetByUserID(ctx context.Context, userID common.UUID) (*profile.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.profiles[userID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "student profile not found", nil)
	}
	return &item, nil
}

func (r *fakeStudentRepo) Upsert(ctx context.Context, item profile.StudentProfile) (*profile.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[item.UserID] = item
	return &item, nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]auth.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]auth.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Store(ctx context.Context, token auth.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeRefreshTokenRepo) GetByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.tokens[token]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "refresh token not found", nil)
	}
	copy := value
	return &copy, nil
}

func (r *fakeRefreshTokenRepo) Revoke(ctx context.Context, token string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.tokens[token]
	if !ok || value.RevokedAt != nil {
		return false, nil
	}
	revokedAt := at.UTC()
	value.RevokedAt = &revokedAt
	r.tokens[token] = value
	return true, nil
}

func (r *fakeRefreshTokenRepo) RevokeAll(ctx context.Context, userID common.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revoked int64
	revokedAt := at.UTC()
	for key, value := range r.tokens {
		if value.UserID == userID && value.RevokedAt == nil {
			value.RevokedAt = &revokedAt
			r.tokens[key] = value
			revoked++
		}
	}
	return revoked, nil
}

func (r *fakeRefreshTokenRepo) active(userID common.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, value := range r.tokens {
		if value.UserID == userID && value.RevokedAt == nil {
			count++
		}
	}
	return count
}

// staleRefreshTokenRepo serves reads from before a concurrent rotation, the
// window in which two refreshes of one token both see it as active.
type staleRefreshTokenRepo struct {
	*fakeRefreshTokenRepo
}

func (r staleRefreshTokenRepo) GetByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	stored, err := r.fakeRefreshTokenRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	stored.RevokedAt = nil
	return stored, nil
}

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (d *fakeDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = make(map[string]time.Duration)
	}
	d.revoked[tokenID] = ttl
	return nil
}

func (d *fakeDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[tokenID]
	return ok, nil
}

type noopAnalyticsRepo struct{}

func (noopAnalyticsRepo) Create(ctx context.Context, event analytics.Event) error {
	return nil
}

type recordingAnalyticsRepo struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (r *recordingAnalyticsRepo) Create(ctx context.Context, event analytics.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAnalyticsRepo) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Name)
	}
	return out
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[common.UUID]job.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[common.UUID]job.Job)}
}

func (r *fakeJobRepo) Create(ctx context.Context, item job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID.IsZero() {
		item.ID = common.NewUUID()
	}
	r.jobs[item.ID] = item
	return &item, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, item job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[item.ID]; !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	r.jobs[item.ID] = item
	return &item, nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return common.NewError(common.CodeNotFound, "job not found", nil)
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	return &item, nil
}

func (r *fakeJobRepo) List(ctx context.Context, filter job.Filter) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []job.Job
	for _, item := range r.jobs {
		if filter.Status != "" && item.EffectiveStatus(filter.Now) != filter.Status {
			continue
		}
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if filter.Department != "" && !item.AllowsDepartment(filter.Department) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

type fakeApplicationRepo struct {
	mu    sync.Mutex
	items map[common.UUID]application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{items: make(map[common.UUID]application.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, item application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.JobID == item.JobID && existing.StudentID == item.StudentID {
			return nil, common.NewError(common.CodeAlreadyApplied, "you have already applied for this job", nil)
		}
	}
	item.ID = common.NewUUID()
	item.UpdatedAt = item.AppliedAt
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return &item, nil
}

func (r *fakeApplicationRepo) FindByJobAndStudent(ctx context.Context, jobID, studentID common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.JobID == jobID && item.StudentID == studentID {
			copy := item
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) ListByStudent(ctx context.Context, studentID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []application.Application
	for _, item := range r.items {
		if item.StudentID == studentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) List(ctx context.Context, filter application.Filter) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []application.Application
	for _, item := range r.items {
		if !filter.JobID.IsZero() && item.JobID != filter.JobID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id common.UUID, status application.Status, feedback string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	item.Status = status
	item.Feedback = feedback
	r.items[id] = item
	return &item, nil
}

func (r *fakeApplicationRepo) HasAcceptedElsewhere(ctx context.Context, studentID, jobID common.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.StudentID == studentID && item.JobID != jobID && item.Status == application.StatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

type fakeMessageRepo struct {
	mu    sync.Mutex
	items map[common.UUID]message.Message
	reads map[common.UUID]map[common.UUID]bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{items: make(map[common.UUID]message.Message), reads: make(map[common.UUID]map[common.UUID]bool)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, item message.Message) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = common.NewUUID()
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeMessageRepo) Update(ctx context.Context, item message.Message) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return nil, common.NewError(common.CodeNotFound, "message not found", nil)
	}
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return common.NewError(common.CodeNotFound, "message not found", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id, readerID common.UUID) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "message not found", nil)
	}
	item.IsRead = r.reads[id][readerID]
	return &item, nil
}

func (r *fakeMessageRepo) List(ctx context.Context, readerID common.UUID, departments []string, limit, offset int) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []message.Message
	for id, item := range r.items {
		if len(departments) > 0 && !addressedTo(item.Departments, departments) {
			continue
		}
		item.IsRead = r.reads[id][readerID]
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, id, readerID common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reads[id] == nil {
		r.reads[id] = make(map[common.UUID]bool)
	}
	r.reads[id][readerID] = true
	return nil
}

type fakeInterviewRepo struct {
	mu    sync.Mutex
	items map[common.UUID]interview.Interview
}

func newFakeInterviewRepo() *fakeInterviewRepo {
	return &fakeInterviewRepo{items: make(map[common.UUID]interview.Interview)}
}

func (r *fakeInterviewRepo) Create(ctx context.Context, item interview.Interview) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = common.NewUUID()
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeInterviewRepo) Update(ctx context.Context, item interview.Interview) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return nil, common.NewError(common.CodeNotFound, "interview not found", nil)
	}
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeInterviewRepo) GetByID(ctx context.Context, id common.UUID) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "interview not found", nil)
	}
	return &item, nil
}

func (r *fakeInterviewRepo) ListByStudent(ctx context.Context, studentID common.UUID) ([]interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interview.Interview
	for _, item := range r.items {
		if item.StudentID == studentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeInterviewRepo) List(ctx context.Context) ([]interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interview.Interview, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

type fakeAssessmentRepo struct {
	mu    sync.Mutex
	items map[common.UUID]assessment.Assessment
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{items: make(map[common.UUID]assessment.Assessment)}
}

func (r *fakeAssessmentRepo) Create(ctx context.Context, item assessment.Assessment) (*assessment.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = common.NewUUID()
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeAssessmentRepo) Update(ctx context.Context, item assessment.Assessment) (*assessment.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return nil, common.NewError(common.CodeNotFound, "assessment not found", nil)
	}
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeAssessmentRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return common.NewError(common.CodeNotFound, "assessment not found", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeAssessmentRepo) GetByID(ctx context.Context, id common.UUID) (*assessment.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "assessment not found", nil)
	}
	return &item, nil
}

func (r *fakeAssessmentRepo) List(ctx context.Context) ([]assessment.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]assessment.Assessment, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

type fakeSubmissionRepo struct {
	mu    sync.Mutex
	items map[common.UUID]assessment.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{items: make(map[common.UUID]assessment.Submission)}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, item assessment.Submission) (*assessment.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.AssessmentID == item.AssessmentID && existing.StudentID == item.StudentID {
			return nil, common.NewError(common.CodeAlreadyApplied, "assessment already submitted", nil)
		}
	}
	item.ID = common.NewUUID()
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id common.UUID) (*assessment.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
	}
	return &item, nil
}

func (r *fakeSubmissionRepo) Find(ctx context.Context, assessmentID, studentID common.UUID) (*assessment.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.AssessmentID == assessmentID && item.StudentID == studentID {
			copy := item
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
}

func (r *fakeSubmissionRepo) ListByAssessment(ctx context.Context, assessmentID common.UUID) ([]assessment.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []assessment.Submission
	for _, item := range r.items {
		if item.AssessmentID == assessmentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListByStudent(ctx context.Context, studentID common.UUID) ([]assessment.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []assessment.Submission
	for _, item := range r.items {
		if item.StudentID == studentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) Grade(ctx context.Context, id common.UUID, score int, feedback string) (*assessment.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "submission not found", nil)
	}
	item.Score = &score
	item.Feedback = feedback
	item.Status = assessment.SubmissionGraded
	r.items[id] = item
	return &item, nil
}

type fakeEventRepo struct {
	mu    sync.Mutex
	items map[common.UUID]event.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{items: make(map[common.UUID]event.Event)}
}

func (r *fakeEventRepo) Create(ctx context.Context, item event.Event) (*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = common.NewUUID()
	r.items[item.ID] = item
	return &item, nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return common.NewError(common.CodeNotFound, "event not found", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeEventRepo) Upcoming(ctx context.Context, from time.Time, limit int) ([]event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, item := range r.items {
		if !item.Date.Before(from) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type recordingNotifier struct {
	mu         sync.Mutex
	jobs       []job.Job
	messages   []message.Message
	invites    []string
	interviews []interview.Interview
}

func (n *recordingNotifier) JobPosted(ctx context.Context, item job.Job) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, item)
	return nil
}

func (n *recordingNotifier) MessagePosted(ctx context.Context, item message.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, item)
	return nil
}

func (n *recordingNotifier) StudentInvited(ctx context.Context, email, name, password string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invites = append(n.invites, email)
	return nil
}

func (n *recordingNotifier) InterviewScheduled(ctx context.Context, item interview.Interview) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.interviews = append(n.interviews, item)
	return nil
}

func adminSession() auth.Session {
	return auth.Session{UserID: common.NewUUID(), Role: user.RoleAdmin}
}

func studentSession(id common.UUID) auth.Session {
	return auth.Session{UserID: id, Role: user.RoleStudent}
}

func seedUser(t *testing.T, users *fakeUserRepo, email string, role user.Role) *user.User {
	t.Helper()
	account, err := users.Create(context.Background(), user.User{Email: email, Name: "Seeded", Role: role, PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("expected user created, got %v", err)
	}
	return account
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
