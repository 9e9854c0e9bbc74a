package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"placement/internal/common"
	"placement/internal/domain/analytics"
	"placement/internal/domain/assessment"
	"placement/internal/domain/auth"
	"placement/internal/domain/job"
)

type AssessmentService struct {
	repo        assessment.Repository
	submissions assessment.SubmissionRepository
	jobs        job.Repository
	analytics   analytics.Repository
	now         Clock
}

func NewAssessmentService(repo assessment.Repository, submissions assessment.SubmissionRepository, jobs job.Repository, analytics analytics.Repository) *AssessmentService {
	return &AssessmentService{repo: repo, submissions: submissions, jobs: jobs, analytics: analytics, now: time.Now}
}

type QuestionInput struct {
	ID      string   `json:"id"`
	Text    string   `json:"text" validate:"required,min=3"`
	Type    string   `json:"type" validate:"required,oneof=multiple_choice text code"`
	Options []string `json:"options" validate:"omitempty,dive,required"`
	Points  int      `json:"points" validate:"gte=0"`
}

type AssessmentInput struct {
	Title       string          `json:"title" validate:"required,min=3,max=200"`
	Description string          `json:"description" validate:"omitempty,max=4000"`
	Type        string          `json:"type" validate:"required,oneof=quiz coding behavioral"`
	Deadline    *time.Time      `json:"deadline" validate:"required"`
	Duration    int             `json:"duration" validate:"required,gte=1,lte=600"`
	TotalScore  int             `json:"total_score" validate:"required,gte=1"`
	JobID       string          `json:"job_id" validate:"omitempty,uuid"`
	Questions   []QuestionInput `json:"questions" validate:"omitempty,dive"`
}

type SubmitInput struct {
	Answers []assessment.Answer `json:"answers" validate:"required,min=1"`
}

type GradeInput struct {
	Score    *int   `json:"score" validate:"required,gte=0"`
	Feedback string `json:"feedback" validate:"omitempty,max=4000"`
}

func (s *AssessmentService) Create(ctx context.Context, session auth.Session, input AssessmentInput) (*assessment.Assessment, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can create assessments", nil)
	}
	item, err := s.build(ctx, input)
	if err != nil {
		return nil, err
	}
	if !item.Deadline.After(s.now()) {
		return nil, common.NewValidationError("invalid assessment", map[string]string{"deadline": "deadline must be in the future"})
	}
	now := s.now().UTC()
	item.CreatedBy = session.UserID
	item.CreatedAt = now
	item.UpdatedAt = now
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "assessment.created", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"assessment_id": created.ID.String()})})
	return created, nil
}

func (s *AssessmentService) Update(ctx context.Context, session auth.Session, id common.UUID, input AssessmentInput) (*assessment.Assessment, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can edit assessments", nil)
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.build(ctx, input)
	if err != nil {
		return nil, err
	}
	item.ID = current.ID
	item.CreatedBy = current.CreatedBy
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "assessment.updated", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"assessment_id": id.String()})})
	return updated, nil
}

func (s *AssessmentService) Delete(ctx context.Context, session auth.Session, id common.UUID) error {
	if !session.IsAdmin() {
		return common.NewError(common.CodeForbidden, "only admins can delete assessments", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "assessment.deleted", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"assessment_id": id.String()})})
	return nil
}

// Get returns the assessment with the caller's derived status.
func (s *AssessmentService) Get(ctx context.Context, session auth.Session, id common.UUID) (*assessment.StudentView, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsAdmin() {
		view := assessment.StudentView{Assessment: *item, Status: assessment.StatusPending}
		if s.now().After(item.Deadline) {
			view.Status = assessment.StatusExpired
		}
		return &view, nil
	}
	submission, err := s.submissions.Find(ctx, id, session.UserID)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	view := assessment.ViewFor(*item, submission, s.now())
	return &view, nil
}

func (s *AssessmentService) List(ctx context.Context, session auth.Session) ([]assessment.StudentView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byAssessment := map[common.UUID]*assessment.Submission{}
	if !session.IsAdmin() {
		submissions, err := s.submissions.ListByStudent(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		for i := range submissions {
			byAssessment[submissions[i].AssessmentID] = &submissions[i]
		}
	}
	now := s.now()
	views := make([]assessment.StudentView, 0, len(items))
	for _, item := range items {
		views = append(views, assessment.ViewFor(item, byAssessment[item.ID], now))
	}
	return views, nil
}

// Submit stores a student's answers. Late and repeated submissions are refused.
func (s *AssessmentService) Submit(ctx context.Context, session auth.Session, id common.UUID, input SubmitInput) (*assessment.Submission, error) {
	if session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only students can submit assessments", nil)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if now.After(item.Deadline) {
		return nil, common.NewError(common.CodeClosed, "assessment deadline has passed", nil)
	}
	known := make(map[string]struct{}, len(item.Questions))
	for _, question := range item.Questions {
		known[question.ID] = struct{}{}
	}
	fields := map[string]string{}
	answered := make(map[string]struct{}, len(input.Answers))
	answers := make([]assessment.Answer, 0, len(input.Answers))
	for i, answer := range input.Answers {
		if _, ok := known[answer.QuestionID]; len(known) > 0 && !ok {
			fields[fmt.Sprintf("answers[%d].question_id", i)] = "unknown question"
			continue
		}
		if _, ok := answered[answer.QuestionID]; ok {
			fields[fmt.Sprintf("answers[%d].question_id", i)] = "question answered more than once"
			continue
		}
		answered[answer.QuestionID] = struct{}{}
		answers = append(answers, assessment.Answer{QuestionID: answer.QuestionID, Answer: strings.TrimSpace(answer.Answer)})
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid submission", fields)
	}
	created, err := s.submissions.Create(ctx, assessment.Submission{
		AssessmentID: id,
		StudentID:    session.UserID,
		Answers:      answers,
		Status:       assessment.SubmissionSubmitted,
		SubmittedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "assessment.submitted", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"assessment_id": id.String(), "submission_id": created.ID.String()})})
	return created, nil
}

func (s *AssessmentService) Submission(ctx context.Context, session auth.Session, id common.UUID) (*assessment.Submission, error) {
	return s.submissions.Find(ctx, id, session.UserID)
}

func (s *AssessmentService) Submissions(ctx context.Context, session auth.Session, id common.UUID) ([]assessment.Submission, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can list submissions", nil)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.submissions.ListByAssessment(ctx, id)
}

func (s *AssessmentService) Grade(ctx context.Context, session auth.Session, submissionID common.UUID, input GradeInput) (*assessment.Submission, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can grade submissions", nil)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, submission.AssessmentID)
	if err != nil {
		return nil, err
	}
	if *input.Score > item.TotalScore {
		return nil, common.NewValidationError("invalid grade", map[string]string{"score": fmt.Sprintf("score must not exceed %d", item.TotalScore)})
	}
	graded, err := s.submissions.Grade(ctx, submissionID, *input.Score, strings.TrimSpace(input.Feedback))
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "assessment.graded", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"submission_id": submissionID.String(), "score": fmt.Sprintf("%d", *input.Score)})})
	return graded, nil
}

// build validates the input and resolves the linked job, if any.
func (s *AssessmentService) build(ctx context.Context, input AssessmentInput) (assessment.Assessment, error) {
	item, err := buildAssessment(input)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if item.JobID != nil {
		if _, err := s.jobs.GetByID(ctx, *item.JobID); err != nil {
			return assessment.Assessment{}, err
		}
	}
	return item, nil
}

func buildAssessment(input AssessmentInput) (assessment.Assessment, error) {
	if err := validateInput(input); err != nil {
		return assessment.Assessment{}, err
	}
	fields := map[string]string{}
	questions := make([]assessment.Question, 0, len(input.Questions))
	seen := make(map[string]int, len(input.Questions))
	points := 0
	for i, q := range input.Questions {
		questionType := assessment.QuestionType(q.Type)
		if questionType == assessment.QuestionMultipleChoice && len(q.Options) < 2 {
			fields[fmt.Sprintf("questions[%d].options", i)] = "multiple choice questions need at least 2 options"
		}
		id := strings.TrimSpace(q.ID)
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		if first, ok := seen[id]; ok {
			fields[fmt.Sprintf("questions[%d].id", i)] = fmt.Sprintf("duplicate question id %q, already used by questions[%d]", id, first)
		}
		seen[id] = i
		points += q.Points
		questions = append(questions, assessment.Question{ID: id, Text: strings.TrimSpace(q.Text), Type: questionType, Options: q.Options, Points: q.Points})
	}
	if points > input.TotalScore {
		fields["total_score"] = "total_score must cover the question points"
	}
	if len(fields) > 0 {
		return assessment.Assessment{}, common.NewValidationError("invalid assessment", fields)
	}
	item := assessment.Assessment{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Type:        assessment.Type(input.Type),
		Deadline:    input.Deadline.UTC(),
		Duration:    input.Duration,
		TotalScore:  input.TotalScore,
		Questions:   questions,
	}
	if input.JobID != "" {
		jobID, _ := common.ParseUUID(input.JobID)
		item.JobID = &jobID
	}
	return item, nil
}
