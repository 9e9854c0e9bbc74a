package assessment

import (
	"context"
	"time"

	"placement/internal/common"
)

type Type string

const (
	TypeQuiz       Type = "quiz"
	TypeCoding     Type = "coding"
	TypeBehavioral Type = "behavioral"
)

// Status is derived per student.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionText           QuestionType = "text"
	QuestionCode           QuestionType = "code"
)

type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
	Points  int          `json:"points"`
}

type Assessment struct {
	ID          common.UUID  `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        Type         `json:"type"`
	Deadline    time.Time    `json:"deadline"`
	Duration    int          `json:"duration"`
	TotalScore  int          `json:"total_score"`
	JobID       *common.UUID `json:"job_id,omitempty"`
	CreatedBy   common.UUID  `json:"created_by"`
	Questions   []Question   `json:"questions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
	SubmissionInReview  SubmissionStatus = "in_review"
)

type Answer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type Submission struct {
	ID           common.UUID      `json:"id"`
	AssessmentID common.UUID      `json:"assessment_id"`
	StudentID    common.UUID      `json:"student_id"`
	Answers      []Answer         `json:"answers"`
	Score        *int             `json:"score,omitempty"`
	Feedback     string           `json:"feedback,omitempty"`
	Status       SubmissionStatus `json:"status"`
	SubmittedAt  time.Time        `json:"submitted_at"`
}

// StudentView is an assessment as seen by one student.
type StudentView struct {
	Assessment
	Status Status `json:"status"`
	Score  *int   `json:"score,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, item Assessment) (*Assessment, error)
	Update(ctx context.Context, item Assessment) (*Assessment, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Assessment, error)
	List(ctx context.Context) ([]Assessment, error)
}

type SubmissionRepository interface {
	// Create must return a CodeAlreadyApplied error for a second submission by the same student.
	Create(ctx context.Context, item Submission) (*Submission, error)
	GetByID(ctx context.Context, id common.UUID) (*Submission, error)
	Find(ctx context.Context, assessmentID, studentID common.UUID) (*Submission, error)
	ListByAssessment(ctx context.Context, assessmentID common.UUID) ([]Submission, error)
	ListByStudent(ctx context.Context, studentID common.UUID) ([]Submission, error)
	Grade(ctx context.Context, id common.UUID, score int, feedback string) (*Submission, error)
}

// ViewFor derives the per-student status.
func ViewFor(item Assessment, submission *Submission, now time.Time) StudentView {
	view := StudentView{Assessment: item, Status: StatusPending}
	switch {
	case submission != nil:
		view.Status = StatusCompleted
		view.Score = submission.Score
	case now.After(item.Deadline):
		view.Status = StatusExpired
	}
	return view
}
