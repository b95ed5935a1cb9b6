package postgres

import (
	"database/sql"
	"time"

	"exam-prep-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Open returns a bun handle over pgdriver for the given DSN.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type contestRow struct {
	bun.BaseModel `bun:"table:contests,alias:c"`

	ID               string                   `bun:"id,pk"`
	Title            string                   `bun:"title"`
	Description      string                   `bun:"description"`
	ContestType      string                   `bun:"contest_type"`
	ContestDate      string                   `bun:"contest_date"`
	WeekNumber       int                      `bun:"week_number"`
	Year             int                      `bun:"year"`
	PeriodKey        string                   `bun:"period_key"`
	Questions        []domain.ContestQuestion `bun:"questions,type:jsonb"`
	TotalQuestions   int                      `bun:"total_questions"`
	TimeLimit        int                      `bun:"time_limit"`
	MarksPerQuestion int                      `bun:"marks_per_question"`
	TotalMarks       int                      `bun:"total_marks"`
	IsActive         bool                     `bun:"is_active"`
	StartTime        time.Time                `bun:"start_time"`
	EndTime          time.Time                `bun:"end_time"`
	CreatedAt        time.Time                `bun:"created_at"`
	UpdatedAt        time.Time                `bun:"updated_at"`
}

func newContestRow(c domain.Contest) *contestRow {
	return &contestRow{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		ContestType:      string(c.ContestType),
		ContestDate:      c.ContestDate,
		WeekNumber:       c.WeekNumber,
		Year:             c.Year,
		PeriodKey:        c.PeriodKey,
		Questions:        c.Questions,
		TotalQuestions:   c.TotalQuestions,
		TimeLimit:        c.TimeLimit,
		MarksPerQuestion: c.MarksPerQuestion,
		TotalMarks:       c.TotalMarks,
		IsActive:         c.IsActive,
		StartTime:        c.StartTime,
		EndTime:          c.EndTime,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (r contestRow) toDomain() domain.Contest {
	questions := r.Questions
	if questions == nil {
		questions = []domain.ContestQuestion{}
	}
	return domain.Contest{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		ContestType:      domain.ContestType(r.ContestType),
		ContestDate:      r.ContestDate,
		WeekNumber:       r.WeekNumber,
		Year:             r.Year,
		PeriodKey:        r.PeriodKey,
		Questions:        questions,
		TotalQuestions:   r.TotalQuestions,
		TimeLimit:        r.TimeLimit,
		MarksPerQuestion: r.MarksPerQuestion,
		TotalMarks:       r.TotalMarks,
		IsActive:         r.IsActive,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type contestResultRow struct {
	bun.BaseModel `bun:"table:contest_results,alias:cr"`

	ID                     string         `bun:"id,pk"`
	ContestID              string         `bun:"contest_id"`
	ContestType            string         `bun:"contest_type"`
	UserID                 string         `bun:"user_id"`
	UserName               string         `bun:"user_name"`
	UserEmail              string         `bun:"user_email"`
	Score                  int            `bun:"score"`
	TotalMarks             int            `bun:"total_marks"`
	CorrectAnswers         int            `bun:"correct_answers"`
	WrongAnswers           int            `bun:"wrong_answers"`
	TotalQuestions         int            `bun:"total_questions"`
	TimeTakenSeconds       int64          `bun:"time_taken_seconds"`
	Accuracy               float64        `bun:"accuracy"`
	AverageTimePerQuestion float64        `bun:"average_time_per_question"`
	Rank                   int            `bun:"rank"`
	AnswersMap             map[string]int `bun:"answers_map,type:jsonb"`
	SubmittedAt            time.Time      `bun:"submitted_at"`
	CreatedAt              time.Time      `bun:"created_at"`
}

func newContestResultRow(r domain.ContestResult) *contestResultRow {
	return &contestResultRow{
		ID:                     r.ID,
		ContestID:              r.ContestID,
		ContestType:            string(r.ContestType),
		UserID:                 r.UserID,
		UserName:               r.UserName,
		UserEmail:              r.UserEmail,
		Score:                  r.Score,
		TotalMarks:             r.TotalMarks,
		CorrectAnswers:         r.CorrectAnswers,
		WrongAnswers:           r.WrongAnswers,
		TotalQuestions:         r.TotalQuestions,
		TimeTakenSeconds:       r.TimeTakenSeconds,
		Accuracy:               r.Accuracy,
		AverageTimePerQuestion: r.AverageTimePerQuestion,
		Rank:                   r.Rank,
		AnswersMap:             r.AnswersMap,
		SubmittedAt:            r.SubmittedAt,
		CreatedAt:              r.CreatedAt,
	}
}

func (r contestResultRow) toDomain() domain.ContestResult {
	return domain.ContestResult{
		ID:                     r.ID,
		ContestID:              r.ContestID,
		ContestType:            domain.ContestType(r.ContestType),
		UserID:                 r.UserID,
		UserName:               r.UserName,
		UserEmail:              r.UserEmail,
		Score:                  r.Score,
		TotalMarks:             r.TotalMarks,
		CorrectAnswers:         r.CorrectAnswers,
		WrongAnswers:           r.WrongAnswers,
		TotalQuestions:         r.TotalQuestions,
		TimeTakenSeconds:       r.TimeTakenSeconds,
		Accuracy:               r.Accuracy,
		AverageTimePerQuestion: r.AverageTimePerQuestion,
		Rank:                   r.Rank,
		AnswersMap:             r.AnswersMap,
		SubmittedAt:            r.SubmittedAt,
		CreatedAt:              r.CreatedAt,
	}
}

type resultRow struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID               string    `bun:"id,pk"`
	UserID           string    `bun:"user_id"`
	UserEmail        string    `bun:"user_email"`
	QuizID           string    `bun:"quiz_id"`
	QuizTitle        string    `bun:"quiz_title"`
	Score            int       `bun:"score"`
	TotalMarks       int       `bun:"total_marks"`
	CorrectAnswers   int       `bun:"correct_answers"`
	TotalQuestions   int       `bun:"total_questions"`
	Difficulty       string    `bun:"difficulty"`
	Subject          string    `bun:"subject"`
	ContestType      string    `bun:"contest_type,nullzero"`
	TimeTakenSeconds int64     `bun:"time_taken_seconds"`
	Passed           bool      `bun:"passed"`
	CompletedAt      time.Time `bun:"completed_at"`
	CreatedAt        time.Time `bun:"created_at"`
}

func newResultRow(r domain.Result) *resultRow {
	return &resultRow{
		ID:               r.ID,
		UserID:           r.UserID,
		UserEmail:        r.UserEmail,
		QuizID:           r.QuizID,
		QuizTitle:        r.QuizTitle,
		Score:            r.Score,
		TotalMarks:       r.TotalMarks,
		CorrectAnswers:   r.CorrectAnswers,
		TotalQuestions:   r.TotalQuestions,
		Difficulty:       r.Difficulty,
		Subject:          r.Subject,
		ContestType:      r.ContestType,
		TimeTakenSeconds: r.TimeTakenSeconds,
		Passed:           r.Passed,
		CompletedAt:      r.CompletedAt,
		CreatedAt:        r.CreatedAt,
	}
}

func (r resultRow) toDomain() domain.Result {
	return domain.Result{
		ID:               r.ID,
		UserID:           r.UserID,
		UserEmail:        r.UserEmail,
		QuizID:           r.QuizID,
		QuizTitle:        r.QuizTitle,
		Score:            r.Score,
		TotalMarks:       r.TotalMarks,
		CorrectAnswers:   r.CorrectAnswers,
		TotalQuestions:   r.TotalQuestions,
		Difficulty:       r.Difficulty,
		Subject:          r.Subject,
		ContestType:      r.ContestType,
		TimeTakenSeconds: r.TimeTakenSeconds,
		Passed:           r.Passed,
		CompletedAt:      r.CompletedAt,
		CreatedAt:        r.CreatedAt,
	}
}

type notificationRow struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id"`
	Type      string    `bun:"type"`
	Title     string    `bun:"title"`
	Message   string    `bun:"message"`
	Icon      string    `bun:"icon"`
	Read      bool      `bun:"is_read"`
	CreatedAt time.Time `bun:"created_at"`
}

func (r notificationRow) toDomain() domain.Notification {
	return domain.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      domain.NotificationType(r.Type),
		Title:     r.Title,
		Message:   r.Message,
		Icon:      r.Icon,
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk"`
	Email     string    `bun:"email"`
	CreatedAt time.Time `bun:"created_at"`
}
