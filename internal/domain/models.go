package domain

import (
	"strings"
	"time"
)

// ContestType distinguishes the two recurring contest cadences.
type ContestType string

const (
	ContestDaily  ContestType = "DAILY"
	ContestWeekly ContestType = "WEEKLY"
)

// ParseContestType accepts DAILY or WEEKLY in any letter case.
func ParseContestType(raw string) (ContestType, error) {
	switch ContestType(strings.ToUpper(strings.TrimSpace(raw))) {
	case ContestDaily:
		return ContestDaily, nil
	case ContestWeekly:
		return ContestWeekly, nil
	}
	return "", ErrInvalidContestType
}

// ContestQuestion is the snapshot of a pool question embedded in a contest.
// Later edits to the pool never reach an existing contest.
type ContestQuestion struct {
	ID                 string   `json:"id" bson:"id"`
	Question           string   `json:"question" bson:"question"`
	Options            []string `json:"options" bson:"options"`
	CorrectAnswer      string   `json:"correctAnswer,omitempty" bson:"correctAnswer,omitempty"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex" bson:"correctAnswerIndex"`
	Explanation        string   `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Subject            string   `json:"subject,omitempty" bson:"subject,omitempty"`
}

// Contest is a time-boxed question set shared by every participant of a period.
type Contest struct {
	ID               string            `json:"id" bson:"_id"`
	Title            string            `json:"title" bson:"title"`
	Description      string            `json:"description" bson:"description"`
	ContestType      ContestType       `json:"contestType" bson:"contestType"`
	ContestDate      string            `json:"contestDate" bson:"contestDate"`
	WeekNumber       int               `json:"weekNumber,omitempty" bson:"weekNumber,omitempty"`
	Year             int               `json:"year" bson:"year"`
	PeriodKey        string            `json:"periodKey" bson:"periodKey"`
	Questions        []ContestQuestion `json:"questions" bson:"questions"`
	TotalQuestions   int               `json:"totalQuestions" bson:"totalQuestions"`
	TimeLimit        int               `json:"timeLimit" bson:"timeLimit"`
	MarksPerQuestion int               `json:"marksPerQuestion" bson:"marksPerQuestion"`
	TotalMarks       int               `json:"totalMarks" bson:"totalMarks"`
	IsActive         bool              `json:"isActive" bson:"isActive"`
	StartTime        time.Time         `json:"startTime" bson:"startTime"`
	EndTime          time.Time         `json:"endTime" bson:"endTime"`
	CreatedAt        time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// ContestResult is one user's single submission to a contest.
// Rank is the only field that changes after the row is written.
type ContestResult struct {
	ID                     string         `json:"id" bson:"_id"`
	ContestID              string         `json:"contestId" bson:"contestId"`
	ContestType            ContestType    `json:"contestType" bson:"contestType"`
	UserID                 string         `json:"userId" bson:"userId"`
	UserName               string         `json:"userName" bson:"userName"`
	UserEmail              string         `json:"userEmail" bson:"userEmail"`
	Score                  int            `json:"score" bson:"score"`
	TotalMarks             int            `json:"totalMarks" bson:"totalMarks"`
	CorrectAnswers         int            `json:"correctAnswers" bson:"correctAnswers"`
	WrongAnswers           int            `json:"wrongAnswers" bson:"wrongAnswers"`
	TotalQuestions         int            `json:"totalQuestions" bson:"totalQuestions"`
	TimeTakenSeconds       int64          `json:"timeTakenSeconds" bson:"timeTakenSeconds"`
	Accuracy               float64        `json:"accuracy" bson:"accuracy"`
	AverageTimePerQuestion float64        `json:"averageTimePerQuestion" bson:"averageTimePerQuestion"`
	Rank                   int            `json:"rank" bson:"rank"`
	AnswersMap             map[string]int `json:"answersMap,omitempty" bson:"answersMap,omitempty"`
	SubmittedAt            time.Time      `json:"submittedAt" bson:"submittedAt"`
	CreatedAt              time.Time      `json:"createdAt" bson:"createdAt"`
}

// ComputeDerived fills WrongAnswers, Accuracy and AverageTimePerQuestion.
// Accuracy and average time stay zero when TotalQuestions is zero.
func (r *ContestResult) ComputeDerived() {
	r.WrongAnswers = r.TotalQuestions - r.CorrectAnswers
	if r.TotalQuestions > 0 {
		r.Accuracy = float64(r.CorrectAnswers) / float64(r.TotalQuestions) * 100
		r.AverageTimePerQuestion = float64(r.TimeTakenSeconds) / float64(r.TotalQuestions)
	}
}

// Result is the outcome of an ordinary quiz attempt. ContestType is an
// optional tag used by the daily and weekly windowed leaderboards.
type Result struct {
	ID               string    `json:"id" bson:"_id"`
	UserID           string    `json:"userId" bson:"userId"`
	UserEmail        string    `json:"userEmail" bson:"userEmail"`
	QuizID           string    `json:"quizId" bson:"quizId"`
	QuizTitle        string    `json:"quizTitle" bson:"quizTitle"`
	Score            int       `json:"score" bson:"score"`
	TotalMarks       int       `json:"totalMarks" bson:"totalMarks"`
	CorrectAnswers   int       `json:"correctAnswers" bson:"correctAnswers"`
	TotalQuestions   int       `json:"totalQuestions" bson:"totalQuestions"`
	Difficulty       string    `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Subject          string    `json:"subject,omitempty" bson:"subject,omitempty"`
	ContestType      string    `json:"contestType,omitempty" bson:"contestType,omitempty"`
	TimeTakenSeconds int64     `json:"timeTakenSeconds" bson:"timeTakenSeconds"`
	Passed           bool      `json:"passed" bson:"passed"`
	CompletedAt      time.Time `json:"completedAt" bson:"completedAt"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
}

// Percentage is score over total marks scaled to 100, zero when TotalMarks is zero.
func (r Result) Percentage() float64 {
	if r.TotalMarks == 0 {
		return 0
	}
	return float64(r.Score) * 100 / float64(r.TotalMarks)
}

// Question is an entry of the question pool contests sample from.
// CorrectAnswer, when set, wins over CorrectAnswerIndex.
type Question struct {
	ID                 string   `json:"id" bson:"-"`
	QuizID             string   `json:"quizId,omitempty" bson:"quizId,omitempty"`
	Question           string   `json:"question" bson:"questionText"`
	Options            []string `json:"options" bson:"options"`
	CorrectAnswer      string   `json:"correctAnswer,omitempty" bson:"correctAnswer,omitempty"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex" bson:"correctAnswerIndex"`
	Explanation        string   `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Subject            string   `json:"subject,omitempty" bson:"subject,omitempty"`
}

// NotificationType tags what produced a notification.
type NotificationType string

const (
	NotificationQuizResult       NotificationType = "QUIZ_RESULT"
	NotificationContestResult    NotificationType = "CONTEST_RESULT"
	NotificationExamAnnouncement NotificationType = "EXAM_ANNOUNCEMENT"
)

// Notification is a per-user inbox message.
type Notification struct {
	ID        string           `json:"id" bson:"_id"`
	UserID    string           `json:"userId" bson:"userId"`
	Type      NotificationType `json:"type" bson:"type"`
	Title     string           `json:"title" bson:"title"`
	Message   string           `json:"message" bson:"message"`
	Icon      string           `json:"icon" bson:"icon"`
	Read      bool             `json:"read" bson:"read"`
	CreatedAt time.Time        `json:"createdAt" bson:"createdAt"`
}

// Leaderboard captures the ranked results of a contest at a point in time.
type Leaderboard struct {
	ContestID string          `json:"contestId"`
	Entries   []ContestResult `json:"entries"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ContestStats summarises a contest's results.
type ContestStats struct {
	ParticipantCount int     `json:"participantCount"`
	AverageScore     float64 `json:"averageScore"`
	AverageTime      int64   `json:"averageTime"`
	HighestScore     int     `json:"highestScore"`
	LowestScore      int     `json:"lowestScore"`
}
