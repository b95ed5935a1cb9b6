package domain

import "errors"

var (
	// ErrContestNotFound is returned when no contest matches an id or period.
	ErrContestNotFound = errors.New("contest not found")
	// ErrContestExists signals that the contest for the current period was already created.
	ErrContestExists = errors.New("contest already exists for this period")
	// ErrCreationInProgress is returned when another process holds the creation lock for too long.
	ErrCreationInProgress = errors.New("contest creation in progress")
	// ErrResultNotFound indicates the user has no result for the requested contest or id.
	ErrResultNotFound = errors.New("result not found")
	// ErrDuplicateSubmission is returned when a user submits to the same contest twice.
	ErrDuplicateSubmission = errors.New("You have already participated in this contest")
	// ErrInvalidSubmission indicates a submission without contest or user id.
	ErrInvalidSubmission = errors.New("contestId and userId are required")
	// ErrInvalidContestType is returned for types other than DAILY and WEEKLY.
	ErrInvalidContestType = errors.New("invalid contest type")
	// ErrNotificationNotFound is returned when marking an unknown notification read.
	ErrNotificationNotFound = errors.New("notification not found")
)
