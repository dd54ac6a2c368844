package audit

import (
	"context"
	"time"
)

// Action names the state change an event records.
type Action string

const (
	ActionEnrollmentRegistered Action = "enrollment.registered"
	ActionEnrollmentDropped    Action = "enrollment.dropped"
	ActionCourseCreated        Action = "course.created"
	ActionCourseUpdated        Action = "course.updated"
	ActionCourseDeleted        Action = "course.deleted"
	ActionAccountCreated       Action = "account.created"
	ActionLoginSucceeded       Action = "account.login_succeeded"
	ActionLoginFailed          Action = "account.login_failed"
	ActionLoggedOut            Action = "account.logged_out"
)

// Event is emitted after a state change commits. Keep it transport-agnostic
// so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	ActorID   string    `json:"actor_id,omitempty"`
	StudentID string    `json:"student_id,omitempty"`
	CourseID  string    `json:"course_id,omitempty"`
	Credits   int       `json:"credits,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Key partitions events so one student's (or course's) history stays ordered.
func (e Event) Key() string {
	if e.StudentID != "" {
		return e.StudentID
	}
	if e.CourseID != "" {
		return e.CourseID
	}
	return e.ActorID
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
