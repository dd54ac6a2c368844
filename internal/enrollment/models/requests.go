package models

import (
	"strings"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

type CreateCourseRequest struct {
	CourseID    string `json:"courseId"`
	Name        string `json:"name"`
	Lecturer    string `json:"lecturer"`
	Credits     int    `json:"credits"`
	MaxStudents int    `json:"maxStudents"`
}

func (r *CreateCourseRequest) Normalize() {
	if r == nil {
		return
	}
	r.CourseID = strings.ToUpper(strings.TrimSpace(r.CourseID))
	r.Name = strings.TrimSpace(r.Name)
	r.Lecturer = strings.TrimSpace(r.Lecturer)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *CreateCourseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Name) > 200 || len(r.Lecturer) > 200 {
		return dErrors.New(dErrors.CodeValidation, "name and lecturer must be 200 characters or less")
	}
	if r.CourseID == "" || r.Name == "" || r.Lecturer == "" || r.Credits == 0 || r.MaxStudents == 0 {
		return dErrors.New(dErrors.CodeValidation, "all fields are required")
	}
	if _, err := id.ParseCourseID(r.CourseID); err != nil {
		return dErrors.New(dErrors.CodeValidation, "course id must be 2-32 letters, digits, '-' or '_'")
	}
	if err := validateCredits(r.Credits); err != nil {
		return err
	}
	return validateMaxStudents(r.MaxStudents)
}

// UpdateCourseRequest is a partial update. Omitted fields stay unchanged.
type UpdateCourseRequest struct {
	Name        *string `json:"name,omitempty"`
	Lecturer    *string `json:"lecturer,omitempty"`
	Credits     *int    `json:"credits,omitempty"`
	MaxStudents *int    `json:"maxStudents,omitempty"`
}

func (r *UpdateCourseRequest) Normalize() {
	if r == nil {
		return
	}
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Lecturer != nil {
		v := strings.TrimSpace(*r.Lecturer)
		r.Lecturer = &v
	}
}

func (r *UpdateCourseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if (r.Name != nil && len(*r.Name) > 200) || (r.Lecturer != nil && len(*r.Lecturer) > 200) {
		return dErrors.New(dErrors.CodeValidation, "name and lecturer must be 200 characters or less")
	}
	if r.Name != nil && *r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	if r.Lecturer != nil && *r.Lecturer == "" {
		return dErrors.New(dErrors.CodeValidation, "lecturer cannot be empty")
	}
	if r.Credits != nil {
		if err := validateCredits(*r.Credits); err != nil {
			return err
		}
	}
	if r.MaxStudents != nil {
		if err := validateMaxStudents(*r.MaxStudents); err != nil {
			return err
		}
	}
	if r.Changes().IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "no changes submitted")
	}
	return nil
}

func (r *UpdateCourseRequest) Changes() CourseChanges {
	return CourseChanges{
		Name:        r.Name,
		Lecturer:    r.Lecturer,
		Credits:     r.Credits,
		MaxStudents: r.MaxStudents,
	}
}
