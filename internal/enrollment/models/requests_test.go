package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "registrar/pkg/domain-errors"
)

func TestCreateCourseRequest(t *testing.T) {
	valid := func() CreateCourseRequest {
		return CreateCourseRequest{CourseID: " cs101 ", Name: " Intro ", Lecturer: "Dr. Hopper", Credits: 3, MaxStudents: 30}
	}

	req := valid()
	req.Normalize()
	assert.Equal(t, "CS101", req.CourseID)
	assert.Equal(t, "Intro", req.Name)
	assert.NoError(t, req.Validate())

	tests := []struct {
		name   string
		mutate func(*CreateCourseRequest)
		msg    string
	}{
		{name: "missing lecturer", mutate: func(r *CreateCourseRequest) { r.Lecturer = "" }, msg: "all fields are required"},
		{name: "credits too low", mutate: func(r *CreateCourseRequest) { r.Credits = 2 }, msg: "credits must be between 3 and 5"},
		{name: "credits too high", mutate: func(r *CreateCourseRequest) { r.Credits = 6 }, msg: "credits must be between 3 and 5"},
		{name: "negative capacity", mutate: func(r *CreateCourseRequest) { r.MaxStudents = -1 }, msg: "max students must be at least 1"},
		{name: "bad code", mutate: func(r *CreateCourseRequest) { r.CourseID = "CS 101" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			r.Normalize()
			tt.mutate(&r)
			err := r.Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, dErrors.Message(err))
			}
		})
	}
}

func TestUpdateCourseRequest(t *testing.T) {
	empty := UpdateCourseRequest{}
	assert.True(t, dErrors.HasCode(empty.Validate(), dErrors.CodeValidation))

	blank := "   "
	r := UpdateCourseRequest{Name: &blank}
	r.Normalize()
	assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))

	capacity := 40
	r = UpdateCourseRequest{MaxStudents: &capacity}
	assert.NoError(t, r.Validate())
	assert.Equal(t, &capacity, r.Changes().MaxStudents)
}
