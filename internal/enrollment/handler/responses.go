package handler

import (
	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
)

// EnrollmentResponse is returned by register and drop.
type EnrollmentResponse struct {
	Message        string      `json:"message"`
	CourseID       id.CourseID `json:"courseId"`
	CurrentCredits int         `json:"currentCredits"`
}

type CourseResponse struct {
	Message string         `json:"message"`
	Course  *models.Course `json:"course"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
