package enrollment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	DELETE(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	BearerFor(alias string) (map[string]string, error)
	Unique(value string) string
}

// RegisterSteps registers course and enrollment step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &enrollmentSteps{tc: tc}

	// Catalogue steps
	ctx.Step(`^"([^"]*)" has created course "([^"]*)" worth (\d+) credits with (\d+) seats$`, steps.hasCreatedCourse)
	ctx.Step(`^"([^"]*)" deletes course "([^"]*)"$`, steps.deletesCourse)
	ctx.Step(`^"([^"]*)" checks the status of "([^"]*)"$`, steps.checksStatus)

	// Enrollment steps
	ctx.Step(`^"([^"]*)" registers for "([^"]*)"$`, steps.registersFor)
	ctx.Step(`^"([^"]*)" has registered for "([^"]*)"$`, steps.hasRegisteredFor)
	ctx.Step(`^"([^"]*)" drops "([^"]*)"$`, steps.drops)
	ctx.Step(`^"([^"]*)" lists their courses$`, steps.listsTheirCourses)
	ctx.Step(`^"([^"]*)" should be enrolled in (\d+) courses? worth (\d+) credits$`, steps.shouldBeEnrolledIn)
	ctx.Step(`^"([^"]*)" should not see "([^"]*)" among available courses$`, steps.shouldNotSeeAvailable)
}

type enrollmentSteps struct {
	tc TestContext
}

func (s *enrollmentSteps) coursePath(code string) string {
	return "/courses/" + s.tc.Unique(code)
}

func (s *enrollmentSteps) hasCreatedCourse(ctx context.Context, alias, code string, credits, seats int) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	body := map[string]any{
		"courseId":    s.tc.Unique(code),
		"name":        "Course " + code,
		"lecturer":    "Dr. Hopper",
		"credits":     credits,
		"maxStudents": seats,
	}
	if err := s.tc.POST("/courses", body, headers); err != nil {
		return err
	}
	return s.expectStatus(http.StatusCreated)
}

func (s *enrollmentSteps) deletesCourse(ctx context.Context, alias, code string) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	return s.tc.DELETE(s.coursePath(code), headers)
}

func (s *enrollmentSteps) checksStatus(ctx context.Context, alias, code string) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	return s.tc.GET(s.coursePath(code)+"/status", headers)
}

func (s *enrollmentSteps) registersFor(ctx context.Context, alias, code string) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	return s.tc.POST(s.coursePath(code)+"/register", nil, headers)
}

func (s *enrollmentSteps) hasRegisteredFor(ctx context.Context, alias, code string) error {
	if err := s.registersFor(ctx, alias, code); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *enrollmentSteps) drops(ctx context.Context, alias, code string) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	return s.tc.DELETE(s.coursePath(code)+"/register", headers)
}

func (s *enrollmentSteps) listsTheirCourses(ctx context.Context, alias string) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	return s.tc.GET("/courses/my-courses", headers)
}

func (s *enrollmentSteps) shouldBeEnrolledIn(ctx context.Context, alias string, count, credits int) error {
	if err := s.listsTheirCourses(ctx, alias); err != nil {
		return err
	}
	if err := s.expectStatus(http.StatusOK); err != nil {
		return err
	}
	var mine struct {
		Courses      []json.RawMessage `json:"courses"`
		TotalCredits int               `json:"totalCredits"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &mine); err != nil {
		return fmt.Errorf("decode my-courses: %w", err)
	}
	if len(mine.Courses) != count || mine.TotalCredits != credits {
		return fmt.Errorf("expected %d courses worth %d credits, got %d worth %d",
			count, credits, len(mine.Courses), mine.TotalCredits)
	}
	return nil
}

func (s *enrollmentSteps) shouldNotSeeAvailable(ctx context.Context, alias, code string) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	if err := s.tc.GET("/courses/available", headers); err != nil {
		return err
	}
	// 404 means nothing at all is open.
	if s.tc.GetLastResponseStatus() == http.StatusNotFound {
		return nil
	}
	if err := s.expectStatus(http.StatusOK); err != nil {
		return err
	}
	var courses []struct {
		CourseID string `json:"courseId"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &courses); err != nil {
		return fmt.Errorf("decode available courses: %w", err)
	}
	want := s.tc.Unique(code)
	for _, c := range courses {
		if c.CourseID == want {
			return fmt.Errorf("%s is still listed as available", want)
		}
	}
	return nil
}

func (s *enrollmentSteps) expectStatus(expected int) error {
	if got := s.tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.GetLastResponseBody())
	}
	return nil
}
