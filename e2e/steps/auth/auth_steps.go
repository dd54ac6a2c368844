package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

const defaultPassword = "correct-horse"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	BearerFor(alias string) (map[string]string, error)
	SetAccessToken(alias, token string)
	Unique(value string) string
	Remember(alias, value string)
	Recall(alias string) string
}

// RegisterSteps registers authentication-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	// Sign-up steps
	ctx.Step(`^a student "([^"]*)" with number "([^"]*)" has signed up$`, steps.studentHasSignedUp)
	ctx.Step(`^a staff member "([^"]*)" with number "([^"]*)" has signed up$`, steps.staffHasSignedUp)
	ctx.Step(`^"([^"]*)" signs up again as a student$`, steps.studentSignsUpAgain)

	// Session steps
	ctx.Step(`^"([^"]*)" logs in$`, steps.logsIn)
	ctx.Step(`^"([^"]*)" logs in with password "([^"]*)"$`, steps.logsInWithPassword)
	ctx.Step(`^"([^"]*)" has logged in$`, steps.hasLoggedIn)
	ctx.Step(`^"([^"]*)" logs out$`, steps.logsOut)
	ctx.Step(`^"([^"]*)" requests their profile$`, steps.requestsProfile)
}

type authSteps struct {
	tc TestContext
}

// emailFor derives a stable per-scenario address for an alias.
func (s *authSteps) emailFor(alias string) string {
	if email := s.tc.Recall("email:" + alias); email != "" {
		return email
	}
	email := s.tc.Unique(alias + "@example.edu")
	s.tc.Remember("email:"+alias, email)
	return email
}

func (s *authSteps) studentHasSignedUp(ctx context.Context, alias, number string) error {
	if err := s.signUpStudent(alias, number); err != nil {
		return err
	}
	return s.expectStatus(http.StatusCreated)
}

func (s *authSteps) studentSignsUpAgain(ctx context.Context, alias string) error {
	return s.signUpStudent(alias, s.tc.Recall("number:"+alias))
}

func (s *authSteps) signUpStudent(alias, number string) error {
	s.tc.Remember("number:"+alias, number)
	body := map[string]any{
		"studentId": s.tc.Unique(number),
		"name":      alias,
		"email":     s.emailFor(alias),
		"password":  defaultPassword,
		"address":   "1 Campus Way",
		"studyYear": 1,
	}
	return s.tc.POST("/auth/register/student", body, nil)
}

func (s *authSteps) staffHasSignedUp(ctx context.Context, alias, number string) error {
	body := map[string]any{
		"staffId":  s.tc.Unique(number),
		"name":     alias,
		"email":    s.emailFor(alias),
		"password": defaultPassword,
		"address":  "Registry Office",
	}
	if err := s.tc.POST("/auth/register/staff", body, nil); err != nil {
		return err
	}
	return s.expectStatus(http.StatusCreated)
}

func (s *authSteps) logsIn(ctx context.Context, alias string) error {
	return s.logsInWithPassword(ctx, alias, defaultPassword)
}

func (s *authSteps) logsInWithPassword(ctx context.Context, alias, password string) error {
	body := map[string]any{"email": s.emailFor(alias), "password": password}
	if err := s.tc.POST("/auth/login", body, nil); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return nil
	}
	token, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(alias, fmt.Sprint(token))
	return nil
}

func (s *authSteps) hasLoggedIn(ctx context.Context, alias string) error {
	if err := s.logsIn(ctx, alias); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *authSteps) logsOut(ctx context.Context, alias string) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	return s.tc.POST("/auth/logout", nil, headers)
}

func (s *authSteps) requestsProfile(ctx context.Context, alias string) error {
	headers, err := s.tc.BearerFor(alias)
	if err != nil {
		return err
	}
	return s.tc.GET("/auth/me", headers)
}

func (s *authSteps) expectStatus(expected int) error {
	if got := s.tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.GetLastResponseBody())
	}
	return nil
}
