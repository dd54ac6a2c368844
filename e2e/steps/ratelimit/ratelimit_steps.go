package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(key string) string
	Unique(value string) string
}

// RegisterSteps registers login throttling step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &rateLimitSteps{tc: tc}

	ctx.Step(`^I fail to log in as "([^"]*)" (\d+) times from IP "([^"]*)"$`, steps.failLoginTimes)
	ctx.Step(`^I attempt to log in as "([^"]*)" from IP "([^"]*)"$`, steps.attemptLogin)
	ctx.Step(`^the response should carry a Retry-After header$`, steps.shouldCarryRetryAfter)
}

type rateLimitSteps struct {
	tc TestContext
}

// login sends a bad password from the given client IP.
func (s *rateLimitSteps) login(email, ip string) error {
	body := map[string]any{"email": s.tc.Unique(email), "password": "wrong-password"}
	return s.tc.POST("/auth/login", body, map[string]string{"X-Forwarded-For": ip})
}

func (s *rateLimitSteps) failLoginTimes(ctx context.Context, email string, times int, ip string) error {
	for i := 0; i < times; i++ {
		if err := s.login(email, ip); err != nil {
			return err
		}
		if got := s.tc.GetLastResponseStatus(); got != http.StatusUnauthorized {
			return fmt.Errorf("attempt %d: expected 401, got %d: %s", i+1, got, s.tc.GetLastResponseBody())
		}
	}
	return nil
}

func (s *rateLimitSteps) attemptLogin(ctx context.Context, email, ip string) error {
	return s.login(email, ip)
}

func (s *rateLimitSteps) shouldCarryRetryAfter(ctx context.Context) error {
	raw := s.tc.GetLastResponseHeader("Retry-After")
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 1 {
		return fmt.Errorf("expected a positive Retry-After, got %q", raw)
	}
	return nil
}
