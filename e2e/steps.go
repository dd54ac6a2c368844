package e2e

import (
	"github.com/cucumber/godog"

	"registrar/e2e/steps/auth"
	"registrar/e2e/steps/common"
	"registrar/e2e/steps/enrollment"
	"registrar/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register authentication-specific steps
	auth.RegisterSteps(ctx, tc)

	enrollment.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
