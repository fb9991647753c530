package e2e

import (
	"github.com/cucumber/godog"

	"fraudgate/e2e/steps/common"
	"fraudgate/e2e/steps/containment"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Intake, lockout and operator review
	containment.RegisterSteps(ctx, tc)
}
