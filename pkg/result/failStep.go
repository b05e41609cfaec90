package result

const (
	ScenarioLoad          = "[ready]: failed to load the scenario failure cases"
	FailureCaseValidation = "[inject]: failure case rejected before injection"
	FailureInjection      = "[inject]: failed to inject the failure case"
	HealthCheckPostChaos  = "[check]: cluster did not become healthy after the failure case"
	RunInterrupted        = "[inject]: run interrupted before all failure cases ran"
)
