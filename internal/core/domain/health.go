package domain

// HealthStatus classifies the outcome of a channel health probe
type HealthStatus string

const (
	HealthStatusOK            HealthStatus = "OK"
	HealthStatusInvalidConfig HealthStatus = "INVALID_CONFIG"
	HealthStatusAuthFailed    HealthStatus = "AUTH_FAILED"
	HealthStatusUnreachable   HealthStatus = "UNREACHABLE"
)

// HealthCheckResult is returned by the channel health checker. Expected
// failure modes are reported as a status, never as an error; only programmer
// errors (an unknown channel code) surface as errors.
type HealthCheckResult struct {
	IsHealthy    bool         `json:"is_healthy"`
	HealthStatus HealthStatus `json:"health_status"`
	Detail       string       `json:"detail,omitempty"`
}

// HealthResult builds a result from a status.
func HealthResult(status HealthStatus, detail string) *HealthCheckResult {
	return &HealthCheckResult{
		IsHealthy:    status == HealthStatusOK,
		HealthStatus: status,
		Detail:       detail,
	}
}
