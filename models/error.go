package models

// ErrorResponse is the body written for every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// SuccessResponse is the envelope returned by mutating endpoints
type SuccessResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// HealthCheckResponse is the body of GET /health
type HealthCheckResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
}

// RootResponse is the body of GET /
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}
