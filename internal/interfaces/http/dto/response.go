package dto

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the body of company and product mutations
type SuccessResponse struct {
	Success string `json:"success"`
}

// HealthResponse reports service and database status
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(message string) SuccessResponse {
	return SuccessResponse{Success: message}
}
