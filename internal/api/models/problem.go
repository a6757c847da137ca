package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC7807 error body, served as application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is the request path that produced the problem.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request id.
	TraceID string `json:"traceId"`

	// Errors lists the fields that failed validation.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError is a validation error on a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Field error codes.
const (
	FieldCodeInvalid   = "INVALID"
	FieldCodeRequired  = "REQUIRED"
	FieldCodeMalformed = "MALFORMED"
)

// Problem type URIs.
const (
	ProblemTypeValidation      = "https://api.smartpark.io/problems/validation-error"
	ProblemTypeNotFound        = "https://api.smartpark.io/problems/not-found"
	ProblemTypeTooManyRequests = "https://api.smartpark.io/problems/too-many-requests"
	ProblemTypeUnsupportedType = "https://api.smartpark.io/problems/unsupported-media-type"
	ProblemTypeTLSRequired     = "https://api.smartpark.io/problems/tls-required"
	ProblemTypeInternal        = "https://api.smartpark.io/problems/internal-error"
	ProblemTypeUnavailable     = "https://api.smartpark.io/problems/service-unavailable"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail sets the detail message.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance sets the instance path.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors sets the field errors.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID)
	p.Detail = detail
	p.Errors = errors
	return p
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID)
	p.Detail = detail
	return p
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID)
	p.Detail = detail
	return p
}

// NewUnsupportedMediaType creates a 415 Unsupported Media Type problem.
func NewUnsupportedMediaType(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeUnsupportedType, "Unsupported media type", http.StatusUnsupportedMediaType, traceID)
	p.Detail = detail
	return p
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID)
	p.Detail = detail
	return p
}

// NewServiceUnavailable creates a 503 Service Unavailable problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID)
	p.Detail = detail
	return p
}
