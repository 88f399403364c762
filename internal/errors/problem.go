package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// Common problem types following RFC 7807
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeInternal    = "/errors/internal"
	TypeTimeout     = "/errors/timeout"
	TypeRateLimit   = "/errors/rate-limit"
	TypeDataMissing = "/errors/data/not-found"
	TypeDataSchema  = "/errors/data/schema"
)

// ProblemDetails is an RFC 7807 error payload returned by the dashboard API.
type ProblemDetails struct {
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Status     int                    `json:"status"`
	Detail     string                 `json:"detail,omitempty"`
	Instance   string                 `json:"instance,omitempty"`
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}
