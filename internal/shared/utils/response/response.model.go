package response

// Envelope status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StandardApiResponse is the envelope every endpoint answers with
type StandardApiResponse struct {
	Status     string      `json:"status" example:"success"`
	StatusCode int         `json:"status_code" example:"200"`
	Message    string      `json:"message" example:"Event retrieved successfully"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
