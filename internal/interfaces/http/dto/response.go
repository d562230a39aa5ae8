package dto

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  []string    `json:"errors,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates an error response. Data is always null.
func NewErrorResponse(code, message string, errors ...string) Response {
	return Response{
		Success: false,
		Message: message,
		Errors:  errors,
		Code:    code,
	}
}
