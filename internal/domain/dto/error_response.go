package dto

import "time"

// ErrorResponse is the JSON body returned by the control API on failure.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Timestamp    time.Time `json:"timestamp" example:"2024-03-31T10:05:00Z"`
	Message      string    `json:"message" example:"scheduler is stopped"`
	ErrorDetails string    `json:"error_details,omitempty" example:"pause requested after stop"`
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
// The details field is filled from err when it is not nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Timestamp: time.Now(),
		Message:   message,
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

// Error implements the error interface so handlers can attach the response to gin's error list.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}
