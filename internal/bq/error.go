package bq

// ErrorEnvelope is the top-level error response body.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the status code, message and error records.
type ErrorBody struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []ErrorProto `json:"errors,omitempty"`
}

// NewErrorEnvelope builds the standard single-error envelope.
func NewErrorEnvelope(code int, reason, message string) ErrorEnvelope {
	return ErrorEnvelope{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Errors: []ErrorProto{{
				Domain:  "global",
				Reason:  reason,
				Message: message,
			}},
		},
	}
}
