package apierror

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrorCode is the numeric result taxonomy shared by every layer. The admin
// gateway discriminates outcomes on this code, not on HTTP status.
type ErrorCode int

const (
	CodeSuccess    ErrorCode = 1000
	CodeValidation ErrorCode = 2001
	CodeDuplicate  ErrorCode = 2002
	CodeNotFound   ErrorCode = 2003
	CodeInternal   ErrorCode = 2004
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	if code != CodeSuccess {
		logrus.Error(details)
	}
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// CodeOf extracts the taxonomy code from an error, defaulting to
// CodeInternal for anything that is not an APIError.
func CodeOf(err error) ErrorCode {
	if apiErr, ok := err.(APIError); ok {
		return apiErr.Code
	}
	return CodeInternal
}
