package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_003"
	ErrCodeConflict        ErrorCode = "COMMON_004"
	ErrCodeTimeout         ErrorCode = "COMMON_005"
	ErrCodeSerialization   ErrorCode = "COMMON_006"
	ErrCodeExternalService ErrorCode = "COMMON_007"
)

// Aliases used at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Input-ingestion error codes.  These cover the entire normalizer pipeline:
// selection-time extension gating, file reading, the parse-strategy ladder,
// and submission-time count validation.
const (
	CodeInputEmpty                ErrorCode = "INPUT_001"
	CodeInputTooManyCompounds     ErrorCode = "INPUT_002"
	CodeInputUnsupportedExtension ErrorCode = "INPUT_003"
	CodeInputReadFailed           ErrorCode = "INPUT_004"
	CodeInputParseFailed          ErrorCode = "INPUT_005"
	CodeInputNoSheets             ErrorCode = "INPUT_006"
	CodeInputNoCompounds          ErrorCode = "INPUT_007"
	CodeInputTooLarge             ErrorCode = "INPUT_008"
)

// Prediction-service error codes.  PRED_001 carries the upstream service's
// own error message verbatim; PRED_002/003 cover transport and decode
// failures where no upstream message is available.
const (
	CodePredictionRejected    ErrorCode = "PRED_001"
	CodePredictionUnavailable ErrorCode = "PRED_002"
	CodePredictionBadResponse ErrorCode = "PRED_003"
)

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeSerialization:   http.StatusInternalServerError,
	ErrCodeExternalService: http.StatusBadGateway,

	CodeInputEmpty:                http.StatusBadRequest,
	CodeInputTooManyCompounds:     http.StatusBadRequest,
	CodeInputUnsupportedExtension: http.StatusBadRequest,
	CodeInputReadFailed:           http.StatusBadRequest,
	CodeInputParseFailed:          http.StatusUnprocessableEntity,
	CodeInputNoSheets:             http.StatusUnprocessableEntity,
	CodeInputNoCompounds:          http.StatusUnprocessableEntity,
	CodeInputTooLarge:             http.StatusRequestEntityTooLarge,

	CodePredictionRejected:    http.StatusBadGateway,
	CodePredictionUnavailable: http.StatusBadGateway,
	CodePredictionBadResponse: http.StatusBadGateway,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the ErrorCode maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the ErrorCode maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}
