package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// The prefix before the underscore names the owning module.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_014"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_015"
)

// Patent and claims
const (
	ErrCodePatentNotFound ErrorCode = "PAT_001"
	ErrCodeClaimsMalformed ErrorCode = "PAT_002"
)

// Company
const (
	ErrCodeCompanyNotFound ErrorCode = "CMP_001"
)

// Corpus loading
const (
	ErrCodeCorpusUnavailable    ErrorCode = "CRP_001"
	ErrCodeCorpusEntryMalformed ErrorCode = "CRP_002"
)

// Scoring oracle
const (
	ErrCodeOracleUnavailable ErrorCode = "ORC_001"
	ErrCodeOracleBadResponse ErrorCode = "ORC_002"
	ErrCodeOracleCircuitOpen ErrorCode = "ORC_003"
)

// Reports
const (
	ErrCodeReportNotFound    ErrorCode = "RPT_001"
	ErrCodeReportStoreFailed ErrorCode = "RPT_002"
	ErrCodeReportRenderFailed ErrorCode = "RPT_003"
)

// Short aliases used at call sites.
const (
	CodeOK       = ErrorCode("OK")
	CodeUnknown  = ErrorCode("UNKNOWN")
	CodeInternal = ErrCodeInternal

	CodeInvalidParam = ErrCodeBadRequest
	CodeValidation   = ErrCodeValidation
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeTimeout      = ErrCodeTimeout

	CodeDatabaseError     = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeStorageError      = ErrCodeStorageError
	CodeMessageQueueError = ErrCodeMessageQueueError
	CodeSerialization     = ErrCodeSerialization

	CodePatentNotFound  = ErrCodePatentNotFound
	CodeClaimsMalformed = ErrCodeClaimsMalformed
	CodeCompanyNotFound = ErrCodeCompanyNotFound

	CodeCorpusUnavailable    = ErrCodeCorpusUnavailable
	CodeCorpusEntryMalformed = ErrCodeCorpusEntryMalformed

	CodeOracleUnavailable = ErrCodeOracleUnavailable
	CodeOracleBadResponse = ErrCodeOracleBadResponse
	CodeOracleCircuitOpen = ErrCodeOracleCircuitOpen

	CodeReportNotFound     = ErrCodeReportNotFound
	CodeReportStoreFailed  = ErrCodeReportStoreFailed
	CodeReportRenderFailed = ErrCodeReportRenderFailed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,

	ErrCodePatentNotFound:  http.StatusNotFound,
	ErrCodeClaimsMalformed: http.StatusUnprocessableEntity,

	ErrCodeCompanyNotFound: http.StatusNotFound,

	ErrCodeCorpusUnavailable:    http.StatusServiceUnavailable,
	ErrCodeCorpusEntryMalformed: http.StatusUnprocessableEntity,

	ErrCodeOracleUnavailable: http.StatusServiceUnavailable,
	ErrCodeOracleBadResponse: http.StatusBadGateway,
	ErrCodeOracleCircuitOpen: http.StatusServiceUnavailable,

	ErrCodeReportNotFound:     http.StatusNotFound,
	ErrCodeReportStoreFailed:  http.StatusInternalServerError,
	ErrCodeReportRenderFailed: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "storage error",
	ErrCodeMessageQueueError:  "message queue error",

	ErrCodePatentNotFound:  "patent not found",
	ErrCodeClaimsMalformed: "claims data malformed",

	ErrCodeCompanyNotFound: "company not found",

	ErrCodeCorpusUnavailable:    "corpus source unavailable",
	ErrCodeCorpusEntryMalformed: "corpus entry malformed",

	ErrCodeOracleUnavailable: "scoring service unavailable",
	ErrCodeOracleBadResponse: "scoring service returned an invalid response",
	ErrCodeOracleCircuitOpen: "scoring service temporarily disabled",

	ErrCodeReportNotFound:     "Report not found",
	ErrCodeReportStoreFailed:  "failed to persist report",
	ErrCodeReportRenderFailed: "failed to render report",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
