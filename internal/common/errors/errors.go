// Package errors provides standardized error handling for the lead qualifier
// and its BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Lead qualification
const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeCatalogInconsistency ErrorCode = "CATALOG_INCONSISTENCY"

	ErrCodeFundNotFound      ErrorCode = "FUND_NOT_FOUND"
	ErrCodeFundAlreadyExists ErrorCode = "FUND_ALREADY_EXISTS"
	ErrCodeInvalidFundSpec   ErrorCode = "INVALID_FUND_SPEC"

	ErrCodeDeliveryTransient        ErrorCode = "DELIVERY_TRANSIENT"
	ErrCodeDeliveryNotProvisioned   ErrorCode = "DELIVERY_NOT_PROVISIONED"
	ErrCodeDeliveryExhausted        ErrorCode = "DELIVERY_EXHAUSTED"
	ErrCodeInvalidSinkURL           ErrorCode = "INVALID_SINK_URL"
	ErrCodePayloadTooLarge          ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeDeliveryLogWriteFailed   ErrorCode = "DELIVERY_LOG_WRITE_FAILED"
	ErrCodeCatalogReadFailed        ErrorCode = "CATALOG_READ_FAILED"
	ErrCodeCatalogWriteFailed       ErrorCode = "CATALOG_WRITE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeIndexingFailed                ErrorCode = "INDEXING_FAILED"
)

// Generic codes
const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeAuthentication  ErrorCode = "AUTHENTICATION_ERROR"
)

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrValidationFailed  = stderrors.New(string(ErrCodeValidationFailed))
	ErrFundNotFound      = stderrors.New(string(ErrCodeFundNotFound))
	ErrFundAlreadyExists = stderrors.New(string(ErrCodeFundAlreadyExists))
	ErrInvalidFundSpec   = stderrors.New(string(ErrCodeInvalidFundSpec))
	ErrDeliveryExhausted = stderrors.New(string(ErrCodeDeliveryExhausted))
	ErrNotProvisioned    = stderrors.New(string(ErrCodeDeliveryNotProvisioned))
	ErrInvalidSinkURL    = stderrors.New(string(ErrCodeInvalidSinkURL))
	ErrPayloadTooLarge   = stderrors.New(string(ErrCodePayloadTooLarge))
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error so errors.Is/As see through.
func (e *StandardError) WithCause(err error) *StandardError {
	e.cause = err
	return e
}

// WithMetadata adds a key to Metadata, allocating the map on first use.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandard returns the first StandardError in err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable submission validation error.
func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Lead submission failed validation", details, false).
		WithCause(ErrValidationFailed)
}

// NewCatalogInconsistencyError reports a fund that could not be evaluated.
func NewCatalogInconsistencyError(fundID, details string) *StandardError {
	return newError(ErrCodeCatalogInconsistency, "Fund definition cannot be evaluated",
		fmt.Sprintf("fundId: %s, %s", fundID, details), false)
}

func NewFundNotFoundError(fundID string) *StandardError {
	return newError(ErrCodeFundNotFound, "Fundo não encontrado", fmt.Sprintf("fundId: %s", fundID), false).
		WithCause(ErrFundNotFound)
}

func NewFundAlreadyExistsError(fundID string) *StandardError {
	return newError(ErrCodeFundAlreadyExists, "Fundo já existe", fmt.Sprintf("fundId: %s", fundID), false).
		WithCause(ErrFundAlreadyExists)
}

// NewInvalidFundSpecError carries the caller-facing reason as Message.
func NewInvalidFundSpecError(message, details string) *StandardError {
	return newError(ErrCodeInvalidFundSpec, message, details, false).WithCause(ErrInvalidFundSpec)
}

// NewCatalogReadFailedError creates a retryable catalog storage error.
func NewCatalogReadFailedError(err error) *StandardError {
	return newError(ErrCodeCatalogReadFailed, "Fund catalog read failed", err.Error(), true).WithCause(err)
}

// NewCatalogWriteFailedError creates a retryable catalog storage error.
func NewCatalogWriteFailedError(fundID string, err error) *StandardError {
	return newError(ErrCodeCatalogWriteFailed, "Fund catalog write failed",
		fmt.Sprintf("fundId: %s, error: %s", fundID, err.Error()), true).WithCause(err)
}

// NewDeliveryExhaustedError is returned once every delivery attempt failed.
func NewDeliveryExhaustedError(message, details string) *StandardError {
	return newError(ErrCodeDeliveryExhausted, message, details, true).WithCause(ErrDeliveryExhausted)
}

// NewDeliveryNotProvisionedError is returned when the sink answered 404 on
// the final attempt.
func NewDeliveryNotProvisionedError(message, details string) *StandardError {
	return newError(ErrCodeDeliveryNotProvisioned, message, details, false).WithCause(ErrNotProvisioned)
}

func NewDeliveryTransientError(details string) *StandardError {
	return newError(ErrCodeDeliveryTransient, "Lead sink call failed", details, true)
}

func NewInvalidSinkURLError(details string) *StandardError {
	return newError(ErrCodeInvalidSinkURL, "URL do webhook inválida", details, false).WithCause(ErrInvalidSinkURL)
}

func NewPayloadTooLargeError(size, limit int) *StandardError {
	return newError(ErrCodePayloadTooLarge, "Payload muito grande",
		fmt.Sprintf("size: %d, limit: %d", size, limit), false).WithCause(ErrPayloadTooLarge)
}

// NewDeliveryLogWriteFailedError creates a retryable webhook log error.
func NewDeliveryLogWriteFailedError(err error) *StandardError {
	return newError(ErrCodeDeliveryLogWriteFailed, "Delivery log write failed", err.Error(), true).WithCause(err)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true).WithCause(err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("query: %s, error: %s", query, err.Error()), true).WithCause(err)
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true).WithCause(err)
}

func NewIndexingFailedError(index string, err error) *StandardError {
	return newError(ErrCodeIndexingFailed, "Elasticsearch indexing error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true).WithCause(err)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true).WithCause(err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true).WithCause(err)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes caught
// by boundary events in the lead qualification process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:       "VALIDATION_FAILED",
	ErrCodeCatalogInconsistency:   "CATALOG_INCONSISTENCY",
	ErrCodeCatalogReadFailed:      "CATALOG_UNAVAILABLE",
	ErrCodeDeliveryExhausted:      "DELIVERY_EXHAUSTED",
	ErrCodeDeliveryNotProvisioned: "DELIVERY_NOT_PROVISIONED",
	ErrCodeInvalidSinkURL:         "DELIVERY_MISCONFIGURED",
	ErrCodePayloadTooLarge:        "DELIVERY_MISCONFIGURED",
}

// GetRetryCount returns the number of job retries a code deserves.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogReadFailed,
		ErrCodeCatalogWriteFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeDeliveryLogWriteFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeTimeout, ErrCodeIndexingFailed:
		return 2

	default:
		// Delivery already spent its own budget; business errors never retry.
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// Metadata is carried over as error variables.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "FUND") || strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "DELIVERY") || strings.Contains(codeStr, "PAYLOAD"):
		return "DELIVERY"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEXING"):
		return "SEARCH"
	default:
		return "OTHER"
	}
}
