// Package errors provides structured error handling for deckforge.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO and storage errors
//   - 3XX: Network and external-service errors
//   - 4XX: Validation and payload errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file, disk, and store I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates network and external-service errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input and payload validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the pipeline can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound    = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid     = "ERR_102_CONFIG_INVALID"
	ErrCodeCredentialMissing = "ERR_103_CREDENTIAL_MISSING"

	// IO errors (200-299)
	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"
	ErrCodeStoreFailed  = "ERR_202_STORE_FAILED"
	ErrCodeCorruptIndex = "ERR_203_CORRUPT_INDEX"
	ErrCodeNotIndexed   = "ERR_204_NOT_INDEXED"
	ErrCodeCacheFailed  = "ERR_205_CACHE_FAILED"

	// Network errors (300-399)
	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"
	ErrCodeEmptyResponse      = "ERR_303_EMPTY_RESPONSE"
	ErrCodeRepoUnreachable    = "ERR_304_REPO_UNREACHABLE"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeDimensionMismatch = "ERR_402_DIMENSION_MISMATCH"
	ErrCodeMalformedPayload  = "ERR_403_MALFORMED_PAYLOAD"
	ErrCodeNothingToIndex    = "ERR_404_NOTHING_TO_INDEX"

	// Internal errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeEmbeddingFailed = "ERR_502_EMBEDDING_FAILED"
	ErrCodeChunkingFailed  = "ERR_503_CHUNKING_FAILED"
)

// categoryFromCode extracts the category from an error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode derives severity from an error code.
// Only repository-unreachable and nothing-to-index abort the pipeline;
// everything else degrades locally.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeRepoUnreachable, ErrCodeNothingToIndex, ErrCodeConfigInvalid:
		return SeverityFatal
	case ErrCodeNotIndexed, ErrCodeCacheFailed, ErrCodeCredentialMissing:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// retryableCodes lists codes where a bounded retry may succeed.
var retryableCodes = map[string]bool{
	ErrCodeNetworkTimeout:     true,
	ErrCodeNetworkUnavailable: true,
	ErrCodeEmptyResponse:      true,
	ErrCodeStoreFailed:        true,
}

func isRetryableCode(code string) bool {
	return retryableCodes[code]
}
