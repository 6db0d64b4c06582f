package errors

import "net/http"

// ErrorCode identifies a specific failure condition.  Codes are grouped per
// module with a short prefix so that logs and API responses can be filtered
// without parsing message text.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeExternalService    ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// Concept / catalog module error codes.
const (
	ErrCodeConceptNotFound    ErrorCode = "CON_001"
	ErrCodeCatalogEmpty       ErrorCode = "CON_002"
	ErrCodeIndexBuildFailed   ErrorCode = "CON_003"
	ErrCodeSnapshotLoadFailed ErrorCode = "CON_004"
	ErrCodeSnapshotInvalid    ErrorCode = "CON_005"
)

// Clinical decision support module error codes.
const (
	ErrCodeDiagnosisNotFound ErrorCode = "CDS_001"
	ErrCodeRelationInvalid   ErrorCode = "CDS_002"
	ErrCodeContextInvalid    ErrorCode = "CDS_003"
)

// Claim resolution module error codes.
const (
	ErrCodeClaimInvalid        ErrorCode = "CLM_001"
	ErrCodeClaimEmptyDiagnoses ErrorCode = "CLM_002"
)

// Terminology mapping (external capability) error codes.
const (
	ErrCodeMappingNotFound      ErrorCode = "TERM_001"
	ErrCodeMapperUnavailable    ErrorCode = "TERM_002"
	ErrCodeValidatorUnavailable ErrorCode = "TERM_003"
)

// HTTPStatus maps an ErrorCode to the HTTP status the transport layer should
// emit.  Unknown codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeClaimInvalid,
		ErrCodeClaimEmptyDiagnoses, ErrCodeContextInvalid:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeConceptNotFound, ErrCodeDiagnosisNotFound, ErrCodeMappingNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeServiceUnavailable, ErrCodeMapperUnavailable, ErrCodeValidatorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
