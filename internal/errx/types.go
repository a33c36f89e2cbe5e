package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents internal server errors
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents validation errors
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization represents authorization/authentication errors
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents resource conflict errors
	TypeConflict Type = "CONFLICT"

	// TypeBusiness represents business logic errors
	TypeBusiness Type = "BUSINESS"

	// TypeExternal represents errors from external services
	TypeExternal Type = "EXTERNAL"

	// TypeRateLimited represents a caller that has exceeded its quota.
	// Pierre's addition to the taxonomy: spec.md §7 distinguishes
	// RateLimited{retry_after} from a generic business-rule rejection so
	// C6 adapters can map it to a dedicated wire code (HTTP 429, MCP
	// -32004) instead of folding it into TypeBusiness.
	TypeRateLimited Type = "RATE_LIMITED"

	// TypeCancelled represents an operation a caller cancelled before it
	// completed (spec.md §7's Cancelled kind, §5's cancellation-token
	// propagation).
	TypeCancelled Type = "CANCELLED"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}
