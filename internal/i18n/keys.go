// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"
	KeyWarning = "warning"
	KeyInfo    = "info"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthEmailVerified      = "auth.email_verified"

	// User Management
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserSuspended      = "user.suspended"

	// Cooperatives
	KeyCooperativeCreated     = "cooperative.created"
	KeyCooperativeUpdated     = "cooperative.updated"
	KeyCooperativeNotFound    = "cooperative.not_found"
	KeyCooperativeDeactivated = "cooperative.deactivated"
	KeyCooperativeNotSeeking  = "cooperative.not_seeking"

	// Requests
	KeyRequestSubmitted  = "request.submitted"
	KeyRequestNotFound   = "request.not_found"
	KeyRequestInReview   = "request.in_review"
	KeyRequestApproved   = "request.approved"
	KeyRequestRejected   = "request.rejected"
	KeyRequestDuplicate  = "request.duplicate"
	KeyRequestTerminal   = "request.already_resolved"
	KeyRequestNotesShort = "request.notes_required"

	// Matching
	KeyMatchingProfileMissing = "matching.profile_missing"
	KeyMatchingNoResults      = "matching.no_results"

	// Admin
	KeyAdminActionSuccess   = "admin.action_success"
	KeyAdminAccessDenied    = "admin.access_denied"
	KeyAdminUserSuspended   = "admin.user_suspended"
	KeyAdminUserUnsuspended = "admin.user_unsuspended"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationTooShort = "validation.too_short"
	KeyValidationTooLong  = "validation.too_long"
	KeyValidationEmail    = "validation.invalid_email"
	KeyValidationPassword = "validation.invalid_password"

	// Search
	KeySearchNoResults    = "search.no_results"
	KeySearchResultsFound = "search.results_found"

	// Notifications
	KeyNotificationSent   = "notification.sent"
	KeyNotificationFailed = "notification.failed"
)
