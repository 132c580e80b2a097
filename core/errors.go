package core

import (
	"fmt"
	"net/http"
)

// AppError is a domain failure with a stable numeric code and the HTTP status
// it maps to at the transport boundary. All domain failures are terminal for
// the current request; nothing is retried internally.
type AppError struct {
	Code    int
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return e.Message
}

// WithMessage returns a copy of the error carrying an interpolated message,
// keeping the code and status stable. Used for validation failures whose
// message depends on the violated constraint's parameters.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	return &AppError{Code: e.Code, Message: fmt.Sprintf(format, args...), Status: e.Status}
}

// Is matches by code so re-messaged copies still compare equal under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

var (
	ErrUncategorized          = &AppError{9999, "uncategorized error", http.StatusInternalServerError}
	ErrInvalidKey             = &AppError{1001, "invalid key", http.StatusBadRequest}
	ErrUserExisted            = &AppError{1002, "user existed", http.StatusBadRequest}
	ErrUsernameInvalid        = &AppError{1003, "username must be at least %d characters", http.StatusBadRequest}
	ErrPasswordInvalid        = &AppError{1004, "password must be at least %d characters", http.StatusBadRequest}
	ErrUserNotFound           = &AppError{1005, "user not existed", http.StatusNotFound}
	ErrUnauthenticated        = &AppError{1006, "unauthenticated", http.StatusUnauthorized}
	ErrUnauthorized           = &AppError{1007, "you do not have permission", http.StatusForbidden}
	ErrInvalidDOB             = &AppError{1008, "your age must be at least %d", http.StatusBadRequest}
	ErrRoleNotFound           = &AppError{1009, "role not existed", http.StatusNotFound}
	ErrNonceNotFound          = &AppError{1010, "nonce not existed", http.StatusBadRequest}
	ErrLoginMethodRequired    = &AppError{1011, "login method is required", http.StatusBadRequest}
	ErrInvalidParameter       = &AppError{1012, "invalid parameter", http.StatusBadRequest}
	ErrPasswordRequired       = &AppError{1013, "password required", http.StatusBadRequest}
	ErrMissingCredentials     = &AppError{1014, "missing credentials", http.StatusBadRequest}
	ErrLoginMethodUnsupported = &AppError{1015, "login method not supported", http.StatusBadRequest}
	ErrWalletPermissionDenied = &AppError{1016, "you do not have permission with this wallet", http.StatusBadRequest}
	ErrEmailAlreadyUsed       = &AppError{1022, "email has been used by another account", http.StatusBadRequest}
	ErrWalletAlreadyUsed      = &AppError{1023, "wallet has been used by another account", http.StatusBadRequest}
	ErrCourseNotFound         = &AppError{1031, "course not found", http.StatusNotFound}
	ErrPaymentMethodNotFound  = &AppError{1032, "course does not have this payment method", http.StatusBadRequest}
	ErrDuplicateEnrollment    = &AppError{1033, "already joined this course", http.StatusBadRequest}
	ErrPaymentNotValid        = &AppError{1034, "transaction not valid", http.StatusBadRequest}
)
