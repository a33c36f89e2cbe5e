package store

import (
	"net/http"

	"github.com/pierre-fitness/pierre-server/internal/errx"
)

// ErrRegistry is C1's error registry (errx.Registry, spec.md §9 "use a
// concrete AppError").
var ErrRegistry = errx.NewRegistry("STORE")

var (
	CodeUserNotFound      = ErrRegistry.Register("USER_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "user not found")
	CodeUserAlreadyExists = ErrRegistry.Register("USER_EXISTS", errx.TypeConflict, http.StatusConflict, "a user with this email already exists")
	CodeTokenNotFound     = ErrRegistry.Register("TOKEN_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "oauth token not found")
	CodeAPIKeyNotFound    = ErrRegistry.Register("APIKEY_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "api key not found")
	CodeAdminTokenNotFound = ErrRegistry.Register("ADMIN_TOKEN_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "admin token not found")
	CodeTenantNotFound    = ErrRegistry.Register("TENANT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "tenant not found")
	CodeCredsNotFound     = ErrRegistry.Register("OAUTH_CREDS_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "tenant has no oauth app credentials for this provider")
	CodeTaskNotFound      = ErrRegistry.Register("TASK_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "a2a task not found")
	CodeGoalNotFound      = ErrRegistry.Register("GOAL_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "goal not found")
	CodeStorage           = ErrRegistry.Register("STORAGE", errx.TypeInternal, http.StatusInternalServerError, "storage error")
	CodeConflict          = ErrRegistry.Register("CONFLICT", errx.TypeConflict, http.StatusConflict, "storage conflict")
)

func ErrUserNotFound() *errx.Error       { return ErrRegistry.New(CodeUserNotFound) }
func ErrUserAlreadyExists() *errx.Error  { return ErrRegistry.New(CodeUserAlreadyExists) }
func ErrTokenNotFound() *errx.Error      { return ErrRegistry.New(CodeTokenNotFound) }
func ErrAPIKeyNotFound() *errx.Error     { return ErrRegistry.New(CodeAPIKeyNotFound) }
func ErrAdminTokenNotFound() *errx.Error { return ErrRegistry.New(CodeAdminTokenNotFound) }
func ErrTenantNotFound() *errx.Error     { return ErrRegistry.New(CodeTenantNotFound) }
func ErrCredsNotFound() *errx.Error      { return ErrRegistry.New(CodeCredsNotFound) }
func ErrTaskNotFound() *errx.Error       { return ErrRegistry.New(CodeTaskNotFound) }
func ErrGoalNotFound() *errx.Error       { return ErrRegistry.New(CodeGoalNotFound) }
// ErrStorage wraps a lower-level storage error. Callers must only invoke
// this when cause is non-nil (see storesqlite.wrapErr for the guarded
// helper used where that isn't already guaranteed): a *errx.Error(nil)
// assigned into an `error` return would be a non-nil interface.
func ErrStorage(cause error) *errx.Error { return ErrRegistry.NewWithCause(CodeStorage, cause) }
