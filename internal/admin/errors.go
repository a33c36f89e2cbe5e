package admin

import (
	"net/http"

	"github.com/pierre-fitness/pierre-server/internal/errx"
)

var ErrRegistry = errx.NewRegistry("ADMIN")

var (
	CodeInvalidBody    = ErrRegistry.Register("INVALID_BODY", errx.TypeValidation, http.StatusBadRequest, "invalid request body")
	CodeAlreadySetUp   = ErrRegistry.Register("ALREADY_SET_UP", errx.TypeConflict, http.StatusConflict, "an admin already exists")
	CodeUserNotApproved = ErrRegistry.Register("USER_NOT_APPROVED", errx.TypeValidation, http.StatusConflict, "user must be active before an api key can be provisioned")
)

func errInvalidBody(detail string) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeInvalidBody, detail)
}

func errAlreadySetUp() *errx.Error { return ErrRegistry.New(CodeAlreadySetUp) }

func errUserNotApproved() *errx.Error { return ErrRegistry.New(CodeUserNotApproved) }
