package http

import (
	"errors"

	"github.com/mkrupp/volunteerlog/internal/domain"
)

// GenericFailureMessage is shown when a request fails for a reason the user
// cannot act on, such as a store-connectivity fault.
const GenericFailureMessage = "something went wrong, please try again"

// userFacingSentinels are the recoverable errors whose text is safe to show a
// user. Order matters only for readability.
//
//nolint:gochecknoglobals
var userFacingSentinels = []error{
	domain.ErrFieldsMissing,
	domain.ErrPasswordMismatch,
	domain.ErrPasswordTooShort,
	domain.ErrUserAlreadyExists,
	domain.ErrEmailAlreadyExists,
	domain.ErrInvalidCredentials,
	domain.ErrOrganizationMissing,
	domain.ErrHoursNotPositive,
	domain.ErrInvalidHours,
	domain.ErrInvalidDate,
	domain.ErrNotAuthenticated,
}

// UserFacingMessage converts an error into text safe to show a user.
// The matched sentinel's own message is used rather than the full error chain,
// so wrapped store detail never leaks; anything unrecognized collapses into a
// generic message.
func UserFacingMessage(err error) string {
	for _, sentinel := range userFacingSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return GenericFailureMessage
}
