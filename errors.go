package storefront

import (
	"errors"

	"github.com/bunhouse/storefront-go/otp"
	"github.com/bunhouse/storefront-go/transport"
)

var (
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("storefront: builder already used")
	// ErrUnknownRegion is returned for a region code with no storefront.
	ErrUnknownRegion = errors.New("storefront: unknown region")

	// ErrSessionExpired re-exports the transport sentinel for callers that
	// only import the root package.
	ErrSessionExpired = transport.ErrSessionExpired
	// ErrPhoneInvalid re-exports the OTP phone validation sentinel.
	ErrPhoneInvalid = otp.ErrPhoneInvalid
	// ErrCodeInvalid re-exports the OTP code validation sentinel.
	ErrCodeInvalid = otp.ErrCodeInvalid
	// ErrCooldownActive re-exports the OTP resend cooldown sentinel.
	ErrCooldownActive = otp.ErrCooldownActive
)
