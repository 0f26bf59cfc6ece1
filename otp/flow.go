// Package otp implements the passwordless phone-login state machine: request
// a one-time code for a phone number, then verify it. The flow runs over the
// public transport so an expired session can never knock a guest out of the
// login screen.
package otp

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bunhouse/storefront-go/internal/audit"
	"github.com/bunhouse/storefront-go/internal/telemetry"
	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/token"
	"github.com/bunhouse/storefront-go/transport"
)

// Step is the current position in the flow.
type Step string

const (
	// StepPhone collects the phone number.
	StepPhone Step = "phone"
	// StepOTP collects the delivered code. Verification success exits the
	// flow entirely; there is no third step.
	StepOTP Step = "otp"
)

var (
	// ErrPhoneInvalid is returned before any network call when the phone
	// number violates the region's numbering rules.
	ErrPhoneInvalid = errors.New("otp: invalid phone number")
	// ErrCodeInvalid is returned before any network call when the code is
	// not exactly the required digit count.
	ErrCodeInvalid = errors.New("otp: invalid code")
	// ErrCooldownActive is returned when a resend is requested before the
	// countdown reaches zero.
	ErrCooldownActive = errors.New("otp: resend cooldown active")
	// ErrWrongStep is returned when an operation is invoked from the wrong
	// step.
	ErrWrongStep = errors.New("otp: operation not valid in current step")
	// ErrRequestRejected wraps a server-side rejection of an OTP request or
	// verification.
	ErrRequestRejected = errors.New("otp: rejected by server")
)

const (
	defaultResendWait = 60 * time.Second
	defaultCodeLength = 6
)

// waitPattern extracts a server-enforced wait window embedded in an error
// message, e.g. "please wait 45 seconds".
var waitPattern = regexp.MustCompile(`(\d+)\s*second`)

// Notifier receives the successful login so the session layer can pick it up
// without a direct reference back from this package.
type Notifier interface {
	NotifyLogin(user model.UserInfo)
}

// Config assembles a Flow.
type Config struct {
	// Transport must be the public transport.
	Transport *transport.Transport
	// Tokens persists the pair returned by verification.
	Tokens *token.Manager
	// Region supplies the active region and its phone rules.
	Region func() model.Region
	// Notifier is invoked on verification success. Optional.
	Notifier Notifier
	// ResendWait is the default resend cooldown. Zero means 60s.
	ResendWait time.Duration
	// CodeLength is the expected code digit count. Zero means 6.
	CodeLength int
	// Now overrides the time source. Tests only.
	Now func() time.Time

	Logger   zerolog.Logger
	Recorder *telemetry.Recorder
	Audit    *audit.Dispatcher
}

// State is a point-in-time snapshot of the flow.
type State struct {
	Step      Step
	Phone     string
	Code      string
	IsNewUser bool
	Countdown int
	Error     string
}

// Flow is a per-login-attempt state machine. It is transient: nothing here
// is persisted, and Reset returns it to the initial state.
type Flow struct {
	cfg Config

	mu             sync.Mutex
	step           Step
	phone          string
	code           string
	isNewUser      bool
	resendDeadline time.Time
	lastError      string
}

// NewFlow returns a Flow in StepPhone.
func NewFlow(cfg Config) (*Flow, error) {
	if cfg.Transport == nil {
		return nil, errors.New("otp: transport required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("otp: token manager required")
	}
	if cfg.Region == nil {
		return nil, errors.New("otp: region func required")
	}
	if cfg.ResendWait <= 0 {
		cfg.ResendWait = defaultResendWait
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = defaultCodeLength
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Flow{cfg: cfg, step: StepPhone}, nil
}

// State returns a snapshot of the flow.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Step:      f.step,
		Phone:     f.phone,
		Code:      f.code,
		IsNewUser: f.isNewUser,
		Countdown: f.countdownLocked(),
		Error:     f.lastError,
	}
}

// Countdown returns the remaining resend cooldown in whole seconds.
func (f *Flow) Countdown() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countdownLocked()
}

func (f *Flow) countdownLocked() int {
	remaining := f.resendDeadline.Sub(f.cfg.Now())
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

type otpRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type otpRequestResponse struct {
	Success   bool   `json:"success"`
	IsNewUser bool   `json:"isNewUser"`
	Error     string `json:"error,omitempty"`
}

// RequestOTP validates phone against the active region's rules and asks the
// backend to deliver a code. Success moves the flow to StepOTP and starts
// the resend countdown. An invalid phone never reaches the network.
func (f *Flow) RequestOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	region := f.cfg.Region()

	if !region.ValidPhone(phone) {
		f.setError("enter a valid " + strconv.Itoa(region.PhoneDigits) + "-digit phone number")
		return ErrPhoneInvalid
	}

	// Countdown > 0 forbids a new OTP request; the server enforces the same
	// window on its side.
	f.mu.Lock()
	if f.countdownLocked() > 0 {
		f.lastError = "please wait before requesting a new code"
		f.mu.Unlock()
		return ErrCooldownActive
	}
	f.mu.Unlock()

	var resp otpRequestResponse
	err := f.cfg.Transport.Post(ctx, "/api/Account/phone-otp/request", otpRequest{PhoneNumber: phone}, &resp)
	if err != nil {
		f.handleRequestFailure(errMessage(err))
		return err
	}
	if !resp.Success {
		f.handleRequestFailure(resp.Error)
		return f.rejection(resp.Error)
	}

	f.cfg.Recorder.Inc(telemetry.MetricOTPRequested)
	f.cfg.Audit.Emit(ctx, audit.Event{
		Timestamp: time.Now(),
		Type:      audit.EventOTPRequested,
		Phone:     phone,
		Region:    region.Code,
	})
	f.cfg.Logger.Debug().Str("region", region.Code).Msg("otp requested")

	f.mu.Lock()
	f.step = StepOTP
	f.phone = phone
	f.isNewUser = resp.IsNewUser
	f.resendDeadline = f.cfg.Now().Add(f.cfg.ResendWait)
	f.lastError = ""
	f.mu.Unlock()
	return nil
}

// handleRequestFailure keeps the flow in its current step and surfaces the
// server message. A wait window embedded in the message ("N seconds")
// replaces the default countdown so resend stays suppressed for the window
// the server enforces.
func (f *Flow) handleRequestFailure(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if message == "" {
		message = "something went wrong, please try again"
	}
	f.lastError = message
	if secs := parseWaitSeconds(message); secs > 0 {
		f.resendDeadline = f.cfg.Now().Add(time.Duration(secs) * time.Second)
	}
}

type otpVerifyRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"code"`
}

type otpVerifyResponse struct {
	Success      bool        `json:"success"`
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         *verifyUser `json:"user,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// verifyUser keeps IsActive as a pointer so an absent field is
// distinguishable from an explicit false.
type verifyUser struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
	IsActive    *bool    `json:"isActive"`
}

// VerifyOTP submits code for the phone number captured by RequestOTP. On
// success it persists the token pair and user record, notifies the session
// layer, resets the flow, and returns the user. On failure the entered code
// is kept so the user can correct a single digit.
func (f *Flow) VerifyOTP(ctx context.Context, code string) (model.UserInfo, error) {
	code = strings.TrimSpace(code)

	f.mu.Lock()
	if f.step != StepOTP {
		f.mu.Unlock()
		return model.UserInfo{}, ErrWrongStep
	}
	phone := f.phone
	f.code = code
	f.mu.Unlock()

	if len(code) != f.cfg.CodeLength || !allDigits(code) {
		f.setError("enter the " + strconv.Itoa(f.cfg.CodeLength) + "-digit code")
		return model.UserInfo{}, ErrCodeInvalid
	}

	var resp otpVerifyResponse
	err := f.cfg.Transport.Post(ctx, "/api/Account/phone-otp/verify", otpVerifyRequest{PhoneNumber: phone, Code: code}, &resp)
	if err != nil {
		f.cfg.Recorder.Inc(telemetry.MetricOTPFailed)
		f.setError(errMessage(err))
		return model.UserInfo{}, err
	}
	if !resp.Success || resp.AccessToken == "" {
		f.cfg.Recorder.Inc(telemetry.MetricOTPFailed)
		f.setError(resp.Error)
		return model.UserInfo{}, f.rejection(resp.Error)
	}

	if err := f.cfg.Tokens.SetTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		return model.UserInfo{}, err
	}

	user := buildUser(resp.User, phone)
	if err := f.cfg.Tokens.SaveUser(user); err != nil {
		return model.UserInfo{}, err
	}

	f.cfg.Recorder.Inc(telemetry.MetricOTPVerified)
	f.cfg.Audit.Emit(ctx, audit.Event{
		Timestamp: time.Now(),
		Type:      audit.EventOTPVerified,
		UserID:    user.ID,
		Phone:     phone,
		Region:    f.cfg.Region().Code,
	})
	f.cfg.Logger.Info().Int64("user_id", user.ID).Msg("otp verified")

	if f.cfg.Notifier != nil {
		f.cfg.Notifier.NotifyLogin(user)
	}

	f.Reset()
	return user, nil
}

// ResendOTP clears the entered code and re-requests a code for the captured
// phone number. A no-op while the countdown is running.
func (f *Flow) ResendOTP(ctx context.Context) error {
	f.mu.Lock()
	if f.step != StepOTP {
		f.mu.Unlock()
		return ErrWrongStep
	}
	if f.countdownLocked() > 0 {
		f.lastError = "please wait before requesting a new code"
		f.mu.Unlock()
		return ErrCooldownActive
	}
	f.code = ""
	phone := f.phone
	f.mu.Unlock()

	return f.RequestOTP(ctx, phone)
}

// GoBack returns to StepPhone, clearing the code and error but preserving
// the phone number.
func (f *Flow) GoBack() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepOTP {
		return
	}
	f.step = StepPhone
	f.code = ""
	f.lastError = ""
}

// Reset hard-resets the flow to its initial state.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepPhone
	f.phone = ""
	f.code = ""
	f.isNewUser = false
	f.resendDeadline = time.Time{}
	f.lastError = ""
}

func (f *Flow) setError(message string) {
	if message == "" {
		message = "something went wrong, please try again"
	}
	f.mu.Lock()
	f.lastError = message
	f.mu.Unlock()
}

func (f *Flow) rejection(message string) error {
	if message == "" {
		return ErrRequestRejected
	}
	return fmt.Errorf("%w: %s", ErrRequestRejected, message)
}

// buildUser fills the gaps a sparse verify response leaves: username and
// display name default to the phone number, roles to User, active to true.
func buildUser(u *verifyUser, phone string) model.UserInfo {
	user := model.UserInfo{IsActive: true}
	if u != nil {
		user.ID = u.ID
		user.Username = u.Username
		user.DisplayName = u.DisplayName
		user.Roles = u.Roles
		if u.IsActive != nil {
			user.IsActive = *u.IsActive
		}
	}
	if user.Username == "" {
		user.Username = phone
	}
	if user.DisplayName == "" {
		user.DisplayName = phone
	}
	if len(user.Roles) == 0 {
		user.Roles = []string{model.RoleUser}
	}
	return user
}

func parseWaitSeconds(message string) int {
	match := waitPattern.FindStringSubmatch(message)
	if len(match) != 2 {
		return 0
	}
	secs, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return secs
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// errMessage prefers the backend's normalized message over Go error text.
func errMessage(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "network error, please try again"
}
