package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"saas-pos/internal/apiclient"
	"saas-pos/internal/domain"
)

type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Key identifies a notice independently of its wording.
type Key string

const (
	KeyEmptyCart                Key = "emptyCart"
	KeyCartNotEditable          Key = "cartNotEditable"
	KeyDocTypeARequiresCustomer Key = "docTypeARequiresCustomer"
	KeyConflict                 Key = "conflict"
	KeyNotImplemented           Key = "notImplemented"
	KeyUnauthorized             Key = "unauthorized"
	KeyForbidden                Key = "forbidden"
	KeyPopupBlocked             Key = "popupBlocked"
	KeyGeneric                  Key = "generic"
	KeyCheckoutInProgress       Key = "checkoutInProgress"
	KeyProductRequired          Key = "productRequired"
)

var defaultMessages = map[Key]string{
	KeyEmptyCart:                "The cart is empty.",
	KeyCartNotEditable:          "This cart can no longer be edited.",
	KeyDocTypeARequiresCustomer: "Select a customer to issue a type A invoice.",
	KeyConflict:                 "The cart changed on the server. Review it and try again.",
	KeyNotImplemented:           "This feature is not available yet.",
	KeyUnauthorized:             "Your session has expired. Sign in again.",
	KeyForbidden:                "You are not allowed to do that.",
	KeyPopupBlocked:             "The invoice could not be opened. Check the viewer settings.",
	KeyGeneric:                  "Something went wrong. Try again.",
	KeyCheckoutInProgress:       "A checkout is already in progress.",
	KeyProductRequired:          "Choose a product first.",
}

// Notice is one operator-facing message.
type Notice struct {
	Level   Level
	Key     Key
	Message string
}

func newNotice(level Level, key Key, message string) Notice {
	if message == "" {
		message = defaultMessages[key]
	}
	return Notice{Level: level, Key: key, Message: message}
}

// noticeFor maps err to a notice. Cancellations and malformed responses yield
// none. conflict picks the key used for HTTP 409; the server message, when
// present, replaces its text.
func noticeFor(err error, conflict Key) (Notice, bool) {
	var ve *ValidationError
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, domain.ErrMalformedResponse):
		return Notice{}, false
	case errors.As(err, &ve):
		return newNotice(LevelWarning, ve.Key, ""), true
	case errors.Is(err, ErrPopupBlocked):
		return newNotice(LevelWarning, KeyPopupBlocked, ""), true
	case apiclient.IsConflict(err):
		return newNotice(LevelError, conflict, apiclient.MessageOf(err)), true
	case apiclient.IsNotImplemented(err):
		return newNotice(LevelError, KeyNotImplemented, ""), true
	case apiclient.IsUnauthorized(err):
		return newNotice(LevelError, KeyUnauthorized, ""), true
	case apiclient.IsForbidden(err):
		return newNotice(LevelError, KeyForbidden, ""), true
	}
	return newNotice(LevelError, KeyGeneric, ""), true
}

// fail notifies and logs err, then returns it unchanged.
func (s *Service) fail(op string, err error, conflict Key) error {
	s.report(op, err, conflict, "")
	return err
}

// report notifies err, optionally overriding the notice level.
func (s *Service) report(op string, err error, conflict Key, level Level) {
	switch {
	case errors.Is(err, context.Canceled):
		s.logger.Debug(op+" cancelled", zap.String("branch_id", s.branchID()))
	case errors.Is(err, domain.ErrMalformedResponse):
		s.logger.Error(op+": malformed response", zap.String("branch_id", s.branchID()), zap.Error(err))
	default:
		s.logger.Warn(op+" failed", zap.String("branch_id", s.branchID()), zap.Error(err))
	}
	n, ok := noticeFor(err, conflict)
	if !ok {
		return
	}
	if level != "" {
		n.Level = level
	}
	s.notifier.Notify(n)
}
