// Package sms delivers short text messages (OTP codes, plan notices) to phones.
package sms

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, to, body string) error
	Name() string
}

// ConsoleSender writes messages to the log instead of delivering them.
// It is the development default when no provider is configured.
type ConsoleSender struct {
	logger *zap.Logger
}

func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Send(_ context.Context, to, body string) error {
	s.logger.Info("[DEV MODE] message", zap.String("to", to), zap.String("body", body))
	return nil
}

func (s *ConsoleSender) Name() string { return "console" }

// FallbackSender tries Primary and, on failure, logs and hands the message to
// Fallback.
type FallbackSender struct {
	Primary  Sender
	Fallback Sender
	logger   *zap.Logger
}

func NewFallbackSender(primary, fallback Sender, logger *zap.Logger) *FallbackSender {
	return &FallbackSender{Primary: primary, Fallback: fallback, logger: logger}
}

func (s *FallbackSender) Send(ctx context.Context, to, body string) error {
	err := s.Primary.Send(ctx, to, body)
	if err == nil {
		return nil
	}
	s.logger.Error("message delivery failed, using fallback",
		zap.String("provider", s.Primary.Name()),
		zap.String("fallback", s.Fallback.Name()),
		zap.String("to", to),
		zap.Error(err))
	if ferr := s.Fallback.Send(ctx, to, body); ferr != nil {
		return fmt.Errorf("%s: %w; %s: %v", s.Primary.Name(), err, s.Fallback.Name(), ferr)
	}
	return nil
}

func (s *FallbackSender) Name() string {
	return s.Primary.Name() + "+" + s.Fallback.Name()
}

// OTPMessage is the text delivered for a login code.
func OTPMessage(code string, validMinutes int) string {
	return fmt.Sprintf("Your BharatPrint OTP: %s. Valid for %d minutes.", code, validMinutes)
}

const TrialEndedMessage = "Your BharatPrint trial has ended. You're now on the Free plan (20 docs/month). Upgrade anytime at bharatprint.app/pricing"
