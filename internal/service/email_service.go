package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService отправляет транзакционные письма участникам
type EmailService interface {
	// SendReConsentReminder напоминает о необходимости повторного согласия
	SendReConsentReminder(ctx context.Context, toEmail, displayName string, missingCount int, idempotencyKey string) error

	// SendAccessSuspended уведомляет, что доступ приостановлен до согласия
	SendAccessSuspended(ctx context.Context, toEmail, displayName string, idempotencyKey string) error

	// SendBoardDigest отправляет ежедневную сводку правлению с приложением-ростером
	SendBoardDigest(ctx context.Context, toEmail, subject, text string, rosterXLSX []byte) error
}

// NoopEmailService используется, когда рассылка отключена
type NoopEmailService struct{}

func (s *NoopEmailService) SendReConsentReminder(ctx context.Context, toEmail, displayName string, missingCount int, idempotencyKey string) error {
	log.Printf("[EmailService] noop re-consent reminder to=%s missing=%d", toEmail, missingCount)
	return nil
}

func (s *NoopEmailService) SendAccessSuspended(ctx context.Context, toEmail, displayName string, idempotencyKey string) error {
	log.Printf("[EmailService] noop access suspended notice to=%s", toEmail)
	return nil
}

func (s *NoopEmailService) SendBoardDigest(ctx context.Context, toEmail, subject, text string, rosterXLSX []byte) error {
	log.Printf("[EmailService] noop board digest to=%s (%d bytes attachment)", toEmail, len(rosterXLSX))
	return nil
}

// ResendEmailService отправляет письма через Resend REST API
type ResendEmailService struct {
	from   string
	client *resend.Client
}

// NewResendEmailService создает сервис рассылки через Resend
func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendReConsentReminder(ctx context.Context, toEmail, displayName string, missingCount int, idempotencyKey string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Action required: please re-confirm your membership documents",
		Text: fmt.Sprintf(
			"Hi %s,\n\nThere are %d membership document(s) awaiting your consent. "+
				"Please sign them to keep your access active.\n",
			displayName, missingCount),
	}
	return s.send(ctx, params, idempotencyKey)
}

func (s *ResendEmailService) SendAccessSuspended(ctx context.Context, toEmail, displayName string, idempotencyKey string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Your membership access has been paused",
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour access has been paused because a required document "+
				"was not signed before its deadline. Signing it will restore access automatically.\n",
			displayName),
	}
	return s.send(ctx, params, idempotencyKey)
}

func (s *ResendEmailService) SendBoardDigest(ctx context.Context, toEmail, subject, text string, rosterXLSX []byte) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: subject,
		Text:    text,
	}
	if len(rosterXLSX) > 0 {
		params.Attachments = []*resend.Attachment{
			{
				Filename: "roster.xlsx",
				Content:  rosterXLSX,
			},
		}
	}
	return s.send(ctx, params, "")
}

// send выполняет запрос с ретраями на rate limit и сетевые таймауты
func (s *ResendEmailService) send(ctx context.Context, params *resend.SendEmailRequest, idempotencyKey string) error {
	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
