package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/config"
	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/email"
	"github.com/nexusshop/orderapi/internal/repository"
	"github.com/nexusshop/orderapi/internal/resend"
)

const bodyPreviewLength = 200

// EmailProvider delivers rendered emails
type EmailProvider interface {
	Send(ctx context.Context, sendReq resend.SendRequest) (*resend.SendResponse, error)
}

// EmailService renders templated notifications, logs every attempt and
// hands delivery to the provider
type EmailService struct {
	cfg      *config.Config
	repos    *repository.Repositories
	provider EmailProvider
	logger   *zap.Logger
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, repos *repository.Repositories, provider EmailProvider, logger *zap.Logger) *EmailService {
	return &EmailService{
		cfg:      cfg,
		repos:    repos,
		provider: provider,
		logger:   logger,
	}
}

// Send renders and dispatches one templated email. Without a provider
// key the send is logged as delivered in dev mode so local flows work
// end to end without an account.
func (s *EmailService) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	data := req.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	if _, ok := data["shop_name"]; !ok {
		data["shop_name"] = s.cfg.Shop.Name
	}

	// Unknown templates fail before any log row is written
	subject, html, err := email.Render(req.Template, data)
	if err != nil {
		return nil, err
	}
	if req.Subject != "" {
		subject = req.Subject
	}

	entry := &domain.EmailLogEntry{
		Recipient:   req.To,
		Template:    req.Template,
		Subject:     subject,
		BodyPreview: previewOf(html),
		Status:      domain.EmailStatusQueued,
	}
	if err := s.repos.EmailLog.Create(ctx, entry); err != nil {
		return nil, err
	}

	if s.cfg.Resend.APIKey == "" {
		if err := s.repos.EmailLog.MarkSent(ctx, entry.ID, "dev-mode"); err != nil {
			return nil, err
		}
		s.logger.Info("Email provider not configured, logged without delivery",
			zap.String("recipient", req.To),
			zap.String("template", req.Template),
		)
		return &SendEmailResult{MessageID: "dev-mode", DevMode: true}, nil
	}

	resp, err := s.provider.Send(ctx, resend.SendRequest{
		From:    s.cfg.Shop.FromEmail,
		To:      []string{req.To},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		if markErr := s.repos.EmailLog.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
			s.logger.Error("Failed to mark email log entry failed", zap.Error(markErr))
		}
		return nil, err
	}

	if err := s.repos.EmailLog.MarkSent(ctx, entry.ID, resp.ID); err != nil {
		return nil, err
	}

	return &SendEmailResult{MessageID: resp.ID}, nil
}

func previewOf(html string) string {
	if len(html) <= bodyPreviewLength {
		return html
	}
	return html[:bodyPreviewLength]
}
