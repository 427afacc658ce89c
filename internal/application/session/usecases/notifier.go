package usecases

import (
	"context"
	"fmt"
	"time"

	"bizhub/internal/domain/session"
	"bizhub/internal/domain/tenant"
	"bizhub/internal/infrastructure/email"
	"bizhub/internal/infrastructure/pubsub"
	"bizhub/internal/shared/goroutine"
	"bizhub/internal/shared/logger"
	"bizhub/internal/shared/utils"
)

// AnomalyReport is what notifiers receive for a login that produced findings.
type AnomalyReport struct {
	Tenant    *tenant.Tenant
	UserID    uint
	Email     string
	SessionID string
	Meta      session.RequestMeta
	Device    session.DeviceInfo
	Findings  []session.Finding
	At        time.Time
}

type AnomalyNotifier interface {
	Notify(ctx context.Context, report AnomalyReport) error
}

// LogNotifier writes findings to the application log. High severity findings
// are logged as errors.
type LogNotifier struct {
	logger logger.Interface
}

func NewLogNotifier(logger logger.Interface) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, report AnomalyReport) error {
	for _, f := range report.Findings {
		kv := []interface{}{
			"tenant", report.Tenant.Subdomain,
			"user_id", report.UserID,
			"email", utils.MaskEmail(report.Email),
			"session_id", report.SessionID,
			"type", f.Type,
			"severity", f.Severity,
			"details", f.Details,
		}
		if f.Severity == session.SeverityHigh {
			n.logger.Errorw(f.Message, kv...)
		} else {
			n.logger.Warnw(f.Message, kv...)
		}
	}
	return nil
}

type anomalyPublisher interface {
	Publish(ctx context.Context, event pubsub.AnomalyEvent) error
}

// PubSubNotifier forwards findings to the tenant's anomaly channel.
type PubSubNotifier struct {
	bus anomalyPublisher
}

func NewPubSubNotifier(bus anomalyPublisher) *PubSubNotifier {
	return &PubSubNotifier{bus: bus}
}

func (n *PubSubNotifier) Notify(ctx context.Context, report AnomalyReport) error {
	return n.bus.Publish(ctx, pubsub.AnomalyEvent{
		TenantID:  report.Tenant.ID,
		Subdomain: report.Tenant.Subdomain,
		UserID:    report.UserID,
		SessionID: report.SessionID,
		IPAddress: report.Meta.IPAddress,
		Findings:  report.Findings,
		Timestamp: report.At.Unix(),
	})
}

type anomalyMailer interface {
	SendLoginAnomalyEmail(notice email.LoginAnomalyNotice) error
}

// EmailNotifier mails the account owner in the background; SMTP latency never
// reaches the login response.
type EmailNotifier struct {
	mailer anomalyMailer
	logger logger.Interface
}

func NewEmailNotifier(mailer anomalyMailer, logger logger.Interface) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, logger: logger}
}

func (n *EmailNotifier) Notify(_ context.Context, report AnomalyReport) error {
	if report.Email == "" {
		return nil
	}
	notice := email.LoginAnomalyNotice{
		To:         report.Email,
		TenantName: report.Tenant.Name,
		IPAddress:  report.Meta.IPAddress,
		Device:     report.Device.Name,
		At:         report.At,
		Findings:   report.Findings,
	}
	goroutine.SafeGo(n.logger, "anomaly-email", func() {
		if err := n.mailer.SendLoginAnomalyEmail(notice); err != nil {
			n.logger.Warnw("failed to send login anomaly email", "user_id", report.UserID, "error", err)
		}
	})
	return nil
}

// MultiNotifier calls every notifier and reports the first failure after all
// of them ran.
type MultiNotifier []AnomalyNotifier

func (m MultiNotifier) Notify(ctx context.Context, report AnomalyReport) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, report); err != nil && first == nil {
			first = fmt.Errorf("anomaly notifier %T: %w", n, err)
		}
	}
	return first
}
