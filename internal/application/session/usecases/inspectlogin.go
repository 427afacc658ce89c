package usecases

import (
	"context"

	"bizhub/internal/domain/session"
	"bizhub/internal/domain/tenant"
	"bizhub/internal/shared/biztime"
	"bizhub/internal/shared/logger"
)

type InspectLoginCommand struct {
	Tenant    *tenant.Tenant
	UserID    uint
	Email     string
	SessionID string
	Meta      session.RequestMeta
}

// InspectLoginUseCase runs anomaly detection for a successful login and hands
// the findings to the notifiers. Failures are logged and never returned: a
// login must not fail because it could not be inspected.
type InspectLoginUseCase struct {
	detector *AnomalyDetector
	notifier AnomalyNotifier
	clock    biztime.Clock
	logger   logger.Interface
}

func NewInspectLoginUseCase(detector *AnomalyDetector, notifier AnomalyNotifier, clock biztime.Clock, logger logger.Interface) *InspectLoginUseCase {
	if clock == nil {
		clock = biztime.NowUTC
	}
	return &InspectLoginUseCase{
		detector: detector,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *InspectLoginUseCase) Execute(ctx context.Context, cmd InspectLoginCommand) []session.Finding {
	findings, err := uc.detector.Detect(ctx, cmd.UserID, cmd.Meta, cmd.SessionID)
	if err != nil {
		uc.logger.Warnw("login anomaly detection failed", "user_id", cmd.UserID, "error", err)
		return nil
	}
	if len(findings) == 0 {
		return nil
	}

	report := AnomalyReport{
		Tenant:    cmd.Tenant,
		UserID:    cmd.UserID,
		Email:     cmd.Email,
		SessionID: cmd.SessionID,
		Meta:      cmd.Meta,
		Device:    session.ParseUserAgent(cmd.Meta.UserAgent),
		Findings:  findings,
		At:        uc.clock(),
	}
	if uc.notifier != nil {
		if err := uc.notifier.Notify(ctx, report); err != nil {
			uc.logger.Warnw("login anomaly notification failed", "user_id", cmd.UserID, "error", err)
		}
	}
	return findings
}
