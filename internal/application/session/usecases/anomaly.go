package usecases

import (
	"context"
	"fmt"
	"time"

	"bizhub/internal/domain/session"
	"bizhub/internal/shared/biztime"
)

// AnomalyDetectorConfig bounds how much history a login is compared with.
type AnomalyDetectorConfig struct {
	LookbackLimit     int
	LookbackDays      int
	RapidChangeWindow time.Duration
}

func (c AnomalyDetectorConfig) withDefaults() AnomalyDetectorConfig {
	if c.LookbackLimit <= 0 {
		c.LookbackLimit = 10
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = 30
	}
	if c.RapidChangeWindow <= 0 {
		c.RapidChangeWindow = 60 * time.Minute
	}
	return c
}

// AnomalyDetector compares a login against the user's other recent sessions.
// It only reads.
type AnomalyDetector struct {
	sessions session.RepositoryProvider
	cfg      AnomalyDetectorConfig
	clock    biztime.Clock
}

func NewAnomalyDetector(sessions session.RepositoryProvider, cfg AnomalyDetectorConfig, clock biztime.Clock) *AnomalyDetector {
	if clock == nil {
		clock = biztime.NowUTC
	}
	return &AnomalyDetector{
		sessions: sessions,
		cfg:      cfg.withDefaults(),
		clock:    clock,
	}
}

// Detect returns no findings for a user without prior sessions. The session
// created by the login being inspected is passed as currentSessionID so it is
// not mistaken for history.
func (d *AnomalyDetector) Detect(ctx context.Context, userID uint, meta session.RequestMeta, currentSessionID string) ([]session.Finding, error) {
	repo, err := d.sessions.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	now := d.clock()
	since := now.AddDate(0, 0, -d.cfg.LookbackDays)
	history, err := repo.ListRecentByUser(ctx, userID, since, d.cfg.LookbackLimit, currentSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	if len(history) == 0 {
		return nil, nil
	}

	device := session.ParseUserAgent(meta.UserAgent)
	knownIPs := make(map[string]struct{}, len(history))
	knownDevices := make(map[session.DeviceType]struct{}, 4)
	for _, s := range history {
		knownIPs[s.IPAddress] = struct{}{}
		knownDevices[s.DeviceType] = struct{}{}
	}

	var findings []session.Finding

	if _, ok := knownIPs[meta.IPAddress]; !ok {
		findings = append(findings, session.Finding{
			Type:     session.FindingNewIP,
			Message:  fmt.Sprintf("Login from new IP address: %s", meta.IPAddress),
			Severity: session.SeverityMedium,
			Details:  map[string]interface{}{"ip_address": meta.IPAddress},
		})
	}

	if _, ok := knownDevices[device.Type]; !ok {
		findings = append(findings, session.Finding{
			Type:     session.FindingNewDevice,
			Message:  fmt.Sprintf("Login from new device type: %s", device.Type),
			Severity: session.SeverityMedium,
			Details: map[string]interface{}{
				"device_type": string(device.Type),
				"device_name": device.Name,
			},
		})
	}

	// history is newest first, so the first match is the closest login
	for _, s := range history {
		elapsed := now.Sub(s.CreatedAt)
		if elapsed > d.cfg.RapidChangeWindow {
			break
		}
		if s.IPAddress == meta.IPAddress {
			continue
		}
		findings = append(findings, session.Finding{
			Type:     session.FindingRapidLocationChange,
			Message:  "Login from a different IP address shortly after a previous login",
			Severity: session.SeverityHigh,
			Details: map[string]interface{}{
				"previous_ip":     s.IPAddress,
				"current_ip":      meta.IPAddress,
				"minutes_between": int(elapsed / time.Minute),
			},
		})
		break
	}

	return findings, nil
}
