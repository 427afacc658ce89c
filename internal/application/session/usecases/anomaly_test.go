package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/domain/session"
	"bizhub/internal/infrastructure/tenancy"
)

func findingTypes(findings []session.Finding) []session.FindingType {
	out := make([]session.FindingType, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Type)
	}
	return out
}

func newDetector(clock *testClock) *AnomalyDetector {
	return NewAnomalyDetector(tenancy.NewRepositories(), AnomalyDetectorConfig{
		RapidChangeWindow: 60 * time.Minute,
	}, clock.Now)
}

// login creates the session and inspects it the way the login interceptor does.
func login(t *testing.T, ctx context.Context, m *SessionManager, d *AnomalyDetector, userID uint, id string, meta session.RequestMeta) []session.Finding {
	t.Helper()
	_, err := m.CreateSession(ctx, userID, id, meta)
	require.NoError(t, err)
	findings, err := d.Detect(ctx, userID, meta, id)
	require.NoError(t, err)
	return findings
}

func TestAnomalyDetector_FirstLoginHasNoFindings(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()

	findings := login(t, ctx, newManager(clock), newDetector(clock), 1, "s1",
		session.RequestMeta{IPAddress: "192.168.1.1", UserAgent: desktopUA})
	assert.Empty(t, findings)
}

func TestAnomalyDetector_NewIPWithinWindow(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m, d := newManager(clock), newDetector(clock)

	login(t, ctx, m, d, 1, "s1", session.RequestMeta{IPAddress: "192.168.1.1", UserAgent: desktopUA})
	clock.Advance(30 * time.Minute)
	findings := login(t, ctx, m, d, 1, "s2", session.RequestMeta{IPAddress: "10.0.0.1", UserAgent: desktopUA})

	assert.Equal(t, []session.FindingType{session.FindingNewIP, session.FindingRapidLocationChange}, findingTypes(findings))

	rapid := findings[1]
	assert.Equal(t, session.SeverityHigh, rapid.Severity)
	assert.Equal(t, "192.168.1.1", rapid.Details["previous_ip"])
	assert.Equal(t, "10.0.0.1", rapid.Details["current_ip"])
	assert.Equal(t, 30, rapid.Details["minutes_between"])
	assert.True(t, session.HasHighSeverity(findings))
}

func TestAnomalyDetector_NewIPOutsideWindow(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m, d := newManager(clock), newDetector(clock)

	login(t, ctx, m, d, 1, "s1", session.RequestMeta{IPAddress: "192.168.1.1", UserAgent: desktopUA})
	clock.Advance(3 * time.Hour)
	findings := login(t, ctx, m, d, 1, "s2", session.RequestMeta{IPAddress: "10.0.0.1", UserAgent: desktopUA})

	assert.Equal(t, []session.FindingType{session.FindingNewIP}, findingTypes(findings))
	assert.Equal(t, session.SeverityMedium, findings[0].Severity)
}

func TestAnomalyDetector_NewDevice(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m, d := newManager(clock), newDetector(clock)

	login(t, ctx, m, d, 1, "s1", session.RequestMeta{IPAddress: "192.168.1.1", UserAgent: desktopUA})
	clock.Advance(2 * time.Hour)
	findings := login(t, ctx, m, d, 1, "s2", session.RequestMeta{IPAddress: "192.168.1.1", UserAgent: iphoneUA})

	require.Equal(t, []session.FindingType{session.FindingNewDevice}, findingTypes(findings))
	assert.Equal(t, "mobile", findings[0].Details["device_type"])
}

func TestAnomalyDetector_KnownOriginIsQuiet(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m, d := newManager(clock), newDetector(clock)

	meta := session.RequestMeta{IPAddress: "192.168.1.1", UserAgent: desktopUA}
	login(t, ctx, m, d, 1, "s1", meta)
	clock.Advance(10 * time.Minute)
	assert.Empty(t, login(t, ctx, m, d, 1, "s2", meta))
}

func TestAnomalyDetector_HistoryIsPerUser(t *testing.T) {
	env := newTenantEnv(t, "acme")
	ctx := env.ctx(t, "acme")
	clock := newTestClock()
	m, d := newManager(clock), newDetector(clock)

	login(t, ctx, m, d, 1, "s1", session.RequestMeta{IPAddress: "192.168.1.1", UserAgent: desktopUA})
	clock.Advance(5 * time.Minute)
	assert.Empty(t, login(t, ctx, m, d, 2, "s2", session.RequestMeta{IPAddress: "10.0.0.1", UserAgent: desktopUA}))
}
