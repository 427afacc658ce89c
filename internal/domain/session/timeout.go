package session

import "time"

// TimeoutCheck is the outcome of comparing a session's idle time against the
// configured inactivity timeout.
type TimeoutCheck struct {
	IdleMinutes    int
	TimeoutMinutes int
	Expired        bool
	Remaining      time.Duration
}

// CheckTimeout expires a session once its idle time exceeds timeoutMinutes.
// Exactly timeoutMinutes of idleness is still accepted.
func CheckTimeout(s *UserSession, now time.Time, timeoutMinutes int) TimeoutCheck {
	idle := s.IdleMinutes(now)
	check := TimeoutCheck{
		IdleMinutes:    idle,
		TimeoutMinutes: timeoutMinutes,
		Expired:        idle > timeoutMinutes,
	}
	if !check.Expired {
		// the request that passes is recorded as new activity
		check.Remaining = time.Duration(timeoutMinutes) * time.Minute
	}
	return check
}
