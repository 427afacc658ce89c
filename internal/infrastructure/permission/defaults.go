package permission

import (
	"fmt"

	"bizhub/internal/shared/authorization"
)

// Resources and actions checked by the HTTP layer.
const (
	ResourceSession = "session"

	ActionRead    = "read"
	ActionRevoke  = "revoke"
	ActionCleanup = "cleanup"
)

var defaultRoleChain = [][]string{
	{string(authorization.RoleOwner), string(authorization.RoleAdmin)},
	{string(authorization.RoleAdmin), string(authorization.RoleMember)},
	{string(authorization.RoleMember), string(authorization.RoleViewer)},
}

var defaultPolicies = [][]string{
	{string(authorization.RoleViewer), ResourceSession, ActionRead},
	{string(authorization.RoleViewer), ResourceSession, ActionRevoke},
	{string(authorization.RoleAdmin), ResourceSession, ActionCleanup},
}

// SeedDefaults installs the built-in role chain and policies. Existing rows are
// left alone so reruns are harmless.
func (e *Enforcer) SeedDefaults() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, g := range defaultRoleChain {
		if _, err := e.enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return fmt.Errorf("failed to add role link %s -> %s: %w", g[0], g[1], err)
		}
	}

	for _, p := range defaultPolicies {
		if _, err := e.enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			e.logger.Errorw("failed to add default policy",
				"error", err,
				"role", p[0],
				"resource", p[1],
				"action", p[2])
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", p[0], p[1], p[2], err)
		}
	}

	e.logger.Infow("default permissions seeded", "policies", len(defaultPolicies))
	return nil
}
