// Package authorization decides whether a principal may perform an action on
// an HTTP route.
package authorization

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/orris-inc/poolkeeper/internal/shared/config"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

var (
	//go:embed rbac_model.conf
	defaultModel string
	//go:embed rbac_policy.csv
	defaultPolicy string
)

// Gate authorizes a principal, optionally acting in a role, to perform action
// on object.
type Gate interface {
	Allow(principal, role, object, action string) (bool, error)
}

// AllowAll is the gate used when authorization is disabled.
type AllowAll struct{}

func (AllowAll) Allow(string, string, string, string) (bool, error) { return true, nil }

// Enforcer is a casbin-backed Gate.
type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewGate returns AllowAll when authorization is disabled, otherwise a casbin
// enforcer loaded from the configured files or the built-in policy.
func NewGate(cfg config.AuthorizationConfig, log logger.Interface) (Gate, error) {
	if !cfg.Enabled {
		return AllowAll{}, nil
	}
	return NewEnforcer(cfg.ModelPath, cfg.PolicyPath, log)
}

// NewEnforcer loads a model and policy from files. Empty paths fall back to
// the built-in RBAC model and policy.
func NewEnforcer(modelPath, policyPath string, log logger.Interface) (*Enforcer, error) {
	var (
		m   model.Model
		err error
	)
	if modelPath != "" {
		m, err = model.NewModelFromFile(modelPath)
	} else {
		m, err = model.NewModelFromString(defaultModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var e *casbin.Enforcer
	if policyPath != "" {
		e, err = casbin.NewEnforcer(m, policyPath)
	} else {
		e, err = casbin.NewEnforcer(m, stringadapter.NewAdapter(strings.TrimSpace(defaultPolicy)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	log.Infow("authorization enabled",
		"model_path", modelPath,
		"policy_path", policyPath,
		"policies", len(mustPolicy(e)),
	)
	return &Enforcer{enforcer: e, logger: log}, nil
}

// Allow checks the principal first, then the role it claims.
func (e *Enforcer) Allow(principal, role, object, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, subject := range []string{principal, role} {
		if subject == "" {
			continue
		}
		allowed, err := e.enforcer.Enforce(subject, object, action)
		if err != nil {
			e.logger.Errorw("permission check failed",
				"error", err,
				"subject", subject,
				"object", object,
				"action", action,
			)
			return false, fmt.Errorf("permission check failed: %w", err)
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// AddRoleForPrincipal grants role to principal in memory.
func (e *Enforcer) AddRoleForPrincipal(principal, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddRoleForUser(principal, role); err != nil {
		return fmt.Errorf("failed to add role for principal: %w", err)
	}
	return nil
}

func mustPolicy(e *casbin.Enforcer) [][]string {
	p, err := e.GetPolicy()
	if err != nil {
		return nil
	}
	return p
}
