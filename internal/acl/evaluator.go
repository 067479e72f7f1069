package acl

import (
	"context"
	"fmt"
)

// Evaluator answers access questions against policies.
type Evaluator struct {
	groups *Registry
}

// NewEvaluator builds an evaluator. A nil registry uses the built-in group kinds.
func NewEvaluator(groups *Registry) *Evaluator {
	if groups == nil {
		groups = NewRegistry()
	}
	return &Evaluator{groups: groups}
}

// Evaluate reports whether userID may exercise requested on an object carrying policy.
// An empty userID is an anonymous caller. Rules whose group cannot be resolved grant nothing.
func (e *Evaluator) Evaluate(ctx context.Context, policy *Policy, userID string, requested Permission) (bool, error) {
	if policy == nil {
		return false, nil
	}
	if policy.Visibility == VisibilityPublic && requested == PermissionRead {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}
	if policy.Owner == userID {
		return true, nil
	}

	for _, rule := range policy.Rules {
		if !Covers(rule.Permission, requested) {
			continue
		}
		group, err := e.groups.Resolve(rule.Group)
		if err != nil {
			// fail closed
			continue
		}
		member, err := group.HasMember(ctx, userID)
		if err != nil {
			return false, fmt.Errorf("resolve %s group membership: %w", rule.Group.Type, err)
		}
		if member {
			return true, nil
		}
	}
	return false, nil
}
