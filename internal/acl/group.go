package acl

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrUnknownGroupType is returned when no factory is registered for a group kind.
var ErrUnknownGroupType = errors.New("unknown access group type")

// AccessGroup is a resolvable set of caller identities.
type AccessGroup interface {
	HasMember(ctx context.Context, userID string) (bool, error)
}

// GroupFactory builds the group addressed by a rule's group id.
type GroupFactory func(id string) (AccessGroup, error)

// Registry maps group kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[GroupType]GroupFactory
}

// NewRegistry returns a registry with the built-in USER_LIST and EMAIL_DOMAIN kinds.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[GroupType]GroupFactory)}
	r.Register(GroupUserList, NewUserListGroup)
	r.Register(GroupEmailDomain, NewEmailDomainGroup)
	return r
}

// Register installs or replaces the factory for a kind.
func (r *Registry) Register(kind GroupType, factory GroupFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Resolve builds the access group for g.
func (r *Registry) Resolve(g Group) (AccessGroup, error) {
	r.mu.RLock()
	factory, ok := r.factories[g.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownGroupType
	}
	return factory(g.ID)
}

// UserListGroup contains an explicit list of identities. Its id is a comma-separated list.
type UserListGroup struct {
	members map[string]struct{}
}

// NewUserListGroup parses a comma-separated identity list.
func NewUserListGroup(id string) (AccessGroup, error) {
	g := &UserListGroup{members: make(map[string]struct{})}
	for _, member := range strings.Split(id, ",") {
		if member = strings.TrimSpace(member); member != "" {
			g.members[member] = struct{}{}
		}
	}
	return g, nil
}

func (g *UserListGroup) HasMember(_ context.Context, userID string) (bool, error) {
	_, ok := g.members[userID]
	return ok, nil
}

// EmailDomainGroup contains every identity that is an email address at one domain.
type EmailDomainGroup struct {
	suffix string
}

// NewEmailDomainGroup builds a group for the domain in id ("example.com" or "@example.com").
func NewEmailDomainGroup(id string) (AccessGroup, error) {
	domain := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(id), "@"))
	if domain == "" {
		return nil, errors.New("email domain group requires a domain")
	}
	return &EmailDomainGroup{suffix: "@" + domain}, nil
}

func (g *EmailDomainGroup) HasMember(_ context.Context, userID string) (bool, error) {
	userID = strings.ToLower(userID)
	return len(userID) > len(g.suffix) && strings.HasSuffix(userID, g.suffix), nil
}
