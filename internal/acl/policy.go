// Package acl decides whether a caller may read or write a stored object.
package acl

import (
	"encoding/json"
	"fmt"
)

// MetadataKey is the object metadata entry holding the JSON-encoded policy.
const MetadataKey = "acl-policy"

// Permission is the level of access requested or granted.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// Visibility controls anonymous read access.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// GroupType tags the kind of access group a rule refers to.
type GroupType string

const (
	GroupUserList    GroupType = "USER_LIST"
	GroupEmailDomain GroupType = "EMAIL_DOMAIN"
)

// Group references an access group by kind and kind-specific id.
type Group struct {
	Type GroupType `json:"type"`
	ID   string    `json:"id"`
}

// Rule grants a permission to the members of a group.
type Rule struct {
	Group      Group      `json:"group"`
	Permission Permission `json:"permission"`
}

// Policy is attached to an object as metadata.
type Policy struct {
	Owner      string     `json:"owner"`
	Visibility Visibility `json:"visibility"`
	Rules      []Rule     `json:"aclRules,omitempty"`
}

// Covers reports whether granted satisfies requested. Write implies read.
func Covers(granted, requested Permission) bool {
	switch requested {
	case PermissionRead:
		return granted == PermissionRead || granted == PermissionWrite
	case PermissionWrite:
		return granted == PermissionWrite
	default:
		return false
	}
}

// Encode renders the policy as the metadata value.
func (p Policy) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode acl policy: %w", err)
	}
	return string(raw), nil
}

// FromMetadata extracts the policy from object metadata. A missing entry yields nil.
func FromMetadata(metadata map[string]string) (*Policy, error) {
	raw, ok := metadata[MetadataKey]
	if !ok || raw == "" {
		return nil, nil
	}
	var p Policy
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode acl policy: %w", err)
	}
	return &p, nil
}
