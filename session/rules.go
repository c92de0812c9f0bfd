// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/usulan-gedung/models"
)

// DefaultSignInPath is where requests without a valid session are sent.
const DefaultSignInPath = "/auth/signin"

var ErrInvalidRules = errors.New("invalid page rules")

// PageRule restricts a path prefix to a set of roles. When Kinds is set,
// the account must also carry one of those verifier kinds.
type PageRule struct {
	Prefix string                `yaml:"prefix"`
	Roles  []models.Role         `yaml:"roles"`
	Kinds  []models.VerifierKind `yaml:"kinds,omitempty"`
}

func (p PageRule) matches(path string) bool {
	return path == p.Prefix || strings.HasPrefix(path, strings.TrimSuffix(p.Prefix, "/")+"/")
}

func (p PageRule) admits(role models.Role, kind models.VerifierKind) bool {
	if !slices.Contains(p.Roles, role) {
		return false
	}
	return len(p.Kinds) == 0 || slices.Contains(p.Kinds, kind)
}

// Rules maps pages to the roles allowed to view them and each role to
// the page it lands on.
type Rules struct {
	SignIn   string                 `yaml:"signIn"`
	Pages    []PageRule             `yaml:"pages"`
	Defaults map[models.Role]string `yaml:"defaults"`
}

// DefaultRules returns the built-in dashboard layout.
func DefaultRules() *Rules {
	return &Rules{
		SignIn: DefaultSignInPath,
		Pages: []PageRule{
			{Prefix: "/dashboard/admin", Roles: []models.Role{models.RoleSuperAdmin, models.RoleAdmin}},
			{Prefix: "/dashboard/users", Roles: []models.Role{models.RoleSuperAdmin, models.RoleAdmin}},
			{Prefix: "/dashboard/opd", Roles: []models.Role{models.RoleOPD}},
			{Prefix: "/dashboard/usulan", Roles: []models.Role{models.RoleOPD, models.RoleVerifikator, models.RoleBappeda, models.RoleBPKAD}},
			{Prefix: "/dashboard/verifikator", Roles: []models.Role{models.RoleVerifikator}},
			{
				Prefix: "/dashboard/verifikator/bps",
				Roles:  []models.Role{models.RoleVerifikator},
				Kinds:  []models.VerifierKind{models.VerifierADBANG},
			},
			{Prefix: "/dashboard/bappeda", Roles: []models.Role{models.RoleBappeda}},
			{Prefix: "/dashboard/bpkad", Roles: []models.Role{models.RoleBPKAD}},
		},
		Defaults: map[models.Role]string{
			models.RoleSuperAdmin:  "/dashboard/admin",
			models.RoleAdmin:       "/dashboard/admin",
			models.RoleOPD:         "/dashboard/opd",
			models.RoleVerifikator: "/dashboard/verifikator",
			models.RoleBappeda:     "/dashboard/bappeda",
			models.RoleBPKAD:       "/dashboard/bpkad",
		},
	}
}

// LoadRules reads rules from a YAML file and validates them.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules. Unknown fields are rejected.
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if rules.SignIn == "" {
		rules.SignIn = DefaultSignInPath
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Validate checks roles and kinds, and that every role has a default page
// it is itself allowed to view, so redirects always terminate.
func (r *Rules) Validate() error {
	for _, p := range r.Pages {
		if !strings.HasPrefix(p.Prefix, "/") {
			return fmt.Errorf("%w: prefix %q must start with /", ErrInvalidRules, p.Prefix)
		}
		if len(p.Roles) == 0 {
			return fmt.Errorf("%w: prefix %q has no roles", ErrInvalidRules, p.Prefix)
		}
		for _, role := range p.Roles {
			if !role.Valid() {
				return fmt.Errorf("%w: unknown role %q on %q", ErrInvalidRules, role, p.Prefix)
			}
		}
		for _, kind := range p.Kinds {
			if _, err := models.ParseVerifierKind(string(kind)); err != nil || kind == models.VerifierNone {
				return fmt.Errorf("%w: unknown verifier kind %q on %q", ErrInvalidRules, kind, p.Prefix)
			}
		}
	}
	for _, role := range models.AllRoles {
		page, ok := r.Defaults[role]
		if !ok || page == "" {
			return fmt.Errorf("%w: no default page for role %q", ErrInvalidRules, role)
		}
		if rule, found := r.match(page); found && (!slices.Contains(rule.Roles, role) || len(rule.Kinds) > 0) {
			return fmt.Errorf("%w: default page %q does not admit role %q", ErrInvalidRules, page, role)
		}
	}
	return nil
}

// match returns the longest-prefix rule covering path.
func (r *Rules) match(path string) (PageRule, bool) {
	var best PageRule
	found := false
	for _, p := range r.Pages {
		if p.matches(path) && (!found || len(p.Prefix) > len(best.Prefix)) {
			best = p
			found = true
		}
	}
	return best, found
}

// DefaultPage returns the landing page for a role.
func (r *Rules) DefaultPage(role models.Role) string {
	if page, ok := r.Defaults[role]; ok {
		return page
	}
	return r.SignIn
}

// Decide reports whether the account may view path, and where to send
// it when it may not. A path without a rule admits any role.
func (r *Rules) Decide(path string, role models.Role, kind models.VerifierKind) (bool, string) {
	rule, found := r.match(path)
	if !found || rule.admits(role, kind) {
		return true, ""
	}
	return false, r.DefaultPage(role)
}
