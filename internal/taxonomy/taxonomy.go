// Package taxonomy holds the branch → role → required-skills mapping the
// scoring engine resolves against. A Taxonomy is validated once at
// construction and never mutated afterwards.
package taxonomy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	apperrors "rolefit/internal/errors"
	"rolefit/internal/normalize"
)

var (
	// ErrUnknownBranch is returned when a branch is not in the taxonomy.
	ErrUnknownBranch = errors.New("unknown branch")
	// ErrUnknownRole is returned when a (branch, role) pair is not in the taxonomy.
	ErrUnknownRole = errors.New("unknown role")
	// ErrInvalidEntry is returned for a malformed taxonomy definition or an
	// empty required-skill list.
	ErrInvalidEntry = errors.New("invalid taxonomy entry")
)

// Definition is the ordered, serializable shape of a taxonomy.
type Definition struct {
	Branches []BranchDef `yaml:"branches" json:"branches"`
}

// BranchDef groups the roles of one branch.
type BranchDef struct {
	Name  string    `yaml:"name" json:"name"`
	Roles []RoleDef `yaml:"roles" json:"roles"`
}

// RoleDef lists the required skills of one role, in priority order.
type RoleDef struct {
	Name   string   `yaml:"name" json:"name"`
	Skills []string `yaml:"skills" json:"skills"`
}

// RoleProfile is a resolved role with its required skills.
type RoleProfile struct {
	Branch string   `json:"branch"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

type branch struct {
	name  string
	roles []string
	// keyed by folded role name
	profiles map[string]RoleProfile
}

// Taxonomy is an immutable, validated skill taxonomy.
type Taxonomy struct {
	order    []string
	branches map[string]*branch
}

// Source supplies the taxonomy currently in effect.
type Source interface {
	Current() *Taxonomy
}

// Current lets a fixed Taxonomy act as its own Source.
func (t *Taxonomy) Current() *Taxonomy { return t }

// New validates def and builds a Taxonomy from it. Skill tokens are trimmed
// and lowercased; branch and role names are trimmed.
func New(def Definition) (*Taxonomy, error) {
	if len(def.Branches) == 0 {
		return nil, invalidEntry("taxonomy defines no branches")
	}

	t := &Taxonomy{branches: make(map[string]*branch, len(def.Branches))}

	for _, bd := range def.Branches {
		name := strings.TrimSpace(bd.Name)
		if name == "" {
			return nil, invalidEntry("branch name is empty")
		}
		key := fold(name)
		if _, dup := t.branches[key]; dup {
			return nil, invalidEntry("duplicate branch").WithContext("branch", name)
		}
		if len(bd.Roles) == 0 {
			return nil, invalidEntry("branch defines no roles").WithContext("branch", name)
		}

		b := &branch{name: name, profiles: make(map[string]RoleProfile, len(bd.Roles))}
		for _, rd := range bd.Roles {
			profile, err := buildProfile(name, rd)
			if err != nil {
				return nil, err
			}
			rkey := fold(profile.Role)
			if _, dup := b.profiles[rkey]; dup {
				return nil, invalidEntry("duplicate role").
					WithContext("branch", name).
					WithContext("role", profile.Role)
			}
			b.roles = append(b.roles, profile.Role)
			b.profiles[rkey] = profile
		}

		t.order = append(t.order, name)
		t.branches[key] = b
	}

	return t, nil
}

// MustNew is like New but panics on an invalid definition. Meant for
// compiled-in taxonomies.
func MustNew(def Definition) *Taxonomy {
	t, err := New(def)
	if err != nil {
		panic(err)
	}
	return t
}

func buildProfile(branchName string, rd RoleDef) (RoleProfile, error) {
	role := strings.TrimSpace(rd.Name)
	if role == "" {
		return RoleProfile{}, invalidEntry("role name is empty").WithContext("branch", branchName)
	}
	if len(rd.Skills) == 0 {
		return RoleProfile{}, invalidEntry("role has no required skills").
			WithContext("branch", branchName).
			WithContext("role", role)
	}

	skills := make([]string, 0, len(rd.Skills))
	for i, raw := range rd.Skills {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			return RoleProfile{}, invalidEntry("skill token is empty").
				WithContext("branch", branchName).
				WithContext("role", role).
				WithContext("index", i)
		}
		// Resume text is normalized before matching, so a token that
		// normalization would rewrite can never be found.
		if normalized := normalize.Normalize(token); normalized != token {
			return RoleProfile{}, invalidEntry("skill token does not survive normalization").
				WithContext("branch", branchName).
				WithContext("role", role).
				WithContext("skill", token).
				WithContext("normalized", normalized)
		}
		if slices.Contains(skills, token) {
			return RoleProfile{}, invalidEntry("duplicate skill").
				WithContext("branch", branchName).
				WithContext("role", role).
				WithContext("skill", token)
		}
		skills = append(skills, token)
	}

	return RoleProfile{Branch: branchName, Role: role, Skills: skills}, nil
}

// ListBranches returns branch names in definition order.
func (t *Taxonomy) ListBranches() []string {
	return slices.Clone(t.order)
}

// ListRoles returns the role names of a branch in definition order.
func (t *Taxonomy) ListRoles(branchName string) ([]string, error) {
	b, err := t.lookupBranch(branchName)
	if err != nil {
		return nil, err
	}
	return slices.Clone(b.roles), nil
}

// RequiredSkills returns the required skills of a role in priority order.
func (t *Taxonomy) RequiredSkills(branchName, role string) ([]string, error) {
	p, err := t.Profile(branchName, role)
	if err != nil {
		return nil, err
	}
	return p.Skills, nil
}

// Profile resolves a (branch, role) pair. Names match case-insensitively;
// the returned profile carries the canonical spelling.
func (t *Taxonomy) Profile(branchName, role string) (RoleProfile, error) {
	b, err := t.lookupBranch(branchName)
	if err != nil {
		return RoleProfile{}, err
	}
	p, ok := b.profiles[fold(role)]
	if !ok {
		return RoleProfile{}, apperrors.NewNotFoundError(apperrors.ErrCodeUnknownRole,
			fmt.Sprintf("role %q is not defined for branch %q", role, b.name), ErrUnknownRole).
			WithContext("branch", b.name).
			WithContext("role", role)
	}
	p.Skills = slices.Clone(p.Skills)
	return p, nil
}

// Definition returns the taxonomy in its serializable form.
func (t *Taxonomy) Definition() Definition {
	def := Definition{Branches: make([]BranchDef, 0, len(t.order))}
	for _, name := range t.order {
		b := t.branches[fold(name)]
		bd := BranchDef{Name: b.name}
		for _, role := range b.roles {
			p := b.profiles[fold(role)]
			bd.Roles = append(bd.Roles, RoleDef{Name: p.Role, Skills: slices.Clone(p.Skills)})
		}
		def.Branches = append(def.Branches, bd)
	}
	return def
}

func (t *Taxonomy) lookupBranch(name string) (*branch, error) {
	b, ok := t.branches[fold(name)]
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCodeUnknownBranch,
			fmt.Sprintf("branch %q is not defined", name), ErrUnknownBranch).
			WithContext("branch", name)
	}
	return b, nil
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func invalidEntry(msg string) *apperrors.AppError {
	return apperrors.NewConfigError(apperrors.ErrCodeInvalidTaxonomyEntry, msg, ErrInvalidEntry)
}
