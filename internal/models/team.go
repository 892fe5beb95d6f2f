package models

import (
	"fmt"
)

// Privacy is a team's visibility setting on the hosting platform.
type Privacy string

const (
	PrivacyClosed Privacy = "closed" // visible to all org members
	PrivacySecret Privacy = "secret" // visible to members only
)

// Role is a user's role within a team.
type Role string

const (
	RoleMember     Role = "member"
	RoleMaintainer Role = "maintainer"
)

// ParseRole validates and returns a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMember, RoleMaintainer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role %q (must be member or maintainer)", s)
	}
}

// Team represents one team's structure as captured from the source organization.
//
// Slug is the stable unique key. Parent, when non-empty, references another
// Team's slug in the same snapshot (exports always include parents because the
// full team list is enumerated). LDAPDN carries the legacy directory binding
// when the source instance still uses one.
type Team struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Privacy     Privacy `json:"privacy"`
	Permission  string  `json:"permission"`
	Parent      string  `json:"parent,omitempty"`
	LDAPDN      string  `json:"ldap_dn,omitempty"`
}

// HasParent reports whether the team is nested under another team.
func (t Team) HasParent() bool { return t.Parent != "" }

// Membership represents one user's manually managed membership in one team.
// Memberships are only captured for teams whose membership is not driven by an
// identity provider, unless the export mode overrides that.
type Membership struct {
	Team     string `json:"team"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IdPGroup is a single identity-provider group bound to a team.
type IdPGroup struct {
	GroupName string `json:"group_name"`
	GroupID   string `json:"group_id"`
}

// IdPGroupMapping records that a team's membership is authoritative from the
// listed identity-provider groups. Mappings are reported during mirroring, never
// replayed: group binding is an out-of-band administrative action.
type IdPGroupMapping struct {
	Team   string     `json:"team"`
	Groups []IdPGroup `json:"groups"`
}

// ExportMode selects which of {identity-provider mappings, manual memberships}
// the export phase captures per team.
type ExportMode string

const (
	ExportAll         ExportMode = "all"
	ExportIdPOnly     ExportMode = "idp-only"
	ExportMembersOnly ExportMode = "members-only"
	ExportTeamsOnly   ExportMode = "teams-only"
)

// ParseExportMode validates and returns an ExportMode.
func ParseExportMode(s string) (ExportMode, error) {
	switch ExportMode(s) {
	case ExportAll, ExportIdPOnly, ExportMembersOnly, ExportTeamsOnly:
		return ExportMode(s), nil
	default:
		return "", fmt.Errorf("invalid export mode %q (must be all, idp-only, members-only, or teams-only)", s)
	}
}

// MirrorMode selects which replay steps the mirror phase runs. The auto value
// adopts the export_mode recorded in the snapshot; any explicit value overrides it.
type MirrorMode string

const (
	MirrorAuto        MirrorMode = "auto"
	MirrorAll         MirrorMode = "all"
	MirrorIdPOnly     MirrorMode = "idp-only"
	MirrorMembersOnly MirrorMode = "members-only"
	MirrorTeamsOnly   MirrorMode = "teams-only"
)

// ParseMirrorMode validates and returns a MirrorMode.
func ParseMirrorMode(s string) (MirrorMode, error) {
	switch MirrorMode(s) {
	case MirrorAuto, MirrorAll, MirrorIdPOnly, MirrorMembersOnly, MirrorTeamsOnly:
		return MirrorMode(s), nil
	default:
		return "", fmt.Errorf("invalid mirror mode %q (must be auto, all, idp-only, members-only, or teams-only)", s)
	}
}

// Effective resolves the mirror phase's operating mode against the snapshot's
// recorded export mode: auto adopts the recorded mode, anything else wins.
func (m MirrorMode) Effective(recorded ExportMode) ExportMode {
	if m == MirrorAuto {
		return recorded
	}
	return ExportMode(m)
}

// SyncStatus is a team's identity-provider sync state as observed during export.
// Unknown records that the sync query itself failed; the mode resolver decides
// what policy applies to it.
type SyncStatus int

const (
	SyncUnknown SyncStatus = iota
	SyncDisabled
	SyncEnabled
)

func (s SyncStatus) String() string {
	switch s {
	case SyncEnabled:
		return "enabled"
	case SyncDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Snapshot is the portable document produced by the export phase and consumed
// by the mirror phase. It is append-only during export and read-only afterward;
// the mirror phase never mutates it, only the remote target state.
type Snapshot struct {
	Teams       []Team            `json:"teams"`
	Memberships []Membership      `json:"memberships"`
	IdPGroups   []IdPGroupMapping `json:"idp_groups"`
	ExportMode  ExportMode        `json:"export_mode"`
}

// AddTeam appends a team to the snapshot.
func (s *Snapshot) AddTeam(t Team) {
	s.Teams = append(s.Teams, t)
}

// AddMemberships appends membership records to the snapshot.
func (s *Snapshot) AddMemberships(ms ...Membership) {
	s.Memberships = append(s.Memberships, ms...)
}

// AddIdPGroups appends an identity-provider mapping to the snapshot.
func (s *Snapshot) AddIdPGroups(m IdPGroupMapping) {
	s.IdPGroups = append(s.IdPGroups, m)
}

// Team returns the team with the given slug, if present.
func (s *Snapshot) Team(slug string) (Team, bool) {
	for _, t := range s.Teams {
		if t.Slug == slug {
			return t, true
		}
	}
	return Team{}, false
}

// MembershipsFor returns the memberships recorded for a team slug.
func (s *Snapshot) MembershipsFor(slug string) []Membership {
	var out []Membership
	for _, m := range s.Memberships {
		if m.Team == slug {
			out = append(out, m)
		}
	}
	return out
}

// Validate checks snapshot integrity: a valid export mode, non-empty unique
// team slugs, and memberships/mappings that reference captured teams.
func (s *Snapshot) Validate() error {
	if _, err := ParseExportMode(string(s.ExportMode)); err != nil {
		return err
	}

	seen := make(map[string]bool, len(s.Teams))
	for _, t := range s.Teams {
		if t.Slug == "" {
			return fmt.Errorf("team %q has an empty slug", t.Name)
		}
		if seen[t.Slug] {
			return fmt.Errorf("duplicate team slug %q", t.Slug)
		}
		seen[t.Slug] = true
	}

	for _, m := range s.Memberships {
		if !seen[m.Team] {
			return fmt.Errorf("membership for %q references unknown team %q", m.Username, m.Team)
		}
	}
	for _, g := range s.IdPGroups {
		if !seen[g.Team] {
			return fmt.Errorf("identity-provider mapping references unknown team %q", g.Team)
		}
	}

	return nil
}
