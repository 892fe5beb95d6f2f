// package services defines interface Service for the hosting platform API
package services

import (
	"context"

	"github.com/desertthunder/teammirror/internal/models"
)

// Service defines the remote operations the migration pipeline consumes. All
// operations are independent network calls that may fail on their own; none are
// retried here. Idempotency-key support would live behind this interface.
type Service interface {
	// ListTeams enumerates every team in the organization, including parent
	// references resolved to slugs.
	ListTeams(ctx context.Context, org string) ([]models.Team, error)

	// TeamIdPGroups returns the identity-provider groups mapped to a team.
	// Returns an error wrapping shared.ErrTeamNotFound when the mapping
	// endpoint reports the team (or the feature) absent.
	TeamIdPGroups(ctx context.Context, org, slug string) ([]models.IdPGroup, error)

	// ListTeamMembers returns all member logins of a team. The bulk listing
	// carries logins only; roles require TeamRole per member.
	ListTeamMembers(ctx context.Context, org, slug string) ([]string, error)

	// TeamRole returns one user's role in a team.
	TeamRole(ctx context.Context, org, slug, username string) (models.Role, error)

	// CreateTeam creates a team. A non-zero parentID nests the new team under
	// an existing one.
	CreateTeam(ctx context.Context, org string, team models.Team, parentID int64) (*RemoteTeam, error)

	// UpdateTeam updates an existing team's name, description and privacy by slug.
	UpdateTeam(ctx context.Context, org string, team models.Team) (*RemoteTeam, error)

	// TeamBySlug resolves a team's server-assigned identifier.
	TeamBySlug(ctx context.Context, org, slug string) (*RemoteTeam, error)

	// UpsertMembership adds a user to a team with the given role, or updates
	// the role if the membership already exists (PUT semantics).
	UpsertMembership(ctx context.Context, org, slug, username string, role models.Role) error

	// Name returns a human-readable name for the instance (e.g. its host).
	Name() string
}

// RemoteTeam is a team as known to the target instance, carrying the
// server-assigned identifier child-team creation depends on.
type RemoteTeam struct {
	ID   int64
	Slug string
	Name string
}
