// GitHub-style REST implementation of [Service]
//
// Endpoint shapes based on https://docs.github.com/en/rest/teams
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultBaseURL targets the public API. Enterprise instances override it in
// configuration.
const DefaultBaseURL = "https://api.github.com"

const perPage = 100

type githubTeam struct {
	ID          int64       `json:"id"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Privacy     string      `json:"privacy"`
	Permission  string      `json:"permission"`
	Parent      *githubTeam `json:"parent"`
	LDAPDN      string      `json:"ldap_dn"`
}

type githubMember struct {
	Login string `json:"login"`
}

type githubMembership struct {
	Role  string `json:"role"`
	State string `json:"state"`
}

type githubGroup struct {
	GroupID          string `json:"group_id"`
	GroupName        string `json:"group_name"`
	GroupDescription string `json:"group_description"`
}

type githubGroupList struct {
	Groups []githubGroup `json:"groups"`
}

type createTeamRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Privacy      string `json:"privacy,omitempty"`
	Permission   string `json:"permission,omitempty"`
	ParentTeamID int64  `json:"parent_team_id,omitempty"`
}

type updateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Privacy     string `json:"privacy,omitempty"`
	Permission  string `json:"permission,omitempty"`
}

type putMembershipRequest struct {
	Role string `json:"role"`
}

// GitHubService implements the Service interface against a GitHub-style REST
// API. Uses [oauth2.StaticTokenSource] with a personal access token; no
// interactive authentication flow is involved.
type GitHubService struct {
	baseURL    string
	httpClient *http.Client
}

// NewGitHubService creates a service for the given instance. An empty baseURL
// falls back to [DefaultBaseURL]; a missing token is a configuration error.
func NewGitHubService(baseURL, token string) (*GitHubService, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing API token", shared.ErrMissingCredentials)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})

	return &GitHubService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: oauth2.NewClient(context.Background(), source),
	}, nil
}

func (s *GitHubService) Name() string {
	if u, err := url.Parse(s.baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return s.baseURL
}

// doRequest performs an authenticated HTTP request against the instance.
// A 404 response comes back wrapping shared.ErrTeamNotFound so callers can
// distinguish "absent" from other failures.
func (s *GitHubService) doRequest(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: service has no HTTP client", shared.ErrNotAuthenticated)
	}

	apiURL := s.baseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", shared.ErrTeamNotFound, method, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned status %d", shared.ErrAPIRequest, method, endpoint, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func teamFromWire(gt githubTeam) models.Team {
	team := models.Team{
		Slug:        gt.Slug,
		Name:        gt.Name,
		Description: gt.Description,
		Privacy:     models.Privacy(gt.Privacy),
		Permission:  gt.Permission,
		LDAPDN:      gt.LDAPDN,
	}
	if gt.Parent != nil {
		team.Parent = gt.Parent.Slug
	}
	return team
}

// ListTeams retrieves every team in the organization, following pagination.
func (s *GitHubService) ListTeams(ctx context.Context, org string) ([]models.Team, error) {
	var teams []models.Team

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("/orgs/%s/teams?per_page=%d&page=%d", url.PathEscape(org), perPage, page)

		var batch []githubTeam
		if err := s.doRequest(ctx, "GET", endpoint, nil, &batch); err != nil {
			return nil, err
		}

		for _, gt := range batch {
			teams = append(teams, teamFromWire(gt))
		}

		if len(batch) < perPage {
			break
		}
	}

	return teams, nil
}

// TeamIdPGroups retrieves the identity-provider groups mapped to a team.
func (s *GitHubService) TeamIdPGroups(ctx context.Context, org, slug string) ([]models.IdPGroup, error) {
	endpoint := fmt.Sprintf("/orgs/%s/teams/%s/team-sync/group-mappings", url.PathEscape(org), url.PathEscape(slug))

	var response githubGroupList
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	var groups []models.IdPGroup
	for _, g := range response.Groups {
		groups = append(groups, models.IdPGroup{
			GroupName: g.GroupName,
			GroupID:   g.GroupID,
		})
	}

	return groups, nil
}

// ListTeamMembers retrieves all member logins of a team, following pagination.
func (s *GitHubService) ListTeamMembers(ctx context.Context, org, slug string) ([]string, error) {
	var logins []string

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("/orgs/%s/teams/%s/members?per_page=%d&page=%d",
			url.PathEscape(org), url.PathEscape(slug), perPage, page)

		var batch []githubMember
		if err := s.doRequest(ctx, "GET", endpoint, nil, &batch); err != nil {
			return nil, err
		}

		for _, m := range batch {
			logins = append(logins, m.Login)
		}

		if len(batch) < perPage {
			break
		}
	}

	return logins, nil
}

// TeamRole retrieves one user's role in a team.
func (s *GitHubService) TeamRole(ctx context.Context, org, slug, username string) (models.Role, error) {
	endpoint := fmt.Sprintf("/orgs/%s/teams/%s/memberships/%s",
		url.PathEscape(org), url.PathEscape(slug), url.PathEscape(username))

	var membership githubMembership
	if err := s.doRequest(ctx, "GET", endpoint, nil, &membership); err != nil {
		return "", err
	}

	role, err := models.ParseRole(membership.Role)
	if err != nil {
		return "", fmt.Errorf("user %s in team %s: %w", username, slug, err)
	}

	return role, nil
}

// CreateTeam creates a team in the organization.
func (s *GitHubService) CreateTeam(ctx context.Context, org string, team models.Team, parentID int64) (*RemoteTeam, error) {
	request := createTeamRequest{
		Name:         team.Name,
		Description:  team.Description,
		Privacy:      string(team.Privacy),
		Permission:   team.Permission,
		ParentTeamID: parentID,
	}

	endpoint := fmt.Sprintf("/orgs/%s/teams", url.PathEscape(org))

	var created githubTeam
	if err := s.doRequest(ctx, "POST", endpoint, request, &created); err != nil {
		return nil, err
	}

	return &RemoteTeam{ID: created.ID, Slug: created.Slug, Name: created.Name}, nil
}

// UpdateTeam updates an existing team's attributes by slug.
func (s *GitHubService) UpdateTeam(ctx context.Context, org string, team models.Team) (*RemoteTeam, error) {
	request := updateTeamRequest{
		Name:        team.Name,
		Description: team.Description,
		Privacy:     string(team.Privacy),
		Permission:  team.Permission,
	}

	endpoint := fmt.Sprintf("/orgs/%s/teams/%s", url.PathEscape(org), url.PathEscape(team.Slug))

	var updated githubTeam
	if err := s.doRequest(ctx, "PATCH", endpoint, request, &updated); err != nil {
		return nil, err
	}

	return &RemoteTeam{ID: updated.ID, Slug: updated.Slug, Name: updated.Name}, nil
}

// TeamBySlug resolves a team's server-assigned identifier.
func (s *GitHubService) TeamBySlug(ctx context.Context, org, slug string) (*RemoteTeam, error) {
	endpoint := fmt.Sprintf("/orgs/%s/teams/%s", url.PathEscape(org), url.PathEscape(slug))

	var team githubTeam
	if err := s.doRequest(ctx, "GET", endpoint, nil, &team); err != nil {
		return nil, err
	}

	return &RemoteTeam{ID: team.ID, Slug: team.Slug, Name: team.Name}, nil
}

// UpsertMembership adds a user to a team or updates their role.
func (s *GitHubService) UpsertMembership(ctx context.Context, org, slug, username string, role models.Role) error {
	endpoint := fmt.Sprintf("/orgs/%s/teams/%s/memberships/%s",
		url.PathEscape(org), url.PathEscape(slug), url.PathEscape(username))

	return s.doRequest(ctx, "PUT", endpoint, putMembershipRequest{Role: string(role)}, nil)
}
