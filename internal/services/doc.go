// Package services defines the [Service] interface for the hosting platform's
// organization API and implements it for GitHub-style REST endpoints.
//
// # Service Interface
//
// Both migration phases consume the same abstraction: the exporter only calls the
// read operations (team listing, identity-provider group mappings, member listing,
// per-member role lookup), the mirrorer the write operations (team create/update,
// slug resolution, membership upsert).
//
// # GitHub Implementation
//
// [GitHubService] talks to a GitHub-style REST API ("/orgs/{org}/teams", team-sync
// group mappings, team memberships) on any base URL, so the same client serves
// github.com and self-hosted enterprise instances. Authentication uses a static
// personal access token via [oauth2.StaticTokenSource]; listing endpoints paginate
// transparently.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token configured
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrTeamNotFound] : 404 from the remote API
//
// A 404 is distinguishable with errors.Is so callers can treat "no team-sync
// mapping endpoint" as an empty mapping rather than a failure.
package services
