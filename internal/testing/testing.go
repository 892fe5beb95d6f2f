// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/services"
)

// MockService is a configurable test double for [services.Service]. Unset
// function fields return zero values; every invocation is recorded in call
// order so tests can assert sequencing.
type MockService struct {
	mu    sync.Mutex
	calls []string

	ListTeamsFunc        func(ctx context.Context, org string) ([]models.Team, error)
	TeamIdPGroupsFunc    func(ctx context.Context, org, slug string) ([]models.IdPGroup, error)
	ListTeamMembersFunc  func(ctx context.Context, org, slug string) ([]string, error)
	TeamRoleFunc         func(ctx context.Context, org, slug, username string) (models.Role, error)
	CreateTeamFunc       func(ctx context.Context, org string, team models.Team, parentID int64) (*services.RemoteTeam, error)
	UpdateTeamFunc       func(ctx context.Context, org string, team models.Team) (*services.RemoteTeam, error)
	TeamBySlugFunc       func(ctx context.Context, org, slug string) (*services.RemoteTeam, error)
	UpsertMembershipFunc func(ctx context.Context, org, slug, username string, role models.Role) error
}

func (m *MockService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the recorded invocations in order.
func (m *MockService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockService) ListTeams(ctx context.Context, org string) ([]models.Team, error) {
	m.record("ListTeams " + org)
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc(ctx, org)
	}
	return nil, nil
}

func (m *MockService) TeamIdPGroups(ctx context.Context, org, slug string) ([]models.IdPGroup, error) {
	m.record("TeamIdPGroups " + slug)
	if m.TeamIdPGroupsFunc != nil {
		return m.TeamIdPGroupsFunc(ctx, org, slug)
	}
	return nil, nil
}

func (m *MockService) ListTeamMembers(ctx context.Context, org, slug string) ([]string, error) {
	m.record("ListTeamMembers " + slug)
	if m.ListTeamMembersFunc != nil {
		return m.ListTeamMembersFunc(ctx, org, slug)
	}
	return nil, nil
}

func (m *MockService) TeamRole(ctx context.Context, org, slug, username string) (models.Role, error) {
	m.record("TeamRole " + slug + " " + username)
	if m.TeamRoleFunc != nil {
		return m.TeamRoleFunc(ctx, org, slug, username)
	}
	return models.RoleMember, nil
}

func (m *MockService) CreateTeam(ctx context.Context, org string, team models.Team, parentID int64) (*services.RemoteTeam, error) {
	m.record(fmt.Sprintf("CreateTeam %s parent=%d", team.Slug, parentID))
	if m.CreateTeamFunc != nil {
		return m.CreateTeamFunc(ctx, org, team, parentID)
	}
	return &services.RemoteTeam{ID: 1, Slug: team.Slug, Name: team.Name}, nil
}

func (m *MockService) UpdateTeam(ctx context.Context, org string, team models.Team) (*services.RemoteTeam, error) {
	m.record("UpdateTeam " + team.Slug)
	if m.UpdateTeamFunc != nil {
		return m.UpdateTeamFunc(ctx, org, team)
	}
	return &services.RemoteTeam{ID: 1, Slug: team.Slug, Name: team.Name}, nil
}

func (m *MockService) TeamBySlug(ctx context.Context, org, slug string) (*services.RemoteTeam, error) {
	m.record("TeamBySlug " + slug)
	if m.TeamBySlugFunc != nil {
		return m.TeamBySlugFunc(ctx, org, slug)
	}
	return &services.RemoteTeam{ID: 1, Slug: slug}, nil
}

func (m *MockService) UpsertMembership(ctx context.Context, org, slug, username string, role models.Role) error {
	m.record("UpsertMembership " + slug + " " + username)
	if m.UpsertMembershipFunc != nil {
		return m.UpsertMembershipFunc(ctx, org, slug, username, role)
	}
	return nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
