// package formatter reads and writes snapshot documents and renders report formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/shared"
	"github.com/desertthunder/teammirror/internal/tasks"
)

// DefaultSnapshotFile is the snapshot filename used when none is configured.
const DefaultSnapshotFile = "team_snapshot.json"

// WriteSnapshot writes a snapshot document to disk as indented JSON.
func WriteSnapshot(snap *models.Snapshot, path string) (string, error) {
	if path == "" {
		path = DefaultSnapshotFile
	}

	data, err := shared.MarshalJSON(snap, true)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return path, nil
}

// ReadSnapshot loads and validates a snapshot document from disk.
func ReadSnapshot(path string) (*models.Snapshot, error) {
	if path == "" {
		path = DefaultSnapshotFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotMissing, path)
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: malformed snapshot: %v", shared.ErrInvalidInput, err)
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return &snap, nil
}

// MembershipsToCSV renders membership records as CSV with columns: Team, Username, Role
func MembershipsToCSV(memberships []models.Membership) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Team", "Username", "Role"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range memberships {
		record := []string{m.Team, m.Username, string(m.Role)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// IdPReportToMarkdown renders the identity-provider mappings that must be bound
// manually on the target instance as a Markdown checklist.
func IdPReportToMarkdown(mappings []models.IdPGroupMapping) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Identity Provider Group Mappings\n\n")

	if len(mappings) == 0 {
		buf.WriteString("No identity-provider mappings were captured.\n")
		return buf.Bytes()
	}

	buf.WriteString("Group bindings are an administrative action on the target instance.\n")
	buf.WriteString("Bind each group below after the team hierarchy is in place.\n\n")

	for _, mapping := range mappings {
		buf.WriteString(fmt.Sprintf("## %s\n\n", mapping.Team))
		for _, g := range mapping.Groups {
			buf.WriteString(fmt.Sprintf("- [ ] %s (`%s`)\n", g.GroupName, g.GroupID))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// SnapshotToText renders a plain text summary of a snapshot document.
func SnapshotToText(snap *models.Snapshot) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Export mode: %s\n", snap.ExportMode))
	buf.WriteString(fmt.Sprintf("Teams: %d\n", len(snap.Teams)))
	buf.WriteString(fmt.Sprintf("Memberships: %d\n", len(snap.Memberships)))
	buf.WriteString(fmt.Sprintf("Mapped teams: %d\n\n", len(snap.IdPGroups)))

	for i, team := range snap.Teams {
		parent := ""
		if team.HasParent() {
			parent = fmt.Sprintf(" (parent: %s)", team.Parent)
		}
		members := len(snap.MembershipsFor(team.Slug))
		buf.WriteString(fmt.Sprintf("%d. %s [%s]%s: %d members\n", i+1, team.Slug, team.Privacy, parent, members))
	}

	return buf.Bytes()
}

// MirrorResultToText renders a plain text summary of a mirror run.
func MirrorResultToText(result *tasks.MirrorResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Mode: %s\n", result.EffectiveMode))
	buf.WriteString(fmt.Sprintf("Teams created: %d\n", len(result.Created)))
	buf.WriteString(fmt.Sprintf("Teams updated: %d\n", len(result.Updated)))
	buf.WriteString(fmt.Sprintf("Teams skipped: %d\n", len(result.Skipped)))
	buf.WriteString(fmt.Sprintf("Memberships added: %d\n", result.MembershipsAdded))
	buf.WriteString(fmt.Sprintf("Memberships failed: %d\n", result.MembershipsFailed))
	buf.WriteString(fmt.Sprintf("Mappings to bind manually: %d\n", len(result.IdPMappings)))

	if len(result.Warnings) > 0 {
		buf.WriteString("\nWarnings:\n")
		for _, w := range result.Warnings {
			buf.WriteString(fmt.Sprintf("  - %s\n", w))
		}
	}

	return buf.Bytes()
}

// IdPReportResult contains the path of the file created by WriteIdPReport
type IdPReportResult struct {
	File     string
	Mappings int
}

// WriteIdPReport writes the identity-provider mapping report next to the snapshot.
//
// Defaults to idp_mappings.md as the filename.
func WriteIdPReport(mappings []models.IdPGroupMapping, path string) (*IdPReportResult, error) {
	if path == "" {
		path = "idp_mappings.md"
	}

	if err := os.WriteFile(path, IdPReportToMarkdown(mappings), 0644); err != nil {
		return nil, fmt.Errorf("failed to write report file: %w", err)
	}

	return &IdPReportResult{File: path, Mappings: len(mappings)}, nil
}

// WriteMembershipsCSV writes membership records to a CSV file.
//
// Defaults to memberships.csv as the filename.
func WriteMembershipsCSV(memberships []models.Membership, path string) (string, error) {
	if path == "" {
		path = "memberships.csv"
	}

	data, err := MembershipsToCSV(memberships)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}
