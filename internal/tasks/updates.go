package tasks

import (
	"fmt"

	"github.com/desertthunder/teammirror/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTeams Phase = iota
	ExportTeam
	ExportMembers
	MaterializeTeam
	ReportIdP
	ReplayMembership
	Warn
)

func (p Phase) String() string {
	switch p {
	case FetchTeams:
		return "fetch_teams"
	case ExportTeam:
		return "export_team"
	case ExportMembers:
		return "export_members"
	case MaterializeTeam:
		return "materialize_team"
	case ReportIdP:
		return "report_idp"
	case ReplayMembership:
		return "replay_membership"
	case Warn:
		return "warn"
	default:
		return ""
	}
}

func fetchTeamsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTeams,
		Step:    1,
		Total:   1,
		Message: "Fetching team list...",
	}
}

func exportTeamUpdate(step, total int, team models.Team) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTeam,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting team: %s", step, total, team.Slug),
		Data:    team,
	}
}

func exportMembersUpdate(step, total int, slug string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportMembers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d members", step, total, slug, count),
	}
}

func createTeamUpdate(step, total int, slug string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MaterializeTeam,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ Created: %s", step, total, slug),
	}
}

func updateTeamUpdate(step, total int, slug string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MaterializeTeam,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ Updated: %s", step, total, slug),
	}
}

func skipTeamUpdate(step, total int, slug string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MaterializeTeam,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ Skipped %s: %v", step, total, slug, err),
	}
}

func reportIdPUpdate(step, total int, mapping models.IdPGroupMapping) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReportIdP,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d identity-provider groups (bind manually)", step, total, mapping.Team, len(mapping.Groups)),
		Data:    mapping,
	}
}

func replayMembershipUpdate(step, total int, m models.Membership) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplayMembership,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s → %s (%s)", step, total, m.Username, m.Team, m.Role),
	}
}

func warnUpdate(msg string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Warn,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}
