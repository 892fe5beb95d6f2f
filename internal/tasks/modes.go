package tasks

import "github.com/desertthunder/teammirror/internal/models"

// Capture describes which per-team data an operating mode collects or replays.
type Capture struct {
	Members bool // manual membership records
	IdP     bool // identity-provider group mappings
}

// Resolve decides what to capture for one team given the operating mode and the
// team's observed identity-provider sync status.
//
// Explicit modes ignore sync status entirely. The "all" mode captures mappings
// for every team but only records manual memberships where sync is not enabled:
// an identity provider already owns synced teams' membership, so replaying it
// manually would fight the authority. An unknown status (the sync probe failed)
// is treated like disabled so member data is never silently dropped.
func Resolve(mode models.ExportMode, status models.SyncStatus) Capture {
	switch mode {
	case models.ExportTeamsOnly:
		return Capture{}
	case models.ExportIdPOnly:
		return Capture{IdP: true}
	case models.ExportMembersOnly:
		return Capture{Members: true}
	default:
		return Capture{
			Members: status != models.SyncEnabled,
			IdP:     true,
		}
	}
}

// MirrorSteps decides which replay steps run for an effective mirror mode.
// The mirror phase has no per-team sync status to consult, so the mode alone
// gates the identity-provider report and the membership replay.
func MirrorSteps(mode models.ExportMode) Capture {
	return Resolve(mode, models.SyncDisabled)
}
