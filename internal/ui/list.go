package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/teammirror/internal/models"
)

var (
	_ list.Item = teamItem{}
	_ list.Item = memberItem{}
)

// teamItem wraps [models.Team] to implement [list.Item].
type teamItem struct {
	team    models.Team
	members int
	synced  bool
}

func (i teamItem) FilterValue() string { return i.team.Slug }
func (i teamItem) Title() string       { return i.team.Slug }
func (i teamItem) Description() string {
	desc := fmt.Sprintf("%d members • %s", i.members, i.team.Privacy)
	if i.team.HasParent() {
		desc = fmt.Sprintf("%s • child of %s", desc, i.team.Parent)
	}
	if i.synced {
		desc = fmt.Sprintf("%s • idp-synced", desc)
	}
	return desc
}

// memberItem wraps [models.Membership] to implement [list.Item].
type memberItem struct {
	membership models.Membership
}

func (i memberItem) FilterValue() string { return i.membership.Username }
func (i memberItem) Title() string       { return i.membership.Username }
func (i memberItem) Description() string { return string(i.membership.Role) }
