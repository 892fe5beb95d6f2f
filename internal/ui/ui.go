package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/teammirror/internal/models"
	"github.com/desertthunder/teammirror/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TeamListView ViewState = iota
	MemberListView
	ConfirmView
	MirrorView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.Engine
	snapshot     *models.Snapshot
	org          string
	mode         models.MirrorMode
	width        int
	height       int
	teamList     list.Model
	memberList   list.Model
	selectedTeam *models.Team
	loadSnapshot SnapshotLoader
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.MirrorResult
	err          error
	help         help.Model
	keys         keyMap
}

type snapshotLoadedMsg struct {
	snapshot *models.Snapshot
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

type mirrorCompleteMsg struct {
	result *tasks.MirrorResult
	err    error
}

// SnapshotLoader fetches the snapshot shown in the team list, decoupling the
// model from file layout.
type SnapshotLoader func() (*models.Snapshot, error)

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.Engine, load SnapshotLoader, org string, mode models.MirrorMode) *Model {
	return &Model{
		ctx:          ctx,
		view:         TeamListView,
		engine:       engine,
		org:          org,
		mode:         mode,
		loadSnapshot: load,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by loading the snapshot document.
func (m *Model) Init() tea.Cmd {
	return m.fetchSnapshot()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.teamList.Width() == 0 {
			m.teamList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.memberList.Width() == 0 {
			m.memberList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TeamListView:
			return m.handleTeamListKeys(msg)
		case MemberListView:
			return m.handleMemberListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.snapshot = msg.snapshot
		items := make([]list.Item, len(msg.snapshot.Teams))
		for i, team := range msg.snapshot.Teams {
			items[i] = teamItem{
				team:    team,
				members: len(msg.snapshot.MembershipsFor(team.Slug)),
				synced:  m.teamSynced(team.Slug),
			}
		}
		m.teamList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.teamList.Title = fmt.Sprintf("Snapshot: %d teams", len(msg.snapshot.Teams))
		m.teamList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case mirrorCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case TeamListView:
		return m.renderTeamList()
	case MemberListView:
		return m.renderMemberList()
	case ConfirmView:
		return m.renderConfirm()
	case MirrorView:
		return m.renderMirror()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) teamSynced(slug string) bool {
	for _, mapping := range m.snapshot.IdPGroups {
		if mapping.Team == slug {
			return true
		}
	}
	return false
}

func (m *Model) handleTeamListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "m":
		m.view = ConfirmView
		return m, nil
	case "enter":
		selected := m.teamList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(teamItem); ok {
				m.showMembers(item.team)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.teamList, cmd = m.teamList.Update(msg)
	return m, cmd
}

func (m *Model) handleMemberListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = TeamListView
		return m, nil
	case "enter", "m":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.memberList, cmd = m.memberList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = TeamListView
		return m, nil
	case "y":
		m.view = MirrorView
		return m, m.startMirror()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = TeamListView
		m.selectedTeam = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TeamListView:
		m.teamList, cmd = m.teamList.Update(msg)
	case MemberListView:
		m.memberList, cmd = m.memberList.Update(msg)
	}
	return m, cmd
}

func (m *Model) showMembers(team models.Team) {
	m.selectedTeam = &team

	memberships := m.snapshot.MembershipsFor(team.Slug)
	items := make([]list.Item, len(memberships))
	for i, membership := range memberships {
		items[i] = memberItem{membership: membership}
	}
	m.memberList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.memberList.Title = fmt.Sprintf("Members of '%s'", team.Slug)
	m.memberList.SetSize(m.width-4, m.height-8)
	m.view = MemberListView
}

func (m *Model) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.loadSnapshot()
		return snapshotLoadedMsg{snapshot: snap, err: err}
	}
}

func (m *Model) startMirror() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		result, err := m.engine.Mirror(m.ctx, progress, m.org, m.snapshot, m.mode)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return mirrorCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return mirrorCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderTeamList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.mirror, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.teamList.View(), helpView)
}

func (m *Model) renderMemberList() string {
	helpKeys := []key.Binding{m.keys.mirror, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.memberList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	effective := m.mode.Effective(m.snapshot.ExportMode)
	title := styles.title.Render(fmt.Sprintf("Mirror snapshot to organization '%s'?", m.org))
	info := fmt.Sprintf("\nTeams: %d\nMemberships: %d\nMapped teams: %d\nMode: %s\n",
		len(m.snapshot.Teams), len(m.snapshot.Memberships), len(m.snapshot.IdPGroups), effective)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderMirror() string {
	title := styles.title.Render("Mirroring Teams")

	var phase string
	switch m.progress.Phase {
	case tasks.MaterializeTeam:
		phase = fmt.Sprintf("Materializing hierarchy (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ReportIdP:
		phase = "Reporting identity-provider mappings..."
	case tasks.ReplayMembership:
		phase = fmt.Sprintf("Replaying memberships (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Mirror failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Mirror Complete!")
	info := fmt.Sprintf(
		"\nMode: %s\nCreated: %d\nUpdated: %d\nSkipped: %d\nMemberships: %d added, %d failed\nMappings to bind manually: %d",
		m.result.EffectiveMode,
		len(m.result.Created),
		len(m.result.Updated),
		len(m.result.Skipped),
		m.result.MembershipsAdded,
		m.result.MembershipsFailed,
		len(m.result.IdPMappings),
	)

	var warnings string
	if len(m.result.Warnings) > 0 {
		warnings = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d warnings:", len(m.result.Warnings))))
		for _, w := range m.result.Warnings {
			warnings += fmt.Sprintf("\n  • %s", w)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, warnings, helpView)
}
