// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for mirroring a captured snapshot:
//  1. [TeamListView] : Browse the teams captured in the snapshot
//  2. [MemberListView] : Preview a team's recorded memberships
//  3. [ConfirmView] : Confirm the mirror operation
//  4. [MirrorView] : Monitor real-time progress updates
//  5. [ResultView] : Display created/updated/skipped counts and warnings
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the TeamEngine, providing non-blocking status reporting during mirrors.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
