package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nconnect-cli/internal/config"
	"nconnect-cli/internal/model"
	"nconnect-cli/internal/state"
)

func testConsole(t *testing.T, admin bool) *consoleModel {
	t.Helper()
	user := model.UserStatus{ID: 7, Username: "amara", IsSuperuser: admin}
	cfg := config.Config{PollInterval: 30 * time.Second, Timeout: time.Second}
	return newConsole(user, cfg, nil, state.Store{Dir: t.TempDir()}, nil, "", 100, 30)
}

func TestResidentTabsIncludeForumAndProfile(t *testing.T) {
	c := testConsole(t, false)
	ids := make([]tabID, len(c.tabs))
	for i, tab := range c.tabs {
		ids[i] = tab.id
	}
	assert.Contains(t, ids, tabForum)
	assert.Contains(t, ids, tabProfile)

	a := testConsole(t, true)
	for _, tab := range a.tabs {
		assert.NotEqual(t, tabProfile, tab.id, "admin console has no profile tab")
	}
}

func TestInitialTabRestore(t *testing.T) {
	user := model.UserStatus{ID: 7, Username: "amara"}
	cfg := config.Config{PollInterval: 30 * time.Second, Timeout: time.Second}
	c := newConsole(user, cfg, nil, state.Store{Dir: t.TempDir()}, nil, "bills", 100, 30)
	assert.Equal(t, tabBills, c.activeTab())

	// Unknown tab names fall back to the first tab.
	c = newConsole(user, cfg, nil, state.Store{Dir: t.TempDir()}, nil, "nope", 100, 30)
	assert.Equal(t, tabOverview, c.activeTab())
}

func TestBuildRowsAppliesSearchAndFilters(t *testing.T) {
	c := testConsole(t, false)
	c.tracker.Data.Complaints = []model.Complaint{
		{ID: 1, Title: "Water leak", Category: "plumbing", Status: "pending", Priority: "high"},
		{ID: 2, Title: "Broken light", Category: "electrical", Status: "resolved", Priority: "low"},
	}
	for i, tab := range c.tabs {
		if tab.id == tabComplaints {
			c.active = i
		}
	}

	c.search = ""
	assert.Len(t, c.buildRows(), 2)

	c.search = "leak"
	rows := c.buildRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Water leak", rows[0].(rowItem).title)

	c.search = ""
	c.statusFilter = "resolved"
	rows = c.buildRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].(rowItem).id)
}

func TestNotificationRowsMarkUnread(t *testing.T) {
	c := testConsole(t, false)
	c.tracker.Data.Notifications = []model.Notification{
		{ID: 1, Title: "Read one", IsRead: true},
		{ID: 2, Title: "New one", IsRead: false},
	}
	for i, tab := range c.tabs {
		if tab.id == tabNotifications {
			c.active = i
		}
	}

	rows := c.buildRows()
	require.Len(t, rows, 2)
	assert.NotContains(t, rows[0].(rowItem).title, glyphUnreadDot())
	assert.Contains(t, rows[1].(rowItem).title, glyphUnreadDot())

	assert.Equal(t, 1, c.unreadCount())
}

func TestCycleStatusFilterPerTab(t *testing.T) {
	c := testConsole(t, false)
	for i, tab := range c.tabs {
		if tab.id == tabBills {
			c.active = i
		}
	}

	assert.Empty(t, c.statusFilter)
	c.cycleStatusFilter()
	assert.Equal(t, "unpaid", c.statusFilter)
	c.cycleStatusFilter()
	c.cycleStatusFilter()
	c.cycleStatusFilter()
	assert.Empty(t, c.statusFilter, "cycle wraps back to all")
}

func TestShortDate(t *testing.T) {
	assert.Equal(t, "2026-08-30", shortDate("2026-08-30T10:15:00Z"))
	assert.Equal(t, "2026-08-30", shortDate("2026-08-30"))
	assert.Equal(t, "", shortDate(""))
	assert.Equal(t, "weird", shortDate("weird"))
}
