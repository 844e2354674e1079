package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/config"
	"nconnect-cli/internal/feed"
	"nconnect-cli/internal/model"
	"nconnect-cli/internal/state"
)

type tabID string

const (
	tabOverview      tabID = "overview"
	tabUsers         tabID = "users"
	tabFlats         tabID = "flats"
	tabBills         tabID = "bills"
	tabComplaints    tabID = "complaints"
	tabVehicles      tabID = "vehicles"
	tabCamera        tabID = "camera"
	tabNotifications tabID = "notifications"
	tabForum         tabID = "forum"
	tabProfile       tabID = "profile"
)

type tabDef struct {
	id    tabID
	title string
}

func adminTabs() []tabDef {
	return []tabDef{
		{tabOverview, "Overview"},
		{tabUsers, "Users"},
		{tabFlats, "Flats"},
		{tabBills, "Bills"},
		{tabComplaints, "Complaints"},
		{tabVehicles, "Vehicles"},
		{tabCamera, "Camera"},
		{tabNotifications, "Notices"},
	}
}

func residentTabs() []tabDef {
	return []tabDef{
		{tabOverview, "Overview"},
		{tabFlats, "My Flats"},
		{tabBills, "Bills"},
		{tabComplaints, "Complaints"},
		{tabVehicles, "Vehicles"},
		{tabCamera, "Camera"},
		{tabNotifications, "Notices"},
		{tabForum, "Forum"},
		{tabProfile, "Profile"},
	}
}

// consoleModel is the authenticated screen: a tab bar, one list per tab, the
// search/filter inputs, and whatever form or detail modal is open. Admin and
// resident consoles share this model; they differ in tab set, scoping, and
// available actions.
type consoleModel struct {
	admin bool
	user  model.UserStatus

	cfg     config.Config
	client  *api.Client
	store   state.Store
	tracker *feed.Tracker
	log     *slog.Logger

	tabs   []tabDef
	active int

	rows list.Model

	search    string
	searching bool

	statusFilter   string
	priorityFilter string

	form      *formModel
	formKind  string
	formRowID string

	detailTitle string
	detailBody  string
	// detailPostID is set while the open detail modal shows a forum post; its
	// comments arrive async and attach only if the same post is still open.
	detailPostID string

	statusNote string

	width, height int
}

func newConsole(user model.UserStatus, cfg config.Config, client *api.Client,
	store state.Store, log *slog.Logger, initialTab string, width, height int) *consoleModel {

	if log == nil {
		log = slog.Default()
	}
	c := &consoleModel{
		admin:   user.IsSuperuser,
		user:    user,
		cfg:     cfg,
		client:  client,
		store:   store,
		tracker: feed.NewTracker(log),
		log:     log,
		width:   width,
		height:  height,
	}
	if c.admin {
		c.tabs = adminTabs()
	} else {
		c.tabs = residentTabs()
		// The resident console restores its last tab across launches; an
		// explicit --tab beats the remembered one.
		want := initialTab
		if want == "" {
			want = store.LoadResidentTab(context.Background())
		}
		for i, t := range c.tabs {
			if string(t.id) == want {
				c.active = i
				break
			}
		}
	}

	c.rows = list.New(nil, newCompactRowDelegate(), width, 10)
	c.rows.SetShowTitle(false)
	c.rows.SetShowStatusBar(false)
	c.rows.SetFilteringEnabled(false)
	c.rows.SetShowHelp(false)
	c.rows.SetShowPagination(true)
	return c
}

func (c *consoleModel) activeTab() tabID { return c.tabs[c.active].id }

// resourcesFor lists what a tab needs loaded. The overview needs everything
// its stats are derived from.
func (c *consoleModel) resourcesFor(id tabID) []feed.Resource {
	switch id {
	case tabOverview:
		if c.admin {
			return []feed.Resource{feed.Users, feed.Flats, feed.Bills, feed.Complaints,
				feed.Vehicles, feed.CameraRequests, feed.Notifications}
		}
		return []feed.Resource{feed.Bills, feed.Complaints, feed.Vehicles, feed.Notifications}
	case tabUsers:
		return []feed.Resource{feed.Users}
	case tabFlats:
		return []feed.Resource{feed.Flats}
	case tabBills:
		return []feed.Resource{feed.Bills}
	case tabComplaints:
		return []feed.Resource{feed.Complaints}
	case tabVehicles:
		return []feed.Resource{feed.Vehicles}
	case tabCamera:
		return []feed.Resource{feed.CameraRequests}
	case tabNotifications:
		return []feed.Resource{feed.Notifications}
	case tabForum:
		return []feed.Resource{feed.Forum}
	default:
		return nil
	}
}

// refreshActive refetches the active tab's lists. Each fetch carries the
// generation the tracker handed out; a stale completion is dropped on commit.
func (c *consoleModel) refreshActive() tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range c.resourcesFor(c.activeTab()) {
		cmds = append(cmds, c.fetchCmd(r))
	}
	return tea.Batch(cmds...)
}

// refreshAll is the dashboard-wide initial load: everything fires
// concurrently and the view fills in as each list resolves.
func (c *consoleModel) refreshAll() tea.Cmd {
	seen := map[feed.Resource]bool{}
	var cmds []tea.Cmd
	for _, t := range c.tabs {
		for _, r := range c.resourcesFor(t.id) {
			if seen[r] {
				continue
			}
			seen[r] = true
			cmds = append(cmds, c.fetchCmd(r))
		}
	}
	return tea.Batch(cmds...)
}

func (c *consoleModel) fetchCmd(r feed.Resource) tea.Cmd {
	gen := c.tracker.Begin(r)
	client := c.client
	user := c.user
	admin := c.admin

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
		defer cancel()

		var u feed.Update
		switch r {
		case feed.Users:
			items, err := client.Users(ctx)
			u = feed.Update{Err: err, Apply: func(l *feed.Lists) { l.Users = items }}
		case feed.Flats:
			q := api.ScopeFlatsByResident(user.ID)
			if admin {
				q = nil
			}
			items, err := client.Flats(ctx, q)
			u = feed.Update{Err: err, Apply: func(l *feed.Lists) { l.Flats = items }}
		case feed.Bills:
			q := api.ScopeBillsByOwner(user.Username)
			if admin {
				q = nil
			}
			items, err := client.Bills(ctx, q)
			u = feed.Update{Err: err, Apply: func(l *feed.Lists) { l.Bills = items }}
		case feed.Complaints:
			q := api.ScopeComplaintsByAuthor(user.Username)
			if admin {
				q = nil
			}
			items, err := client.Complaints(ctx, q)
			u = feed.Update{Err: err, Apply: func(l *feed.Lists) { l.Complaints = items }}
		case feed.Vehicles:
			q := api.ScopeVehiclesByResident(user.Username)
			if admin {
				q = nil
			}
			items, err := client.Vehicles(ctx, q)
			u = feed.Update{Err: err, Apply: func(l *feed.Lists) { l.Vehicles = items }}
		case feed.CameraRequests:
			q := api.ScopeCameraRequestsByRequester(user.Username)
			if admin {
				q = nil
			}
			items, err := client.CameraRequests(ctx, q)
			u = feed.Update{Err: err, Apply: func(l *feed.Lists) { l.CameraRequests = items }}
		case feed.Notifications:
			items, err := client.Notifications(ctx)
			u = feed.Update{Err: err, Apply: func(l *feed.Lists) { l.Notifications = items }}
		case feed.Forum:
			cats, err := client.ForumCategories(ctx)
			if err != nil {
				u = feed.Update{Err: err}
				break
			}
			posts, err := client.ForumPosts(ctx)
			u = feed.Update{Err: err, Apply: func(l *feed.Lists) {
				l.ForumCategories = cats
				l.ForumPosts = posts
			}}
		}
		return listFetchedMsg{resource: r, gen: gen, update: u}
	}
}

func (c *consoleModel) setActive(i int) tea.Cmd {
	if i < 0 {
		i = len(c.tabs) - 1
	}
	if i >= len(c.tabs) {
		i = 0
	}
	c.active = i
	c.search = ""
	c.searching = false
	c.statusFilter = ""
	c.priorityFilter = ""
	c.syncRows()

	cmds := []tea.Cmd{c.refreshActive()}
	if !c.admin {
		id := string(c.activeTab())
		store := c.store
		cmds = append(cmds, func() tea.Msg {
			// Best effort; relaunch just starts on the default tab if this fails.
			_ = store.SaveResidentTab(context.Background(), id)
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func (c *consoleModel) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width, c.height = msg.Width, msg.Height
		c.rows.SetSize(msg.Width-2, c.listHeight())
		return nil, false

	case pollTickMsg:
		if msg.owner != c {
			// A timer armed by a console that was torn down; its chain ends
			// here instead of doubling up with ours.
			return nil, false
		}
		// The timer keeps firing regardless of prior completions; stale
		// responses are discarded by generation.
		return tea.Batch(c.refreshActive(), c.pollTick()), false

	case listFetchedMsg:
		if c.tracker.Commit(msg.resource, msg.gen, msg.update) {
			c.syncRows()
		}
		return nil, false

	case actionDoneMsg:
		return c.handleActionDone(msg), false

	case forumCommentsMsg:
		c.applyForumComments(msg)
		return nil, false

	case tea.KeyMsg:
		return c.handleKey(msg)
	}
	return nil, false
}

// handleKey returns (cmd, logout).
func (c *consoleModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	// Modal layers swallow keys first.
	if c.detailBody != "" {
		switch msg.String() {
		case "esc", "enter", "q", "ctrl+g":
			c.detailTitle, c.detailBody = "", ""
			c.detailPostID = ""
		}
		return nil, false
	}
	if c.form != nil {
		switch c.form.Update(msg) {
		case formCancel:
			c.form = nil
			c.formKind = ""
		case formSubmit:
			if key := c.form.missingRequired(); key != "" {
				c.form.err = "required: " + key
				return nil, false
			}
			cmd := c.submitForm()
			c.form.submitting = true
			return cmd, false
		}
		return nil, false
	}
	if c.searching {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			c.searching = false
		case tea.KeyBackspace:
			if c.search != "" {
				rs := []rune(c.search)
				c.search = string(rs[:len(rs)-1])
				c.syncRows()
			}
		case tea.KeyRunes, tea.KeySpace:
			c.search += string(msg.Runes)
			if msg.Type == tea.KeySpace {
				c.search += " "
			}
			c.syncRows()
		}
		return nil, false
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit, false
	case "ctrl+l":
		return nil, true
	case "tab", "right":
		return c.setActive(c.active + 1), false
	case "shift+tab", "left":
		return c.setActive(c.active - 1), false
	case "r":
		c.statusNote = "refreshing"
		return c.refreshActive(), false
	case "/":
		c.searching = true
		return nil, false
	case "f":
		c.cycleStatusFilter()
		c.syncRows()
		return nil, false
	case "p":
		if c.activeTab() == tabComplaints {
			c.cyclePriorityFilter()
			c.syncRows()
		}
		return nil, false
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(msg.String()[0] - '1')
		if i < len(c.tabs) {
			return c.setActive(i), false
		}
		return nil, false
	}

	return c.handleTabKey(msg), false
}

func (c *consoleModel) handleActionDone(msg actionDoneMsg) tea.Cmd {
	if msg.err != nil {
		// Write failures surface on the open form (field errors where the
		// server provided them) so the values can be corrected and retried.
		if c.form != nil {
			c.form.ApplyError(msg.err)
		} else {
			c.statusNote = msg.err.Error()
		}
		return nil
	}
	if c.form != nil {
		c.form.Reset()
		c.form = nil
		c.formKind = ""
	}
	c.statusNote = msg.note
	var cmds []tea.Cmd
	for _, r := range msg.refresh {
		cmds = append(cmds, c.fetchCmd(r))
	}
	return tea.Batch(cmds...)
}

func (c *consoleModel) pollTick() tea.Cmd {
	return tea.Tick(c.cfg.PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{owner: c}
	})
}

func (c *consoleModel) cycleStatusFilter() {
	var opts []string
	switch c.activeTab() {
	case tabBills:
		opts = []string{"", "unpaid", "paid", "overdue"}
	case tabComplaints:
		opts = []string{"", "pending", "in_progress", "resolved"}
	case tabCamera:
		opts = []string{"", "pending", "approved", "rejected"}
	default:
		return
	}
	for i, o := range opts {
		if o == c.statusFilter {
			c.statusFilter = opts[(i+1)%len(opts)]
			return
		}
	}
	c.statusFilter = ""
}

func (c *consoleModel) cyclePriorityFilter() {
	opts := []string{"", "low", "medium", "high"}
	for i, o := range opts {
		if o == c.priorityFilter {
			c.priorityFilter = opts[(i+1)%len(opts)]
			return
		}
	}
	c.priorityFilter = ""
}

func (c *consoleModel) listHeight() int {
	h := c.height - 6
	if h < 3 {
		h = 3
	}
	return h
}

func (c *consoleModel) syncRows() {
	items := c.buildRows()
	c.rows.SetItems(items)
	if c.rows.Index() >= len(items) && len(items) > 0 {
		c.rows.Select(len(items) - 1)
	}
	c.rows.SetSize(c.width-2, c.listHeight())
}

func (c *consoleModel) selectedRow() (rowItem, bool) {
	it := c.rows.SelectedItem()
	if it == nil {
		return rowItem{}, false
	}
	row, ok := it.(rowItem)
	return row, ok
}

func (c *consoleModel) View() string {
	var b strings.Builder

	b.WriteString(c.renderTabBar())
	b.WriteString("\n")
	b.WriteString(c.renderFilterLine())
	b.WriteString("\n")

	switch c.activeTab() {
	case tabOverview:
		b.WriteString(c.renderOverview())
	case tabProfile:
		b.WriteString(c.renderProfile())
	default:
		if len(c.rows.Items()) == 0 {
			b.WriteString(c.renderEmptyState())
		} else {
			b.WriteString(c.rows.View())
		}
	}

	b.WriteString("\n")
	b.WriteString(c.renderStatusLine())

	out := normalizePane(b.String(), c.width, c.height)

	if c.form != nil {
		return overlayCentered(c.width, c.height, c.form.View(c.width))
	}
	if c.detailBody != "" {
		return overlayCentered(c.width, c.height, renderModalBox(c.width, c.detailTitle, c.detailBody))
	}
	return out
}

func (c *consoleModel) renderTabBar() string {
	active := lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(colorAccentFg).
		Background(colorAccent)
	inactive := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorChromeMutedFg)

	unread := c.unreadCount()
	parts := make([]string, 0, len(c.tabs))
	for i, t := range c.tabs {
		title := t.title
		if t.id == tabNotifications && unread > 0 {
			title += " " + glyphUnreadDot()
		}
		if i == c.active {
			parts = append(parts, active.Render(title))
		} else {
			parts = append(parts, inactive.Render(title))
		}
	}
	return truncate(lipgloss.JoinHorizontal(lipgloss.Top, parts...), c.width)
}

func (c *consoleModel) unreadCount() int {
	n := 0
	for _, nt := range c.tracker.Data.Notifications {
		if !nt.IsRead {
			n++
		}
	}
	return n
}

func (c *consoleModel) renderFilterLine() string {
	var parts []string
	if c.searching {
		parts = append(parts, "search: "+c.search+"_")
	} else if c.search != "" {
		parts = append(parts, "search: "+c.search)
	}
	if c.statusFilter != "" {
		parts = append(parts, "status: "+c.statusFilter)
	}
	if c.priorityFilter != "" {
		parts = append(parts, "priority: "+c.priorityFilter)
	}
	if len(parts) == 0 {
		return styleMuted().Render(c.helpForTab())
	}
	return styleMuted().Render(strings.Join(parts, "   "))
}

func (c *consoleModel) renderEmptyState() string {
	msg := "nothing here yet"
	if r := c.resourcesFor(c.activeTab()); len(r) == 1 && c.tracker.Loading(r[0]) {
		msg = "loading…"
	}
	return styleMuted().Render("  " + msg)
}

func (c *consoleModel) renderStatusLine() string {
	role := "resident"
	if c.admin {
		role = "admin"
	}
	left := c.user.Username + " (" + role + ")"
	note := c.statusNote
	line := left
	if note != "" {
		line += "  " + glyphSeparator() + "  " + note
	}
	return faintIfDark(lipgloss.NewStyle().
		Width(c.width).
		Foreground(colorChromeMutedFg)).
		Render(truncate(line, c.width))
}
