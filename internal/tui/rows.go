package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"nconnect-cli/internal/derive"
)

// buildRows derives the visible rows for the active tab from the loaded
// lists, applying the search and status/priority filters. Pure and cheap; it
// runs on every data or filter change.
func (c *consoleModel) buildRows() []list.Item {
	data := &c.tracker.Data

	switch c.activeTab() {
	case tabUsers:
		users := derive.FilterUsers(data.Users, c.search)
		items := make([]list.Item, len(users))
		for i, u := range users {
			role := ""
			if u.IsSuperuser {
				role = "admin"
			}
			items[i] = rowItem{
				id:    fmt.Sprint(u.ID),
				title: u.Username,
				meta:  joinMeta(u.Email, role),
			}
		}
		return items

	case tabFlats:
		flats := derive.FilterFlats(data.Flats, c.search)
		items := make([]list.Item, len(flats))
		for i, f := range flats {
			occ := "vacant"
			if f.IsOccupied {
				occ = "occupied"
			}
			owner := ""
			if f.Owner != nil {
				owner = f.Owner.Username
			}
			items[i] = rowItem{
				id:    fmt.Sprint(f.ID),
				title: f.FlatNumber + sp(f.Building),
				meta:  joinMeta(owner, occ),
			}
		}
		return items

	case tabBills:
		bills := derive.FilterBills(data.Bills, c.search, c.statusFilter)
		items := make([]list.Item, len(bills))
		for i, b := range bills {
			items[i] = rowItem{
				id:    fmt.Sprint(b.ID),
				title: fmt.Sprintf("%s %s %s", b.Flat.FlatNumber, b.BillType, b.Amount),
				meta:  joinMeta(b.Status, "due "+shortDate(b.DueDate)),
			}
		}
		return items

	case tabComplaints:
		complaints := derive.FilterComplaints(data.Complaints, c.search, c.statusFilter, c.priorityFilter)
		items := make([]list.Item, len(complaints))
		for i, cm := range complaints {
			items[i] = rowItem{
				id:    fmt.Sprint(cm.ID),
				title: cm.Title,
				meta:  joinMeta(cm.Category, cm.Priority, cm.Status),
			}
		}
		return items

	case tabVehicles:
		vehicles := derive.FilterVehicles(data.Vehicles, c.search)
		items := make([]list.Item, len(vehicles))
		for i, v := range vehicles {
			owner := ""
			if v.Resident != nil {
				owner = v.Resident.Username
			}
			items[i] = rowItem{
				id:    fmt.Sprint(v.ID),
				title: v.VehicleNumber + sp(v.Brand),
				meta:  joinMeta(v.VehicleType, owner),
			}
		}
		return items

	case tabCamera:
		reqs := derive.FilterCameraRequests(data.CameraRequests, c.statusFilter)
		items := make([]list.Item, len(reqs))
		for i, r := range reqs {
			who := ""
			if r.Requester != nil {
				who = r.Requester.Username
			}
			items[i] = rowItem{
				id:    fmt.Sprint(r.ID),
				title: fmt.Sprintf("%s %s (%dh)", r.Flat.FlatNumber, shortDate(r.RequestedDate), r.DurationHours),
				meta:  joinMeta(who, r.Status),
			}
		}
		return items

	case tabNotifications:
		ns := derive.FilterNotifications(data.Notifications, c.search)
		items := make([]list.Item, len(ns))
		for i, n := range ns {
			prefix := "  "
			if !n.IsRead {
				prefix = glyphUnreadDot() + " "
			}
			items[i] = rowItem{
				id:    fmt.Sprint(n.ID),
				title: prefix + n.Title,
				meta:  joinMeta(n.Priority, shortDate(n.CreatedAt)),
			}
		}
		return items

	case tabForum:
		posts := derive.FilterForumPosts(data.ForumPosts, c.search, 0)
		items := make([]list.Item, len(posts))
		for i, p := range posts {
			title := p.Title
			if p.IsPinned {
				title = glyphBullet() + " " + title
			}
			author := ""
			if p.Author != nil {
				author = p.Author.Username
			}
			items[i] = rowItem{
				id:    p.ID,
				title: title,
				meta:  joinMeta(p.CategoryName, author, fmt.Sprintf("%d comments", p.CommentCount)),
			}
		}
		return items
	}
	return nil
}

func (c *consoleModel) renderOverview() string {
	data := &c.tracker.Data
	label := styleMuted()
	value := func(v any) string { return fmt.Sprint(v) }

	var lines []string
	if c.admin {
		s := derive.ComputeAdminStats(data.Users, data.Flats, data.Bills,
			data.Complaints, data.Vehicles, data.CameraRequests, data.Notifications)
		lines = []string{
			label.Render("Users            ") + value(s.TotalUsers),
			label.Render("Flats            ") + fmt.Sprintf("%d (%d occupied)", s.TotalFlats, s.OccupiedFlats),
			label.Render("Vehicles         ") + value(s.TotalVehicles),
			label.Render("Open complaints  ") + value(s.PendingComplaints),
			label.Render("Overdue bills    ") + value(s.OverdueBills),
			label.Render("Camera requests  ") + fmt.Sprintf("%d pending", s.PendingCameraRequests),
			label.Render("Total revenue    ") + fmt.Sprintf("%.2f", s.TotalRevenue),
		}
	} else {
		s := derive.ComputeResidentStats(data.Bills, data.Complaints, data.Vehicles, data.Notifications)
		lines = []string{
			label.Render("Complaints     ") + fmt.Sprintf("%d (%d pending)", s.TotalComplaints, s.PendingComplaints),
			label.Render("Bills          ") + fmt.Sprintf("%d (%d unpaid)", s.TotalBills, s.UnpaidBills),
			label.Render("Vehicles       ") + value(s.TotalVehicles),
			label.Render("Unread notices ") + value(s.UnreadNotifications),
		}
	}

	body := "  " + strings.Join(lines, "\n  ")
	return normalizePane("\n"+body, c.width, c.listHeight())
}

func (c *consoleModel) renderProfile() string {
	u := c.user
	label := styleMuted()
	lines := []string{
		label.Render("Username ") + u.Username,
		label.Render("Name     ") + strings.TrimSpace(u.FirstName+" "+u.LastName),
		label.Render("Email    ") + u.Email + verifiedMark(u.EmailVerified),
		label.Render("Phone    ") + u.PhoneNumber + verifiedMark(u.PhoneVerified),
	}
	if u.Bio != "" {
		lines = append(lines, label.Render("Bio      ")+u.Bio)
	}
	body := "  " + strings.Join(lines, "\n  ") + "\n\n  " + styleMuted().Render("e: edit profile")
	return normalizePane("\n"+body, c.width, c.listHeight())
}

func verifiedMark(ok bool) string {
	if !ok {
		return ""
	}
	return " " + glyphCheck()
}

func (c *consoleModel) helpForTab() string {
	common := "tab: switch   /: search   r: refresh   ctrl+l: sign out   q: quit"
	switch c.activeTab() {
	case tabOverview:
		return common
	case tabUsers:
		return "n: new user   a: assign flat   x: remove from flat   w: reset password   e: export   " + common
	case tabFlats:
		if c.admin {
			return "n: new flat   e: export   " + common
		}
		return common
	case tabBills:
		if c.admin {
			return "n: new bill   f: status filter   e: export   " + common
		}
		return "enter: pay   f: status filter   " + common
	case tabComplaints:
		if c.admin {
			return "s: set status   f/p: filters   e: export   " + common
		}
		return "n: new complaint   f/p: filters   " + common
	case tabVehicles:
		if c.admin {
			return "e: export   " + common
		}
		return "n: register vehicle   " + common
	case tabCamera:
		if c.admin {
			return "d: approve/reject   f: status filter   " + common
		}
		return "n: new request   f: status filter   " + common
	case tabNotifications:
		if c.admin {
			return "n: new notice   enter: read   " + common
		}
		return "enter: read   " + common
	case tabForum:
		return "n: new post   enter: read   " + common
	case tabProfile:
		return "e: edit profile   " + common
	}
	return common
}

func joinMeta(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " "+glyphSeparator()+" ")
}

func sp(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

// shortDate renders server datetimes and bare dates as YYYY-MM-DD, falling
// back to the raw string.
func shortDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
