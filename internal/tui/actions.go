package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/derive"
	"nconnect-cli/internal/export"
	"nconnect-cli/internal/feed"
	"nconnect-cli/internal/model"
)

// handleTabKey handles the per-tab action keys once the global ones have had
// their chance.
func (c *consoleModel) handleTabKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	tab := c.activeTab()

	if key == "e" {
		if tab == tabProfile {
			c.openForm("profile.edit")
			return nil
		}
		if c.admin {
			return c.exportActive()
		}
		return nil
	}

	switch tab {
	case tabUsers:
		switch key {
		case "n":
			c.openForm("user.create")
		case "a":
			c.openRowForm("user.assign")
		case "x":
			c.openRowForm("user.remove")
		case "w":
			c.openRowForm("user.resetpw")
		}

	case tabFlats:
		if key == "n" && c.admin {
			c.openForm("flat.create")
		}

	case tabBills:
		switch {
		case key == "n" && c.admin:
			c.openForm("bill.create")
		case key == "enter" && !c.admin:
			return c.payBillCmd()
		}

	case tabComplaints:
		switch {
		case key == "n" && !c.admin:
			c.openForm("complaint.create")
		case key == "s" && c.admin:
			c.openRowForm("complaint.status")
		case key == "enter":
			c.openComplaintDetail()
		}

	case tabVehicles:
		if key == "n" && !c.admin {
			c.openForm("vehicle.create")
		}

	case tabCamera:
		switch {
		case key == "n" && !c.admin:
			c.openForm("camera.create")
		case key == "d" && c.admin:
			c.openRowForm("camera.decide")
		case key == "enter":
			c.openCameraDetail()
		}

	case tabNotifications:
		switch {
		case key == "n" && c.admin:
			c.openForm("notification.create")
		case key == "enter":
			return c.openNotification()
		}

	case tabForum:
		switch key {
		case "n":
			c.openForm("forum.create")
		case "enter":
			return c.openForumDetail()
		}
	}
	return nil
}

func (c *consoleModel) openRowForm(kind string) {
	row, ok := c.selectedRow()
	if !ok {
		return
	}
	c.formRowID = row.id
	c.openForm(kind)
}

func (c *consoleModel) openForm(kind string) {
	switch kind {
	case "user.create":
		c.form = newForm("New user",
			textField("username", "Username", true),
			textField("email", "Email", true),
			textField("first_name", "First name", false),
			textField("last_name", "Last name", false),
			secretField("password", "Password"),
		)
	case "user.assign":
		c.form = newForm("Assign flat",
			textField("flat_id", "Flat id", true),
			selectField("assignment_type", "Type", "owner", "tenant"),
			textField("notes", "Notes", false),
		)
	case "user.remove":
		c.form = newForm("Remove from flat",
			textField("flat_id", "Flat id", true),
		)
	case "user.resetpw":
		c.form = newForm("Reset password",
			secretField("new_password", "New password"),
		)
	case "flat.create":
		c.form = newForm("New flat",
			textField("flat_number", "Flat number", true),
			textField("building", "Building", false),
			textField("floor", "Floor", false),
			textField("area_sqft", "Area (sqft)", false),
			textField("bedrooms", "Bedrooms", true),
			textField("bathrooms", "Bathrooms", true),
			textField("monthly_rent", "Monthly rent", false),
		)
	case "bill.create":
		now := time.Now()
		f := newForm("New bill",
			textField("flat_id", "Flat id", true),
			selectField("bill_type", "Type", "maintenance", "water", "electricity", "parking", "other"),
			textField("amount", "Amount", true),
			textField("bill_month", "Month", true),
			textField("bill_year", "Year", true),
			textField("due_date", "Due date", true),
		)
		f.SetValue("bill_month", strconv.Itoa(int(now.Month())))
		f.SetValue("bill_year", strconv.Itoa(now.Year()))
		c.form = f
	case "complaint.create":
		f := newForm("New complaint",
			textField("title", "Title", true),
			textField("description", "Description", true),
			selectField("priority", "Priority", "low", "medium", "high"),
			selectField("category", "Category", "plumbing", "electrical", "cleaning", "security", "parking", "other"),
			textField("flat_id", "Flat id", true),
		)
		if flats := c.tracker.Data.Flats; len(flats) > 0 {
			f.SetValue("flat_id", strconv.Itoa(flats[0].ID))
		}
		c.form = f
	case "complaint.status":
		c.form = newForm("Update complaint",
			selectField("status", "Status", "pending", "in_progress", "resolved"),
			textField("admin_response", "Response", false),
		)
	case "vehicle.create":
		c.form = newForm("Register vehicle",
			textField("vehicle_number", "Plate number", true),
			selectField("vehicle_type", "Type", "car", "bike", "scooter", "other"),
			textField("brand", "Brand", false),
			textField("color", "Color", false),
		)
	case "camera.create":
		f := newForm("Camera access request",
			textField("reason", "Reason", true),
			textField("requested_date", "Date (YYYY-MM-DD)", true),
			textField("duration_hours", "Hours", true),
			textField("flat_id", "Flat id", true),
		)
		f.SetValue("duration_hours", "1")
		if flats := c.tracker.Data.Flats; len(flats) > 0 {
			f.SetValue("flat_id", strconv.Itoa(flats[0].ID))
		}
		c.form = f
	case "camera.decide":
		c.form = newForm("Decide camera request",
			selectField("status", "Decision", "approved", "rejected"),
			textField("access_link", "Access link", false),
		)
	case "notification.create":
		c.form = newForm("New notice",
			textField("title", "Title", true),
			textField("message", "Message", true),
			selectField("priority", "Priority", "low", "medium", "high"),
			selectField("notification_type", "Type", "general", "maintenance", "billing", "security", "event"),
			textField("recipients", "Recipient ids", false),
		)
	case "forum.create":
		f := newForm("New forum post",
			textField("title", "Title", true),
			textField("content", "Content", true),
			textField("category", "Category id", true),
			selectField("post_type", "Type", "discussion", "question", "announcement"),
		)
		if cats := c.tracker.Data.ForumCategories; len(cats) > 0 {
			f.SetValue("category", strconv.Itoa(cats[0].ID))
		}
		c.form = f
	case "profile.edit":
		f := newForm("Edit profile",
			textField("first_name", "First name", false),
			textField("last_name", "Last name", false),
			textField("email", "Email", true),
			textField("phone", "Phone", false),
			textField("emergency_contact", "Emergency phone", false),
			textField("emergency_contact_name", "Emergency name", false),
		)
		f.SetValue("first_name", c.user.FirstName)
		f.SetValue("last_name", c.user.LastName)
		f.SetValue("email", c.user.Email)
		f.SetValue("phone", c.user.PhoneNumber)
		c.form = f
	default:
		return
	}
	c.formKind = kind
}

// submitForm turns the open form into one API write. The field values are
// snapshotted here, on the UI loop; the command goroutine only ever sees the
// snapshot, never the live form. The command reports back through
// actionDoneMsg; the model decides whether to reset or keep the form based on
// the outcome.
func (c *consoleModel) submitForm() tea.Cmd {
	vals := c.form.Values()
	kind := c.formKind
	rowID := atoi(c.formRowID)
	client := c.client
	timeout := c.cfg.Timeout
	users := c.tracker.Data.Users

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		switch kind {
		case "user.create":
			err := client.CreateUser(ctx, api.UserPayload{
				Username:  vals["username"],
				Email:     vals["email"],
				FirstName: vals["first_name"],
				LastName:  vals["last_name"],
				Password:  vals["password"],
			})
			return actionDoneMsg{err: err, note: "user created", refresh: []feed.Resource{feed.Users}}

		case "user.assign":
			err := client.AssignFlat(ctx, rowID, api.AssignFlatPayload{
				FlatID:         atoi(vals["flat_id"]),
				AssignmentType: vals["assignment_type"],
				Notes:          vals["notes"],
			})
			return actionDoneMsg{err: err, note: "flat assigned", refresh: []feed.Resource{feed.Users, feed.Flats}}

		case "user.remove":
			err := client.RemoveFromFlat(ctx, rowID, atoi(vals["flat_id"]))
			return actionDoneMsg{err: err, note: "removed from flat", refresh: []feed.Resource{feed.Users, feed.Flats}}

		case "user.resetpw":
			err := client.ResetPassword(ctx, rowID, vals["new_password"])
			return actionDoneMsg{err: err, note: "password reset"}

		case "flat.create":
			p := api.FlatPayload{
				FlatNumber: vals["flat_number"],
				Building:   vals["building"],
				Bedrooms:   atoi(vals["bedrooms"]),
				Bathrooms:  atoi(vals["bathrooms"]),
			}
			if v := vals["floor"]; v != "" {
				n := atoi(v)
				p.Floor = &n
			}
			if v := vals["area_sqft"]; v != "" {
				n := atoi(v)
				p.AreaSqft = &n
			}
			if v := vals["monthly_rent"]; v != "" {
				if r, err := strconv.ParseFloat(v, 64); err == nil {
					p.MonthlyRent = &r
				}
			}
			err := client.CreateFlat(ctx, p)
			return actionDoneMsg{err: err, note: "flat created", refresh: []feed.Resource{feed.Flats}}

		case "bill.create":
			err := client.CreateBill(ctx, api.BillPayload{
				FlatID:    atoi(vals["flat_id"]),
				BillType:  vals["bill_type"],
				Amount:    vals["amount"],
				BillMonth: atoi(vals["bill_month"]),
				BillYear:  atoi(vals["bill_year"]),
				DueDate:   vals["due_date"],
			})
			return actionDoneMsg{err: err, note: "bill created", refresh: []feed.Resource{feed.Bills}}

		case "complaint.create":
			err := client.CreateComplaint(ctx, api.ComplaintPayload{
				Title:       vals["title"],
				Description: vals["description"],
				Priority:    vals["priority"],
				Category:    vals["category"],
				FlatID:      atoi(vals["flat_id"]),
			})
			return actionDoneMsg{err: err, note: "complaint filed", refresh: []feed.Resource{feed.Complaints}}

		case "complaint.status":
			err := client.UpdateComplaintStatus(ctx, rowID, vals["status"], vals["admin_response"])
			return actionDoneMsg{err: err, note: "complaint updated", refresh: []feed.Resource{feed.Complaints}}

		case "vehicle.create":
			err := client.CreateVehicle(ctx, api.VehiclePayload{
				VehicleNumber: vals["vehicle_number"],
				VehicleType:   vals["vehicle_type"],
				Brand:         vals["brand"],
				Color:         vals["color"],
			})
			return actionDoneMsg{err: err, note: "vehicle registered", refresh: []feed.Resource{feed.Vehicles}}

		case "camera.create":
			err := client.CreateCameraRequest(ctx, api.CameraRequestPayload{
				Reason:        vals["reason"],
				RequestedDate: vals["requested_date"],
				DurationHours: atoi(vals["duration_hours"]),
				FlatID:        atoi(vals["flat_id"]),
			})
			return actionDoneMsg{err: err, note: "request submitted", refresh: []feed.Resource{feed.CameraRequests}}

		case "camera.decide":
			err := client.DecideCameraRequest(ctx, rowID, vals["status"], vals["access_link"])
			return actionDoneMsg{err: err, note: "request " + vals["status"], refresh: []feed.Resource{feed.CameraRequests}}

		case "notification.create":
			recipients := parseIDList(vals["recipients"])
			if len(recipients) == 0 {
				// Empty recipient list means everyone.
				for _, u := range users {
					recipients = append(recipients, u.ID)
				}
			}
			err := client.CreateNotification(ctx, api.NotificationPayload{
				Title:            vals["title"],
				Message:          vals["message"],
				Priority:         vals["priority"],
				NotificationType: vals["notification_type"],
				Recipients:       recipients,
			})
			return actionDoneMsg{err: err, note: "notice sent", refresh: []feed.Resource{feed.Notifications}}

		case "forum.create":
			err := client.CreateForumPost(ctx, api.ForumPostPayload{
				Title:    vals["title"],
				Content:  vals["content"],
				Category: atoi(vals["category"]),
				PostType: vals["post_type"],
			})
			return actionDoneMsg{err: err, note: "post published", refresh: []feed.Resource{feed.Forum}}

		case "profile.edit":
			err := client.UpdateProfile(ctx, api.ProfilePayload{
				FirstName:            vals["first_name"],
				LastName:             vals["last_name"],
				Email:                vals["email"],
				Phone:                vals["phone"],
				EmergencyContact:     vals["emergency_contact"],
				EmergencyContactName: vals["emergency_contact_name"],
			})
			return actionDoneMsg{err: err, note: "profile updated"}
		}
		return actionDoneMsg{err: errors.New("unknown form")}
	}
}

// payBillCmd marks the selected bill paid. The payment timestamp is stamped
// client-side by the API layer.
func (c *consoleModel) payBillCmd() tea.Cmd {
	row, ok := c.selectedRow()
	if !ok {
		return nil
	}
	id := atoi(row.id)
	for _, b := range c.tracker.Data.Bills {
		if b.ID == id && b.Status == "paid" {
			c.statusNote = "already paid"
			return nil
		}
	}
	client := c.client
	timeout := c.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := client.PayBill(ctx, id)
		return actionDoneMsg{err: err, note: "bill paid", refresh: []feed.Resource{feed.Bills}}
	}
}

// openNotification shows the notice body and, for unread ones, flips the
// read flag optimistically. The mark-read POST is fire and forget; a failure
// is swallowed and the next refresh reconciles.
func (c *consoleModel) openNotification() tea.Cmd {
	row, ok := c.selectedRow()
	if !ok {
		return nil
	}
	id := atoi(row.id)

	var target *model.Notification
	for i := range c.tracker.Data.Notifications {
		if c.tracker.Data.Notifications[i].ID == id {
			target = &c.tracker.Data.Notifications[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	c.detailTitle = target.Title
	c.detailBody = renderMarkdown(target.Message, modalBodyWidth(c.width)) +
		"\n\n" + styleMuted().Render(joinMeta(target.NotificationType, target.Priority, shortDate(target.CreatedAt)))

	if c.admin || target.IsRead {
		return nil
	}
	target.IsRead = true
	c.syncRows()

	client := c.client
	timeout := c.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = client.MarkNotificationRead(ctx, id)
		return nil
	}
}

func (c *consoleModel) openComplaintDetail() {
	row, ok := c.selectedRow()
	if !ok {
		return
	}
	id := atoi(row.id)
	for _, cm := range c.tracker.Data.Complaints {
		if cm.ID != id {
			continue
		}
		body := renderMarkdown(cm.Description, modalBodyWidth(c.width))
		if cm.AdminResponse != "" {
			body += "\n\n" + styleMuted().Render("Response:") + "\n" +
				renderMarkdown(cm.AdminResponse, modalBodyWidth(c.width))
		}
		body += "\n\n" + styleMuted().Render(joinMeta(cm.Category, cm.Priority, cm.Status))
		c.detailTitle = cm.Title
		c.detailBody = body
		return
	}
}

func (c *consoleModel) openCameraDetail() {
	row, ok := c.selectedRow()
	if !ok {
		return
	}
	id := atoi(row.id)
	for _, r := range c.tracker.Data.CameraRequests {
		if r.ID != id {
			continue
		}
		body := r.Reason + "\n\n" +
			styleMuted().Render(joinMeta(r.Flat.FlatNumber, shortDate(r.RequestedDate),
				fmt.Sprintf("%dh", r.DurationHours), r.Status))
		if r.AccessLink != "" {
			body += "\n\n" + glyphArrow() + " " + r.AccessLink
		}
		c.detailTitle = "Camera request"
		c.detailBody = body
		return
	}
}

// openForumDetail shows the post body right away; the comments arrive async
// and attach to the modal if it is still showing the same post.
func (c *consoleModel) openForumDetail() tea.Cmd {
	row, ok := c.selectedRow()
	if !ok {
		return nil
	}
	for _, p := range c.tracker.Data.ForumPosts {
		if p.ID != row.id {
			continue
		}
		author := ""
		if p.Author != nil {
			author = p.Author.Username
		}
		c.detailTitle = p.Title
		c.detailBody = renderMarkdown(p.Content, modalBodyWidth(c.width)) +
			"\n\n" + styleMuted().Render(joinMeta(author, p.CategoryName,
			fmt.Sprintf("%d comments", p.CommentCount), fmt.Sprintf("%d votes", p.VoteScore)))
		c.detailPostID = p.ID
		if p.CommentCount == 0 {
			return nil
		}

		client := c.client
		timeout := c.cfg.Timeout
		id := p.ID
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			items, err := client.ForumComments(ctx, id)
			return forumCommentsMsg{postID: id, items: items, err: err}
		}
	}
	return nil
}

// applyForumComments appends fetched comments to the open post detail. A
// failed fetch leaves the post body as is; the count in the meta line already
// says comments exist.
func (c *consoleModel) applyForumComments(msg forumCommentsMsg) {
	if c.detailBody == "" || c.detailPostID != msg.postID {
		return
	}
	if msg.err != nil {
		c.log.Warn("fetch forum comments", slog.String("post", msg.postID), slog.Any("err", msg.err))
		return
	}
	var b strings.Builder
	b.WriteString(c.detailBody)
	b.WriteString("\n")
	for _, cm := range msg.items {
		author := ""
		if cm.Author != nil {
			author = cm.Author.Username
		}
		b.WriteString("\n" + styleMuted().Render(joinMeta(author, shortDate(cm.CreatedAt))) + "\n")
		b.WriteString(renderMarkdown(cm.Content, modalBodyWidth(c.width)))
	}
	c.detailBody = b.String()
}

// exportActive writes the active tab's filtered rows as CSV next to the
// working directory, named by resource and day.
func (c *consoleModel) exportActive() tea.Cmd {
	data := &c.tracker.Data
	var (
		csvText string
		err     error
		name    string
	)
	switch c.activeTab() {
	case tabUsers:
		name = "users"
		csvText, err = export.Users(derive.FilterUsers(data.Users, c.search))
	case tabFlats:
		name = "flats"
		csvText, err = export.Flats(derive.FilterFlats(data.Flats, c.search))
	case tabBills:
		name = "bills"
		csvText, err = export.Bills(derive.FilterBills(data.Bills, c.search, c.statusFilter))
	case tabComplaints:
		name = "complaints"
		csvText, err = export.Complaints(derive.FilterComplaints(data.Complaints, c.search, c.statusFilter, c.priorityFilter))
	case tabVehicles:
		name = "vehicles"
		csvText, err = export.Vehicles(derive.FilterVehicles(data.Vehicles, c.search))
	default:
		return nil
	}
	if err != nil {
		c.statusNote = err.Error()
		return nil
	}
	path := fmt.Sprintf("%s-%s.csv", name, time.Now().Format("20060102"))
	return func() tea.Msg {
		if werr := os.WriteFile(path, []byte(csvText), 0o644); werr != nil {
			return actionDoneMsg{err: werr}
		}
		return actionDoneMsg{note: "exported " + path}
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func parseIDList(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	return out
}
