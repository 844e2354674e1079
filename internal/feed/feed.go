package feed

import (
	"log/slog"

	"nconnect-cli/internal/model"
)

// Resource identifies one refreshable collection of a console tab.
type Resource int

const (
	Users Resource = iota
	Flats
	Bills
	Complaints
	Vehicles
	CameraRequests
	Notifications
	Forum
)

func (r Resource) String() string {
	switch r {
	case Users:
		return "users"
	case Flats:
		return "flats"
	case Bills:
		return "bills"
	case Complaints:
		return "complaints"
	case Vehicles:
		return "vehicles"
	case CameraRequests:
		return "camera-requests"
	case Notifications:
		return "notifications"
	case Forum:
		return "forum"
	default:
		return "unknown"
	}
}

// Lists is the data a console renders. Refreshes replace whole slices; rows
// are never merged in place (except the optimistic notification read flag,
// which the view flips directly).
type Lists struct {
	Users           []model.User
	Flats           []model.Flat
	Bills           []model.Bill
	Complaints      []model.Complaint
	Vehicles        []model.Vehicle
	CameraRequests  []model.CameraRequest
	Notifications   []model.Notification
	ForumCategories []model.ForumCategory
	ForumPosts      []model.ForumPost
}

// Update is a completed fetch for one resource. Apply writes the fresh slice
// into Lists; it runs only when the update is still current.
type Update struct {
	Err   error
	Apply func(*Lists)
}

// Tracker guards Lists against stale fetch completions. Every refresh of a
// resource begins with a generation number; a completion whose generation is
// no longer current (a newer refresh started, or the session ended) is
// dropped. Failed refreshes keep whatever data was already on screen.
//
// The tracker is confined to the UI event loop and is not safe for
// concurrent use.
type Tracker struct {
	log *slog.Logger

	Data Lists

	gens     map[Resource]int
	inflight map[Resource]bool
}

func NewTracker(log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		log:      log,
		gens:     map[Resource]int{},
		inflight: map[Resource]bool{},
	}
}

// Begin starts a refresh of r and returns the generation the completion must
// carry. Starting a new refresh supersedes any in-flight one.
func (t *Tracker) Begin(r Resource) int {
	t.gens[r]++
	t.inflight[r] = true
	return t.gens[r]
}

// Loading reports whether a refresh of r is in flight.
func (t *Tracker) Loading(r Resource) bool {
	return t.inflight[r]
}

// Commit applies a completed refresh. It reports whether the update was
// current; stale completions and failures leave Data untouched.
func (t *Tracker) Commit(r Resource, gen int, u Update) bool {
	if gen != t.gens[r] {
		t.log.Debug("discarding stale refresh",
			slog.String("resource", r.String()),
			slog.Int("gen", gen))
		return false
	}
	t.inflight[r] = false
	if u.Err != nil {
		t.log.Warn("refresh failed, keeping previous data",
			slog.String("resource", r.String()),
			slog.Any("error", u.Err))
		return false
	}
	if u.Apply != nil {
		u.Apply(&t.Data)
	}
	return true
}

// InvalidateAll supersedes every in-flight refresh and drops the data. Used
// on logout so nothing from the old session can land afterwards.
func (t *Tracker) InvalidateAll() {
	for _, r := range []Resource{Users, Flats, Bills, Complaints, Vehicles, CameraRequests, Notifications, Forum} {
		t.gens[r]++
		t.inflight[r] = false
	}
	t.Data = Lists{}
}
