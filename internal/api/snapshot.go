package api

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"nconnect-cli/internal/model"
)

// Snapshot is one coherent pull of every resource a console renders. The
// one-shot commands (stats, export, list) fetch it in full; the TUI instead
// refreshes one tab at a time.
type Snapshot struct {
	Users          []model.User
	Flats          []model.Flat
	Bills          []model.Bill
	Complaints     []model.Complaint
	Vehicles       []model.Vehicle
	CameraRequests []model.CameraRequest
	Notifications  []model.Notification
}

// Scope restricts a snapshot to the acting resident. The zero value is the
// admin (unscoped) view.
type Scope struct {
	UserID   int
	Username string
}

func (s Scope) scoped() bool { return s.Username != "" }

func (s Scope) flats() url.Values {
	if !s.scoped() {
		return nil
	}
	return ScopeFlatsByResident(s.UserID)
}

func (s Scope) vehicles() url.Values {
	if !s.scoped() {
		return nil
	}
	return ScopeVehiclesByResident(s.Username)
}

func (s Scope) complaints() url.Values {
	if !s.scoped() {
		return nil
	}
	return ScopeComplaintsByAuthor(s.Username)
}

func (s Scope) bills() url.Values {
	if !s.scoped() {
		return nil
	}
	return ScopeBillsByOwner(s.Username)
}

func (s Scope) cameraRequests() url.Values {
	if !s.scoped() {
		return nil
	}
	return ScopeCameraRequestsByRequester(s.Username)
}

// FetchAll pulls the whole snapshot concurrently. The first failing fetch
// cancels the rest. Users is admin-only and skipped for scoped snapshots.
func (c *Client) FetchAll(ctx context.Context, scope Scope) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	if !scope.scoped() {
		g.Go(func() error {
			var err error
			snap.Users, err = c.Users(ctx)
			return err
		})
	}
	g.Go(func() error {
		var err error
		snap.Flats, err = c.Flats(ctx, scope.flats())
		return err
	})
	g.Go(func() error {
		var err error
		snap.Bills, err = c.Bills(ctx, scope.bills())
		return err
	})
	g.Go(func() error {
		var err error
		snap.Complaints, err = c.Complaints(ctx, scope.complaints())
		return err
	})
	g.Go(func() error {
		var err error
		snap.Vehicles, err = c.Vehicles(ctx, scope.vehicles())
		return err
	})
	g.Go(func() error {
		var err error
		snap.CameraRequests, err = c.CameraRequests(ctx, scope.cameraRequests())
		return err
	})
	g.Go(func() error {
		var err error
		snap.Notifications, err = c.Notifications(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
