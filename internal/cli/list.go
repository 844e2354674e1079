package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/derive"
)

func newListCmd(app *App) *cobra.Command {
	var search, status, priority string

	cmd := &cobra.Command{
		Use:   "list <users|flats|bills|complaints|vehicles|camera-requests|notifications|forum>",
		Short: "List a resource (scoped to you unless you are an admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.requireActive(ctx); err != nil {
				return writeErr(cmd, err)
			}
			data, err := fetchResource(ctx, app, args[0], search, status, priority)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive substring filter")
	cmd.Flags().StringVar(&status, "status", "", "Exact status filter")
	cmd.Flags().StringVar(&priority, "priority", "", "Exact priority filter (complaints)")
	return cmd
}

// fetchResource pulls one list and applies the display-time filters. Admins
// see everything; residents get server-side scoping to their own records.
func fetchResource(ctx context.Context, app *App, resource, search, status, priority string) (any, error) {
	st := app.ctrl.User()
	admin := st.IsSuperuser

	scope := func(q url.Values) url.Values {
		if admin {
			return nil
		}
		return q
	}

	switch resource {
	case "users":
		if !admin {
			return nil, errors.New("users requires an admin session")
		}
		users, err := app.client.Users(ctx)
		if err != nil {
			return nil, err
		}
		return derive.FilterUsers(users, search), nil
	case "flats":
		flats, err := app.client.Flats(ctx, scope(api.ScopeFlatsByResident(st.ID)))
		if err != nil {
			return nil, err
		}
		return derive.FilterFlats(flats, search), nil
	case "bills":
		bills, err := app.client.Bills(ctx, scope(api.ScopeBillsByOwner(st.Username)))
		if err != nil {
			return nil, err
		}
		return derive.FilterBills(bills, search, status), nil
	case "complaints":
		complaints, err := app.client.Complaints(ctx, scope(api.ScopeComplaintsByAuthor(st.Username)))
		if err != nil {
			return nil, err
		}
		return derive.FilterComplaints(complaints, search, status, priority), nil
	case "vehicles":
		vehicles, err := app.client.Vehicles(ctx, scope(api.ScopeVehiclesByResident(st.Username)))
		if err != nil {
			return nil, err
		}
		return derive.FilterVehicles(vehicles, search), nil
	case "camera-requests":
		reqs, err := app.client.CameraRequests(ctx, scope(api.ScopeCameraRequestsByRequester(st.Username)))
		if err != nil {
			return nil, err
		}
		return derive.FilterCameraRequests(reqs, status), nil
	case "notifications":
		ns, err := app.client.Notifications(ctx)
		if err != nil {
			return nil, err
		}
		return derive.FilterNotifications(ns, search), nil
	case "forum":
		posts, err := app.client.ForumPosts(ctx)
		if err != nil {
			return nil, err
		}
		return derive.FilterForumPosts(posts, search, 0), nil
	default:
		return nil, fmt.Errorf("unknown resource: %s", resource)
	}
}
