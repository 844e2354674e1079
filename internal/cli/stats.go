package cli

import (
	"github.com/spf13/cobra"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/derive"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics for your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.requireActive(ctx); err != nil {
				return writeErr(cmd, err)
			}
			st := app.ctrl.User()

			scope := api.Scope{}
			if !st.IsSuperuser {
				scope = api.Scope{UserID: st.ID, Username: st.Username}
			}
			snap, err := app.client.FetchAll(ctx, scope)
			if err != nil {
				return writeErr(cmd, err)
			}

			if st.IsSuperuser {
				s := derive.ComputeAdminStats(snap.Users, snap.Flats, snap.Bills,
					snap.Complaints, snap.Vehicles, snap.CameraRequests, snap.Notifications)
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"role":                  "admin",
						"totalUsers":            s.TotalUsers,
						"totalFlats":            s.TotalFlats,
						"occupiedFlats":         s.OccupiedFlats,
						"totalVehicles":         s.TotalVehicles,
						"pendingComplaints":     s.PendingComplaints,
						"overdueBills":          s.OverdueBills,
						"pendingCameraRequests": s.PendingCameraRequests,
						"totalRevenue":          s.TotalRevenue,
					},
				})
			}

			s := derive.ComputeResidentStats(snap.Bills, snap.Complaints, snap.Vehicles, snap.Notifications)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"role":                "resident",
					"totalComplaints":     s.TotalComplaints,
					"pendingComplaints":   s.PendingComplaints,
					"totalBills":          s.TotalBills,
					"unpaidBills":         s.UnpaidBills,
					"totalVehicles":       s.TotalVehicles,
					"unreadNotifications": s.UnreadNotifications,
				},
			})
		},
	}
}
