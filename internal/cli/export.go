package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <users|flats|bills|complaints|vehicles>",
		Short: "Export a resource as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.requireActive(ctx); err != nil {
				return writeErr(cmd, err)
			}
			csvText, err := exportResource(ctx, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), csvText)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(csvText), 0o644); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func exportResource(ctx context.Context, app *App, resource string) (string, error) {
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
			return "", errors.New("users requires an admin session")
		}
		users, err := app.client.Users(ctx)
		if err != nil {
			return "", err
		}
		return export.Users(users)
	case "flats":
		flats, err := app.client.Flats(ctx, scope(api.ScopeFlatsByResident(st.ID)))
		if err != nil {
			return "", err
		}
		return export.Flats(flats)
	case "bills":
		bills, err := app.client.Bills(ctx, scope(api.ScopeBillsByOwner(st.Username)))
		if err != nil {
			return "", err
		}
		return export.Bills(bills)
	case "complaints":
		complaints, err := app.client.Complaints(ctx, scope(api.ScopeComplaintsByAuthor(st.Username)))
		if err != nil {
			return "", err
		}
		return export.Complaints(complaints)
	case "vehicles":
		vehicles, err := app.client.Vehicles(ctx, scope(api.ScopeVehiclesByResident(st.Username)))
		if err != nil {
			return "", err
		}
		return export.Vehicles(vehicles)
	default:
		return "", fmt.Errorf("unknown resource: %s", resource)
	}
}
