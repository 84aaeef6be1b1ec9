package cli

import (
	"errors"
	"fmt"
	"strings"

	"coopcontrol/internal/app"
	"coopcontrol/internal/device"

	"github.com/spf13/cobra"
)

func applicationCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "application",
		Short: "Manage applications",
	}
	cmd.AddCommand(getAppStatusCommand(opts), setAppStatusCommand(opts))
	return cmd
}

func getAppStatusCommand(opts *Options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "get-app-status",
		Short: "Get application by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(a *app.App) error {
				application, err := a.Devices.GetApplication(cmd.Context(), name)
				if errors.Is(err, device.ErrNotFound) {
					return fmt.Errorf("Not found: %s", name)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), application)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "A name to check")
	cmd.MarkFlagRequired("name")
	return cmd
}

func setAppStatusCommand(opts *Options) *cobra.Command {
	var name, status string
	var create bool

	cmd := &cobra.Command{
		Use:   "set-app-status",
		Short: "Set the status for an application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := device.ParseAppStatus(status)
			if err != nil {
				return fmt.Errorf("%w (choose from %s)", err, strings.Join(device.AppStatusNames(), ", "))
			}

			return opts.withApp(func(a *app.App) error {
				application, created, err := a.Devices.SetApplicationStatus(cmd.Context(), name, parsed, create)
				switch {
				case errors.Is(err, device.ErrAlreadyExists):
					return fmt.Errorf("%s already exists, cannot create it", name)
				case errors.Is(err, device.ErrNotFound):
					return fmt.Errorf("%s not found, cannot update status", name)
				case err != nil:
					return err
				}

				verb := "Updated"
				if created {
					verb = "Created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Application: %s\n", verb, application)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "A name for the application")
	cmd.Flags().StringVar(&status, "status", "", "One of "+strings.Join(device.AppStatusNames(), ", "))
	cmd.Flags().BoolVar(&create, "create", false, "Create the application instead of updating it")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("status")
	return cmd
}

func hardwareCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hardware",
		Short: "Manage hardware",
	}
	cmd.AddCommand(getHardwareStatusCommand(opts), setHardwareStatusCommand(opts))
	return cmd
}

func getHardwareStatusCommand(opts *Options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "get-hardware-status",
		Short: "Get hardware by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(a *app.App) error {
				hw, err := a.Devices.GetHardware(cmd.Context(), name)
				if errors.Is(err, device.ErrNotFound) {
					return fmt.Errorf("Not found: %s", name)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hw)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "A name to check")
	cmd.MarkFlagRequired("name")
	return cmd
}

func setHardwareStatusCommand(opts *Options) *cobra.Command {
	var name, status string

	cmd := &cobra.Command{
		Use:   "set-hardware-status",
		Short: "Update the status for a piece of hardware",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := device.ParseHardwareStatus(status)
			if err != nil {
				return fmt.Errorf("%w (choose from %s)", err, strings.Join(device.HardwareStatusNames(), ", "))
			}

			return opts.withApp(func(a *app.App) error {
				hw, err := a.Devices.SetHardwareStatus(cmd.Context(), name, parsed)
				if errors.Is(err, device.ErrNotFound) {
					return fmt.Errorf("%s not found, cannot update status", name)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated Hardware: %s\n", hw)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "A name for the hardware")
	cmd.Flags().StringVar(&status, "status", "", "One of "+strings.Join(device.HardwareStatusNames(), ", "))
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("status")
	return cmd
}
