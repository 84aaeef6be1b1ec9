package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coopcontrol/internal/app"
	"coopcontrol/internal/astro"

	"github.com/spf13/cobra"
)

func astronomicalCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "astronomical",
		Short: "Sunrise and sunset data",
	}
	cmd.AddCommand(addDailyCommand(opts), getDateCommand(opts))
	return cmd
}

func addDailyCommand(opts *Options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add-daily",
		Short: "Add today's astronomical data to the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(a *app.App) error {
				if _, err := a.Astro.AddDaily(cmd.Context(), date); err != nil {
					return fmt.Errorf("Error initializing results for %s, see logs", date)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized astronomical data for %s\n", date)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", astro.Today, "An optional date to check, default is today")
	return cmd
}

func getDateCommand(opts *Options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print stored astronomical data for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := time.Parse(astro.DateLayout, date); err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
			}

			return opts.withApp(func(a *app.App) error {
				rec, err := a.Records.GetByDate(cmd.Context(), date)
				if errors.Is(err, astro.ErrNotFound) {
					return fmt.Errorf("Not found: %s", date)
				}
				if err != nil {
					return err
				}

				view, err := a.Records.Render(*rec)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to show (YYYY-MM-DD)")
	cmd.MarkFlagRequired("date")
	return cmd
}
