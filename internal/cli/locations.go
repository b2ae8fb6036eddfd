package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/dogmatch/internal/models"
	"github.com/patric-chuzhbe/dogmatch/internal/validation"
)

func (r *runner) newLocationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Look up zip codes",
	}

	lookup := &cobra.Command{
		Use:   "lookup ZIP...",
		Short: "Resolve zip codes to cities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, zips []string) error {
			if err := r.requireSession(); err != nil {
				return err
			}
			for _, zip := range zips {
				if err := validation.ZipCode(zip); err != nil {
					return err
				}
			}

			locations, err := r.app.API.GetLocations(cmd.Context(), zips)
			if err != nil {
				return err
			}
			return printLocations(cmd.OutOrStdout(), locations)
		},
	}

	var city string
	var states []string
	var size int
	find := &cobra.Command{
		Use:   "search",
		Short: "Find zip codes by city and state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.requireSession(); err != nil {
				return err
			}

			results, err := r.app.API.SearchLocations(cmd.Context(), models.LocationSearchParams{
				City:   city,
				States: states,
				Size:   models.Ptr(size),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Found %d location(s)\n", results.Total)
			return printLocations(cmd.OutOrStdout(), results.Results)
		},
	}
	find.Flags().StringVar(&city, "city", "", "city name")
	find.Flags().StringArrayVar(&states, "state", nil, "two-letter state code, repeatable")
	find.Flags().IntVar(&size, "size", 25, "maximum number of results")

	cmd.AddCommand(lookup, find)

	return cmd
}
