package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/dogmatch/internal/models"
	"github.com/patric-chuzhbe/dogmatch/internal/search"
	"github.com/patric-chuzhbe/dogmatch/internal/validation"
)

func (r *runner) newBreedsCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "breeds",
		Short: "List dog breeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.requireSession(); err != nil {
				return err
			}

			breeds, err := r.app.Search.Breeds(cmd.Context())
			if err != nil {
				return err
			}

			for _, breed := range search.MatchBreeds(breeds, filter) {
				fmt.Fprintln(cmd.OutOrStdout(), breed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only show breeds containing this text")

	return cmd
}

type searchFlags struct {
	breeds   []string
	zipCodes []string
	ageMin   int
	ageMax   int
	sort     string
	page     int
	city     string
	states   []string
}

func (r *runner) newSearchCommand() *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search adoptable dogs",
		Long: `Search adoptable dogs. Results come 24 per page, sorted by breed unless
--sort says otherwise. Favorites are marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.requireSession(); err != nil {
				return err
			}
			return r.runSearch(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&flags.breeds, "breed", nil, "breed to include, repeatable")
	f.StringArrayVar(&flags.zipCodes, "zip", nil, "5-digit zip code to include, repeatable")
	f.IntVar(&flags.ageMin, "age-min", 0, "minimum age")
	f.IntVar(&flags.ageMax, "age-max", 0, "maximum age")
	f.StringVar(&flags.sort, "sort", "", "sort as field:order, field is breed, name or age")
	f.IntVar(&flags.page, "page", 1, "page to show")
	f.StringVar(&flags.city, "city", "", "only dogs in zip codes of this city")
	f.StringArrayVar(&flags.states, "state", nil, "only dogs in zip codes of this two-letter state, repeatable")

	return cmd
}

func (r *runner) runSearch(cmd *cobra.Command, flags *searchFlags) error {
	ctx := cmd.Context()
	ctrl := r.app.Search

	sort, err := validation.Sort(flags.sort)
	if err != nil {
		return err
	}

	filters := search.Filters{
		Breeds:   flags.breeds,
		ZipCodes: flags.zipCodes,
		Sort:     sort,
	}
	if cmd.Flags().Changed("age-min") {
		filters.AgeMin = models.Ptr(flags.ageMin)
	}
	if cmd.Flags().Changed("age-max") {
		filters.AgeMax = models.Ptr(flags.ageMax)
	}

	if err := ctrl.SetFilters(ctx, filters); err != nil {
		return err
	}

	if flags.city != "" || len(flags.states) > 0 {
		err := ctrl.FilterByLocation(ctx, models.LocationSearchParams{
			City:   flags.city,
			States: flags.states,
			Size:   models.Ptr(100),
		})
		if err != nil {
			return err
		}
	}

	if flags.page != ctrl.Page() && ctrl.State().Total > 0 {
		if err := ctrl.ChangePage(ctx, flags.page); err != nil {
			return err
		}
	}

	state := ctrl.State()
	out := cmd.OutOrStdout()
	if state.Total == 0 {
		fmt.Fprintln(out, "No dogs match these filters")
		return nil
	}

	noun := "dogs"
	if state.Total == 1 {
		noun = "dog"
	}
	fmt.Fprintf(out, "Found %d %s\n", state.Total, noun)
	if err := printDogs(out, state.Dogs, r.app.Favorites.IsFavorite); err != nil {
		return err
	}
	if state.TotalPages > 1 {
		fmt.Fprintln(out, pageLine(state.Page, state.TotalPages))
	}

	return nil
}
