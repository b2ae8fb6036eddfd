package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/dogmatch/internal/logger"
)

func (r *runner) newMatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "match",
		Short: "Let the service pick one dog among your favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.requireSession(); err != nil {
				return err
			}

			dog, err := r.app.Matcher.Generate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dog == nil {
				fmt.Fprintln(out, "No match found")
				return nil
			}

			fmt.Fprintf(out, "Your match: %s the %s, %d years old (%s)\n", dog.Name, dog.Breed, dog.Age, dog.ID)

			where := dog.ZipCode
			locations, err := r.app.API.GetLocations(cmd.Context(), []string{dog.ZipCode})
			switch {
			case err != nil:
				logger.Log.Warnw("resolving match location", "zip", dog.ZipCode, zap.Error(err))
			case len(locations) > 0:
				where = fmt.Sprintf("%s, %s %s", locations[0].City, locations[0].State, dog.ZipCode)
			}
			fmt.Fprintf(out, "Location: %s\n", where)
			if dog.Img != "" {
				fmt.Fprintf(out, "Photo: %s\n", dog.Img)
			}

			return nil
		},
	}
}
