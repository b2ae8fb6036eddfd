package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/dogmatch/internal/models"
)

func (r *runner) newFavoritesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite dogs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add ID...",
			Short: "Add dogs to favorites",
			Args:  cobra.MinimumNArgs(1),
			RunE:  r.addFavorites,
		},
		&cobra.Command{
			Use:   "remove ID...",
			Short: "Remove dogs from favorites",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, ids []string) error {
				for _, id := range ids {
					if err := r.app.Favorites.Remove(cmd.Context(), id); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d favorite(s) left\n", r.app.Favorites.Count())
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List favorites",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dogs := r.app.Favorites.List()
				if len(dogs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet")
					return nil
				}
				return printDogs(cmd.OutOrStdout(), dogs, nil)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every favorite",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := r.app.Favorites.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Favorites cleared")
				return nil
			},
		},
	)

	return cmd
}

// addFavorites fetches the full records first so favorites hold complete
// dogs. Unknown ids are reported and nothing is added.
func (r *runner) addFavorites(cmd *cobra.Command, ids []string) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	dogs, err := r.app.API.GetDogs(cmd.Context(), ids)
	if err != nil {
		return err
	}

	byID := make(map[string]models.Dog, len(dogs))
	for _, dog := range dogs {
		byID[dog.ID] = dog
	}

	var unknown []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown dog id(s): %s", strings.Join(unknown, ", "))
	}

	for _, id := range ids {
		dog := byID[id]
		if err := r.app.Favorites.Add(cmd.Context(), dog); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s the %s (%s)\n", dog.Name, dog.Breed, dog.ID)
	}

	return nil
}
