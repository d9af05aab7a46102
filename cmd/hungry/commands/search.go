package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgo/hungry/internal/service"
)

func searchCmd(c *cli) *cobra.Command {
	var (
		stars    int
		category string
		page     int
	)
	cmd := &cobra.Command{
		Use:   "search [city...]",
		Short: "Search restaurants in a city",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.app.Search.Search(cmd.Context(), strings.Join(args, " "), stars, category, page)
			c.showResults()
			return shownIfState(err)
		},
	}
	cmd.Flags().IntVar(&stars, "stars", 0, "minimum rating 1-5 (0 for any)")
	cmd.Flags().StringVar(&category, "category", "", "only restaurants in this category")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	return cmd
}

func categoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List category suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := c.app.Search.Categories(cmd.Context())
			if err != nil {
				return err
			}
			c.renderer().Categories(categories)
			return nil
		},
	}
}

// showResults renders the controller state with favorite hearts
func (c *cli) showResults() {
	c.renderer().Results(c.app.Search.State(), c.app.Favorites.IsFavorite)
}

// shownIfState marks errors the search state message already displayed
func shownIfState(err error) error {
	if err == nil || errors.Is(err, service.ErrSearchSuperseded) {
		return nil
	}
	return shown(err)
}
