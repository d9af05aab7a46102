package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/hungry/internal/model"
	"github.com/forgo/hungry/internal/service"
	"github.com/forgo/hungry/internal/view"
)

func favoritesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite restaurants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.app.Favorites.Identity() == nil {
				if err := c.app.Favorites.LastSyncError(); err != nil {
					return err
				}
				c.renderer().Message(service.MsgLoginToFavorite)
				return nil
			}
			c.renderer().Favorites(c.app.Favorites.Favorites())
			return nil
		},
	}
}

// toggleFavorite flips r and reports the outcome
func (c *cli) toggleFavorite(cmd *cobra.Command, r model.Restaurant) error {
	added, err := c.app.Favorites.Toggle(cmd.Context(), r)
	if errors.Is(err, service.ErrNotAuthenticated) {
		c.renderer().Message(service.MsgLoginToFavorite)
		return shown(err)
	}
	if err != nil {
		return err
	}
	if added {
		fmt.Fprintf(c.out, "%s Added %s to favorites\n", view.Heart(true), r.Name)
	} else {
		fmt.Fprintf(c.out, "%s Removed %s from favorites\n", view.Heart(false), r.Name)
	}
	return nil
}
