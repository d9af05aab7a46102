package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/hungry/internal/service"
)

func donateCmd(c *cli) *cobra.Command {
	var restaurant string
	cmd := &cobra.Command{
		Use:   "donate [amount]",
		Short: "Donate to a restaurant",
		Long:  "Donate an amount in dollars, optionally naming the restaurant it supports.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.donate(cmd, args[0], restaurant)
		},
	}
	cmd.Flags().StringVar(&restaurant, "restaurant", "", "restaurant the donation supports")
	return cmd
}

// donate records amount, attributed to restaurant when one is named
func (c *cli) donate(cmd *cobra.Command, amount, restaurant string) error {
	var err error
	if restaurant != "" {
		_, err = c.app.Donations.DonateTo(cmd.Context(), amount, restaurant)
	} else {
		_, err = c.app.Donations.Donate(cmd.Context(), amount, restaurant)
	}

	r := c.renderer()
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		r.Message(service.MsgLoginToDonate)
		return shown(err)
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrRestaurantRequired):
		r.Error(err)
		return shown(err)
	case err != nil:
		return err
	}

	if restaurant != "" {
		fmt.Fprintf(c.out, "Thanks for supporting %s!\n", restaurant)
	}
	r.DonationTotal(c.app.Donations.Total())
	return nil
}
