package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func signupCmd(c *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signup [email]",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.password(password)
			if err != nil {
				return err
			}
			identity, err := c.app.Identity.SignUp(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Welcome, %s!\n", identity.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func loginCmd(c *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.password(password)
			if err != nil {
				return err
			}
			identity, err := c.app.Identity.SignIn(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Signed in as %s\n", identity.Email)
			c.renderer().DonationTotal(c.app.Donations.Total())
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.Identity.SignOut(cmd.Context())
			fmt.Fprintln(c.out, "Signed out")
			return nil
		},
	}
}

func whoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := c.renderer()
			r.Settings(c.app.Identity.Current(), c.app.Theme.DarkMode())
			r.DonationTotal(c.app.Donations.Total())
			return nil
		},
	}
}

// password returns flagValue or prompts for one
func (c *cli) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return c.readLine("Password: ")
}
