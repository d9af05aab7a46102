package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func themeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the color theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(c.out, "Theme: %s\n", themeName(c.app.Theme.DarkMode()))
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between dark and light mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.toggleTheme(cmd)
		},
	})
	return cmd
}

func (c *cli) toggleTheme(cmd *cobra.Command) error {
	dark := c.app.Theme.Toggle(cmd.Context())
	c.renderer().Message("Theme: " + themeName(dark))
	if err := c.app.Theme.LastSyncError(); err != nil {
		fmt.Fprintln(c.errOut, "Theme saved on this device only:", err)
	}
	return nil
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
