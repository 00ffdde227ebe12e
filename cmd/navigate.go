package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var navigateCmd = &cobra.Command{
	Use:   "navigate <path>",
	Short: "Resolve a portal path against the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(d *Dependencies) error {
			res, err := d.Navigator.Navigate(args[0])
			if err != nil {
				return err
			}

			if res.Redirected() {
				chain := append([]string{args[0]}, res.Redirects...)
				d.Printer.Info("redirected: %s", strings.Join(chain, " -> "))
			}
			d.Printer.Print("%s => %s", res.Path, d.Printer.Bold(res.View))
			return nil
		})
	},
}
