package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/depcache/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <classes-dir>",
		Short: "Run a build pass whenever the compiler writes class files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.reporter(cmd)
			if err != nil {
				return err
			}
			refs, _ := cmd.Flags().GetString("refs")
			return c.app.Watch(cmd.Context(), app.WatchOptions{Dir: args[0], Refs: refs}, rep)
		},
	}
	cmd.Flags().String("refs", "", "YAML manifest of compiler-resolved references per class")
	return cmd
}
