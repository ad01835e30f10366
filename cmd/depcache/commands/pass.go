package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/depcache/internal/app"
)

func (c *CLI) newPassCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pass <classes-dir>",
		Short: "Record a build pass and print the classes to recompile",
		Long: "Parses every class file below classes-dir, compares it with the cached metadata " +
			"and prints the classes whose sources must be recompiled in the next pass. " +
			"The pass is committed to the cache unless --dry-run is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.reporter(cmd)
			if err != nil {
				return err
			}

			id, _ := cmd.Flags().GetUint64("pass")
			refs, _ := cmd.Flags().GetString("refs")
			removed, _ := cmd.Flags().GetStringArray("removed")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := c.app.Pass(cmd.Context(), app.PassOptions{
				Dir:     args[0],
				ID:      id,
				Refs:    refs,
				Removed: removed,
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}
			return rep.Pass(result)
		},
	}
	cmd.Flags().Uint64("pass", 0, "Build pass id (defaults to the last committed pass + 1)")
	cmd.Flags().String("refs", "", "YAML manifest of compiler-resolved references per class")
	cmd.Flags().StringArray("removed", nil, "Class whose source was deleted (repeatable)")
	cmd.Flags().BoolP("dry-run", "n", false, "Compute the recompilation set without committing the pass")
	return cmd
}
