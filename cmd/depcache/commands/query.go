package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/depcache/internal/core/domain"
)

func (c *CLI) newDependentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dependents <class>",
		Short: "List the classes that directly depend on a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.reporter(cmd)
			if err != nil {
				return err
			}
			deps, err := c.app.Dependents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rep.Dependents(domain.InternalName(args[0]), deps)
		},
	}
}

func (c *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <class>",
		Short: "Print the cached metadata of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.reporter(cmd)
			if err != nil {
				return err
			}
			view, err := c.app.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rep.Class(view)
		},
	}
}

func (c *CLI) newSupertypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supertype <class> <class>",
		Short: "Print the nearest common superclass of two classes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.reporter(cmd)
			if err != nil {
				return err
			}
			common, err := c.app.Supertype(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return rep.Supertype(domain.InternalName(args[0]), domain.InternalName(args[1]), common)
		},
	}
}
