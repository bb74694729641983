package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mongodb-university/yokedox/config"
	"github.com/mongodb-university/yokedox/host/javasrc"
	"github.com/mongodb-university/yokedox/host/treefile"
)

func newTreeCmd() *cobra.Command {
	var source string
	var treeFormat string
	var exclude []string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Dump the element tree built from .java sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				return errors.New("--source is required")
			}
			filter, err := config.NewPathFilter(exclude)
			if err != nil {
				return err
			}
			roots, err := javasrc.Load(cmd.Context(), source, javasrc.Options{
				Exclude:     filter,
				Parallelism: config.Default().Parallelism,
			})
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}
			return treefile.Encode(cmd.OutOrStdout(), roots, treeFormat)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "directory of .java sources")
	cmd.Flags().StringVarP(&treeFormat, "format", "f", "yaml", "output format (yaml, json)")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "skip source paths matching this glob (repeatable)")
	return cmd
}
