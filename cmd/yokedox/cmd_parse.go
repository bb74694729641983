package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mongodb-university/yokedox/format"
	"github.com/mongodb-university/yokedox/java/javadoc"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse one raw documentation comment and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read comment: %w", err)
			}

			doc := javadoc.Parse(string(data))
			out := cmd.OutOrStdout()
			switch outputFormat {
			case "json":
				text, err := format.MarshalComment(doc, "  ")
				if err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				fmt.Fprintln(out, string(text))
			case "text":
				fmt.Fprintln(out, javadoc.Format(doc))
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, text)")
	return cmd
}
