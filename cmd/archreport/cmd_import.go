package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixture.yaml>",
		Short: "Load a YAML description tree into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := st.ImportFixture(context.Background(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d descriptions, %d creation events, %d physical objects into %s\n",
				res.Descriptions, res.Events, res.PhysicalObjects, st.Path())
			return nil
		},
	}
}
