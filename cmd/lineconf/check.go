package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a settings file without applying it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if len(args) == 1 {
				path = args[0]
			}

			a, err := newApp(cmd, path, false)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.config.Read()
			if err != nil {
				return err
			}
			if err := a.config.Check(s); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d options, %d key handlers)\n",
				path, len(s.Update.Fields()), len(s.KeyHandlers))
			return nil
		},
	}
}
