package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createValidateCommand creates the validate command.
func createValidateCommand(env environment) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the rules document",
		Long:  "Parse the rules document, check every rule and compile its patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, env)
			if err != nil {
				return err
			}

			result, err := s.newApp().ValidateRules()
			if err != nil {
				return fmt.Errorf("validation error: %w", err)
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), result)
			return nil
		},
	}
}
