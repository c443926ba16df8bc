package main

import (
	"errors"
	"fmt"

	"github.com/FranksOps/indexnow/internal/keyfile"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the key file is published and matches the key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if err := keyfile.Validate(a.cfg.Key); err != nil {
				return err
			}

			location := a.cfg.KeyLocation
			if location == "" {
				location = keyfile.Location(a.cfg.Host, a.cfg.Key)
			}

			a.logger.Debug("verifying key file", "location", location)
			if err := keyfile.NewVerifier(a.httpClient()).Verify(cmd.Context(), location, a.cfg.Key); err != nil {
				if errors.Is(err, keyfile.ErrMismatch) {
					return fmt.Errorf("key file at %s does not match the configured key", location)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "key file OK: %s\n", location)
			return nil
		},
	}
}
