package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/FranksOps/indexnow/internal/keyfile"
	"github.com/spf13/cobra"
)

func newKeygenCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new IndexNow key",
		Long: `Prints a new key. With --write-dir the key file {key}.txt is also
written there, ready to be served from the site root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keyfile.Generate()

			if dir != "" {
				path := filepath.Join(dir, key+".txt")
				if err := os.WriteFile(path, []byte(key), 0o644); err != nil {
					return fmt.Errorf("write key file: %w", err)
				}
				a.logger.Info("wrote key file", "path", path)
			}

			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "write-dir", "", "also write {key}.txt into this directory")
	return cmd
}
