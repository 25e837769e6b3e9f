package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teemow/tablero/internal/config"
	"github.com/teemow/tablero/internal/google"
)

func newLogoutCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored Google credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			store := google.NewFileStore(cfg.TokenFile)
			if err := store.Clear(); err != nil {
				return err
			}
			cmd.Printf("Removed credential %s\n", store.Path())
			return nil
		},
	}
}
