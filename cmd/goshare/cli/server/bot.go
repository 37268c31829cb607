package server

import (
	"context"
	"fmt"

	"github.com/mwantia/goshare/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/goshare/internal/config/server"
)

func NewBotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Start the GoShare Bot Agent",
		Long:  `Start the GoShare Bot Agent`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			agent := agent.NewAgent(cfg)
			if err := agent.Serve(context.Background()); err != nil {
				print(err)
				return err
			}

			return nil
		},
	}

	return cmd
}
