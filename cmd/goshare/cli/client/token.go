package client

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mwantia/goshare/pkg/token"
	"github.com/spf13/cobra"
)

func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Share token utilities",
		Long:  "Generate and inspect share tokens without talking to the bot.",
	}

	cmd.AddCommand(NewTokenNewCommand())
	cmd.AddCommand(NewTokenDecodeCommand())

	return cmd
}

func NewTokenNewCommand() *cobra.Command {
	var batch bool
	var botUsername string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a fresh share token",
		Long:  "Generates a fresh file or batch share token, optionally rendered as a deep link.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok := token.NewFile()
			if batch {
				tok = token.NewBatch()
			}

			if botUsername != "" {
				fmt.Println(token.DeepLink(botUsername, tok))
				return nil
			}
			fmt.Println(tok)
			return nil
		},
	}

	cmd.Flags().BoolVar(&batch, "batch", false, "Generate a batch token")
	cmd.Flags().StringVar(&botUsername, "bot", "", "Render as a deep link for this bot username")

	return cmd
}

func NewTokenDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Inspect a share token",
		Long:  "Validates a share token and prints its kind and creation time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]

			kind := "file"
			payload := raw
			if token.IsBatch(raw) {
				if _, err := token.ParseBatch(raw); err != nil {
					return fmt.Errorf("invalid batch token: %w", err)
				}
				kind = "batch"
				payload = strings.TrimPrefix(raw, token.BatchPrefix)
			} else if _, err := token.ParseFile(raw); err != nil {
				return fmt.Errorf("invalid file token: %w", err)
			}

			decoded, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return fmt.Errorf("invalid token encoding: %w", err)
			}
			parts := strings.SplitN(string(decoded), "_", 2)
			ts, err := strconv.ParseInt(parts[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid token timestamp: %w", err)
			}

			fmt.Printf("Kind:    %s\n", kind)
			fmt.Printf("Created: %s\n", time.Unix(ts, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}

	return cmd
}
