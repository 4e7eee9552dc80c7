package main

import (
	"fmt"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/auth"
	"github.com/spf13/cobra"
)

func adminCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(adminCreateCmd(e), adminResetCmd(e))
	return cmd
}

func adminCreateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [email]",
		Short: "Create an admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			db, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			a, err := (&auth.Repo{DB: db}).Create(cmd.Context(), auth.Admin{
				Email:        args[0],
				Name:         name,
				PasswordHash: hash,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", a.Email, a.ID)
			return nil
		},
	}
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("password", "", "initial password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func adminResetCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password [email]",
		Short: "Set a new password for an existing admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			db, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			if err := (&auth.Repo{DB: db}).SetPassword(cmd.Context(), args[0], hash); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", auth.NormalizeEmail(args[0]))
			return nil
		},
	}
	cmd.Flags().String("password", "", "new password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
