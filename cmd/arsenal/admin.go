package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erazemk/arsenal/internal/audit"
	"github.com/erazemk/arsenal/internal/auth"
	"github.com/erazemk/arsenal/internal/config"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
)

func openData(configPath string) (config.Config, *store.Store, *audit.Log, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, nil, err
	}
	st, err := store.Open(cfg.DataDir, cfg.Items)
	if err != nil {
		return cfg, nil, nil, err
	}
	auditLog, err := audit.Open(filepath.Join(cfg.DataDir, audit.FileName))
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, st, auditLog, nil
}

func runBackup(ctx context.Context, configPath string) error {
	cfg, st, auditLog, err := openData(configPath)
	if err != nil {
		return err
	}

	dir, err := st.Backup(ctx, cfg.BackupsDir, auditLog)
	if err != nil {
		_ = auditLog.Append(ctx, model.ActionError, model.SystemActor, "Błąd kopii zapasowej: "+err.Error())
		return fmt.Errorf("backup: %w", err)
	}
	_ = auditLog.Append(ctx, model.ActionBackup, model.SystemActor, "Utworzono kopię zapasową: "+filepath.Base(dir))
	fmt.Println("Backup written to", dir)
	return nil
}

func newUserCmd(configPath *string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var role, firstName, lastName, unit string
	add := &cobra.Command{
		Use:   "add <login>",
		Short: "Create a user with a generated password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, auditLog, err := openData(*configPath)
			if err != nil {
				return err
			}

			password, err := auth.GeneratePassword(16)
			if err != nil {
				return fmt.Errorf("generating password: %w", err)
			}
			stored, err := auth.PreparePassword(password, cfg.Auth.HashPasswords)
			if err != nil {
				return err
			}

			user, err := st.CreateUser(cmd.Context(), model.User{
				Login:     args[0],
				Password:  stored,
				FirstName: firstName,
				LastName:  lastName,
				Role:      role,
				Unit:      unit,
			})
			if err != nil {
				return fmt.Errorf("creating user: %w", err)
			}
			_ = auditLog.Append(cmd.Context(), model.ActionAdmin, model.SystemActor,
				fmt.Sprintf("Dodano użytkownika: %s (%s)", user.Login, user.Role))

			fmt.Printf("User %s (%s) created.\n", user.Login, user.Role)
			fmt.Printf("  Password: %s\n", password)
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", model.RoleUser, "role: Administrator, Magazynier or Użytkownik")
	add.Flags().StringVar(&firstName, "first-name", "", "first name")
	add.Flags().StringVar(&lastName, "last-name", "", "last name")
	add.Flags().StringVar(&unit, "unit", "", "unit")

	userCmd.AddCommand(add)
	return userCmd
}
