package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scimhub/core/internal/config"
	"github.com/scimhub/core/scim/catalog"
	"github.com/scimhub/core/scim/storage"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage per-tenant storage",
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create <tenantID>",
	Short: "Create the resource tables for a tenant",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantCreate,
}

var tenantDropCmd = &cobra.Command{
	Use:   "drop <tenantID>",
	Short: "Drop a tenant's resource tables",
	Args:  cobra.ExactArgs(1),
	RunE:  runTenantDrop,
}

func init() {
	tenantCmd.AddCommand(tenantCreateCmd)
	tenantCmd.AddCommand(tenantDropCmd)
}

func runTenantCreate(cmd *cobra.Command, args []string) error {
	backend, closeDB, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := backend.EnsureTenant(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("creating tenant %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "tenant %q ready\n", args[0])
	return nil
}

func runTenantDrop(cmd *cobra.Command, args []string) error {
	backend, closeDB, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := backend.DropTenant(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("dropping tenant %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "tenant %q dropped\n", args[0])
	return nil
}

func openBackend(cmd *cobra.Command) (*storage.Backend, func() error, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	db, kind, err := connectDatabase(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return storage.New(db, kind, catalog.New()), db.Close, nil
}
