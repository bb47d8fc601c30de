package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scimhub/core/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and scaffold the core's configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (defaults + file + env) as YAML",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration and report any validation errors",
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a starter configuration file with default values",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(cfg)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "config OK")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Listen:  ":8080",
			BaseURL: "http://localhost:8080/scim/v2",
		},
		Database: config.DatabaseConfig{
			Backend:     "sqlite",
			DSN:         "scim.db",
			MaxOpenConn: 10,
		},
		Tenancy: config.TenancyConfig{
			MetaDateTimeFormat: "rfc3339",
		},
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal starter config: %w", err)
	}
	if err := os.WriteFile(args[0], out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote starter config to %s\n", args[0])
	return nil
}
