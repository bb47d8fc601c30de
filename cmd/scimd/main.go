// Command scimd wires the SCIM core's ambient collaborators — config,
// structured logging, and the storage backend — and exposes the
// tenant-lifecycle and config operations an operator needs around it.
// The HTTP transport itself is an external collaborator and is
// not built here.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "scimd",
	Short:   "Multi-tenant SCIM 2.0 provisioning core",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tenantCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
