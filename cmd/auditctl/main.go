package main

import (
	"adaudit/internal/catalog"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var catalogFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "auditctl",
		Short:         "Offline tools for the marketing audit catalog",
		Long:          `Inspect the audit question catalog and score answer files without a running server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&catalogFile, "catalog", os.Getenv("CATALOG_FILE"), "YAML catalog to use instead of the built-in one")

	root.AddGroup(inspectGroup, scoreGroup)
	root.AddCommand(newCatalogCmd(), newScoreCmd())
	return root
}

func loadCatalog() (*catalog.Catalog, error) {
	if catalogFile != "" {
		return catalog.LoadFile(catalogFile)
	}
	return catalog.Default()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
