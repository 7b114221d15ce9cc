package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"BloomStore/internal/catalog"
)

var errEmptyCatalog = errors.New("catalog has no usable products")

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Work with catalog files",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog JSON file",
	Long: `Decode a catalog file the way the catalog service does and report how
many products it would serve and how many entries it would drop.

The command fails when the file is unreadable or yields no products.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogValidate,
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	products, dropped := catalog.Decode(f)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d products, %d dropped\n", args[0], len(products), dropped)
	for _, p := range products {
		c := catalog.NewCard(p)
		fmt.Fprintf(out, "  %-12s %-32s %s\n", p.ID, p.Title, c.PriceLabel)
	}

	if len(products) == 0 {
		return errEmptyCatalog
	}
	return nil
}
