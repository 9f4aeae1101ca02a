package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/codeloom/internal/catalog"
)

var flavorsCmd = &cobra.Command{
	Use:   "flavors",
	Short: "List the available pipeline flavors",
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := catalog.Load(catalog.DefaultPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
			os.Exit(1)
		}

		for _, f := range cat.List() {
			labels := make([]string, 0, len(f.Spec.Roles))
			for _, role := range f.Spec.Roles {
				labels = append(labels, role.Label)
			}
			fmt.Printf("%-12s %s\n", f.ID, f.Description)
			fmt.Printf("             roles: %s (budget %d)\n",
				strings.Join(labels, " -> "), f.Spec.TurnBudget)
		}
	},
}

func init() {
	rootCmd.AddCommand(flavorsCmd)
}
