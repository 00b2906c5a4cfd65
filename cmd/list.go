package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/rag-compare/internal/scenario"
)

func newListCmd() *cobra.Command {
	var scenariosDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available scenario sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := scenario.List(scenariosDir)
			if err != nil {
				return fmt.Errorf("failed to list scenario sets: %w", err)
			}

			if len(names) == 0 {
				fmt.Println("No scenario sets found.")
				return nil
			}

			fmt.Printf("Available scenario sets:\n\n")
			for _, name := range names {
				set, err := scenario.Load(name, scenariosDir)
				if err != nil {
					fmt.Printf("  - %s (error loading: %v)\n", name, err)
					continue
				}
				fmt.Printf("  - %s (%s)\n", name, set.Name)
				fmt.Printf("    Description: %s\n", set.Description)
				fmt.Printf("    Version: %s\n", set.Version)
				fmt.Printf("    Scenarios: %d\n\n", len(set.Scenarios))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&scenariosDir, "scenarios-dir", "", "External scenario sets directory")

	return cmd
}
