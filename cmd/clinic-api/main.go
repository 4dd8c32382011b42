package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand returns the root command with all subcommands attached
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clinic-api",
		Short: "Clinic website backend API",
		Long: `The clinic API serves the public clinic website and its admin panel:
articles, gallery images, treatment listings and health declarations,
backed by MongoDB with image uploads stored on disk.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newCreateAdminCommand())
	rootCmd.AddCommand(newSeedCommand())

	return rootCmd
}
