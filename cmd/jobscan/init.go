package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/jobscan/internal/config"
)

//go:embed templates/jobscan.yaml
var searchTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .jobscan search file",
		Long: `Init writes a commented .jobscan search file to the current directory.

The generated file includes:
- Defaults shared by all searches
- An example named search
- Commented cookie, header and selector overrides

Examples:
  # Create .jobscan in current directory
  jobscan init

  # Create the file at a specific path
  jobscan init -o searches.yaml

  # Force overwrite existing file
  jobscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultSearchFile,
		"Output file path for the search file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing search file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("search file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := searchTemplate.ReadFile("templates/jobscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read search file template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file may hold session cookies.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write search file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created search file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to define your searches, then run:")
	fmt.Fprintln(out, "  jobscan search")

	return nil
}
