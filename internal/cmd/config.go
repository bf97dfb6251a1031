package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modslice/modslice/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the .modslice configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default .modslice/config.yaml",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	workDir := "."

	if configForce {
		configDir, err := config.EnsureConfigDir(workDir)
		if err != nil {
			return &IOError{Path: workDir, Err: err}
		}
		path := filepath.Join(configDir, config.ConfigFileName)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &IOError{Path: path, Err: err}
		}
	}

	path, err := config.SaveDefault(workDir)
	if err != nil {
		configDir, findErr := config.FindConfigDir(workDir)
		if findErr == nil {
			existing := filepath.Join(configDir, config.ConfigFileName)
			fmt.Printf("Already initialized at %s\n", existing)
			return nil
		}
		return &IOError{Path: workDir, Err: err}
	}

	fmt.Printf("Initialized modslice config at %s\n", path)
	return nil
}
