package snapcal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/snapcal/snapcal-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage snapcal local configuration",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create config file: %w", err)
		}
		defer f.Close()
		if err := config.Write(f, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.BaseURL = apiURL
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config file:\t%s\n", path)
		fmt.Fprintf(out, "base_url:\t%s\n", cfg.BaseURL)
		fmt.Fprintf(out, "timeout_sec:\t%d\n", cfg.TimeoutSec)
		fmt.Fprintf(out, "upload_timeout_sec:\t%d\n", cfg.UploadTimeoutSec)
		fmt.Fprintf(out, "log_level:\t%s\n", cfg.LogLevel)
		statePath, err := resolveStatePath(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "state db:\t%s\n", statePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configGetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}
