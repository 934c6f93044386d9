package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/config"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file with the default settings to --config, or to
$XDG_CONFIG_HOME/clickup-to-sqlite/config.toml when --config is not given.

An existing file is left alone unless --force is set.`,
	Args: cobra.NoArgs,
	// The file to write need not exist yet, so skip loading it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}

		if err := config.WriteFile(path, force); err != nil {
			return err
		}
		fmt.Printf("%s Wrote %s\n", ui.RenderPass("✓"), ui.RenderAccent(path))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file, the
environment and flags. The access token is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.Redacted().Encode()
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			if _, statErr := os.Stat(used); statErr == nil {
				fmt.Println(ui.RenderMuted("# " + used))
			}
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
