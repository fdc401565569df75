// Package configcmder provides the config command for managing persistent
// perfumery configuration stored in the .perfumery/ directory.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/pkg/config"
)

const configLongDesc string = `Manage persistent perfumery configuration.

Configuration is stored as config.toml in the .perfumery/ directory and
provides default values for command flags. CLI flags and PERFUMERY_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  client.base_url, client.fallback_url, client.timeout,
  client.include_context, client.max_frame_bytes,
  storage.sqlite_path, server.listen, server.chunk_delay, render.format

Use subcommands to get, set, or list configuration values:
  perfumery config set <key> <value>    Set a configuration value
  perfumery config get <key>            Get a configuration value
  perfumery config list                 List all configuration values

Examples:
  perfumery config set client.base_url https://shop.example.com/api
  perfumery config set client.include_context true
  perfumery config get client.timeout
  perfumery config list`

const configShortDesc string = "Manage persistent perfumery configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}
