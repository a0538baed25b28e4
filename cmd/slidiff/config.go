package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidiff/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/services"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage slidiff configuration",
		Long: `Configuration is layered: built-in defaults, the global config file,
./slidiff.toml, SLIDIFF_* environment variables and finally command-line
flags. A file passed with --config replaces both config files.`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the global config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	logger := newLogger(entities.LoggingConfig{Level: string(entities.LogLevelWarn)}, cmd.ErrOrStderr())
	configService := services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger(), logger)

	path, err := configService.CreateGlobalConfig(cmd.Context(), force)
	if errors.Is(err, services.ErrConfigExists) {
		return fmt.Errorf("%w (use --force to overwrite)", err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	return config.Encode(cmd.OutOrStdout(), a.config)
}
