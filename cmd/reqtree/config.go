package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/reqtree/internal/config"
	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the settings file",
	}
	cmd.AddCommand(newConfigInitCmd(opts), newConfigShowCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := opts.dir()
			f := config.SettingsFormat(format)
			if f != config.SettingsFormatTOML && f != config.SettingsFormatJSON {
				return errdef.New(errdef.CodeConfig, "unsupported settings format %q", format)
			}
			handle := config.SettingsHandle{
				Path:   filepath.Join(dir, "settings."+format),
				Format: f,
			}
			if !force && fileExists(handle.Path) {
				return errdef.New(errdef.CodeConfig, "%s already exists (use --force to overwrite)", handle.Path)
			}
			if err := config.SaveSettings(config.DefaultSettingsIn(dir), handle); err != nil {
				return errdef.Wrap(errdef.CodeConfig, err, "init settings")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", handle.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.SettingsFormatTOML), "settings format: toml or json")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, handle, err := config.LoadSettingsFrom(opts.dir())
			if err != nil {
				return errdef.Wrap(errdef.CodeConfig, err, "load settings")
			}
			data, err := config.EncodeSettings(settings, handle.Format)
			if err != nil {
				return errdef.Wrap(errdef.CodeConfig, err, "encode settings")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", handle.Path)
			fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))
			return nil
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
