/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/config"
)

// CLI is the docstore command line.
type CLI struct {
	rootCmd   *cobra.Command
	viperInst *viper.Viper

	// open builds the store for commands that need the table.
	open func(ctx context.Context, cfg config.Config) (*docstore.Store, error)
}

// NewCLI builds the command tree.
func NewCLI() *CLI {
	cli := &CLI{viperInst: viper.New(), open: docstore.Open}
	cli.setupViperConfig()
	cli.createRootCommand()
	cli.addCommands()
	return cli
}

// Execute runs the command line.
func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) setupViperConfig() {
	cli.viperInst.SetEnvPrefix("DOCSTORE")
	cli.viperInst.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cli.viperInst.AutomaticEnv()
}

func (cli *CLI) createRootCommand() {
	cli.rootCmd = &cobra.Command{
		Use:   "docstore",
		Short: "docstore CLI - inspect and provision a docstore table",
		Long: `docstore CLI works against a single docstore DynamoDB table.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (DOCSTORE_*)
3. The YAML file given with --config
4. Built-in defaults

Examples:
  docstore key encode --tenant acme docs#123
  docstore schema check schema.yaml
  docstore schema apply --tenant acme schema.yaml
  DOCSTORE_TABLE_NAME=docs docstore attributes list --tenant acme
  docstore partition dump --tenant acme docs#123`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.viperInst.BindPFlags(cmd.Flags())
		},
	}

	flags := cli.rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("table-name", "", "DynamoDB table name")
	flags.String("region", "", "AWS region")
	flags.String("endpoint", "", "DynamoDB endpoint override")
	flags.StringP("tenant", "t", "", "tenant (site) id; empty for the default tenant")
	flags.StringP("output", "o", "text", "output format (text|json|yaml)")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
}

func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.versionCommand(),
		cli.keyCommand(),
		cli.schemaCommand(),
		cli.attributesCommand(),
		cli.partitionCommand(),
	)
}

// loadConfig layers the flag and environment values bound in viper over
// config.Load.
func (cli *CLI) loadConfig() (config.Config, error) {
	v := cli.viperInst

	cfg, err := config.Read(v.GetString("config"))
	if err != nil {
		return config.Config{}, err
	}

	if s := v.GetString("table-name"); s != "" {
		cfg.TableName = s
	}
	if s := v.GetString("region"); s != "" {
		cfg.Region = s
	}
	if s := v.GetString("endpoint"); s != "" {
		cfg.Endpoint = s
	}
	if s := v.GetString("log-level"); s != "" {
		cfg.LogLevel = s
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (cli *CLI) openStore(ctx context.Context) (*docstore.Store, error) {
	cfg, err := cli.loadConfig()
	if err != nil {
		return nil, err
	}
	return cli.open(ctx, cfg)
}

func (cli *CLI) tenant() string {
	return cli.viperInst.GetString("tenant")
}

// render writes v in the selected output format; text uses the text func.
func (cli *CLI) render(w io.Writer, v any, text func(io.Writer) error) error {
	switch format := cli.viperInst.GetString("output"); format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
