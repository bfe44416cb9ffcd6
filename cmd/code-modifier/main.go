// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command code-modifier rewrites every recognized source file under a
// directory through a language model, following a natural language
// instruction.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/code-modifier/internal/lang"
	"github.com/petar-djukic/code-modifier/internal/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

const (
	envPrefix  = "CODE_MODIFIER"
	configName = ".code-modifier"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around v. Flags take precedence over
// CODE_MODIFIER_* variables, which take precedence over the config file.
func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "code-modifier <path> <prompt>",
		Short: "Rewrite source files with a language model",
		Long: "code-modifier walks <path>, sends each recognized source file together with <prompt>\n" +
			"and the rename table to a completion service, and writes the answer back over the file.\n\n" +
			"Recognized extensions: " + strings.Join(lang.Extensions(), " "),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModifier(cmd, v, args[0], args[1])
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default .code-modifier.yaml in the current or home directory)")
	flags.String("provider", "openai", "Completion provider: openai, bedrock, gemini")
	flags.String("model", "", "Model ID (default depends on the provider)")
	flags.String("region", "", "AWS region for Bedrock")
	flags.String("profile", "", "AWS shared config profile for Bedrock")
	flags.String("base-url", "", "OpenAI-compatible endpoint")
	flags.Int("max-tokens", 2048, "Maximum tokens per response")
	flags.Float64("temperature", 0, "Sampling temperature")
	flags.Duration("timeout", 5*time.Minute, "Timeout for each completion request")
	flags.StringSlice("ignore", nil, "Extra gitignore-style rule (repeatable)")
	flags.Bool("follow-symlinks", false, "Descend into symlinked directories")
	flags.String("rename-strategy", "static", "How renames are derived: static, llm, none")
	flags.StringSlice("rename", nil, "Rename pair OLD->NEW for the static strategy (repeatable)")
	flags.Bool("dry-run", false, "Show diffs instead of writing files")
	flags.String("verify-cmd", "", "Command to run after rewriting (e.g. 'make test')")
	flags.Duration("verify-timeout", 2*time.Minute, "Timeout for the verify command")
	flags.Bool("no-git", false, "Disable git dirty-save and auto-commit")
	flags.Bool("json", false, "Print the run summary as JSON")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")

	_ = v.BindPFlags(flags)
	// The config file spells the rename list "renames".
	_ = v.BindPFlag("renames", flags.Lookup("rename"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(newSymbolsCmd(v))
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// initConfig reads the config file, if any, and configures logging.
func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return logging.Setup(cmd.ErrOrStderr(), v.GetString("log-level"))
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print code-modifier version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "code-modifier %s\n", version)
		},
	}
}
