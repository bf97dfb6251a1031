// Package cmd contains all CLI commands for modslice.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is the current version of modslice.
	Version = "0.1.0"

	verbose    bool
	configPath string
	forAgents  bool
)

var rootCmd = &cobra.Command{
	Use:   "modslice",
	Short: "Slice a kernel module's dependency closure out of a kernel tree",
	Long: `modslice extracts the minimum self-contained slice of C source needed
to compile one or more out-of-tree kernel module functions: the target
functions themselves plus every macro, typedef, enum, struct, global,
and extern declaration they transitively reference.

It never runs the C preprocessor and never fully parses C — it finds
entities with a fixed set of line-oriented patterns, builds a
dependency graph constrained by a fixed kind-to-kind adjacency table,
and emits the result as module.c / module.h / kernel.h / extern.h (or
one concatenated file with --single-file).

Examples:
  modslice slice --target probe_init --kernel-src /usr/src/linux --module-src ./driver --out ./slice
  modslice config init
  modslice doctor --module-src ./driver --kernel-src /usr/src/linux

See 'modslice <command> --help' for command-specific options.`,
	Version: Version,
}

// Execute adds all child commands to the root command, runs it, and
// translates any error into the process exit code §7 of spec.md names.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostic output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: .modslice/config.yaml, searched upward)")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "output machine-readable capability discovery JSON")

	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

// CommandInfo describes one command for agent discovery.
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo describes one command flag for agent discovery.
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	output := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		for _, line := range strings.Split(cmd.Example, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
