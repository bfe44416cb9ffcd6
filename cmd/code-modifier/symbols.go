// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/code-modifier/internal/walker"
)

// newSymbolsCmd creates the "symbols" command, which prints the symbol table
// a run would see without contacting any service.
func newSymbolsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols [path]",
		Short: "List the symbols found under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			res, err := walker.Walk(cmd.Context(), root, walker.Options{
				Ignore:         v.GetStringSlice("ignore"),
				FollowSymlinks: v.GetBool("follow-symlinks"),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Symbols)
			}
			for _, sym := range res.Symbols.Symbols() {
				fmt.Fprintf(out, "%s: %s\n", sym, strings.Join(res.Symbols.Files(sym), ", "))
			}
			fmt.Fprintf(out, "\n%d symbols in %d files\n", res.Symbols.Len(), len(res.Files))
			return nil
		},
	}
}
