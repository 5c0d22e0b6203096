package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"reflow/internal/bundle"
	"reflow/internal/doc"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <bundle>",
	Short: "Print the document tree of a layout bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Bool("tables", false, "also print the side tables as JSON")
}

func runDump(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	withTables, err := cmd.Flags().GetBool("tables")
	if err != nil {
		return err
	}
	b, err := bundle.ReadFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "bundle %s (schema %d, width %d, target %q)\n", args[0], b.Schema, b.Width, b.Target(args[0]))
	if err := doc.Dump(out, b.Doc); err != nil {
		return err
	}
	if !withTables {
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(b.Tables)
}
