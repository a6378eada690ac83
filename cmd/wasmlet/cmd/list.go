package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// printPluginList writes the plugins discoverable in the plugin directory as
// an aligned table.
func printPluginList(cmd *cobra.Command, pluginDir string) error {
	entries, err := os.ReadDir(pluginDir)
	if err != nil {
		return fmt.Errorf("failed to read plugin directory %s: %w", pluginDir, err)
	}

	// Create tabwriter for aligned output
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Plugin\tFile\tSize")
	fmt.Fprintln(w, "------\t----\t----")

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".wasm" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".wasm")
		fmt.Fprintf(w, "%s\t%s\t%d\n",
			name,
			filepath.Join(pluginDir, entry.Name()),
			info.Size())
	}

	return w.Flush()
}
