// Package plugins implements the host side of the wasmlet plugin boundary:
// resolving specifiers to bytecode, instantiating WASM modules, marshalling
// text across linear memory and folding a pipeline of plugins over an input.
package plugins

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DefaultPluginDir is where plugins are looked up when WASMLET_PLUGIN_DIR is
// unset or empty.
const DefaultPluginDir = "/etc/wasmlet/plugins"

// Resolve maps a user-supplied specifier to plugin bytecode. Strategies are
// tried in order and the first readable match wins:
//
//  1. the specifier itself with a trailing wildcard,
//  2. the same pattern under the plugin directory,
//  3. a development-tree fallback next to the working directory.
//
// The wildcard lets "rainbow" match "rainbow.wasm" without the user typing
// the extension. Missing or unreadable candidates fall through to the next
// strategy; only full exhaustion is an error.
func Resolve(specifier, pluginDir string) ([]byte, error) {
	if pluginDir == "" {
		pluginDir = DefaultPluginDir
	}

	patterns := []string{
		specifier + "*",
		filepath.Join(pluginDir, specifier+"*"),
		filepath.Join("..", specifier, "target", "wasm32-*", "release", specifier+".wasm"),
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			// Malformed pattern from a hostile specifier. Treat like a
			// miss and keep going.
			continue
		}

		for _, match := range matches {
			data, err := os.ReadFile(match)
			if err != nil {
				continue
			}

			log.Debug().
				Str("event", "plugin_resolved").
				Str("specifier", specifier).
				Str("path", match).
				Int("bytes", len(data)).
				Msg("resolved plugin bytecode")

			return data, nil
		}
	}

	return nil, &NotFoundError{Specifier: specifier}
}
