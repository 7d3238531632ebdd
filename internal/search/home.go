// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" or "~/" with the current user's home
// directory. Other paths, including "~user" forms, are returned unchanged.
// A trailing separator survives expansion.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	expanded := filepath.Join(home, path[2:])
	if last := path[len(path)-1]; last == '/' || last == filepath.Separator {
		expanded += string(filepath.Separator)
	}
	return expanded
}

// ResolveRoot expands home shorthand and returns a cleaned absolute path.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(ExpandHome(root))
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
