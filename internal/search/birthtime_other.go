// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package search

import (
	"os"
	"time"
)

// birthTime is unavailable here; callers fall back to ModTime.
func birthTime(_ string, _ os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
