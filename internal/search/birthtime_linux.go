// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build linux

package search

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime asks statx for the creation time. Only real OS files are queried;
// in-memory filesystems carry no birth time.
func birthTime(path string, info os.FileInfo) (time.Time, bool) {
	if _, ok := info.Sys().(*syscall.Stat_t); !ok {
		return time.Time{}, false
	}

	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		// Filesystem does not record it (tmpfs on older kernels, NFS).
		return time.Time{}, false
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
}
