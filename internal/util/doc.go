// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the explorer-mcp packages.
//
// # Key Functions
//
// Display width (via go-runewidth):
//   - StringWidth: terminal columns occupied by a string
//   - TruncateWidth: cut a string to a column budget, appending "..."
//   - TruncateMiddle: shorten a path by eliding its middle
//   - PadRight: pad to a column width
//
// Other helpers:
//   - TruncateRunes: rune-safe truncation for log and tool output
//   - HumanBytes: 1536 -> "1.5 KB"
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
