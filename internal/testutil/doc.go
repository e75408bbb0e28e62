// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv, MustUnsetenv,
// SetHomeDir), directory and file operations (MustChdir, MustMkdirAll, MustWriteFile)
// and fake executables for the tools the launcher spawns (WriteExecutable).
package testutil
