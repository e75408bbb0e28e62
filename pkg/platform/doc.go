// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes operating-system names and the environment
// variable names whose spelling or list separator differs between platforms.
package platform
