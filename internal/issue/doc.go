// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for the user. Failures that need longer guidance (pyenv missing,
// pipenv not on PATH, an inaccessible tool directory) link to a catalog entry
// whose Markdown text is rendered with glamour.
package issue
