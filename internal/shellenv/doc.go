// SPDX-License-Identifier: MPL-2.0

// Package shellenv evaluates shell initialization snippets in an embedded POSIX
// shell (mvdan.cc/sh) and reports the environment they leave behind.
//
// Version manager hooks such as `eval "$(pyenv init -)"` only make sense inside a
// shell. Running them in the embedded interpreter lets the launcher apply their
// effect to the environment of a child process without spawning bash and without
// touching its own process environment.
package shellenv
