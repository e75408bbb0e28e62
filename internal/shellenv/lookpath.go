// SPDX-License-Identifier: MPL-2.0

package shellenv

import (
	"fmt"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// LookPath resolves name against the PATH of env rather than the PATH of the
// current process. Relative names containing a separator are resolved against dir.
func LookPath(env EnvMap, dir, name string) (string, error) {
	path, err := interp.LookPathDir(dir, expand.ListEnviron(env.Slice()...), name)
	if err != nil {
		return "", fmt.Errorf("look up %s: %w", name, err)
	}
	return path, nil
}
