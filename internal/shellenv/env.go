// SPDX-License-Identifier: MPL-2.0

package shellenv

import (
	"fmt"
	"strings"

	"vfsinfo-cli/pkg/platform"

	"github.com/moby/patternmatcher"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// EnvMap is an environment keyed by variable name.
type EnvMap map[string]string

// FromSlice builds an EnvMap from KEY=VALUE entries as returned by os.Environ.
// Entries without a separator are dropped. Windows drive entries such as
// "=C:=C:\\" keep their leading '=' as part of the name.
func FromSlice(environ []string) EnvMap {
	env := make(EnvMap, len(environ))
	for _, entry := range environ {
		idx := findEnvSeparator(entry)
		if idx == -1 {
			continue
		}
		env[entry[:idx]] = entry[idx+1:]
	}
	return env
}

// Slice returns the environment as KEY=VALUE entries sorted by name.
func (e EnvMap) Slice() []string {
	keys := maps.Keys(e)
	slices.Sort(keys)
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+e[k])
	}
	return result
}

// Clone returns a copy of the environment.
func (e EnvMap) Clone() EnvMap {
	if e == nil {
		return EnvMap{}
	}
	return maps.Clone(e)
}

// Get returns the value of name. On Windows names are matched case-insensitively.
func (e EnvMap) Get(name string) (string, bool) {
	if v, ok := e[name]; ok {
		return v, true
	}
	for k, v := range e {
		if platform.EnvKeyEqual(k, name) {
			return v, true
		}
	}
	return "", false
}

// Set assigns value to name, replacing any entry that refers to the same variable.
func (e EnvMap) Set(name, value string) {
	for k := range e {
		if k != name && platform.EnvKeyEqual(k, name) {
			delete(e, k)
		}
	}
	e[name] = value
}

// Prepend puts entry in front of the list stored in name. An empty or missing
// list yields entry alone, with no trailing separator.
func (e EnvMap) Prepend(name, entry string) {
	old, _ := e.Get(name)
	e.Set(name, PrependList(old, entry))
}

// Diff returns the names whose values differ between e and other, sorted.
// Names present in only one of the maps are included.
func (e EnvMap) Diff(other EnvMap) []string {
	var names []string
	for k, v := range e {
		if ov, ok := other[k]; !ok || ov != v {
			names = append(names, k)
		}
	}
	for k := range other {
		if _, ok := e[k]; !ok {
			names = append(names, k)
		}
	}
	slices.Sort(names)
	return names
}

// PrependList returns list with entry in front, joined with the platform list
// separator.
func PrependList(list, entry string) string {
	if list == "" {
		return entry
	}
	if entry == "" {
		return list
	}
	return entry + platform.ListSeparator + list
}

// findEnvSeparator returns the index of the '=' separating name and value.
// A leading '=' belongs to the name.
func findEnvSeparator(e string) int {
	if e == "" {
		return -1
	}
	if idx := strings.IndexByte(e[1:], '='); idx != -1 {
		return idx + 1
	}
	return -1
}

// Without returns a copy of e minus the variables whose names match one of
// patterns. Patterns use the .dockerignore syntax of moby/patternmatcher, so
// "PIPENV_*" matches a prefix and "!PIPENV_VENV_IN_PROJECT" re-includes a name.
func (e EnvMap) Without(patterns []string) (EnvMap, error) {
	out := e.Clone()
	if len(patterns) == 0 {
		return out, nil
	}
	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid environment pattern: %w", err)
	}
	for name := range e {
		matched, err := pm.MatchesOrParentMatches(name)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", name, err)
		}
		if matched {
			delete(out, name)
		}
	}
	return out, nil
}
