// SPDX-License-Identifier: MPL-2.0

// Package pipenv knows how to hand a script to pipenv: the argument vector of
// `pipenv run`, the Pipfile of a project and the in-project virtualenv layout
// selected by PIPENV_VENV_IN_PROJECT.
package pipenv
