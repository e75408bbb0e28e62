// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// EnvVerbose is the environment override that turns on troubleshooting
// output for launcher failures.
const EnvVerbose = "VFSINFO_UI_VERBOSE"

type (
	// ActionableError is a launcher failure as shown to the user: what the
	// launcher was doing, the path or command involved, how to fix it and,
	// through IssueID, the catalog entry with the full troubleshooting guide.
	//
	//	failed to find pipenv: pipenv: executable file not found in $PATH
	//	  • Install pipenv, e.g. `pip install --user pipenv`
	//
	//	Troubleshooting: pipenv was not found (set VFSINFO_UI_VERBOSE=true)
	ActionableError struct {
		Operation   string
		Resource    string
		Suggestions []string
		Cause       error
		IssueID     Id
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		err ActionableError
	}
)

// Error returns the single-line form: "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Issue returns the linked catalog entry, or nil.
func (e *ActionableError) Issue() *Issue {
	if e.IssueID == 0 {
		return nil
	}
	return Get(e.IssueID)
}

// Guide renders the linked catalog entry with the given glamour style. It
// returns "" when the error links no entry.
func (e *ActionableError) Guide(stylePath string) (string, error) {
	is := e.Issue()
	if is == nil {
		return "", nil
	}
	return is.Render(stylePath)
}

// Format returns the error with its suggestions as a bulleted list. In
// normal mode a linked catalog entry is named together with the way to
// show it; in verbose mode the unwrapped cause chain is listed instead and
// the caller prints the guide itself.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteByte('\n')
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}

	if verbose {
		if e.Cause != nil {
			b.WriteString("\n\nError chain:")
			for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
				fmt.Fprintf(&b, "\n  %d. %s", depth, err)
			}
		}
		return b.String()
	}

	if is := e.Issue(); is != nil {
		fmt.Fprintf(&b, "\n\nTroubleshooting: %s (set %s=true)", is.Title(), EnvVerbose)
	}
	return b.String()
}

// NewErrorContext starts an empty ActionableError.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WithOperation sets the verb phrase completing "failed to ...".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource names the path or command involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	return c.WithSuggestions(sug)
}

func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sugs...)
	return c
}

// WithIssue links the error to a catalog entry.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.IssueID = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns the accumulated error, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// BuildError is Build for return statements typed as error, keeping a nil
// result a nil interface.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
