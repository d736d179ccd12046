/*
Package tmpl renders the user-configurable names verbump produces: tag names,
commit messages, build commands and archive names are all text/template
strings evaluated against a Context.

Referencing a variable the context does not hold is an error, so a tag template
using {{ .Next }} fails outside a bump instead of rendering "<no value>".
*/
package tmpl

import (
	"maps"
	"os"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/semver"
)

// Context holds the variables visible to templates. Derived contexts are copies.
type Context struct {
	vars map[string]any
}

// New creates a context with the project variables and the host platform
func New(cfg *config.Config) *Context {
	now := time.Now()
	return &Context{vars: map[string]any{
		"ProjectName": cfg.ProjectName,
		"Binary":      cfg.Binary,
		"Dist":        cfg.Dist,
		"Date":        now.Format("2006-01-02"),
		"Timestamp":   now.Unix(),
		"Os":          runtime.GOOS,
		"Arch":        runtime.GOARCH,
		"Target":      runtime.GOOS,
		"Ext":         exeExt(runtime.GOOS),
	}}
}

func (c *Context) with(kv ...any) *Context {
	n := &Context{vars: maps.Clone(c.vars)}
	for i := 0; i+1 < len(kv); i += 2 {
		n.vars[kv[i].(string)] = kv[i+1]
	}
	return n
}

// WithVersion adds Version, Major, Minor and Patch for v
func (c *Context) WithVersion(v semver.Version) *Context {
	return c.with("Version", v.String(), "Major", v.Major, "Minor", v.Minor, "Patch", v.Patch)
}

// WithBump describes a bump: Current and Next, with Version set to next
func (c *Context) WithBump(current, next semver.Version) *Context {
	return c.WithVersion(next).with("Current", current.String(), "Next", next.String())
}

// WithTarget adds the release target: Target (its name), Os, Arch, Triple and Ext
func (c *Context) WithTarget(t config.Target) *Context {
	return c.with("Target", t.Name, "Os", t.OS, "Arch", t.Arch, "Triple", t.Triple, "Ext", exeExt(t.OS))
}

func exeExt(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

// Apply renders text against the context
func (c *Context) Apply(text string) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := t.Execute(&sb, c.vars); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Set stores a variable in place
func (c *Context) Set(key string, value any) {
	c.vars[key] = value
}

// Get returns a string variable, or "" when unset or not a string
func (c *Context) Get(key string) string {
	s, _ := c.vars[key].(string)
	return s
}

var funcs = template.FuncMap{
	"replace": strings.ReplaceAll,
	"lower":   strings.ToLower,
	"upper":   strings.ToUpper,
	"trim":    strings.TrimSpace,
	"env":     os.Getenv,
	"default": func(def, val any) any {
		if val == nil || val == "" {
			return def
		}
		return val
	},
}
