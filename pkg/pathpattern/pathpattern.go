// Package pathpattern compiles friendly path templates into matchable
// patterns. Templates are /-separated sequences of literal segments and
// variable segments marked with a leading colon:
//
//	/foo/:var/baz/:other_var
//
// compiles to a pattern equivalent to the regular expression
//
//	/foo/(?P<var>[^/]*)/baz/(?P<other_var>[^/]*)
//
// and can also be rendered in gorilla/mux syntax for route registration.
package pathpattern

import (
	"fmt"
	"regexp"
	"strings"
)

// ElemIDVar is the variable name appended by Element for element routes.
const ElemIDVar = "elem_id"

var varNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Pattern is a compiled path template.
type Pattern struct {
	template string
	re       *regexp.Regexp
	vars     []string
}

// Compile turns a friendly path template into a Pattern. A malformed
// variable name (anything that is not a plain identifier) is a programmer
// error and panics.
func Compile(template string) Pattern {
	parts := strings.Split(template, "/")
	quoted := make([]string, len(parts))
	var vars []string

	for i, part := range parts {
		if !strings.HasPrefix(part, ":") {
			quoted[i] = regexp.QuoteMeta(part)
			continue
		}
		name := strings.TrimPrefix(part, ":")
		if !varNameRe.MatchString(name) {
			panic(fmt.Sprintf("pathpattern: invalid variable name %q in template %q", name, template))
		}
		vars = append(vars, name)
		quoted[i] = fmt.Sprintf("(?P<%s>[^/]*)", name)
	}

	return Pattern{
		template: template,
		re:       regexp.MustCompile("^" + strings.Join(quoted, "/") + "$"),
		vars:     vars,
	}
}

// Template returns the friendly template this pattern was compiled from.
func (p Pattern) Template() string {
	return p.template
}

// Vars returns the variable names in template order.
func (p Pattern) Vars() []string {
	return append([]string(nil), p.vars...)
}

// Match matches a concrete path against the pattern. On success it returns
// the bindings for each variable segment; a template with no variables
// yields an empty map.
func (p Pattern) Match(path string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	bindings := make(map[string]string, len(p.vars))
	for i, name := range p.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		bindings[name] = m[i]
	}
	return bindings, true
}

// Element returns the pattern for the element routes of this collection
// template, formed by appending a trailing "/:elem_id" segment.
func (p Pattern) Element() Pattern {
	return Compile(p.template + "/:" + ElemIDVar)
}

// MuxPath renders the template in gorilla/mux syntax, with each ":var"
// segment rewritten to "{var}".
func (p Pattern) MuxPath() string {
	parts := strings.Split(p.template, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			parts[i] = "{" + strings.TrimPrefix(part, ":") + "}"
		}
	}
	return strings.Join(parts, "/")
}
