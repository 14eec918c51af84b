package pathpattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Match(t *testing.T) {
	tests := []struct {
		name         string
		template     string
		path         string
		wantMatch    bool
		wantBindings map[string]string
	}{
		{
			name:         "single variable",
			template:     "/:owner_id/store",
			path:         "/42/store",
			wantMatch:    true,
			wantBindings: map[string]string{"owner_id": "42"},
		},
		{
			name:         "two variables",
			template:     "/foo/:var/baz/:other_var",
			path:         "/foo/a/baz/b",
			wantMatch:    true,
			wantBindings: map[string]string{"var": "a", "other_var": "b"},
		},
		{
			name:         "literal mismatch",
			template:     "/:owner_id/store",
			path:         "/42/stores",
			wantMatch:    false,
		},
		{
			name:         "extra segment does not match",
			template:     "/:owner_id/store",
			path:         "/42/store/99",
			wantMatch:    false,
		},
		{
			name:         "no variables roundtrip",
			template:     "/health/live",
			path:         "/health/live",
			wantMatch:    true,
			wantBindings: map[string]string{},
		},
		{
			name:         "empty template",
			template:     "",
			path:         "",
			wantMatch:    true,
			wantBindings: map[string]string{},
		},
		{
			name:         "single slash",
			template:     "/",
			path:         "/",
			wantMatch:    true,
			wantBindings: map[string]string{},
		},
		{
			name:         "trailing slash preserved",
			template:     "/:owner_id/store/",
			path:         "/42/store/",
			wantMatch:    true,
			wantBindings: map[string]string{"owner_id": "42"},
		},
		{
			name:         "variable matches empty segment",
			template:     "/:owner_id/store",
			path:         "//store",
			wantMatch:    true,
			wantBindings: map[string]string{"owner_id": ""},
		},
		{
			name:         "variable never spans a slash",
			template:     "/:owner_id",
			path:         "/a/b",
			wantMatch:    false,
		},
		{
			name:         "regex metacharacters in literals are literal",
			template:     "/a.c/:id",
			path:         "/abc/1",
			wantMatch:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compile(tt.template)
			bindings, ok := p.Match(tt.path)
			if !tt.wantMatch {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantBindings, bindings)
		})
	}
}

func TestPattern_Element(t *testing.T) {
	p := Compile("/:owner_id/store")

	bindings, ok := p.Element().Match("/42/store/99")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"owner_id": "42", "elem_id": "99"}, bindings)
}

func TestPattern_MuxPath(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{"/:owner_id/stores", "/{owner_id}/stores"},
		{"/:owner_id/stores/:store_id/keys", "/{owner_id}/stores/{store_id}/keys"},
		{"/plain/path", "/plain/path"},
		{"/", "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Compile(tt.template).MuxPath())
	}
}

func TestPattern_Vars(t *testing.T) {
	p := Compile("/:owner_id/stores/:store_id/keys")
	assert.Equal(t, []string{"owner_id", "store_id"}, p.Vars())
	assert.Equal(t, "/:owner_id/stores/:store_id/keys", p.Template())
}

func TestCompile_InvalidVariableName(t *testing.T) {
	assert.Panics(t, func() { Compile("/:bad-name/stores") })
	assert.Panics(t, func() { Compile("/:/stores") })
	assert.Panics(t, func() { Compile("/:1digit/stores") })
}
