package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeRecursive_OverlayRules(t *testing.T) {
	tests := []struct {
		name     string
		base     *Map
		overlay  *Map
		expected *Map
	}{
		{
			name:     "scalar replaced",
			base:     MapOf("a", 1),
			overlay:  MapOf("a", 2),
			expected: MapOf("a", 2),
		},
		{
			name:     "sequence replaced wholesale",
			base:     MapOf("folders", []any{"a", "b"}),
			overlay:  MapOf("folders", []any{"c"}),
			expected: MapOf("folders", []any{"c"}),
		},
		{
			name:     "maps merged recursively",
			base:     MapOf("vagrant", MapOf("hostname", "", "box", "ubuntu/focal64")),
			overlay:  MapOf("vagrant", MapOf("hostname", "demo")),
			expected: MapOf("vagrant", MapOf("hostname", "demo", "box", "ubuntu/focal64")),
		},
		{
			name:     "overlay-only keys appended",
			base:     MapOf("a", 1),
			overlay:  MapOf("z", 26, "a", 10),
			expected: MapOf("a", 10, "z", 26),
		},
		{
			name:     "map replaced by scalar",
			base:     MapOf("a", MapOf("b", 1)),
			overlay:  MapOf("a", "flat"),
			expected: MapOf("a", "flat"),
		},
		{
			name:     "nil overlay value wins",
			base:     MapOf("mysql_sql_mode", "STRICT"),
			overlay:  MapOf("mysql_sql_mode", nil),
			expected: MapOf("mysql_sql_mode", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeRecursive(tt.base, tt.overlay)
			assert.True(t, tt.expected.Equal(got), "got:\n%s", got)
		})
	}
}

func TestMergeRecursive_DoesNotMutateInputs(t *testing.T) {
	base := MapOf("a", MapOf("b", 1))
	overlay := MapOf("a", MapOf("c", 2))

	merged := MergeRecursive(base, overlay)
	merged.SetPath(99, "a", "b")

	assert.True(t, MapOf("a", MapOf("b", 1)).Equal(base))
	assert.True(t, MapOf("a", MapOf("c", 2)).Equal(overlay))
}

func TestMergeRecursive_OverridesAcrossThreeLayers(t *testing.T) {
	// Given: three overlapping nested mappings
	a := MapOf(
		"vagrant", MapOf("hostname", "a", "box", "xenial", "options", MapOf("type", "nfs", "id", "a")),
		"php_version", "7.4",
		"only_a", true,
	)
	b := MapOf(
		"vagrant", MapOf("box", "focal", "options", MapOf("id", "b")),
		"php_version", "8.0",
		"only_b", []any{"x"},
	)
	c := MapOf(
		"vagrant", MapOf("options", MapOf("type", "virtualbox")),
		"only_b", []any{"y", "z"},
		"only_c", nil,
	)

	// When: folding left to right
	stepwise := MergeRecursive(MergeRecursive(a, b), c)
	folded := MergeAll(a, b, c)

	// Then: every leaf takes the right-most value that defines it
	expected := MapOf(
		"vagrant", MapOf("hostname", "a", "box", "focal", "options", MapOf("type", "virtualbox", "id", "b")),
		"php_version", "8.0",
		"only_a", true,
		"only_b", []any{"y", "z"},
		"only_c", nil,
	)
	assert.True(t, expected.Equal(stepwise), "got:\n%s", stepwise)
	assert.True(t, expected.Equal(folded), "got:\n%s", folded)
}

func TestMergeRecursive_NilInputs(t *testing.T) {
	assert.Equal(t, 0, MergeRecursive(nil, nil).Len())
	assert.True(t, MapOf("a", 1).Equal(MergeRecursive(nil, MapOf("a", 1))))
	assert.True(t, MapOf("a", 1).Equal(MergeRecursive(MapOf("a", 1), nil)))
}
