package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_BasicError(t *testing.T) {
	// Given: a DraftError
	err := New(ErrCodeFileNotFound, "file 'vm-settings.yml' not found", nil)

	// When: formatting for user (no debug)
	result := FormatForUser(err, false)

	// Then: contains message and code
	assert.Contains(t, result, "file 'vm-settings.yml' not found")
	assert.Contains(t, result, "[ERR_202_FILE_NOT_FOUND]")
}

func TestFormatForUser_DebugIncludesDetailsAndCause(t *testing.T) {
	err := IOError("cannot read", errors.New("EACCES")).WithDetail("path", "/p/vm-settings.yml")

	plain := FormatForUser(err, false)
	debug := FormatForUser(err, true)

	assert.NotContains(t, plain, "EACCES")
	assert.Contains(t, debug, "path: /p/vm-settings.yml")
	assert.Contains(t, debug, "cause: EACCES")
}

func TestFormatForUser_StandardError(t *testing.T) {
	result := FormatForUser(errors.New("something went wrong"), false)
	assert.Equal(t, "something went wrong", result)
}

func TestFormatForCLI(t *testing.T) {
	// Given: an unsupported value error with a suggestion
	err := UnsupportedValueError("vagrant.synced_folders.0", []any{}).
		WithSuggestion("Sequences may only contain scalars or mappings")

	// When: formatting for the CLI
	result := FormatForCLI(err)

	// Then: path, hint and code are shown
	assert.Contains(t, result, "Path: vagrant.synced_folders.0")
	assert.Contains(t, result, "Hint: Sequences may only contain scalars or mappings")
	assert.Contains(t, result, "Code: ERR_302_UNSUPPORTED_VALUE")
}

func TestFormatForCLI_WrapsStandardError(t *testing.T) {
	result := FormatForCLI(errors.New("boom"))
	assert.Contains(t, result, "Error: boom")
	assert.Contains(t, result, ErrCodeInternal)
	assert.Equal(t, "", FormatForCLI(nil))
}

func TestFormatJSON(t *testing.T) {
	err := ParseError("bad yaml", errors.New("line 3")).WithDetail("file", "vm-settings.yml")

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ErrCodeParse, decoded["code"])
	assert.Equal(t, "DOCUMENT", decoded["category"])
	assert.Equal(t, "FATAL", decoded["severity"])
	assert.Equal(t, "line 3", decoded["cause"])
}

func TestFormatForLog(t *testing.T) {
	err := InvariantError("missing key").WithDetail("step", "Xdebug2To3")

	fields := FormatForLog(err)

	assert.Equal(t, ErrCodeInvariant, fields["error_code"])
	assert.Equal(t, "Xdebug2To3", fields["detail_step"])
	assert.Equal(t, map[string]any{"error": "plain"}, FormatForLog(errors.New("plain")))
	assert.Nil(t, FormatForLog(nil))
}
