package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a status message
	w.Status("🔍", "Checking configuration...")

	// Then: output contains icon and message
	output := buf.String()
	assert.Contains(t, output, "🔍")
	assert.Contains(t, output, "Checking configuration...")
}

func TestWriter_Success_PrintsCheckmark(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("Configuration updated")

	output := buf.String()
	assert.Contains(t, output, "✅")
	assert.Contains(t, output, "Configuration updated")
}

func TestWriter_Warning_PrintsWarningIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Warning("Package record not found")

	output := buf.String()
	assert.Contains(t, output, "⚠️")
	assert.Contains(t, output, "Package record not found")
}

func TestWriter_Error_PrintsErrorIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Errorf("Failed to read %s", "vm-settings.yml")

	output := buf.String()
	assert.Contains(t, output, "❌")
	assert.Contains(t, output, "Failed to read vm-settings.yml")
}

func TestWriter_Message_StripsTags(t *testing.T) {
	// Given: a plain writer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a tagged installer message
	w.Message("<info>Then just relax and run</info> <comment>vagrant up</comment>")

	// Then: the tags are gone and the message is separated by a blank line
	assert.Equal(t, "\nThen just relax and run vagrant up\n", buf.String())
}

func TestWriter_Message_IgnoresEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Message("")

	assert.Empty(t, buf.String())
}

func TestNewStyled_WithBuffer_IsPlain(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewStyled(buf)

	w.Message("<info>Hello</info>")

	assert.Equal(t, "\nHello\n", buf.String())
}

func TestWriter_List(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.List([]string{"Cleanup30401", "DefaultConfigUpdate30600"})

	assert.Equal(t, "  - Cleanup30401\n  - DefaultConfigUpdate30600\n", buf.String())
}

func TestWriter_Code_PrintsCodeBlock(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Code("vagrant:\n  hostname: site\n")

	assert.Equal(t, "\n  vagrant:\n    hostname: site\n\n", buf.String())
}

func TestWriter_Statusf_FormatsMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Statusf("📂", "Applied %d steps in %s", 4, "/srv/site")

	output := buf.String()
	assert.Contains(t, output, "📂")
	assert.Contains(t, output, "Applied 4 steps in /srv/site")
}

func TestWriter_Newline_PrintsEmptyLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Newline()

	assert.Equal(t, "\n", buf.String())
}
