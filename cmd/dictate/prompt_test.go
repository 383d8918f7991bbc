package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koscakluka/ema-dictation/core/prompts"
)

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		for _, cmd := range []*cobra.Command{promptCmd, historyCmd} {
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	})

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestPromptCommandPrintsComposedInstruction(t *testing.T) {
	out := executeCommand(t, "prompt")
	assert.Equal(t, prompts.Compose(prompts.DefaultSectionConfig())+"\n", out)
}

func TestPromptCommandFlagsOverrideSections(t *testing.T) {
	out := executeCommand(t, "prompt", "--sections", "--advanced=false", "--dictionary")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "main"))
	assert.True(t, strings.HasPrefix(lines[1], "dictionary"))
	assert.Contains(t, lines[1], "default")
}

func TestConfigSchemaCommand(t *testing.T) {
	out := executeCommand(t, "config", "schema")
	assert.Contains(t, out, `"deepgram"`)
	assert.Contains(t, out, `"sample_rate"`)
}

func TestConfigShowMasksSecrets(t *testing.T) {
	t.Setenv("DICTATE_LLM_API_KEY", "secret-value")
	out := executeCommand(t, "config", "show")

	assert.NotContains(t, out, "secret-value")
	assert.Contains(t, out, maskedSecret)
}
