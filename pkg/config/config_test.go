package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hookpatch/pkg/config"
	"github.com/Sumatoshi-tech/hookpatch/pkg/patch"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hookpatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.DefaultBaseDir, cfg.BaseDir)
	assert.Equal(t, config.DefaultFileNames(), cfg.FileNames)
	assert.Len(t, cfg.FileNames, 30)
	assert.Equal(t, "AdDetails.tsx", cfg.FileNames[0])
	assert.Equal(t, "Welcome.tsx", cfg.FileNames[29])
	assert.Equal(t, config.DefaultMarker, cfg.Marker)
	assert.Equal(t, config.DefaultImportLine, cfg.ImportLine)
	assert.Equal(t, config.DefaultCallLine, cfg.CallLine)
	assert.Equal(t, config.DefaultCallPattern, cfg.CallPattern)
	assert.False(t, cfg.SkipUnchanged)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultJobName, cfg.Telemetry.Job)
	assert.Empty(t, cfg.Telemetry.PushgatewayURL)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `base_dir: web/src/pages
file_names:
  - Login.tsx
  - Signup.tsx
skip_unchanged: true
logging:
  level: debug
  json: true
telemetry:
  pushgateway_url: http://localhost:9091
  job: pages
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "web/src/pages", cfg.BaseDir)
	assert.Equal(t, []string{"Login.tsx", "Signup.tsx"}, cfg.FileNames)
	assert.True(t, cfg.SkipUnchanged)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "http://localhost:9091", cfg.Telemetry.PushgatewayURL)
	assert.Equal(t, "pages", cfg.Telemetry.Job)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("HOOKPATCH_BASE_DIR", "/srv/app/pages")
	t.Setenv("HOOKPATCH_LOGGING_LEVEL", "warn")

	cfg, err := config.LoadConfig(writeConfig(t, "base_dir: ignored\n"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/app/pages", cfg.BaseDir)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_NoFileSearched(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBaseDir, cfg.BaseDir)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "blank file", content: "file_names: [A.tsx, \" \"]\n", wantErr: config.ErrEmptyFileName},
		{name: "bad pattern", content: "call_pattern: \"const (\"\n", wantErr: patch.ErrInvalidPattern},
		{name: "bad level", content: "logging:\n  level: loud\n", wantErr: config.ErrInvalidLogLevel},
		{name: "call without marker", content: "call_line: \"  other();\"\n", wantErr: patch.ErrMarkerNotInFragment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadConfig(writeConfig(t, tt.content))
			require.NoError(t, err)
			require.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoadConfig_InvalidListLeftForOverride(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "file_names: [A.tsx, \"\"]\n"))
	require.NoError(t, err)
	require.ErrorIs(t, cfg.Validate(), config.ErrEmptyFileName)

	cfg.FileNames = []string{"B.tsx"}
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_AllowsRepeatedNames(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "file_names: [A.tsx, A.tsx]\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"A.tsx", "A.tsx"}, cfg.FileNames)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{FileNames: []string{"A.tsx"}}
	require.ErrorIs(t, cfg.Validate(), config.ErrEmptyBaseDir)

	cfg = &config.Config{BaseDir: "pages"}
	require.ErrorIs(t, cfg.Validate(), config.ErrNoFiles)
}

func TestConfig_Fragments(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	frags, err := cfg.Fragments()
	require.NoError(t, err)

	def := patch.DefaultFragments()
	assert.Equal(t, def.Marker, frags.Marker)
	assert.Equal(t, def.ImportAnchor, frags.ImportAnchor)
	assert.Equal(t, def.ImportLine, frags.ImportLine)
	assert.Equal(t, def.CallLine, frags.CallLine)
	assert.Equal(t, def.CallPattern.String(), frags.CallPattern.String())

	empty := &config.Config{}
	_, err = empty.Fragments()
	require.ErrorIs(t, err, config.ErrEmptyPattern)
}
