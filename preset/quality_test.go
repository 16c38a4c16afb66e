package preset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-chart/vantage-engine/engine/renderer"
)

func TestTargetFrameTimeDerivesFromTargetFPS(t *testing.T) {
	q := QualityPreset{TargetFPS: 60}
	assert.Equal(t, time.Second/60, q.TargetFrameTime())
}

func TestTargetFrameTimeZeroForUnsetFPS(t *testing.T) {
	q := QualityPreset{}
	assert.Equal(t, time.Duration(0), q.TargetFrameTime())
}

func TestDefaultQualityPresetsUseValidSampleCounts(t *testing.T) {
	for level, q := range DefaultQualityPresets {
		assert.True(t, renderer.ValidSampleCount(q.MSAASamples), "level %s has invalid MSAA sample count %d", level, q.MSAASamples)
	}
}

func TestLoadQualityPresetParsesAFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quality.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"level": "high",
		"target_fps": 60,
		"msaa_samples": 4,
		"enable_axis_grid": true,
		"max_visible_points": 50000,
		"enable_label_glyphs": true
	}`), 0o644))

	q, err := LoadQualityPreset(path)
	require.NoError(t, err)
	assert.Equal(t, QualityHigh, q.Level)
	assert.Equal(t, renderer.MSAA4x, q.MSAASamples)
}
