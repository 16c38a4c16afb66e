package preset

import (
	"encoding/json"
	"os"
	"time"

	"github.com/vantage-chart/vantage-engine/engine/renderer"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// QualityLevel enumerates the recognized quality tiers of spec.md §6.4.
type QualityLevel string

const (
	QualityLow    QualityLevel = "low"
	QualityMedium QualityLevel = "medium"
	QualityHigh   QualityLevel = "high"
	QualityUltra  QualityLevel = "ultra"
)

// QualityPreset controls the frame-pacing/fidelity tradeoffs of spec.md
// §6.4. MSAASamples names one of renderer.ValidSampleCount's enumerated
// {1, 2, 4, 8} (Open Question decision 3 in DESIGN.md). LoadQualityPreset
// does not validate it; renderer.NewRenderer checks the count it receives
// through renderer.WithMSAA and falls back to MSAAOff with a logged warning.
type QualityPreset struct {
	Level             QualityLevel             `json:"level"`
	TargetFPS         int                      `json:"target_fps"`
	MSAASamples       renderer.MSAASampleCount `json:"msaa_samples"`
	EnableAxisGrid    bool                     `json:"enable_axis_grid"`
	MaxVisiblePoints  int                      `json:"max_visible_points"`
	EnableLabelGlyphs bool                     `json:"enable_label_glyphs"`
}

// TargetFrameTime converts TargetFPS into the frame-pacer duration
// scheduler.Scheduler.SetTargetFrameTime expects.
func (q QualityPreset) TargetFrameTime() time.Duration {
	if q.TargetFPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(q.TargetFPS)
}

// DefaultQualityPresets are the four built-in tiers. The host control
// surface's set_quality_preset resolves its level name against this map
// only; it never loads a custom JSON file.
var DefaultQualityPresets = map[QualityLevel]QualityPreset{
	QualityLow: {
		Level: QualityLow, TargetFPS: 30, MSAASamples: 1,
		EnableAxisGrid: false, MaxVisiblePoints: 2_000, EnableLabelGlyphs: false,
	},
	QualityMedium: {
		Level: QualityMedium, TargetFPS: 60, MSAASamples: 2,
		EnableAxisGrid: true, MaxVisiblePoints: 10_000, EnableLabelGlyphs: false,
	},
	QualityHigh: {
		Level: QualityHigh, TargetFPS: 60, MSAASamples: 4,
		EnableAxisGrid: true, MaxVisiblePoints: 50_000, EnableLabelGlyphs: true,
	},
	QualityUltra: {
		Level: QualityUltra, TargetFPS: 144, MSAASamples: 8,
		EnableAxisGrid: true, MaxVisiblePoints: 200_000, EnableLabelGlyphs: true,
	},
}

// LoadQualityPreset reads and parses a QualityPreset from a JSON file.
//
// Parameters:
//   - path: the JSON file path
//
// Returns:
//   - QualityPreset: the parsed preset
//   - error: a vantageerr.ParseError on malformed JSON or vantageerr.InvalidInput on a missing file
func LoadQualityPreset(path string) (QualityPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QualityPreset{}, vantageerr.New(vantageerr.InvalidInput, "reading quality preset %s: %w", path, err)
	}

	var q QualityPreset
	if err := json.Unmarshal(data, &q); err != nil {
		return QualityPreset{}, vantageerr.New(vantageerr.ParseError, "malformed quality preset %s: %w", path, err)
	}
	return q, nil
}
