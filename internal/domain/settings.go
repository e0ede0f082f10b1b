package domain

// SettingTrackingEnabled toggles the pixel module
const SettingTrackingEnabled = "tracking_enabled"

// Settings holds the merged module settings
type Settings map[string]any

// Bool reads a boolean setting, accepting the "yes"/"no" strings some hosts store
func (s Settings) Bool(key string, fallback bool) bool {
	v, ok := s[key]
	if !ok || v == nil {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch b {
		case "yes", "1", "true":
			return true
		case "no", "0", "false", "":
			return false
		}
	case int:
		return b != 0
	case int32:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	}
	return fallback
}

// ModuleDefaults is the set of default settings one module declares
type ModuleDefaults struct {
	Module   string
	Defaults map[string]any
}

// PixelDefaults are the defaults of the tracking module
var PixelDefaults = ModuleDefaults{
	Module: "pixel",
	Defaults: map[string]any{
		SettingTrackingEnabled: true,
	},
}
