package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Settings are the service-level defaults surfaced to clients and applied
// to uploads. They do not touch pipeline policy: the percentile cut, skew
// threshold and tie-breaks are fixed constants of the algorithms.
type Settings struct {
	DefaultKernelSize int   `yaml:"default_kernel_size" validate:"min=1,odd"`
	KernelPresets     []int `yaml:"kernel_presets" validate:"dive,min=1,odd"`
	DefaultThreshold1 int   `yaml:"default_threshold_t1" validate:"min=0,max=255"`
	DefaultThreshold2 int   `yaml:"default_threshold_t2" validate:"min=0,max=255"`
	PreviewMaxDim     int   `yaml:"preview_max_dim" validate:"min=1"`
	MaxUploadBytes    int64 `yaml:"max_upload_bytes" validate:"min=1"`
	UploadsPerMinute  int   `yaml:"uploads_per_minute" validate:"min=1"`
}

var settingsValidator = newSettingsValidator()

func newSettingsValidator() *validator.Validate {
	v := validator.New()
	// Median kernels must be odd so the window has a center pixel.
	_ = v.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 1
	})
	return v
}

// DefaultSettings mirror the reference UI: kernel presets 3/5/7 with 3
// selected, thresholds 128 and 200.
func DefaultSettings() Settings {
	return Settings{
		DefaultKernelSize: 3,
		KernelPresets:     []int{3, 5, 7},
		DefaultThreshold1: 128,
		DefaultThreshold2: 200,
		PreviewMaxDim:     550,
		MaxUploadBytes:    32 << 20,
		UploadsPerMinute:  30,
	}
}

// LoadSettings returns the defaults, overlaid with the YAML file named by
// SETTINGS_FILE when one is configured. A configured-but-broken file is an
// error; an unset variable is not.
func LoadSettings() (Settings, error) {
	s := DefaultSettings()

	path := Get("SETTINGS_FILE", "")
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	if err := settingsValidator.Struct(s); err != nil {
		return s, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}
