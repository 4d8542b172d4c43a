package config

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Dump writes the effective settings as YAML.
func Dump(v *viper.Viper, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(v.AllSettings())); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// normalize renders durations in their string form.
func normalize(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, val := range in {
		switch x := val.(type) {
		case map[string]any:
			out[k] = normalize(x)
		case time.Duration:
			out[k] = x.String()
		default:
			out[k] = val
		}
	}
	return out
}
