package accessroute

import (
	"strings"
)

// OSMConfiguration allows to filter pedestrian ways by `highway` tag values
type OSMConfiguration struct {
	// Highways lists accepted `highway` values. Empty list accepts every pedestrian way
	Highways []string
}

// NewOSMConfiguration prepares configuration from comma-separated `highway` values
func NewOSMConfiguration(tags string) *OSMConfiguration {
	cfg := &OSMConfiguration{
		Highways: []string{},
	}
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		cfg.Highways = append(cfg.Highways, tag)
	}
	return cfg
}

// CheckTag checks if incoming `highway` value is represented in configuration
func (cfg *OSMConfiguration) CheckTag(tag string) bool {
	if cfg == nil || len(cfg.Highways) == 0 {
		return true
	}
	for i := range cfg.Highways {
		if cfg.Highways[i] == tag {
			return true
		}
	}
	return false
}
