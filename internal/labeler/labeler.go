// Package labeler provides external label providers for the triage
// pipeline: an HTTP sidecar client and an Anthropic-backed labeler. Both
// satisfy triage.Labeler and are selected by configuration.
package labeler

import (
	"fmt"

	"github.com/jonesrussell/review-triage/internal/config"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/triage"
)

// Labeler modes.
const (
	ModeOff       = "off"
	ModeSidecar   = "sidecar"
	ModeAnthropic = "anthropic"
)

// New builds the configured labeler. Mode "off" returns nil, which the
// pipeline treats as cascade-only classification.
func New(cfg config.LabelerConfig, log logger.Logger) (triage.Labeler, error) {
	switch cfg.Mode {
	case "", ModeOff:
		return nil, nil
	case ModeSidecar:
		if cfg.SidecarURL == "" {
			return nil, fmt.Errorf("labeler mode %q requires sidecar_url", cfg.Mode)
		}
		return NewSidecar(cfg.SidecarURL, cfg.Timeout), nil
	case ModeAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("labeler mode %q requires an API key", cfg.Mode)
		}
		return NewAnthropic(cfg.APIKey, cfg.Model, log), nil
	default:
		return nil, fmt.Errorf("unknown labeler mode %q", cfg.Mode)
	}
}
