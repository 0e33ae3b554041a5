package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tsucho-dev/tsucho/internal/logger"
)

// Mode selects how descriptions are classified.
type Mode string

const (
	// ModeAuto uses the generator when it answers a liveness probe.
	ModeAuto Mode = "auto"
	// ModeRules uses the rule engine alone.
	ModeRules Mode = "rules"
	// ModeGenerative always layers the generator over the rules.
	ModeGenerative Mode = "generative"
)

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeRules, ModeGenerative:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown classify mode %q (want auto, rules or generative)", s)
	}
}

// SelectOptions configures Select.
type SelectOptions struct {
	Timeout      time.Duration // per generative call
	ProbeTimeout time.Duration // liveness probe in auto mode
}

// Select returns the classifier for mode and the mode actually in effect.
// In auto mode an unreachable or missing generator falls back to rules.
func Select(ctx context.Context, mode Mode, rules Classifier, gen Generator, opts SelectOptions) (Classifier, Mode, error) {
	switch mode {
	case ModeRules:
		return rules, ModeRules, nil
	case ModeGenerative:
		if gen == nil {
			return nil, "", errors.New("generative mode requires a generator")
		}
		return NewFallback(rules, gen, opts.Timeout), ModeGenerative, nil
	case ModeAuto, "":
		if gen == nil {
			return rules, ModeRules, nil
		}
		probeCtx := ctx
		if opts.ProbeTimeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, opts.ProbeTimeout)
			defer cancel()
		}
		if err := gen.Ping(probeCtx); err != nil {
			log := logger.FromContext(ctx)
			log.Info().Err(err).Msg("generator unreachable, using rules only")
			return rules, ModeRules, nil
		}
		return NewFallback(rules, gen, opts.Timeout), ModeGenerative, nil
	default:
		return nil, "", fmt.Errorf("unknown classify mode %q", mode)
	}
}
