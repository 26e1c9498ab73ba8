package delay

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

const DefaultDurationMs = 1000

var unitFactors = map[string]float64{
	"":        1,
	"ms":      1,
	"s":       1000,
	"sec":     1000,
	"seconds": 1000,
	"m":       60 * 1000,
	"min":     60 * 1000,
	"minutes": 60 * 1000,
	"h":       60 * 60 * 1000,
	"hours":   60 * 60 * 1000,
}

// DelayHandler blocks for the configured duration. In test mode it returns
// immediately.
type DelayHandler struct {
	sleeper domain.Sleeper
}

func NewDelayHandler(deps domain.HandlerDeps) domain.NodeHandler {
	sleeper := deps.Sleeper
	if sleeper == nil {
		sleeper = domain.TimerSleeper{}
	}

	return &DelayHandler{
		sleeper: sleeper,
	}
}

func (h *DelayHandler) Validate(config map[string]any) error {
	_, _, err := durationMs(config)
	return err
}

func (h *DelayHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	ms, unit, err := durationMs(input.Config)
	if err != nil {
		return nil, err
	}

	result := domain.Payload{
		"delayed":        true,
		"requestedDelay": ms,
		"unit":           unit,
	}

	if input.Context.TestMode {
		result["actualDelay"] = float64(0)
		result["testMode"] = true
		return result, nil
	}

	startedAt := time.Now()
	wait := domain.MillisToDuration(ms)

	if err := h.sleeper.Sleep(ctx, wait); err != nil {
		return nil, fmt.Errorf("delay interrupted: %w", err)
	}

	result["actualDelay"] = ms
	result["resumedAt"] = startedAt.Add(wait).UTC().Format(time.RFC3339)

	return result, nil
}

func durationMs(config map[string]any) (float64, string, error) {
	duration := float64(DefaultDurationMs)

	if raw, ok := config["duration"]; ok && raw != nil {
		value, ok := domain.ToFloat(raw)
		if !ok || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return 0, "", domain.NewInvalidFieldError("duration", "must be a finite non-negative number")
		}
		duration = value
	}

	unit := strings.ToLower(domain.StringValue(config, "unit", "ms"))

	factor, ok := unitFactors[unit]
	if !ok {
		return 0, "", domain.NewInvalidFieldError("unit", "must be one of ms, s, m, h")
	}

	return duration * factor, unit, nil
}
