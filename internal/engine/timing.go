/*
PURPOSE:
  Scrapes stage timings from the compressor's diagnostic output and rescales
  them to the measured wall-clock time.

REQUIREMENTS:
  User-specified:
  - Times come from lines shaped "<name>,<count>,<duration>".
  - Stored stage times are scaled to the measured wall time.

  Implementation-discovered:
  - Labels are matched as literals, so names like "::compress" are quoted.
  - Lines can be arbitrarily long, so the text is split rather than token-scanned.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go (measure)

ERROR HANDLING:
  - ErrLabelNotFound when a requested label never appears.
  - ErrZeroTotal when the reported total cannot be used to rescale.

IMPLEMENTATION RULES:
  - First matching line per label wins.

USAGE:
  times, err := engine.StageTimes(stderr, "::compress", stages, elapsed)

RELATED FILES:
  - internal/engine/client.go
*/

package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrLabelNotFound means no diagnostic line carried a requested label.
	ErrLabelNotFound = errors.New("timing label not found")
	// ErrZeroTotal means the reported total time cannot be used for rescaling.
	ErrZeroTotal = errors.New("reported total time is zero")
)

// timingPattern matches "<anything>LABEL<anything>,<count>,<duration>" where
// neither surrounding part contains a comma.
func timingPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`^[^,]*` + regexp.QuoteMeta(label) + `[^,]*,\d+,(\d+(?:\.\d+)?)$`)
}

// ExtractTimes returns, for each label in order, the duration from the first
// diagnostic line naming it.
func ExtractTimes(text string, labels []string) ([]float64, error) {
	times := make([]float64, 0, len(labels))
	for _, label := range labels {
		v, err := extractTime(text, label)
		if err != nil {
			return nil, err
		}
		times = append(times, v)
	}
	return times, nil
}

func extractTime(text, label string) (float64, error) {
	re := timingPattern(label)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("label %q: parse %q: %w", label, m[1], err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrLabelNotFound, label)
}

// Rescale converts reported stage times into wall-clock seconds, so that
// stage * (measured / reportedTotal) is kept for each stage.
func Rescale(stages []float64, measured time.Duration, reportedTotal float64) ([]float64, error) {
	if reportedTotal == 0 {
		return nil, ErrZeroTotal
	}
	factor := measured.Seconds() / reportedTotal
	scaled := make([]float64, len(stages))
	for i, s := range stages {
		scaled[i] = s * factor
	}
	return scaled, nil
}

// StageTimes extracts the total and stage labels from text and rescales the
// stages against the measured wall time.
func StageTimes(text, totalLabel string, stageLabels []string, measured time.Duration) ([]float64, error) {
	total, err := extractTime(text, totalLabel)
	if err != nil {
		return nil, err
	}
	stages, err := ExtractTimes(text, stageLabels)
	if err != nil {
		return nil, err
	}
	return Rescale(stages, measured, total)
}
