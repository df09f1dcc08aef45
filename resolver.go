package main

import (
	"errors"
	"fmt"
	"log"
)

// ErrNoTunerFound is returned when no registered tuner's band contains the
// requested frequency
var ErrNoTunerFound = errors.New("no tuner found for frequency")

// FindTunerForFrequency returns the first tuner (in registry order) whose
// occupied band [center - rate/2, center + rate/2] contains the given
// frequency. A tuner whose properties cannot be read (e.g. mid-teardown) is
// skipped so a single failing device never blocks resolution against the
// rest of the set. Pure query, no side effects.
func (tm *TunerModel) FindTunerForFrequency(frequency int64) (Tuner, error) {
	for _, tuner := range tm.Tuners() {
		center, err := tuner.CenterFrequency()
		if err != nil {
			if DebugMode {
				log.Printf("Resolver: skipping tuner [%s]: frequency read failed: %v", tuner.Name(), err)
			}
			continue
		}

		rate, err := tuner.SampleRate()
		if err != nil {
			if DebugMode {
				log.Printf("Resolver: skipping tuner [%s]: sample rate read failed: %v", tuner.Name(), err)
			}
			continue
		}

		halfBand := rate / 2
		if frequency >= center-halfBand && frequency <= center+halfBand {
			return tuner, nil
		}
	}

	return nil, ErrNoTunerFound
}

// SpectralDisplayRouter resolves which tuner serves a frequency and raises a
// display-focus event so spectral display consumers can re-center and zoom.
type SpectralDisplayRouter struct {
	tuners  *TunerModel
	metrics *PrometheusMetrics
}

// NewSpectralDisplayRouter creates a router over the given tuner registry.
// metrics may be nil when Prometheus is disabled.
func NewSpectralDisplayRouter(tuners *TunerModel, metrics *PrometheusMetrics) *SpectralDisplayRouter {
	return &SpectralDisplayRouter{tuners: tuners, metrics: metrics}
}

// FocusDisplay resolves the tuner serving the given frequency and broadcasts
// a request_main_spectral_display event carrying the tuner and target
// frequency. Publication is fire and forget: zero, one or many subscribers
// may react and no completion signal exists. When no tuner serves the
// frequency nothing is published and ErrNoTunerFound is returned.
func (r *SpectralDisplayRouter) FocusDisplay(frequency int64) (Tuner, error) {
	if frequency <= 0 {
		return nil, fmt.Errorf("invalid focus frequency: %d", frequency)
	}

	log.Printf("Focus: looking for tuner at frequency %d Hz", frequency)

	tuner, err := r.tuners.FindTunerForFrequency(frequency)
	if err != nil {
		log.Printf("Warning: focus: no tuner found for frequency %d Hz", frequency)
		if r.metrics != nil {
			r.metrics.RecordTunerLookup("miss")
		}
		return nil, err
	}

	log.Printf("Focus: found tuner [%s], broadcasting spectral display request with zoom to %d Hz", tuner.Name(), frequency)
	if r.metrics != nil {
		r.metrics.RecordTunerLookup("hit")
	}

	r.tuners.Broadcast(NewTunerEventWithFrequency(tuner, EventRequestMainSpectralDisplay, frequency))
	return tuner, nil
}
