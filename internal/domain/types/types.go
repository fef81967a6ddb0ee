// Package types contains common types used across the application
package types

import (
	"fmt"
	"strings"
)

// Target names one independently modeled prediction output.
type Target string

// Supported prediction targets.
const (
	Latitude    Target = "latitude"
	Longitude   Target = "longitude"
	Temperature Target = "temperature"
)

// Units reported alongside predictions.
const (
	UnitDegrees        = "degrees"
	UnitDegreesCelsius = "degrees Celsius"
)

// Targets returns every target in training order.
func Targets() []Target {
	return []Target{Latitude, Longitude, Temperature}
}

// Column returns the sensor-reading column the target is trained against.
func (t Target) Column() string {
	switch t {
	case Latitude:
		return "locationLat"
	case Longitude:
		return "locationLon"
	case Temperature:
		return "temperature"
	default:
		return ""
	}
}

// Valid reports whether t is one of the supported targets.
func (t Target) Valid() bool {
	return t.Column() != ""
}

// String implements fmt.Stringer.
func (t Target) String() string { return string(t) }

// ParseTarget converts a name (case-insensitive) into a Target.
func ParseTarget(name string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(name)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown target %q", name)
	}
	return t, nil
}
