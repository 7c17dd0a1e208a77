// Package models defines the data types shared across packages.
package models

import (
	"encoding/json"
)

// Reading is a sensor measurement in the unified schema.
// Field order matches the serialized output.
type Reading struct {
	Sensor    string      `json:"sensor"`
	Value     json.Number `json:"value"`
	Timestamp int64       `json:"timestamp"`
}

// Float returns the reading value as float64.
func (r Reading) Float() float64 {
	f, err := r.Value.Float64()
	if err != nil {
		return 0
	}

	return f
}
