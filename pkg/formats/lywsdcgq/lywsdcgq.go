// Package lywsdcgq decodes Xiaomi Mijia LYWSDCGQ advertisements (service
// UUID 0xFE95). Each advertisement carries a single measurement selected by
// a leading object-type byte, so a device's full state is only assembled
// over several advertisements; the scan session merges readings of this
// format field-by-field into its last-known table instead of replacing the
// entry wholesale.
package lywsdcgq

import (
	"fmt"

	"github.com/mlsorensen/gotherm"
	"github.com/mlsorensen/gotherm/pkg/cursor"
)

// ServiceUUID is the 16-bit Xiaomi MiBeacon service data UUID.
const ServiceUUID = 0xFE95

// Priority places LYWSDCGQ last in the dispatch order.
const Priority = 2

// Object type bytes.
const (
	objTemperature = 0x04
	objHumidity    = 0x06
	objBattery     = 0x0A
)

func init() {
	gotherm.Register(gotherm.FormatLYWSDCGQ, Priority, match, Decode, Merge)
}

func match(adv gotherm.Advertisement) ([]byte, bool) {
	return adv.ServiceDataFor(ServiceUUID)
}

// Decode parses one LYWSDCGQ advertisement into a Reading with exactly one
// field set.
func Decode(data []byte) (*gotherm.Reading, error) {
	cur := cursor.New(data)

	objType, err := cur.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("object type: %w", err)
	}

	r := &gotherm.Reading{}
	switch objType {
	case objTemperature:
		raw, err := cur.ReadI16LE()
		if err != nil {
			return nil, fmt.Errorf("temperature: %w", err)
		}
		t := float64(raw) / 100.0
		r.Temperature = &t
	case objHumidity:
		raw, err := cur.ReadU16LE()
		if err != nil {
			return nil, fmt.Errorf("humidity: %w", err)
		}
		h := float64(raw) / 100.0
		r.Humidity = &h
	case objBattery:
		b, err := cur.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("battery: %w", err)
		}
		r.Battery = &b
	default:
		return nil, fmt.Errorf("object type 0x%02X: %w", objType, gotherm.ErrUnknownObjectID)
	}
	return r, nil
}

// Merge folds a single-field Reading into the previous last-known entry so a
// device's temperature, humidity and battery remain visible together even
// though they arrive in separate advertisements.
func Merge(prev, next *gotherm.Reading) *gotherm.Reading {
	if prev == nil {
		return next
	}
	merged := *next
	if merged.Temperature == nil {
		merged.Temperature = prev.Temperature
	}
	if merged.Humidity == nil {
		merged.Humidity = prev.Humidity
	}
	if merged.Battery == nil {
		merged.Battery = prev.Battery
	}
	if merged.VoltageMV == nil {
		merged.VoltageMV = prev.VoltageMV
	}
	return &merged
}
