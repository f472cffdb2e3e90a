// Package bthome decodes BTHome v2 service data advertisements
// (https://bthome.io, service UUID 0xFCD2). The payload is a device info
// byte followed by (object-id, value) pairs whose value width is implied by
// the object id.
package bthome

import (
	"fmt"

	"github.com/mlsorensen/gotherm"
	"github.com/mlsorensen/gotherm/pkg/cursor"
)

// ServiceUUID is the 16-bit BTHome service data UUID.
const ServiceUUID = 0xFCD2

// Priority places BTHome first in the dispatch order.
const Priority = 0

// Device info byte layout.
const (
	infoEncrypted    = 0x01 // bit 0: payload is encrypted
	infoTriggerBased = 0x04 // bit 2: device only advertises on events
	infoVersionShift = 5    // bits 5-7: protocol version
	protocolVersion  = 2
)

// Known object ids.
const (
	objPacketID    = 0x00
	objBattery     = 0x01
	objTemperature = 0x02
	objHumidity    = 0x03
	objVoltage     = 0x0C
)

// objectSpec describes how to consume one object's value: its byte width,
// signedness, the divisor that scales the raw value into physical units, and
// where the scaled value lands on the Reading. A nil assign consumes the
// value and discards it. Scaling divides rather than multiplying by a
// reciprocal so fixed-point values like -1234 -> -12.34 survive exactly.
type objectSpec struct {
	width  int
	signed bool
	div    float64
	assign func(r *gotherm.Reading, v float64)
}

var objectTable = map[uint8]objectSpec{
	objPacketID: {width: 1, div: 1},
	objBattery: {width: 1, div: 1, assign: func(r *gotherm.Reading, v float64) {
		b := uint8(v)
		r.Battery = &b
	}},
	objTemperature: {width: 2, signed: true, div: 100, assign: func(r *gotherm.Reading, v float64) {
		r.Temperature = &v
	}},
	objHumidity: {width: 2, div: 100, assign: func(r *gotherm.Reading, v float64) {
		r.Humidity = &v
	}},
	objVoltage: {width: 2, div: 1, assign: func(r *gotherm.Reading, v float64) {
		mv := uint16(v)
		r.VoltageMV = &mv
	}},
}

func init() {
	if err := validateTable(); err != nil {
		panic(err)
	}
	gotherm.Register(gotherm.FormatBTHomeV2, Priority, match, Decode, nil)
}

// validateTable fails fast on a malformed table entry rather than at first
// use during a scan.
func validateTable() error {
	for id, spec := range objectTable {
		if spec.width != 1 && spec.width != 2 {
			return fmt.Errorf("bthome: object 0x%02X has unsupported width %d", id, spec.width)
		}
		if spec.div == 0 {
			return fmt.Errorf("bthome: object 0x%02X has zero divisor", id)
		}
	}
	return nil
}

func match(adv gotherm.Advertisement) ([]byte, bool) {
	return adv.ServiceDataFor(ServiceUUID)
}

// Decode parses a BTHome v2 service data payload (the bytes following the
// 0xFCD2 UUID). Encrypted payloads are rejected before any object parsing;
// an object id outside the table fails the whole payload, because the id is
// the only source of the value width.
func Decode(data []byte) (*gotherm.Reading, error) {
	cur := cursor.New(data)

	info, err := cur.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("device info: %w", err)
	}
	if info&infoEncrypted != 0 {
		return nil, gotherm.ErrEncryptedUnsupported
	}
	if v := info >> infoVersionShift; v != protocolVersion {
		return nil, fmt.Errorf("bthome version %d: %w", v, gotherm.ErrUnsupportedVersion)
	}

	r := &gotherm.Reading{}
	for cur.Remaining() > 0 {
		id, err := cur.ReadU8()
		if err != nil {
			return nil, err
		}
		spec, ok := objectTable[id]
		if !ok {
			return nil, fmt.Errorf("object 0x%02X: %w", id, gotherm.ErrUnknownObjectID)
		}

		var raw int64
		switch {
		case spec.width == 1 && spec.signed:
			v, err := cur.ReadI8()
			if err != nil {
				return nil, fmt.Errorf("object 0x%02X: %w", id, err)
			}
			raw = int64(v)
		case spec.width == 1:
			v, err := cur.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("object 0x%02X: %w", id, err)
			}
			raw = int64(v)
		case spec.signed:
			v, err := cur.ReadI16LE()
			if err != nil {
				return nil, fmt.Errorf("object 0x%02X: %w", id, err)
			}
			raw = int64(v)
		default:
			v, err := cur.ReadU16LE()
			if err != nil {
				return nil, fmt.Errorf("object 0x%02X: %w", id, err)
			}
			raw = int64(v)
		}

		if spec.assign != nil {
			// Duplicate ids in one payload: last one wins.
			spec.assign(r, float64(raw)/spec.div)
		}
	}
	return r, nil
}
