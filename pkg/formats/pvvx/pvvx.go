// Package pvvx decodes the pvvx custom advertisement format emitted by
// Xiaomi LYWSD03MMC thermometers running the pvvx firmware (service UUID
// 0x181A). The payload is a fixed-offset struct, not TLV, so the length is
// validated once up front.
package pvvx

import (
	"fmt"

	"github.com/mlsorensen/gotherm"
	"github.com/mlsorensen/gotherm/pkg/cursor"
)

// ServiceUUID is the 16-bit Environmental Sensing UUID the pvvx firmware
// advertises under.
const ServiceUUID = 0x181A

// Priority places pvvx after BTHome in the dispatch order.
const Priority = 1

// payloadLen is the fixed custom-format payload size: 6B MAC, i16 temperature,
// u16 humidity, u16 battery mV, u8 battery %, u8 counter, u8 flags.
const payloadLen = 15

const macLen = 6

func init() {
	gotherm.Register(gotherm.FormatPVVX, Priority, match, Decode, nil)
}

func match(adv gotherm.Advertisement) ([]byte, bool) {
	return adv.ServiceDataFor(ServiceUUID)
}

// Decode parses a pvvx custom-format payload. The embedded MAC address is
// not required to match the outer advertisement address; the frame counter
// and flags bytes are ignored.
func Decode(data []byte) (*gotherm.Reading, error) {
	if len(data) < payloadLen {
		return nil, fmt.Errorf("payload %d bytes, want %d: %w", len(data), payloadLen, gotherm.ErrTruncatedData)
	}

	cur := cursor.New(data)
	if err := cur.Skip(macLen); err != nil {
		return nil, err
	}
	tempRaw, err := cur.ReadI16LE()
	if err != nil {
		return nil, err
	}
	humRaw, err := cur.ReadU16LE()
	if err != nil {
		return nil, err
	}
	voltageMV, err := cur.ReadU16LE()
	if err != nil {
		return nil, err
	}
	battery, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}

	temp := float64(tempRaw) / 100.0
	hum := float64(humRaw) / 100.0
	return &gotherm.Reading{
		Temperature: &temp,
		Humidity:    &hum,
		VoltageMV:   &voltageMV,
		Battery:     &battery,
	}, nil
}
