package gotherm

import "time"

// Decode routes an advertisement to the first registered format whose
// identifier predicate matches, in priority order, and runs that format's
// decoder on the matched payload. The address, RSSI and timestamp from the
// advertisement are stamped onto the resulting Reading.
//
// If no predicate matches, Decode returns ErrUnrecognizedFormat without
// invoking any decoder. If a predicate matches but decoding fails, the error
// is returned as a *DecodeError carrying that format's tag; the payload is
// not retried against other formats.
func Decode(adv Advertisement) (*Reading, error) {
	for _, e := range entries() {
		payload, ok := e.match(adv)
		if !ok {
			continue
		}
		r, err := e.decode(payload)
		if err != nil {
			return nil, &DecodeError{Format: e.format, Err: err}
		}
		r.Address = adv.Address
		r.Format = e.format
		r.RSSI = adv.RSSI
		r.Time = time.Now()
		return r, nil
	}
	return nil, ErrUnrecognizedFormat
}
