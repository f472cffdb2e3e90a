package gotherm

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Format identifies the advertisement encoding a Reading was decoded from.
type Format string

const (
	FormatBTHomeV2 Format = "bthome_v2"
	FormatPVVX     Format = "pvvx"
	FormatLYWSDCGQ Format = "lywsdcgq"
)

// Reading is a single decoded sensor sample. Optional fields are nil when the
// source format does not carry them; values are always in final physical
// units (°C, %, mV).
type Reading struct {
	Address     string
	Format      Format
	Temperature *float64
	Humidity    *float64
	Battery     *uint8
	VoltageMV   *uint16
	RSSI        int16
	Time        time.Time
}

// DecodeFunc parses a raw service-data/manufacturer-data payload into a
// Reading. It must be pure and non-blocking. Address, RSSI and Time are
// filled in by the dispatcher, not the decoder.
type DecodeFunc func(data []byte) (*Reading, error)

// MatchFunc reports whether an advertisement carries this format's payload
// and, if so, returns the payload bytes to decode. It must not parse them.
type MatchFunc func(adv Advertisement) ([]byte, bool)

// MergeFunc combines a freshly decoded Reading with the previous last-known
// entry for the same device. prev may be nil. A nil MergeFunc on a registry
// entry means the new Reading replaces the old one wholesale.
type MergeFunc func(prev, next *Reading) *Reading

// --- Format Registry ---

type registryEntry struct {
	format   Format
	priority int
	match    MatchFunc
	decode   DecodeFunc
	merge    MergeFunc
}

var (
	registry []registryEntry
	regLock  = sync.RWMutex{}
)

// Register makes a format decoder available to the dispatcher. It is called
// from the init() function of each format package; lower priority values are
// tried first. Registering the same format twice or with missing functions
// panics, since the registry must be complete and immutable before the first
// scan starts.
func Register(format Format, priority int, match MatchFunc, decode DecodeFunc, merge MergeFunc) {
	regLock.Lock()
	defer regLock.Unlock()

	if match == nil || decode == nil {
		panic(fmt.Sprintf("gotherm: format %q registered without match/decode", format))
	}
	for _, e := range registry {
		if e.format == format {
			panic(fmt.Sprintf("gotherm: format %q registered twice", format))
		}
	}
	registry = append(registry, registryEntry{
		format:   format,
		priority: priority,
		match:    match,
		decode:   decode,
		merge:    merge,
	})
	sort.SliceStable(registry, func(i, j int) bool {
		return registry[i].priority < registry[j].priority
	})
}

// RegisteredFormats returns the formats the dispatcher will try, in priority
// order.
func RegisteredFormats() []Format {
	regLock.RLock()
	defer regLock.RUnlock()

	out := make([]Format, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.format)
	}
	return out
}

func entries() []registryEntry {
	regLock.RLock()
	defer regLock.RUnlock()
	return registry
}

func mergeFor(format Format) MergeFunc {
	regLock.RLock()
	defer regLock.RUnlock()
	for _, e := range registry {
		if e.format == format {
			return e.merge
		}
	}
	return nil
}
