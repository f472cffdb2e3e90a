package gotherm

// ServiceDataElement is one 16-bit-UUID-tagged service data segment of an
// advertisement.
type ServiceDataElement struct {
	UUID uint16
	Data []byte
}

// ManufacturerDataElement is one company-ID-tagged manufacturer data segment
// of an advertisement.
type ManufacturerDataElement struct {
	CompanyID uint16
	Data      []byte
}

// Advertisement is a single broadcast report as delivered by the BLE stack.
// It is consumed read-only; decoders never mutate the data slices.
type Advertisement struct {
	Address          string
	RSSI             int16
	ServiceData      []ServiceDataElement
	ManufacturerData []ManufacturerDataElement
}

// ServiceDataFor returns the service data payload tagged with the given
// 16-bit UUID, if present.
func (a Advertisement) ServiceDataFor(uuid uint16) ([]byte, bool) {
	for _, sd := range a.ServiceData {
		if sd.UUID == uuid {
			return sd.Data, true
		}
	}
	return nil, false
}

// ManufacturerDataFor returns the manufacturer data payload tagged with the
// given company ID, if present.
func (a Advertisement) ManufacturerDataFor(id uint16) ([]byte, bool) {
	for _, md := range a.ManufacturerData {
		if md.CompanyID == id {
			return md.Data, true
		}
	}
	return nil, false
}
