package gotherm

import (
	"context"
	"log/slog"
	"sync"

	"tinygo.org/x/bluetooth"
)

// BTAdapter is the bluetooth adapter used by AdapterSource. It is exposed so
// callers with unusual setups can swap in a non-default adapter before
// scanning starts.
var BTAdapter = bluetooth.DefaultAdapter

var (
	enableOnce sync.Once
	enableErr  error
)

// TryEnableAdapter enables the BLE stack at most once per process.
func TryEnableAdapter() error {
	enableOnce.Do(func() {
		enableErr = BTAdapter.Enable()
	})
	return enableErr
}

// AdapterSource adapts the bluetooth adapter's scan callback into the
// AdvertisementSource interface, translating each ScanResult into a
// hardware-free Advertisement record.
type AdapterSource struct {
	adapter *bluetooth.Adapter
	log     *slog.Logger
}

var _ AdvertisementSource = (*AdapterSource)(nil)

// NewAdapterSource returns an AdapterSource over BTAdapter. A nil logger
// falls back to slog.Default().
func NewAdapterSource(logger *slog.Logger) *AdapterSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdapterSource{adapter: BTAdapter, log: logger}
}

// Scan blocks delivering advertisements to fn until ctx is canceled, then
// stops the underlying scan and returns. Canceling ctx is the only way to
// interrupt the adapter's blocking scan call, so the stop is issued from a
// watcher goroutine.
func (s *AdapterSource) Scan(ctx context.Context, fn func(Advertisement)) error {
	if err := TryEnableAdapter(); err != nil {
		return err
	}

	scanDone := make(chan struct{})
	defer close(scanDone)

	go func() {
		select {
		case <-ctx.Done():
			if err := s.adapter.StopScan(); err != nil {
				s.log.Warn("failed to stop scan cleanly", "error", err)
			}
		case <-scanDone:
		}
	}()

	return s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		fn(fromScanResult(result))
	})
}

func fromScanResult(result bluetooth.ScanResult) Advertisement {
	adv := Advertisement{
		Address: result.Address.String(),
		RSSI:    result.RSSI,
	}
	for _, sd := range result.ServiceData() {
		// Sensor formats are keyed by 16-bit UUIDs; longer UUIDs are not
		// dispatchable and are dropped here.
		if !sd.UUID.Is16Bit() {
			continue
		}
		adv.ServiceData = append(adv.ServiceData, ServiceDataElement{
			UUID: sd.UUID.Get16Bit(),
			Data: sd.Data,
		})
	}
	for _, md := range result.ManufacturerData() {
		adv.ManufacturerData = append(adv.ManufacturerData, ManufacturerDataElement{
			CompanyID: md.CompanyID,
			Data:      md.Data,
		})
	}
	return adv
}
