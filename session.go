package gotherm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// AdvertisementSource delivers raw advertisement reports to a callback until
// the context is canceled. The production implementation wraps the BLE
// adapter; tests substitute a fake.
type AdvertisementSource interface {
	Scan(ctx context.Context, fn func(Advertisement)) error
}

// Sink receives each successfully decoded Reading. Sink failures are logged
// and counted but never stop the scan loop.
type Sink interface {
	Publish(ctx context.Context, r Reading) error
}

// Stats is an aggregate view of session activity. Per-advertisement errors
// are too frequent to surface individually, so the session counts them by
// kind instead.
type Stats struct {
	Decoded            uint64
	Truncated          uint64
	UnknownObject      uint64
	Encrypted          uint64
	UnsupportedVersion uint64
	Unrecognized       uint64
	SinkErrors         uint64
}

// Session owns the continuous scan loop. It dispatches each advertisement to
// the format registry, maintains an address-keyed last-known table, and
// forwards decoded readings to its sinks. Advertisements are processed one
// at a time in arrival order.
type Session struct {
	source AdvertisementSource
	log    *slog.Logger
	sinks  []Sink

	mu    sync.RWMutex
	last  map[string]*Reading
	stats Stats

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates an idle Session. A nil logger falls back to
// slog.Default().
func NewSession(source AdvertisementSource, logger *slog.Logger, sinks ...Sink) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		source: source,
		log:    logger,
		sinks:  sinks,
		last:   make(map[string]*Reading),
	}
}

// Start transitions the session from Idle to Scanning and returns once the
// scan loop is running. It fails if the session is already scanning or if no
// formats are registered.
func (s *Session) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.cancel != nil {
		return errors.New("session is already scanning")
	}
	if len(entries()) == 0 {
		return errors.New("no formats registered (import pkg/formats/all)")
	}

	sctx, cancel := context.WithCancel(ctx)
	advCh := make(chan Advertisement, 64)
	done := make(chan struct{})

	go func() {
		defer close(advCh)
		err := s.source.Scan(sctx, func(adv Advertisement) {
			select {
			case advCh <- adv:
			case <-sctx.Done():
			}
		})
		if err != nil && sctx.Err() == nil {
			s.log.Error("advertisement source failed", "error", err)
		}
	}()

	go func() {
		defer close(done)
		for {
			select {
			case <-sctx.Done():
				return
			case adv, ok := <-advCh:
				if !ok {
					return
				}
				s.handle(sctx, adv)
			}
		}
	}()

	s.cancel = cancel
	s.done = done
	s.log.Info("scan session started", "formats", RegisteredFormats())
	return nil
}

// Stop transitions the session back to Idle. It interrupts the wait for the
// next advertisement, so it returns promptly even when no device is in
// range. Stopping an idle session is a no-op.
func (s *Session) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.log.Info("scan session stopped")
}

// Scanning reports whether the session is currently consuming advertisements.
func (s *Session) Scanning() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.cancel != nil
}

// handle processes a single advertisement. Failure is per-advertisement and
// never fatal to the loop.
func (s *Session) handle(ctx context.Context, adv Advertisement) {
	r, err := Decode(adv)
	if err != nil {
		s.recordError(adv, err)
		return
	}

	s.mu.Lock()
	s.stats.Decoded++
	if merge := mergeFor(r.Format); merge != nil {
		s.last[r.Address] = merge(s.last[r.Address], r)
	} else {
		s.last[r.Address] = r
	}
	s.mu.Unlock()

	s.log.Debug("decoded reading",
		"address", r.Address,
		"format", r.Format,
		"rssi", r.RSSI,
	)

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, *r); err != nil {
			s.mu.Lock()
			s.stats.SinkErrors++
			s.mu.Unlock()
			s.log.Warn("sink publish failed", "address", r.Address, "error", err)
		}
	}
}

func (s *Session) recordError(adv Advertisement, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, ErrUnrecognizedFormat):
		// Expected for foreign devices; counted, never logged per event.
		s.stats.Unrecognized++
		return
	case errors.Is(err, ErrTruncatedData):
		s.stats.Truncated++
	case errors.Is(err, ErrUnknownObjectID):
		s.stats.UnknownObject++
	case errors.Is(err, ErrEncryptedUnsupported):
		s.stats.Encrypted++
	case errors.Is(err, ErrUnsupportedVersion):
		s.stats.UnsupportedVersion++
	}
	s.log.Debug("decode failed", "address", adv.Address, "error", err)
}

// LastKnown returns a copy of the most recent (possibly merged) Reading for
// the given device address.
func (s *Session) LastKnown(addr string) (Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.last[addr]
	if !ok {
		return Reading{}, false
	}
	return *r, true
}

// Readings returns a copy of every last-known reading.
func (s *Session) Readings() []Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Reading, 0, len(s.last))
	for _, r := range s.last {
		out = append(out, *r)
	}
	return out
}

// Stats returns a snapshot of the session's aggregate counters.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// String implements fmt.Stringer for log-friendly stats output.
func (st Stats) String() string {
	return fmt.Sprintf("decoded=%d truncated=%d unknown_object=%d encrypted=%d unsupported_version=%d unrecognized=%d sink_errors=%d",
		st.Decoded, st.Truncated, st.UnknownObject, st.Encrypted, st.UnsupportedVersion, st.Unrecognized, st.SinkErrors)
}
