package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mlsorensen/gotherm"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(filepath.Join(t.TempDir(), "readings.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func TestPublishAndLatest(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	temp := 21.5
	hum := 48.2
	batt := uint8(91)
	mv := uint16(2987)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := gotherm.Reading{
		Address:     "A4:C1:38:01:02:03",
		Format:      gotherm.FormatPVVX,
		Temperature: &temp,
		Humidity:    &hum,
		Battery:     &batt,
		VoltageMV:   &mv,
		RSSI:        -61,
		Time:        base,
	}
	if err := rec.Publish(ctx, first); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	temp2 := 22.0
	second := first
	second.Temperature = &temp2
	second.Time = base.Add(time.Minute)
	if err := rec.Publish(ctx, second); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got, err := rec.Latest(ctx, first.Address, 10)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Latest() returned %d readings; want 2", len(got))
	}
	if got[0].Temperature == nil || *got[0].Temperature != temp2 {
		t.Errorf("newest Temperature = %v; want %v", got[0].Temperature, temp2)
	}
	if got[1].Temperature == nil || *got[1].Temperature != temp {
		t.Errorf("older Temperature = %v; want %v", got[1].Temperature, temp)
	}
	if got[0].Format != gotherm.FormatPVVX {
		t.Errorf("Format = %q; want %q", got[0].Format, gotherm.FormatPVVX)
	}
	if !got[0].Time.Equal(second.Time) {
		t.Errorf("Time = %v; want %v", got[0].Time, second.Time)
	}
}

func TestPublishPreservesAbsentFields(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	temp := 19.25
	partial := gotherm.Reading{
		Address:     "4C:65:A8:00:11:22",
		Format:      gotherm.FormatLYWSDCGQ,
		Temperature: &temp,
		RSSI:        -78,
		Time:        time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
	}
	if err := rec.Publish(ctx, partial); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got, err := rec.Latest(ctx, partial.Address, 1)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Latest() returned %d readings; want 1", len(got))
	}
	if got[0].Humidity != nil || got[0].Battery != nil || got[0].VoltageMV != nil {
		t.Errorf("absent fields came back non-nil: %+v", got[0])
	}
	if got[0].Temperature == nil || *got[0].Temperature != temp {
		t.Errorf("Temperature = %v; want %v", got[0].Temperature, temp)
	}
}

func TestLatestUnknownAddress(t *testing.T) {
	rec := openTestRecorder(t)
	got, err := rec.Latest(context.Background(), "00:00:00:00:00:00", 5)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Latest() returned %d readings for unknown address", len(got))
	}
}
