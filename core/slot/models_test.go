package slot

import (
	"testing"
	"time"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

func TestCatalog(t *testing.T) {
	ranges := Catalog()
	if len(ranges) != PerDay || PerDay != 48 {
		t.Fatalf("len(Catalog()) = %d; want 48", len(ranges))
	}
	seen := make(map[string]bool, len(ranges))
	for _, r := range ranges {
		if seen[r] {
			t.Errorf("Catalog() has duplicate %s", r)
		}
		seen[r] = true
	}
	if ranges[0] != "00:00–00:30" {
		t.Errorf("Catalog()[0] = %s", ranges[0])
	}
	if ranges[47] != "23:30–00:00" {
		t.Errorf("Catalog()[47] = %s", ranges[47])
	}
}

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "06:00–06:30", want: "06:00–06:30"},
		{in: "06:00-06:30", want: "06:00–06:30"},
		{in: " 06:00 - 06:30 ", want: "06:00–06:30"},
		{in: "23:30–00:00", want: "23:30–00:00"},
		{in: "06:15–06:45", wantErr: true},
		{in: "06:00–07:00", wantErr: true},
		{in: "6:00–6:30", wantErr: true},
		{in: "24:00–00:30", wantErr: true},
		{in: "", wantErr: true},
		{in: "morning", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeRange() error = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !core.IsValidation(err) {
					t.Errorf("NormalizeRange() error = %T; want a validation error", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("NormalizeRange() = %s; want %s", got, tt.want)
			}
		})
	}
}

func TestSlot_StartsAt(t *testing.T) {
	s := Slot{SlotTime: "18:30–19:00", Timezone: "UTC"}
	got := s.StartsAt(core.NewDate(2025, 3, 7))
	want := time.Date(2025, 3, 7, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartsAt() = %v; want %v", got, want)
	}
	if s.StartMinute() != 18*60+30 {
		t.Errorf("StartMinute() = %d", s.StartMinute())
	}
}
