package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	harare, err := time.LoadLocation("Africa/Harare")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	tests := []struct {
		name string
		t    time.Time
		loc  *time.Location
		want string
	}{
		{name: "utc", t: time.Date(2025, 3, 7, 23, 30, 0, 0, time.UTC), loc: time.UTC, want: "2025-03-07"},
		{name: "nil location is utc", t: time.Date(2025, 3, 7, 23, 30, 0, 0, time.UTC), want: "2025-03-07"},
		{name: "next day east of utc", t: time.Date(2025, 3, 7, 23, 30, 0, 0, time.UTC), loc: harare, want: "2025-03-08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateOf(tt.t, tt.loc).String(); got != tt.want {
				t.Errorf("DateOf() = %s; want %s", got, tt.want)
			}
		})
	}
}

func TestDate_Between(t *testing.T) {
	start, end := NewDate(2025, 3, 1), NewDate(2025, 3, 3)
	tests := []struct {
		day  Date
		want bool
	}{
		{day: NewDate(2025, 2, 28), want: false},
		{day: start, want: true},
		{day: NewDate(2025, 3, 2), want: true},
		{day: end, want: true},
		{day: NewDate(2025, 3, 4), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.day.String(), func(t *testing.T) {
			if got := tt.day.Between(start, end); got != tt.want {
				t.Errorf("Between() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestDate_AddDays(t *testing.T) {
	if got := NewDate(2025, 2, 27).AddDays(2).String(); got != "2025-03-01" {
		t.Errorf("AddDays() = %s; want 2025-03-01", got)
	}
	if got := NewDate(2025, 3, 1).AddDays(-1).String(); got != "2025-02-28" {
		t.Errorf("AddDays() = %s; want 2025-02-28", got)
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date  Date  `json:"date"`
		Maybe *Date `json:"maybe"`
	}

	data, err := json.Marshal(payload{Date: NewDate(2025, 3, 7)})
	if err != nil {
		t.Fatalf("json.Marshal(): %v", err)
	}
	if want := `{"date":"2025-03-07","maybe":null}`; string(data) != want {
		t.Errorf("json.Marshal() = %s; want %s", data, want)
	}

	var p payload
	if err = json.Unmarshal([]byte(`{"date":"2025-03-10","maybe":"2025-03-11"}`), &p); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if !p.Date.Equal(NewDate(2025, 3, 10)) || p.Maybe == nil || !p.Maybe.Equal(NewDate(2025, 3, 11)) {
		t.Errorf("json.Unmarshal() = %+v", p)
	}

	if err = json.Unmarshal([]byte(`{"date":"10/03/2025"}`), &p); err == nil {
		t.Errorf("json.Unmarshal() expected an error for a malformed date")
	}
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    string
		wantErr bool
	}{
		{name: "time", src: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), want: "2025-03-07"},
		{name: "string", src: "2025-03-07", want: "2025-03-07"},
		{name: "timestamp string", src: "2025-03-07T00:00:00Z", want: "2025-03-07"},
		{name: "bytes", src: []byte("2025-03-07"), want: "2025-03-07"},
		{name: "nil", src: nil, want: "0001-01-01"},
		{name: "int", src: 42, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := d.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan() error = %v; wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.String() != tt.want {
				t.Errorf("Scan() = %s; want %s", d, tt.want)
			}
		})
	}
}
