package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     *time.Location
		wantErr  bool
	}{
		{"empty is UTC", "", time.UTC, false},
		{"local", "Local", time.Local, false},
		{"invalid", "Not/AZone", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if !tt.wantErr && loc != tt.want {
				t.Errorf("LoadLocation(%q) = %v, want %v", tt.timezone, loc, tt.want)
			}
		})
	}
}

func TestCombineDateAndTime(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		time    string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{
			name: "valid in UTC",
			date: "2024-01-02",
			time: "19:30",
			loc:  time.UTC,
			want: time.Date(2024, 1, 2, 19, 30, 0, 0, time.UTC),
		},
		{
			name: "nil location defaults to UTC",
			date: "2024-03-10",
			time: "08:05",
			want: time.Date(2024, 3, 10, 8, 5, 0, 0, time.UTC),
		},
		{
			name: "fixed zone",
			date: "2024-06-01",
			time: "00:00",
			loc:  time.FixedZone("X", 3600),
			want: time.Date(2024, 6, 1, 0, 0, 0, 0, time.FixedZone("X", 3600)),
		},
		{name: "bad date", date: "01/02/2024", time: "10:00", wantErr: true},
		{name: "bad time", date: "2024-01-02", time: "7pm", wantErr: true},
		{name: "empty", date: "", time: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CombineDateAndTime(tt.date, tt.time, tt.loc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CombineDateAndTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("CombineDateAndTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitDateAndTime(t *testing.T) {
	d, tm := SplitDateAndTime(time.Date(2024, 1, 2, 19, 30, 0, 0, time.UTC), nil)
	if d != "2024-01-02" || tm != "19:30" {
		t.Errorf("SplitDateAndTime() = %q, %q", d, tm)
	}

	d, tm = SplitDateAndTime(time.Time{}, time.UTC)
	if d != "" || tm != "" {
		t.Errorf("SplitDateAndTime(zero) = %q, %q, want empty", d, tm)
	}

	combined, err := CombineDateAndTime("2024-12-31", "23:59", time.Local)
	if err != nil {
		t.Fatalf("CombineDateAndTime() error: %v", err)
	}
	d, tm = SplitDateAndTime(combined, time.Local)
	if d != "2024-12-31" || tm != "23:59" {
		t.Errorf("round trip = %q %q", d, tm)
	}
}

func TestFormatDayHeader(t *testing.T) {
	if got := FormatDayHeader("2024-01-01"); got != "Monday, January 1, 2024" {
		t.Errorf("FormatDayHeader() = %q", got)
	}
	if got := FormatDayHeader("garbage"); got != "garbage" {
		t.Errorf("FormatDayHeader(garbage) = %q", got)
	}
}
