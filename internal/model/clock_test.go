package model

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:05", 9*60 + 5, false},
		{"23:59", 23*60 + 59, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:00", 0, true},
		{"12-30", 0, true},
		{"", 0, true},
		{"aa:bb", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "08:30", "13:05", "23:59"} {
		v, err := ParseClock(s)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", s, err)
		}
		if v.String() != s {
			t.Errorf("round trip %q -> %q", s, v.String())
		}
	}
}

func TestBookingOverlaps(t *testing.T) {
	b := &Booking{Date: "2024-04-15", Start: 9 * 60, End: 11 * 60}
	cases := []struct {
		name  string
		date  string
		start ClockTime
		end   ClockTime
		want  bool
	}{
		{"identical", "2024-04-15", 9 * 60, 11 * 60, true},
		{"overlap tail", "2024-04-15", 10 * 60, 12 * 60, true},
		{"overlap head", "2024-04-15", 8 * 60, 10 * 60, true},
		{"contained", "2024-04-15", 9*60 + 30, 10 * 60, true},
		{"touching end", "2024-04-15", 11 * 60, 13 * 60, false},
		{"touching start", "2024-04-15", 7 * 60, 9 * 60, false},
		{"other date", "2024-04-16", 10 * 60, 12 * 60, false},
	}
	for _, tc := range cases {
		if got := b.Overlaps(tc.date, tc.start, tc.end); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}
