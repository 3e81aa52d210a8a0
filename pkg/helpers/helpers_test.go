package helpers

import "testing"

func TestFormatKAS(t *testing.T) {
	tests := []struct {
		sompi uint64
		want  string
	}{
		{0, "0"},
		{1, "0.00000001"},
		{100_000_000, "1"},
		{150_000_000, "1.5"},
		{123_456_789, "1.23456789"},
		{2_100_000_000_000_000, "21000000"},
	}

	for _, tc := range tests {
		if got := FormatKAS(tc.sompi); got != tc.want {
			t.Errorf("FormatKAS(%d) = %s, want %s", tc.sompi, got, tc.want)
		}
	}
}

func TestParseKAS(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0", 0, false},
		{"1", 100_000_000, false},
		{"1.5", 150_000_000, false},
		{"0.00000001", 1, false},
		{".5", 50_000_000, false},
		{"1.23456789", 123_456_789, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.123456789", 0, true}, // too many decimals
		{"-1", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseKAS(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseKAS(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseKAS(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, sompi := range []uint64{1, 999, 100_000_000, 123_456_789, 400_000_000} {
		parsed, err := ParseKAS(FormatKAS(sompi))
		if err != nil {
			t.Fatalf("ParseKAS(FormatKAS(%d)) error = %v", sompi, err)
		}
		if parsed != sompi {
			t.Errorf("round trip %d -> %d", sompi, parsed)
		}
	}
}
