package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                             "0:00",
		-time.Second:                  "0:00",
		59*time.Second + 999999:       "0:59",
		3*time.Minute + 7*time.Second: "3:07",
		75 * time.Minute:              "75:00",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%v): expected %q, got %q", d, want, got)
		}
	}
}

func TestFormatSampleRate(t *testing.T) {
	cases := map[int]string{
		44100: "44.1 kHz",
		48000: "48 kHz",
		22050: "22.05 kHz",
	}
	for hz, want := range cases {
		if got := FormatSampleRate(hz); got != want {
			t.Fatalf("FormatSampleRate(%d): expected %q, got %q", hz, want, got)
		}
	}
}
