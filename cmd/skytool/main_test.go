package main

import (
	"testing"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

func TestParseView(t *testing.T) {
	tests := []struct {
		in      string
		az, el  float64
		wantErr bool
	}{
		{"0,90", 0, 90, false},
		{"180, -2.5", 180, -2.5, false},
		{"90", 0, 0, true},
		{"a,10", 0, 0, true},
		{"10,b", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := parseView(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (v.az != tt.az || v.el != tt.el || v.name != tt.in) {
				t.Errorf("parseView(%q) = %+v", tt.in, v)
			}
		})
	}
}

func TestFormatVec(t *testing.T) {
	if got := formatVec(math.Vec3{X: 0.5, Y: 1, Z: 0.25}, 2); got != "0.50 1.00 0.25" {
		t.Errorf("formatVec = %q", got)
	}
}
