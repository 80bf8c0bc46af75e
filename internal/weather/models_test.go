package weather

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"
)

func TestCelsiusToFahrenheit(t *testing.T) {
	tests := []struct {
		celsius float64
		want    float64
	}{
		{0, 32},
		{100, 212},
		{20, 68},
		{-40, -40},
		{36.6, 97.88},
		{-17.78, 0},
	}

	for _, tt := range tests {
		if got := CelsiusToFahrenheit(tt.celsius); got != tt.want {
			t.Errorf("CelsiusToFahrenheit(%v) = %v, want %v", tt.celsius, got, tt.want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{68, "68.0"},
		{32, "32.0"},
		{97.88, "97.88"},
		{-4, "-4.0"},
		{math.Copysign(0, -1), "-0.0"},
	}

	for _, tt := range tests {
		if got := formatDecimal(tt.in); got != tt.want {
			t.Errorf("formatDecimal(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateForecast(t *testing.T) {
	for _, n := range []int{0, 1, 47, 48, 49, 120} {
		points := make([]ForecastPoint, n)
		for i := range points {
			points[i] = ForecastPoint{
				Timestamp:   Measurement(strconv.Itoa(1700000000 + i*3600)),
				Temperature: Measurement(strconv.Itoa(i)),
			}
		}

		got := TruncateForecast(points)

		want := min(n, ForecastHours)
		if len(got) != want {
			t.Fatalf("n=%d: expected %d points, got %d", n, want, len(got))
		}
		for i := range got {
			if got[i] != points[i] {
				t.Fatalf("n=%d: point %d changed: %+v != %+v", n, i, got[i], points[i])
			}
		}
	}
}

func TestMeasurementJSON(t *testing.T) {
	var payload struct {
		Int     Measurement `json:"int"`
		Float   Measurement `json:"float"`
		Null    Measurement `json:"null"`
		Missing Measurement `json:"missing"`
	}
	if err := json.Unmarshal([]byte(`{"int": 20, "float": -3.5, "null": null}`), &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.Int.Or("x") != "20" {
		t.Errorf("expected 20, got %q", payload.Int)
	}
	if f, ok := payload.Float.Float64(); !ok || f != -3.5 {
		t.Errorf("expected -3.5, got %v (ok=%v)", f, ok)
	}
	if payload.Null.Valid() || payload.Missing.Valid() {
		t.Errorf("expected null and missing measurements to be absent")
	}
	if payload.Missing.Or(NA) != NA {
		t.Errorf("expected sentinel for missing measurement")
	}

	out, err := json.Marshal(struct {
		A Measurement `json:"a"`
		B Measurement `json:"b"`
	}{A: "20"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"a":20,"b":null}` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestMeasurementRejectsNonNumbers(t *testing.T) {
	var m Measurement
	if err := json.Unmarshal([]byte(`"warm"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric value")
	}
}
