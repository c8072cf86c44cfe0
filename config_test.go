// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"errors"
	"testing"
	"time"
)

func TestConfigRegValue(t *testing.T) {
	tests := []struct {
		name string
		c    Config
		want uint16
	}{
		{"power-on default", DefaultConfig, 0x4127},
		{"zero value", Config{}, 0x4000},
		{
			"512 samples, 588µs, continuous",
			Config{Avg: Avg512, BusConvTime: CT588us, ShuntConvTime: CT588us, Mode: ModeShuntAndBusContinuous},
			0x4CDF,
		},
		{
			"4 samples, mixed conversion times, shunt triggered",
			Config{Avg: Avg4, BusConvTime: CT140us, ShuntConvTime: CT8p244ms, Mode: ModeShuntTriggered},
			0x4239,
		},
	}
	for _, test := range tests {
		got, err := test.c.regValue()
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%s: regValue() = %#04x, want %#04x", test.name, got, test.want)
		}
	}
}

func TestConfigRegValueInvalid(t *testing.T) {
	bad := []Config{
		{Avg: SampleAvg(8)},
		{BusConvTime: ConvTime(8)},
		{ShuntConvTime: ConvTime(200)},
		{Mode: Mode(8)},
	}
	for _, c := range bad {
		_, err := c.regValue()
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("regValue(%+v): expected ConfigError, got %v", c, err)
		}
	}
}

// TestConfigRoundTrip checks that encoding and decoding are inverses over
// the whole supported enum space.
func TestConfigRoundTrip(t *testing.T) {
	for avg := Avg1; avg <= Avg1024; avg++ {
		for bus := CT140us; bus <= CT8p244ms; bus++ {
			for shunt := CT140us; shunt <= CT8p244ms; shunt++ {
				for mode := ModePowerDown; mode <= ModeShuntAndBusContinuous; mode++ {
					c := Config{Avg: avg, BusConvTime: bus, ShuntConvTime: shunt, Mode: mode}
					v, err := c.regValue()
					if err != nil {
						t.Fatalf("regValue(%+v): %v", c, err)
					}
					if got := configFromReg(v); got != c {
						t.Fatalf("configFromReg(%#04x) = %+v, want %+v", v, got, c)
					}
					v2, err := configFromReg(v).regValue()
					if err != nil || v2 != v {
						t.Fatalf("re-encode of %#04x = %#04x, err %v", v, v2, err)
					}
				}
			}
		}
	}
}

func TestConvTimeDuration(t *testing.T) {
	tests := []struct {
		ct   ConvTime
		want time.Duration
	}{
		{CT140us, 140 * time.Microsecond},
		{CT588us, 588 * time.Microsecond},
		{CT1p1ms, 1100 * time.Microsecond},
		{CT8p244ms, 8244 * time.Microsecond},
	}
	for _, test := range tests {
		if got := test.ct.Duration(); got != test.want {
			t.Errorf("ConvTime(%d).Duration() = %s, want %s", test.ct, got, test.want)
		}
	}
}

func TestSampleAvgSamples(t *testing.T) {
	if got := Avg1.Samples(); got != 1 {
		t.Errorf("Avg1.Samples() = %d, want 1", got)
	}
	if got := Avg1024.Samples(); got != 1024 {
		t.Errorf("Avg1024.Samples() = %d, want 1024", got)
	}
}
