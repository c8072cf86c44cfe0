// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestComputeCalibration(t *testing.T) {
	tests := []struct {
		shunt      physic.ElectricResistance
		maxCurrent physic.ElectricCurrent
		want       Calibration
	}{
		// The datasheet walk-through: 100mΩ shunt, 3.6A expected.
		{
			shunt:      100 * physic.MilliOhm,
			maxCurrent: 3600 * physic.MilliAmpere,
			want: Calibration{
				CurrentLSB: 109863 * physic.NanoAmpere,
				PowerLSB:   2746575 * physic.NanoWatt,
				Register:   466,
			},
		},
		{
			shunt:      10 * physic.MilliOhm,
			maxCurrent: 10 * physic.Ampere,
			want: Calibration{
				CurrentLSB: 305175 * physic.NanoAmpere,
				PowerLSB:   7629375 * physic.NanoWatt,
				Register:   1677,
			},
		},
		{
			shunt:      1 * physic.Ohm,
			maxCurrent: 100 * physic.MilliAmpere,
			want: Calibration{
				CurrentLSB: 3051 * physic.NanoAmpere,
				PowerLSB:   76275 * physic.NanoWatt,
				Register:   1678,
			},
		},
	}
	for _, test := range tests {
		got, err := ComputeCalibration(test.shunt, test.maxCurrent)
		if err != nil {
			t.Errorf("ComputeCalibration(%s, %s): %v", test.shunt, test.maxCurrent, err)
			continue
		}
		if got != test.want {
			t.Errorf("ComputeCalibration(%s, %s) = %+v, want %+v", test.shunt, test.maxCurrent, got, test.want)
		}
	}
}

func TestComputeCalibrationInvalid(t *testing.T) {
	if _, err := ComputeCalibration(100*physic.MilliOhm, 0); err == nil {
		t.Error("expected error for zero max current")
	}
	if _, err := ComputeCalibration(100*physic.MilliOhm, -physic.Ampere); err == nil {
		t.Error("expected error for negative max current")
	}
	// Below 32.768µA the derived LSB truncates to zero.
	if _, err := ComputeCalibration(100*physic.MilliOhm, physic.MicroAmpere); err == nil {
		t.Error("expected error for max current below the register resolution")
	}
	if _, err := ComputeCalibration(0, physic.Ampere); err == nil {
		t.Error("expected error for zero shunt")
	}
}

func TestComputeCalibrationLSB(t *testing.T) {
	// The rounded scale from the datasheet example: 100µA/count instead of
	// 3.6A/2^15.
	got, err := ComputeCalibrationLSB(100*physic.MilliOhm, 100*physic.MicroAmpere)
	if err != nil {
		t.Fatal(err)
	}
	want := Calibration{
		CurrentLSB: 100 * physic.MicroAmpere,
		PowerLSB:   2500 * physic.MicroWatt,
		Register:   512,
	}
	if got != want {
		t.Errorf("ComputeCalibrationLSB = %+v, want %+v", got, want)
	}
}

func TestComputeCalibrationLSBRange(t *testing.T) {
	// 1Ω at 1A/count computes to 0; must error instead of programming 0.
	_, err := ComputeCalibrationLSB(physic.Ohm, physic.Ampere)
	var rangeErr *CalibrationRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected CalibrationRangeError, got %v", err)
	}
	if rangeErr.Register != 0 {
		t.Errorf("Register = %d, want 0", rangeErr.Register)
	}

	// 1mΩ at 1µA/count computes to 5120000, far past 16 bits.
	_, err = ComputeCalibrationLSB(physic.MilliOhm, physic.MicroAmpere)
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected CalibrationRangeError, got %v", err)
	}
	if rangeErr.Register != 5120000 {
		t.Errorf("Register = %d, want 5120000", rangeErr.Register)
	}

	// Large enough for the denominator to overflow int64.
	if _, err := ComputeCalibrationLSB(physic.GigaOhm, 100*physic.Ampere); !errors.As(err, &rangeErr) {
		t.Fatalf("expected CalibrationRangeError, got %v", err)
	}
}
