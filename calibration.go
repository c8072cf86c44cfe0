// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"errors"
	"math"

	"periph.io/x/conn/v3/physic"
)

// Calibration holds the scale factors for one shunt/current-range choice and
// the calibration register value that programs them into the device.
type Calibration struct {
	// CurrentLSB is the current represented by one count of the current
	// register.
	CurrentLSB physic.ElectricCurrent
	// PowerLSB is the power represented by one count of the power register.
	// The device fixes it at 25 times the current LSB.
	PowerLSB physic.Power
	// Register is the value for the calibration register (05h).
	Register uint16
}

// calScale is the datasheet calibration constant 0.00512 scaled for
// nanoohm times nanoampere denominators:
//
//	CAL = 0.00512 / (currentLSB * Rshunt)
const calScale = 5_120_000_000_000_000

// currentFullScale is the positive range of the signed 16-bit current
// register. Dividing the maximum expected current by it yields the smallest
// current LSB that still covers the full range.
const currentFullScale = 1 << 15

// ComputeCalibration derives the calibration for a shunt resistor and the
// maximum current expected through it. The current LSB is set to
// maxCurrent/2^15 so the expected range spans the positive half of the
// current register. It is a pure function; use Dev.Calibrate to also program
// the device.
func ComputeCalibration(shunt physic.ElectricResistance, maxCurrent physic.ElectricCurrent) (Calibration, error) {
	if maxCurrent <= 0 {
		return Calibration{}, errors.New("ina226: maximum expected current must be positive")
	}
	return ComputeCalibrationLSB(shunt, maxCurrent/currentFullScale)
}

// ComputeCalibrationLSB derives the calibration from an explicit current
// LSB. Use it instead of ComputeCalibration to trade range for a rounder
// scale factor, e.g. 100µA/count instead of the 3.6A/2^15 ≈ 109.9µA/count
// the range-based derivation yields.
func ComputeCalibrationLSB(shunt physic.ElectricResistance, currentLSB physic.ElectricCurrent) (Calibration, error) {
	if shunt <= 0 {
		return Calibration{}, errors.New("ina226: shunt resistance must be positive")
	}
	if currentLSB <= 0 {
		return Calibration{}, errors.New("ina226: current LSB must be positive")
	}
	r := int64(shunt)        // nanoohm
	lsb := int64(currentLSB) // nanoampere
	if r > math.MaxInt64/lsb {
		// The denominator only overflows int64 when the register value is
		// already below 1.
		return Calibration{}, &CalibrationRangeError{}
	}
	reg := calScale / (r * lsb)
	if reg < 1 || reg > 0xFFFF {
		return Calibration{}, &CalibrationRangeError{Register: reg}
	}
	return Calibration{
		CurrentLSB: currentLSB,
		PowerLSB:   25 * physic.Power(currentLSB),
		Register:   uint16(reg),
	}, nil
}
