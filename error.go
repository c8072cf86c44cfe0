// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import "fmt"

// NotCalibratedError is returned when current or power is requested before a
// successful calibration. The current and power registers hold garbage until
// the calibration register is programmed.
type NotCalibratedError struct{}

func (e *NotCalibratedError) Error() string {
	return "ina226: device is not calibrated; call Calibrate before reading current or power"
}

// CalibrationRangeError is returned when the computed calibration register
// value does not fit in [1, 0xFFFF].
type CalibrationRangeError struct {
	// Register is the unclamped register value. 0 means the computation
	// underflowed.
	Register int64
}

func (e *CalibrationRangeError) Error() string {
	if e.Register > 0xFFFF {
		return fmt.Sprintf("ina226: calibration register value %d exceeds 0xFFFF; use a larger current LSB", e.Register)
	}
	return "ina226: calibration register value is below 1; use a smaller current LSB"
}

// ConfigError is returned for a Config field holding a value outside its
// 3-bit code range.
type ConfigError struct {
	Config Config
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ina226: configuration field out of range: %+v", e.Config)
}
