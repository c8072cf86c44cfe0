// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ina226 controls a Texas Instruments INA226 bidirectional
// current/power monitor over an I²C bus.
//
// The INA226 measures the voltage across an external shunt resistor and the
// bus supply voltage. Current and power readings require the device to be
// calibrated for the shunt value and the expected current range; see
// Dev.Calibrate. Bus and shunt voltage are available without calibration.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/ina226.pdf
package ina226
