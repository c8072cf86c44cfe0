// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import "time"

// SampleAvg selects how many ADC samples are averaged into one reported
// measurement.
type SampleAvg uint8

const (
	Avg1 SampleAvg = iota // device default
	Avg4
	Avg16
	Avg64
	Avg128
	Avg256
	Avg512
	Avg1024
)

// Samples returns the number of samples averaged for this setting.
func (a SampleAvg) Samples() int {
	return [8]int{1, 4, 16, 64, 128, 256, 512, 1024}[a&0x07]
}

// ConvTime selects the ADC conversion time for one voltage measurement. Bus
// and shunt conversion times are set independently.
type ConvTime uint8

const (
	CT140us ConvTime = iota
	CT204us
	CT332us
	CT588us
	CT1p1ms // device default
	CT2p116ms
	CT4p156ms
	CT8p244ms
)

// Duration returns the conversion time as a time.Duration. A complete
// measurement takes the bus plus shunt conversion time, multiplied by the
// selected number of averaged samples.
func (c ConvTime) Duration() time.Duration {
	return [8]time.Duration{140, 204, 332, 588, 1100, 2116, 4156, 8244}[c&0x07] * time.Microsecond
}

// Mode selects which conversions the device performs and whether they run
// once on demand or continuously.
type Mode uint8

const (
	ModePowerDown Mode = iota
	ModeShuntTriggered
	ModeBusTriggered
	ModeShuntAndBusTriggered
	ModeADCOff
	ModeShuntContinuous
	ModeBusContinuous
	ModeShuntAndBusContinuous // device default
)

// Config represents the content of the configuration register (00h). The
// zero value is a valid configuration (single sample, 140µs conversions,
// power-down); use DefaultConfig for the power-on defaults.
type Config struct {
	Avg           SampleAvg
	BusConvTime   ConvTime
	ShuntConvTime ConvTime
	Mode          Mode
}

// DefaultConfig matches the device's power-on configuration (0x4127).
var DefaultConfig = Config{
	Avg:           Avg1,
	BusConvTime:   CT1p1ms,
	ShuntConvTime: CT1p1ms,
	Mode:          ModeShuntAndBusContinuous,
}

const (
	// Bit 15 resets the device, bits 14:12 must read back as 100b and the
	// datasheet requires writing them unchanged.
	configResetBit      uint16 = 0x8000
	configReservedBits  uint16 = 0x4000
	configAvgPos               = 9
	configBusConvPos           = 6
	configShuntConvPos         = 3
	configFieldMask     uint16 = 0x07
)

// regValue packs the configuration into the 16-bit register word.
func (c Config) regValue() (uint16, error) {
	if c.Avg > Avg1024 || c.BusConvTime > CT8p244ms || c.ShuntConvTime > CT8p244ms || c.Mode > ModeShuntAndBusContinuous {
		return 0, &ConfigError{Config: c}
	}
	return configReservedBits |
		uint16(c.Avg)<<configAvgPos |
		uint16(c.BusConvTime)<<configBusConvPos |
		uint16(c.ShuntConvTime)<<configShuntConvPos |
		uint16(c.Mode), nil
}

// configFromReg unpacks a configuration register word.
func configFromReg(v uint16) Config {
	return Config{
		Avg:           SampleAvg(v >> configAvgPos & configFieldMask),
		BusConvTime:   ConvTime(v >> configBusConvPos & configFieldMask),
		ShuntConvTime: ConvTime(v >> configShuntConvPos & configFieldMask),
		Mode:          Mode(v & configFieldMask),
	}
}
