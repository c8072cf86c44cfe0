// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultSensorAddress is the device address with both address pins tied to
// ground. A0/A1 strapping selects addresses 0x40 through 0x4F.
const DefaultSensorAddress uint16 = 0x40

// Register map.
const (
	regConfig         byte = 0x00 // CONFIGURATION REGISTER (R/W)
	regShuntVoltage   byte = 0x01 // SHUNT VOLTAGE REGISTER (R)
	regBusVoltage     byte = 0x02 // BUS VOLTAGE REGISTER (R)
	regPower          byte = 0x03 // POWER REGISTER (R)
	regCurrent        byte = 0x04 // CURRENT REGISTER (R)
	regCalibration    byte = 0x05 // CALIBRATION REGISTER (R/W)
	regMaskEnable     byte = 0x06 // MASK ENABLE REGISTER (R/W)
	regAlertLimit     byte = 0x07 // ALERT LIMIT REGISTER (R/W)
	regManufacturerID byte = 0xFE // MANUFACTURER UNIQUE ID REGISTER (R)
	regDieID          byte = 0xFF // DIE UNIQUE ID REGISTER (R)
)

// Fixed register scale factors per the datasheet. Current and power scales
// depend on the calibration instead.
const (
	busVoltageLSB   = 1250 * physic.MicroVolt // 1.25mV/count, unsigned
	shuntVoltageLSB = 2500 * physic.NanoVolt  // 2.5µV/count, signed
)

// Opts holds the configuration options for the device.
type Opts struct {
	// Address is the device's I²C address. 0 selects DefaultSensorAddress.
	Address uint16
	// Config is written to the configuration register during NewI2C.
	Config Config
	// Shunt is the value of the external shunt resistor. When non-zero the
	// device is calibrated during NewI2C, using CurrentLSB if set and
	// MaxCurrent otherwise. When zero the device starts uncalibrated and
	// only bus/shunt voltage can be read until Calibrate is called.
	Shunt      physic.ElectricResistance
	MaxCurrent physic.ElectricCurrent
	// CurrentLSB selects the current register scale directly, overriding
	// the MaxCurrent based derivation.
	CurrentLSB physic.ElectricCurrent
}

// DefaultOpts holds the default options: power-on configuration, no
// calibration.
var DefaultOpts = Opts{Address: DefaultSensorAddress, Config: DefaultConfig}

// Dev represents an INA226 on an I²C bus.
type Dev struct {
	d    *i2c.Dev
	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup

	calibrated bool
	currentLSB physic.ElectricCurrent
	powerLSB   physic.Power
	calReg     uint16
	configReg  uint16
}

// NewI2C returns a driver for an INA226 on the specified bus. The
// configuration register is written immediately; calibration is applied when
// opts selects a shunt. opts can be nil for DefaultOpts.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Address
	if addr == 0 {
		addr = DefaultSensorAddress
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}}
	if err := d.Configure(opts.Config); err != nil {
		return nil, err
	}
	if opts.Shunt != 0 {
		var err error
		if opts.CurrentLSB != 0 {
			_, err = d.CalibrateLSB(opts.Shunt, opts.CurrentLSB)
		} else {
			_, err = d.Calibrate(opts.Shunt, opts.MaxCurrent)
		}
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Configure writes the configuration register.
func (d *Dev) Configure(c Config) error {
	v, err := c.regValue()
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeRegister(regConfig, v); err != nil {
		return err
	}
	d.configReg = v
	return nil
}

// ReadConfig returns the configuration currently held by the device.
func (d *Dev) ReadConfig() (Config, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readRegister(regConfig)
	if err != nil {
		return Config{}, err
	}
	return configFromReg(v), nil
}

// Calibrate programs the device for a shunt resistor and the maximum
// expected current, and retains the resulting scale factors for current and
// power reads. See ComputeCalibration for the arithmetic.
func (d *Dev) Calibrate(shunt physic.ElectricResistance, maxCurrent physic.ElectricCurrent) (Calibration, error) {
	cal, err := ComputeCalibration(shunt, maxCurrent)
	if err != nil {
		return Calibration{}, err
	}
	return cal, d.applyCalibration(cal)
}

// CalibrateLSB is Calibrate with an explicit current LSB instead of a
// maximum expected current.
func (d *Dev) CalibrateLSB(shunt physic.ElectricResistance, currentLSB physic.ElectricCurrent) (Calibration, error) {
	cal, err := ComputeCalibrationLSB(shunt, currentLSB)
	if err != nil {
		return Calibration{}, err
	}
	return cal, d.applyCalibration(cal)
}

func (d *Dev) applyCalibration(cal Calibration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeRegister(regCalibration, cal.Register); err != nil {
		return err
	}
	d.calibrated = true
	d.currentLSB = cal.CurrentLSB
	d.powerLSB = cal.PowerLSB
	d.calReg = cal.Register
	return nil
}

// BusVoltage returns the voltage between the bus input and ground. Valid
// without calibration.
func (d *Dev) BusVoltage() (physic.ElectricPotential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.readRegister(regBusVoltage)
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(raw) * busVoltageLSB, nil
}

// ShuntVoltage returns the voltage across the shunt resistor. Negative for
// reverse current. Valid without calibration.
func (d *Dev) ShuntVoltage() (physic.ElectricPotential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.readRegister(regShuntVoltage)
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(int16(raw)) * shuntVoltageLSB, nil
}

// Current returns the current through the shunt resistor. It fails with
// NotCalibratedError until Calibrate has succeeded once. If the device lost
// its calibration register (a sharp load transient can reset the chip), the
// last applied value is rewritten before the register is read.
func (d *Dev) Current() (physic.ElectricCurrent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureCalibration(); err != nil {
		return 0, err
	}
	raw, err := d.readRegister(regCurrent)
	if err != nil {
		return 0, err
	}
	return physic.ElectricCurrent(int16(raw)) * d.currentLSB, nil
}

// Power returns the power computed by the device. Same calibration
// requirements and recovery as Current.
func (d *Dev) Power() (physic.Power, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureCalibration(); err != nil {
		return 0, err
	}
	raw, err := d.readRegister(regPower)
	if err != nil {
		return 0, err
	}
	return physic.Power(raw) * d.powerLSB, nil
}

// CurrentMilliAmps returns the shunt current in milliamperes.
func (d *Dev) CurrentMilliAmps() (float64, error) {
	i, err := d.Current()
	if err != nil {
		return 0, err
	}
	return float64(i) / float64(physic.MilliAmpere), nil
}

// PowerMilliWatts returns the power in milliwatts.
func (d *Dev) PowerMilliWatts() (float64, error) {
	p, err := d.Power()
	if err != nil {
		return 0, err
	}
	return float64(p) / float64(physic.MilliWatt), nil
}

// PowerReading is one combined measurement.
type PowerReading struct {
	Bus     physic.ElectricPotential
	Shunt   physic.ElectricPotential
	Current physic.ElectricCurrent
	Power   physic.Power
}

func (p PowerReading) String() string {
	return fmt.Sprintf("%s %s %s", p.Bus, p.Current, p.Power)
}

// Read returns bus voltage, shunt voltage, current and power in one call.
func (d *Dev) Read() (PowerReading, error) {
	var p PowerReading
	var err error
	if p.Bus, err = d.BusVoltage(); err != nil {
		return p, err
	}
	if p.Shunt, err = d.ShuntVoltage(); err != nil {
		return p, err
	}
	if p.Current, err = d.Current(); err != nil {
		return p, err
	}
	p.Power, err = d.Power()
	return p, err
}

// ReadContinuous reads from the device every interval and writes the values
// to the returned channel. Call Halt to terminate it.
func (d *Dev) ReadContinuous(interval time.Duration) (<-chan PowerReading, error) {
	d.mu.Lock()
	cfg := configFromReg(d.configReg)
	cycle := time.Duration(cfg.Avg.Samples()) * (cfg.BusConvTime.Duration() + cfg.ShuntConvTime.Duration())
	if interval < cycle {
		d.mu.Unlock()
		return nil, fmt.Errorf("ina226: interval %s is shorter than the %s conversion cycle", interval, cycle)
	}
	if d.stop != nil {
		d.mu.Unlock()
		return nil, fmt.Errorf("ina226: already reading continuously")
	}
	d.stop = make(chan struct{})
	stop := d.stop
	d.mu.Unlock()

	ch := make(chan PowerReading, 16)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(ch)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				p, err := d.Read()
				if err == nil && len(ch) < cap(ch) {
					ch <- p
				}
			}
		}
	}()
	return ch, nil
}

// Reset issues a software reset. All registers, including calibration,
// revert to their power-on defaults, so a Configure/Calibrate cycle is
// needed before current or power can be read again.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeRegister(regConfig, configResetBit); err != nil {
		return err
	}
	d.calibrated = false
	d.currentLSB = 0
	d.powerLSB = 0
	d.calReg = 0
	d.configReg, _ = DefaultConfig.regValue()
	return nil
}

// ManufacturerID returns the content of the manufacturer ID register,
// 0x5449 ("TI") on genuine parts.
func (d *Dev) ManufacturerID() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegister(regManufacturerID)
}

// DieID returns the content of the die ID register.
func (d *Dev) DieID() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegister(regDieID)
}

// Halt stops a ReadContinuous if one is running and puts the device in
// power-down mode. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	d.mu.Unlock()
	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.configReg &^ configFieldMask
	if err := d.writeRegister(regConfig, v); err != nil {
		return err
	}
	d.configReg = v
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ina226: %s", d.d.String())
}

// ensureCalibration verifies the device still holds the applied calibration
// and rewrites it when the register reads back as zero. Caller must hold
// d.mu.
func (d *Dev) ensureCalibration() error {
	if !d.calibrated {
		return &NotCalibratedError{}
	}
	v, err := d.readRegister(regCalibration)
	if err != nil {
		return err
	}
	if v == 0 {
		return d.writeRegister(regCalibration, d.calReg)
	}
	return nil
}

func (d *Dev) readRegister(reg byte) (uint16, error) {
	r := make([]byte, 2)
	if err := d.d.Tx([]byte{reg}, r); err != nil {
		return 0, err
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

func (d *Dev) writeRegister(reg byte, value uint16) error {
	return d.d.Tx([]byte{reg, byte(value >> 8), byte(value)}, nil)
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
