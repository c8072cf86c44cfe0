// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ina226 periodically reads an INA226 power monitor and prints the
// measurements with a colored power bar. With -chart the recorded samples
// are rendered to a PNG on exit.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/ina226"
)

type sample struct {
	t time.Time
	r ina226.PowerReading
}

func main() {
	busName := flag.String("bus", "", "I²C bus to use, empty for the first available")
	addr := flag.Uint("address", uint(ina226.DefaultSensorAddress), "I²C address of the device")
	shunt := flag.Float64("shunt", 0.1, "shunt resistance in ohm")
	maxCurrent := flag.Float64("maxcurrent", 3.6, "maximum expected current in ampere")
	lsb := flag.Float64("lsb", 0, "explicit current LSB in ampere, overrides -maxcurrent")
	interval := flag.Duration("interval", time.Second, "time between samples")
	count := flag.Int("count", 10, "number of samples to take, 0 for unlimited")
	chart := flag.String("chart", "", "write a PNG chart of the samples to this file on exit")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	opts := ina226.DefaultOpts
	opts.Address = uint16(*addr)
	opts.Shunt = physic.ElectricResistance(*shunt * float64(physic.Ohm))
	opts.MaxCurrent = physic.ElectricCurrent(*maxCurrent * float64(physic.Ampere))
	opts.CurrentLSB = physic.ElectricCurrent(*lsb * float64(physic.Ampere))
	dev, err := ina226.NewI2C(bus, &opts)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	out := colorable.NewColorableStdout()
	var samples []sample
	var peak physic.Power
	for i := 0; *count == 0 || i < *count; i++ {
		if i > 0 {
			time.Sleep(*interval)
		}
		r, err := dev.Read()
		if err != nil {
			log.Fatal(err)
		}
		samples = append(samples, sample{time.Now(), r})
		if r.Power > peak {
			peak = r.Power
		}
		fmt.Fprintf(out, "%10s %12s %12s %s\n", r.Bus, r.Current, r.Power, bar(r.Power, peak))
	}

	if *chart != "" {
		if err := writeChart(*chart, samples); err != nil {
			log.Fatal(err)
		}
	}
}

// bar renders a power value as ANSI color blocks scaled to the observed
// peak.
func bar(p, peak physic.Power) string {
	const width = 30
	if peak <= 0 || p < 0 {
		return ""
	}
	n := int(int64(p) * width / int64(peak))
	if n > width {
		n = width
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		c := color.NRGBA{R: uint8(255 * i / width), G: uint8(255 - 255*i/width), B: 0, A: 255}
		b.WriteString(ansi256.Default.Block(c))
	}
	b.WriteString("\033[0m")
	return b.String()
}

// writeChart renders the sampled power over time as a PNG line chart.
func writeChart(path string, samples []sample) error {
	const (
		w      = 800
		h      = 300
		margin = 40.0
	)
	if len(samples) < 2 {
		return fmt.Errorf("need at least 2 samples for a chart, have %d", len(samples))
	}
	var peak physic.Power
	for _, s := range samples {
		if s.r.Power > peak {
			peak = s.r.Power
		}
	}
	if peak <= 0 {
		peak = physic.Watt
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 12}))

	dc.SetRGB(0.3, 0.3, 0.3)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin, margin, h-margin)
	dc.DrawLine(margin, h-margin, w-margin, h-margin)
	dc.Stroke()
	dc.DrawString(fmt.Sprintf("power, peak %s", peak), margin, margin-10)
	dc.DrawString(samples[0].t.Format(time.Kitchen), margin, h-margin+20)
	dc.DrawString(samples[len(samples)-1].t.Format(time.Kitchen), w-margin-40, h-margin+20)

	start := samples[0].t
	span := samples[len(samples)-1].t.Sub(start)
	if span <= 0 {
		span = time.Second
	}
	dc.SetRGB(0.8, 0.1, 0.1)
	dc.SetLineWidth(2)
	for i, s := range samples {
		x := margin + (w-2*margin)*float64(s.t.Sub(start))/float64(span)
		y := h - margin - (h-2*margin)*float64(s.r.Power)/float64(peak)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
	return dc.SavePNG(path)
}
