// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package dht drives DHT11 and DHT22/AM2302 temperature and humidity
// sensors over a single GPIO line.
//
// The sensor answers a start signal with a 40 bit frame whose bits are
// encoded in the width of high pulses. Decoding is done by busy polling the
// line; the transaction takes about 5ms after the start signal and must not
// be interrupted, so the reading goroutine is pinned to its OS thread and
// the garbage collector is paused while it runs.
//
// A Dev owns its pin. It must not be shared with other code, and it is never
// handed out. Reads closer together than the sensor's sampling period do not
// touch the bus and report the previous outcome.
package dht

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

var (
	ErrUnsupportedModel = errors.New("dht: unsupported sensor model")
	ErrNilPin           = errors.New("dht: nil pin")
	ErrSensing          = errors.New("dht: continuous sensing already running")
)

// Opts configures a Dev.
type Opts struct {
	Model Model
	// MinInterval between two bus transactions. Values below MinInterval
	// are raised to it.
	MinInterval time.Duration
	// Strict makes a read that arrives too early report TooFastReads
	// instead of repeating the previous status.
	Strict bool
	// Clock defaults to HostClock().
	Clock Clock
}

// DefaultOpts is a DHT22 polled no faster than the datasheet allows.
var DefaultOpts = Opts{
	Model:       DHT22,
	MinInterval: MinInterval,
}

// Reading is the last successfully decoded measurement.
type Reading struct {
	TemperatureC float64
	Humidity     float64
	CapturedAt   time.Time
	Status       Status
}

// Dev is a handle to one sensor on one pin.
type Dev struct {
	pin    gpio.PinIO
	clk    Clock
	model  Model
	strict bool

	// busy is held for the duration of a bus transaction.
	busy    atomic.Bool
	closed  atomic.Bool
	sensing atomic.Bool
	limiter rateLimiter
	frame   RawFrame

	mu      sync.Mutex
	status  Status
	reading Reading
	valid   bool

	// senseMu serializes SenseContinuous and Halt.
	senseMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}
}

var _ physic.SenseEnv = (*Dev)(nil)

// New takes ownership of pin and drives it high, the idle state of the bus.
func New(pin gpio.PinIO, opts *Opts) (*Dev, error) {
	if pin == nil {
		return nil, ErrNilPin
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if !opts.Model.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, opts.Model)
	}
	clk := opts.Clock
	if clk == nil {
		clk = HostClock()
	}
	if err := pin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("dht: %s: pin out high: %w", pin, err)
	}
	return &Dev{
		pin:     pin,
		clk:     clk,
		model:   opts.Model,
		strict:  opts.Strict,
		limiter: newRateLimiter(opts.MinInterval, clk.Millis()),
		status:  Success,
	}, nil
}

// ReadData performs one rate limited acquisition attempt.
//
// On Success the cached reading is replaced. On failure it is left as is.
// When the previous attempt is more recent than the minimum interval the bus
// is not touched and the previous status is returned (TooFastReads in strict
// mode).
func (d *Dev) ReadData() Status {
	if d.sensing.Load() {
		return BusBusy
	}
	st, _ := d.read()
	return st
}

// read reports whether the bus was actually used along with the status.
func (d *Dev) read() (Status, bool) {
	if !d.busy.CompareAndSwap(false, true) {
		return BusBusy, false
	}
	defer d.busy.Store(false)
	if d.closed.Load() {
		return BusBusy, false
	}

	if !d.limiter.allow(d.clk.Millis()) {
		if d.strict {
			return TooFastReads, false
		}
		return d.Status(), false
	}

	d.frame = RawFrame{}
	st := acquire(d.pin, d.clk, d.model, &d.frame)
	var r Reading
	if st == Success {
		r, st = d.decode(d.frame)
	}

	d.mu.Lock()
	d.status = st
	if st == Success {
		d.reading = r
		d.valid = true
	}
	d.mu.Unlock()
	return st, true
}

func (d *Dev) decode(f RawFrame) (Reading, Status) {
	if !f.Valid() {
		return Reading{}, BadChecksum
	}
	c, h := d.model.Decode(f)
	if !d.model.plausible(c, h) {
		return Reading{}, BadChecksum
	}
	return Reading{
		TemperatureC: c,
		Humidity:     h,
		CapturedAt:   d.clk.Now(),
		Status:       Success,
	}, Success
}

// Status is the outcome of the most recent bus transaction. Throttled reads
// do not change it, so a strict mode TooFastReads is only seen by the caller
// of ReadData.
func (d *Dev) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Reading returns the cached measurement and whether one exists yet.
func (d *Dev) Reading() (Reading, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reading, d.valid
}

// Humidity is the cached relative humidity in percent, 0 before the first
// successful read.
func (d *Dev) Humidity() float64 {
	r, _ := d.Reading()
	return r.Humidity
}

// Temperature is the cached temperature expressed in scale s.
func (d *Dev) Temperature(s Scale) float64 {
	r, _ := d.Reading()
	return Convert(r.TemperatureC, s)
}

// DewPoint of the cached reading, see DewPoint.
func (d *Dev) DewPoint() float64 {
	r, _ := d.Reading()
	return DewPoint(r.TemperatureC, r.Humidity)
}

func (d *Dev) Model() Model {
	return d.model
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.model, d.pin)
}

// Sense implements physic.SenseEnv. Pressure is not measured.
func (d *Dev) Sense(e *physic.Env) error {
	if st := d.ReadData(); st != Success {
		return st.Err()
	}
	d.fill(e)
	return nil
}

func (d *Dev) fill(e *physic.Env) {
	r, _ := d.Reading()
	e.Temperature = physic.ZeroCelsius + physic.Temperature(math.Round(r.TemperatureC*1000))*physic.MilliCelsius
	e.Humidity = physic.RelativeHumidity(math.Round(r.Humidity * float64(physic.PercentRH)))
}

// SenseContinuous reads every interval until Halt is called. While it runs
// the Dev refuses direct reads with BusBusy. Failed attempts and ticks
// throttled by the minimum interval are skipped, so every value sent is a
// fresh measurement.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	d.senseMu.Lock()
	defer d.senseMu.Unlock()
	if d.closed.Load() {
		return nil, ErrBusBusy
	}
	if minimum := d.minInterval(); interval < minimum {
		return nil, fmt.Errorf("dht: interval %s below minimum interval %s", interval, minimum)
	}
	if d.stop != nil {
		return nil, ErrSensing
	}
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.sensing.Store(true)
	out := make(chan physic.Env)
	go d.senseLoop(interval, out, d.stop, d.done)
	return out, nil
}

func (d *Dev) minInterval() time.Duration {
	return time.Duration(d.limiter.intervalMs) * time.Millisecond
}

func (d *Dev) senseLoop(interval time.Duration, out chan<- physic.Env, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(out)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if st, ran := d.read(); ran && st == Success {
			var e physic.Env
			d.fill(&e)
			select {
			case out <- e:
			case <-stop:
				return
			}
		}
		select {
		case <-t.C:
		case <-stop:
			return
		}
	}
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	if d.model == DHT11 {
		e.Temperature = physic.Kelvin
		e.Humidity = physic.PercentRH
	} else {
		e.Temperature = 100 * physic.MilliKelvin
		e.Humidity = physic.PercentRH / 10
	}
	e.Pressure = 0
}

// Halt stops continuous sensing. The Dev stays usable.
func (d *Dev) Halt() error {
	d.senseMu.Lock()
	defer d.senseMu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	<-d.done
	d.stop, d.done = nil, nil
	d.sensing.Store(false)
	return nil
}

// Close stops sensing, returns the line to idle and releases the pin.
// Later reads report BusBusy.
func (d *Dev) Close() error {
	if err := d.Halt(); err != nil {
		return err
	}
	if d.closed.Swap(true) {
		return nil
	}
	// wait out a transaction in flight
	for !d.busy.CompareAndSwap(false, true) {
		time.Sleep(time.Millisecond)
	}
	defer d.busy.Store(false)
	if err := d.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("dht: %s: pin out high: %w", d.pin, err)
	}
	return d.pin.Halt()
}
