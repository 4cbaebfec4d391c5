// frame-review - review and transform frames captured by an SoC camera
//  Copyright (C) 2026, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package gpio reads the review key and transform switches from GPIO pins,
// for boards where they are wired to a header instead of the FPGA.
package gpio

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

type Config struct {
	KeyPin     string   `yaml:"key-pin"`
	SwitchPins []string `yaml:"switch-pins"`
	ActiveLow  bool     `yaml:"active-low"`
}

func DefaultConfig() Config {
	return Config{
		KeyPin:     "GPIO17",
		SwitchPins: []string{"GPIO5", "GPIO6", "GPIO13", "GPIO19"},
		ActiveLow:  true,
	}
}

// Inputs samples a key pin and up to 32 switch pins.
type Inputs struct {
	key       gpio.PinIn
	switches  []gpio.PinIn
	activeLow bool
}

// Open looks the configured pins up by name. host.Init must have been
// called first.
func Open(config Config) (*Inputs, error) {
	key := gpioreg.ByName(config.KeyPin)
	if key == nil {
		return nil, fmt.Errorf("failed to find GPIO pin %q", config.KeyPin)
	}
	var switches []gpio.PinIn
	for _, name := range config.SwitchPins {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("failed to find GPIO pin %q", name)
		}
		switches = append(switches, pin)
	}
	return New(key, switches, config.ActiveLow)
}

// New configures the pins as inputs, pulled to their inactive level.
func New(key gpio.PinIn, switches []gpio.PinIn, activeLow bool) (*Inputs, error) {
	if len(switches) > 32 {
		return nil, fmt.Errorf("too many switch pins: %d", len(switches))
	}
	pull := gpio.PullDown
	if activeLow {
		pull = gpio.PullUp
	}
	for _, pin := range append([]gpio.PinIn{key}, switches...) {
		if err := pin.In(pull, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("failed to set %s as input: %w", pin, err)
		}
	}
	return &Inputs{key: key, switches: switches, activeLow: activeLow}, nil
}

func (in *Inputs) active(pin gpio.PinIn) bool {
	return (pin.Read() == gpio.High) != in.activeLow
}

func (in *Inputs) KeyPressed() (bool, error) {
	return in.active(in.key), nil
}

// Switches returns the switch levels, the first configured pin in bit 0.
func (in *Inputs) Switches() (uint32, error) {
	var v uint32
	for i, pin := range in.switches {
		if in.active(pin) {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}
