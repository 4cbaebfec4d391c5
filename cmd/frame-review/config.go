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

package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	goconfig "github.com/TheCacophonyProject/go-config"
	"github.com/TheCacophonyProject/window"
	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/frame-review/export"
	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/hardware/devmem"
	"github.com/TheCacophonyProject/frame-review/hardware/gpio"
	"github.com/TheCacophonyProject/frame-review/throttle"
)

const (
	backendDevmem = "devmem"
	backendSim    = "sim"
	inputsGPIO    = "gpio"
)

type Config struct {
	Backend      string
	Inputs       string
	PollInterval time.Duration
	Frame        FrameConfig
	Devmem       devmem.Config
	GPIO         gpio.Config
	OutputDir    string
	Export       export.Config
	Throttler    throttle.Config
	Overlay      bool
	WindowStart  string
	WindowEnd    string
	Location     LocationConfig
	DeviceName   string
}

type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type FrameConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Stride int `yaml:"stride"`
}

func (conf *FrameConfig) Validate() error {
	if conf.Width <= 0 || conf.Height <= 0 {
		return errors.New("frame width and height must be positive")
	}
	if conf.Width > conf.Stride {
		return errors.New("frame width can't be larger than the stride")
	}
	return nil
}

func (conf *Config) Validate() error {
	switch conf.Backend {
	case backendDevmem, backendSim:
	default:
		return fmt.Errorf("unknown backend %q", conf.Backend)
	}
	switch conf.Inputs {
	case backendDevmem:
		if conf.Backend != backendDevmem {
			return errors.New("devmem inputs need the devmem backend")
		}
	case backendSim:
		if conf.Backend != backendSim {
			return errors.New("sim inputs need the sim backend")
		}
	case inputsGPIO:
	default:
		return fmt.Errorf("unknown inputs %q", conf.Inputs)
	}
	if conf.PollInterval <= 0 {
		return errors.New("poll-interval must be positive")
	}
	if err := conf.Frame.Validate(); err != nil {
		return err
	}
	if err := conf.Export.Validate(); err != nil {
		return err
	}
	if conf.Throttler.ApplyThrottling && conf.Throttler.MinRefill <= 0 {
		return errors.New("throttler min-refill must be positive")
	}
	if conf.WindowStart == "" && conf.WindowEnd != "" {
		return errors.New("window-end is set but window-start isn't")
	}
	if conf.WindowStart != "" && conf.WindowEnd == "" {
		return errors.New("window-start is set but window-end isn't")
	}
	if _, err := conf.NewWindow(); err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}
	return nil
}

// NewWindow returns the window live capture is limited to, or nil when
// capture isn't limited. Start and end are either "15:04" times or
// durations relative to sunset and sunrise.
func (conf *Config) NewWindow() (*window.Window, error) {
	if conf.WindowStart == "" && conf.WindowEnd == "" {
		return nil, nil
	}
	return window.New(conf.WindowStart, conf.WindowEnd, conf.Location.Latitude, conf.Location.Longitude)
}

type rawConfig struct {
	Backend      string          `yaml:"backend"`
	Inputs       string          `yaml:"inputs"`
	PollInterval time.Duration   `yaml:"poll-interval"`
	Frame        FrameConfig     `yaml:"frame"`
	Devmem       devmem.Config   `yaml:"devmem"`
	GPIO         gpio.Config     `yaml:"gpio"`
	OutputDir    string          `yaml:"output-dir"`
	Export       export.Config   `yaml:"export"`
	Throttler    throttle.Config `yaml:"throttler"`
	Overlay      bool            `yaml:"overlay"`
	WindowStart  string          `yaml:"window-start"`
	WindowEnd    string          `yaml:"window-end"`
	Location     LocationConfig  `yaml:"location"`
}

var defaultConfig = rawConfig{
	Backend:      backendDevmem,
	Inputs:       backendDevmem,
	PollInterval: 20 * time.Millisecond,
	Frame: FrameConfig{
		Width:  framebuffer.DefaultWidth,
		Height: framebuffer.DefaultHeight,
		Stride: framebuffer.DefaultStride,
	},
	Devmem:    devmem.DefaultConfig(),
	GPIO:      gpio.DefaultConfig(),
	OutputDir: "/var/spool/frame-review",
	Export:    export.DefaultConfig(),
	Throttler: throttle.DefaultConfig(),
	Overlay:   true,
}

// ParseConfigFile reads the frame-review config from filename and fills
// in the device details from the Cacophony config in deviceConfigDir.
func ParseConfigFile(filename, deviceConfigDir string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf, deviceConfigDir)
}

// ParseConfig parses buf as a frame-review config. When deviceConfigDir
// is non-empty and holds a Cacophony config, the device name is read from
// it, as are the location and the recording window unless buf sets them.
func ParseConfig(buf []byte, deviceConfigDir string) (*Config, error) {
	raw := defaultConfig
	if err := yaml.Unmarshal(buf, &raw); err != nil {
		return nil, err
	}

	conf := &Config{
		Backend:      raw.Backend,
		Inputs:       raw.Inputs,
		PollInterval: raw.PollInterval,
		Frame:        raw.Frame,
		Devmem:       raw.Devmem,
		GPIO:         raw.GPIO,
		OutputDir:    raw.OutputDir,
		Export:       raw.Export,
		Throttler:    raw.Throttler,
		Overlay:      raw.Overlay,
		WindowStart:  raw.WindowStart,
		WindowEnd:    raw.WindowEnd,
		Location:     raw.Location,
	}

	if deviceConfigDir != "" {
		if err := applyDeviceConfig(conf, deviceConfigDir); err != nil {
			return nil, err
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func applyDeviceConfig(conf *Config, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, goconfig.ConfigFileName)); os.IsNotExist(err) {
		return nil
	}
	configRW, err := goconfig.New(dir)
	if err != nil {
		return err
	}

	var deviceConfig goconfig.Device
	if err := configRW.Unmarshal(goconfig.DeviceKey, &deviceConfig); err != nil {
		return err
	}
	conf.DeviceName = deviceConfig.Name

	if conf.Location == (LocationConfig{}) {
		locationConfig := goconfig.DefaultWindowLocation()
		if err := configRW.Unmarshal(goconfig.LocationKey, &locationConfig); err != nil {
			return err
		}
		conf.Location = LocationConfig{
			Latitude:  float64(locationConfig.Latitude),
			Longitude: float64(locationConfig.Longitude),
		}
	}

	// Only a windows section that is actually present limits capture.
	if conf.WindowStart == "" && conf.WindowEnd == "" {
		var windowsConfig goconfig.Windows
		if err := configRW.Unmarshal(goconfig.WindowsKey, &windowsConfig); err != nil {
			return err
		}
		conf.WindowStart = windowsConfig.StartRecording
		conf.WindowEnd = windowsConfig.StopRecording
	}
	return nil
}
