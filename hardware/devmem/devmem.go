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

// Package devmem drives the DE1-SoC camera peripherals by mapping their
// physical addresses from /dev/mem: the pushbutton and slide switch
// parallel ports, the video-in DMA controller, the on-chip frame buffer
// and the character buffer.
package devmem

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/overlay"
)

// Physical memory map of the DE1-SoC computer system.
const (
	LightweightBridgeBase = 0xff200000
	LightweightBridgeSpan = 0x00200000

	KeyBase     = 0xff200050
	SwitchBase  = 0xff200040
	VideoInBase = 0xff203060

	FrameBufferBase = 0xc8000000
	CharBufferBase  = 0xc9000000

	// The video-in control register is the fourth word of the core.
	videoInControl = VideoInBase + 3*4

	videoInEnable  = 0x4
	videoInDisable = 0x0
)

// Config holds the register interpretation for one board revision.
type Config struct {
	Device       string `yaml:"device"`
	KeyMask      uint32 `yaml:"key-mask"`
	KeyActiveLow bool   `yaml:"key-active-low"`
	SwitchMask   uint32 `yaml:"switch-mask"`
}

// DefaultConfig ignores KEY0 and treats the other keys as active low.
func DefaultConfig() Config {
	return Config{
		Device:       "/dev/mem",
		KeyMask:      0xe,
		KeyActiveLow: true,
		SwitchMask:   0x3ff,
	}
}

// Board is the set of mapped peripherals.
type Board struct {
	config Config
	file   *os.File
	regs   []byte
	frame  []byte
	chars  []byte
	fb     *framebuffer.FrameBuffer
	cb     *overlay.CharBuffer
}

// Open maps the peripherals. The frame buffer geometry is width x height
// pixels with stride pixels per row.
func Open(config Config, width, height, stride int) (*Board, error) {
	f, err := os.OpenFile(config.Device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	b := &Board{config: config, file: f}
	fd := int(f.Fd())
	if b.regs, err = mmap(fd, LightweightBridgeBase, LightweightBridgeSpan); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to map registers: %w", err)
	}
	if b.frame, err = mmap(fd, FrameBufferBase, height*stride*2); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to map frame buffer: %w", err)
	}
	if b.chars, err = mmap(fd, CharBufferBase, overlay.DefaultRows*overlay.DefaultStride); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to map character buffer: %w", err)
	}
	if err := b.wrap(width, height, stride); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func mmap(fd int, base int64, length int) ([]byte, error) {
	return unix.Mmap(fd, base, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// wrap builds the pixel and character views over the mapped memory.
func (b *Board) wrap(width, height, stride int) error {
	if len(b.frame) < 2 {
		return fmt.Errorf("frame buffer mapping too short: %d bytes", len(b.frame))
	}
	pix := unsafe.Slice((*uint16)(unsafe.Pointer(&b.frame[0])), len(b.frame)/2)
	fb, err := framebuffer.Wrap(pix, width, height, stride)
	if err != nil {
		return err
	}
	cb, err := overlay.WrapCharBuffer(b.chars, overlay.DefaultCols, overlay.DefaultRows, overlay.DefaultStride)
	if err != nil {
		return err
	}
	b.fb = fb
	b.cb = cb
	return nil
}

// Close unmaps everything. The Board must not be used afterwards.
func (b *Board) Close() error {
	var firstErr error
	for _, m := range [][]byte{b.regs, b.frame, b.chars} {
		if m == nil {
			continue
		}
		if err := unix.Munmap(m); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.regs, b.frame, b.chars = nil, nil, nil
	if b.file != nil {
		if err := b.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		b.file = nil
	}
	return firstErr
}

// FrameBuffer returns the view over the on-chip frame memory.
func (b *Board) FrameBuffer() *framebuffer.FrameBuffer {
	return b.fb
}

func (b *Board) CharBuffer() *overlay.CharBuffer {
	return b.cb
}

// SetCaptureEnabled starts or stops the video-in DMA writing frames.
func (b *Board) SetCaptureEnabled(enabled bool) error {
	v := uint32(videoInDisable)
	if enabled {
		v = videoInEnable
	}
	return b.writeReg(videoInControl, v)
}

// CaptureEnabled reads back the video-in control register.
func (b *Board) CaptureEnabled() (bool, error) {
	v, err := b.readReg(videoInControl)
	return v&videoInEnable != 0, err
}

// KeyPressed reports whether any key selected by the key mask is down.
func (b *Board) KeyPressed() (bool, error) {
	v, err := b.readReg(KeyBase)
	if err != nil {
		return false, err
	}
	return keyPressed(v, b.config.KeyMask, b.config.KeyActiveLow), nil
}

func keyPressed(v, mask uint32, activeLow bool) bool {
	if activeLow {
		return v&mask != mask
	}
	return v&mask != 0
}

// Switches returns the slide switch levels, SW0 in bit 0.
func (b *Board) Switches() (uint32, error) {
	v, err := b.readReg(SwitchBase)
	return v & b.config.SwitchMask, err
}

func (b *Board) readReg(addr uint32) (uint32, error) {
	p, err := b.reg(addr)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(p), nil
}

func (b *Board) writeReg(addr, v uint32) error {
	p, err := b.reg(addr)
	if err != nil {
		return err
	}
	atomic.StoreUint32(p, v)
	return nil
}

func (b *Board) reg(addr uint32) (*uint32, error) {
	off := int(addr - LightweightBridgeBase)
	if addr < LightweightBridgeBase || off+4 > len(b.regs) || off%4 != 0 {
		return nil, fmt.Errorf("register %#08x not mapped", addr)
	}
	return (*uint32)(unsafe.Pointer(&b.regs[off])), nil
}
