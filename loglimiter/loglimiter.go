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

package loglimiter

import (
	"time"

	"go.uber.org/zap"
)

// New returns a new LogLimiter with the configured minimum log interval.
func New(logger *zap.Logger, interval time.Duration) *LogLimiter {
	return &LogLimiter{
		logger:   logger,
		interval: interval,
		nowFunc:  time.Now,
	}
}

// LogLimiter will suppress log messages if the same log message is
// seen within some time interval. Only the message (and error text, if
// any) is compared; fields are not.
type LogLimiter struct {
	logger        *zap.Logger
	interval      time.Duration
	nowFunc       func() time.Time
	previousEntry string
	previousTime  time.Time
}

// Print logs s at info level.
func (limiter *LogLimiter) Print(s string, fields ...zap.Field) {
	if limiter.allow(s) {
		limiter.logger.Info(s, fields...)
	}
}

// Error logs msg at warn level along with err.
func (limiter *LogLimiter) Error(msg string, err error, fields ...zap.Field) {
	if limiter.allow(msg + ": " + err.Error()) {
		limiter.logger.Warn(msg, append(fields, zap.Error(err))...)
	}
}

func (limiter *LogLimiter) allow(entry string) bool {
	now := limiter.nowFunc()
	if now.Sub(limiter.previousTime) < limiter.interval && entry == limiter.previousEntry {
		return false
	}
	limiter.previousTime = now
	limiter.previousEntry = entry
	return true
}
