/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package history

import (
	"fmt"
	"math"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// FormatDuration renders d using the coarsest unit that fits. Seconds are
// rounded first, everything coarser is truncated.
//
//	59s      -> "59 Sek"
//	60s      -> "1 Min"
//	3600s    -> "1:00 Std:Min"
//	86400s   -> "1 Tag und 0:00 Std:Min"
func FormatDuration(d time.Duration) string {
	secs := int64(math.Round(d.Seconds()))
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs < secondsPerMinute:
		return fmt.Sprintf("%d Sek", secs)
	case secs < secondsPerHour:
		return fmt.Sprintf("%d Min", secs/secondsPerMinute)
	case secs < secondsPerDay:
		return fmt.Sprintf("%d:%02d Std:Min", secs/secondsPerHour, secs%secondsPerHour/secondsPerMinute)
	default:
		rem := secs % secondsPerDay
		return fmt.Sprintf("%d Tag und %d:%02d Std:Min", secs/secondsPerDay, rem/secondsPerHour, rem%secondsPerHour/secondsPerMinute)
	}
}
