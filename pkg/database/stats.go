/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2022, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package database

import "time"

type Stats struct {
	Backend       string
	Events        int
	LastEvent     time.Time // Zero when the store is empty
	SerializeTime time.Time // Only tracked by the file store
	SizeBytes     uint64    // Only tracked by the file store
}
