/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package main

import (
	_ "time/tzdata"

	"github.com/dburkart/emmylog/cmd/emmylog"
)

func main() {
	emmylog.Execute()
}
