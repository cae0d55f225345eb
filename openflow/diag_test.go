/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package openflow

import "testing"

func TestDiagnosticsNil(t *testing.T) {
	var diag *Diagnostics
	if diag.Allow("site") == true {
		t.Fatal("nil diagnostics must not allow logging")
	}
	if diag.Logger() != nil {
		t.Fatal("nil diagnostics must have no logger")
	}
	// These must not panic.
	diag.Warningf("site", "dropped %d", 1)
	diag.Infof("site", "dropped %d", 1)
}

func TestDiagnosticsRateLimit(t *testing.T) {
	diag := NewDiagnostics(nil)

	allowed := 0
	for i := 0; i < 10; i++ {
		if diag.Allow("flood") == true {
			allowed++
		}
	}
	// The burst is five; a sixth token can slip in if the scheduler
	// stalls this loop for a second.
	if allowed < 5 || allowed > 6 {
		t.Fatalf("unexpected number of allowed log lines: actual=%d", allowed)
	}

	// Exhausting one site must not starve another.
	if diag.Allow("other") == false {
		t.Fatal("independent site must have its own budget")
	}
}
