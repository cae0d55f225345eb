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

package ofputil

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mazizi/openvswitch/openflow"
)

func TestDescStatsCodec(t *testing.T) {
	ds := &DescStats{
		Manufacturer: "Example Networks",
		Hardware:     "softswitch",
		Software:     "2.4.1",
		SerialNum:    "SN-0001",
		Datapath:     "br0",
	}

	for _, version := range []uint8{openflow.OF10_VERSION, openflow.OF12_VERSION} {
		c := NewCodec(nil, nil)
		request := c.EncodeDescStatsRequest(version)
		decoded, err := DecodeDescStats(EncodeDescStatsReply(ds, request.Bytes()).Bytes())
		if err != nil {
			t.Fatalf("unexpected error for version %d: %v", version, err)
		}
		if diff := cmp.Diff(ds, decoded); diff != "" {
			t.Fatalf("desc stats changed by a version %d round trip (-encoded +decoded):\n%s", version, diff)
		}
	}
}

func TestDescStatsLongFields(t *testing.T) {
	// Field values that overflow their fixed wire size lose their tail but
	// keep the NUL termination.
	ds := &DescStats{SerialNum: strings.Repeat("9", 64)}

	c := NewCodec(nil, nil)
	request := c.EncodeDescStatsRequest(openflow.OF10_VERSION)
	decoded, err := DecodeDescStats(EncodeDescStatsReply(ds, request.Bytes()).Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.SerialNum != strings.Repeat("9", 31) {
		t.Fatalf("unexpected serial number %q", decoded.SerialNum)
	}
}
