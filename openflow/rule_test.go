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

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestSetDLVLAN(t *testing.T) {
	samples := []struct {
		VID          uint16
		ExpectedTCI  uint16
		ExpectedMask uint16
	}{
		{VID: 42, ExpectedTCI: 0x102a, ExpectedMask: VLAN_VID_MASK | VLAN_CFI},
		{VID: 1, ExpectedTCI: 0x1001, ExpectedMask: VLAN_VID_MASK | VLAN_CFI},
		{VID: 4095, ExpectedTCI: 0x1fff, ExpectedMask: VLAN_VID_MASK | VLAN_CFI},
		// OFP_VLAN_NONE means only untagged packets match.
		{VID: OFP_VLAN_NONE, ExpectedTCI: 0, ExpectedMask: 0xffff},
	}

	for _, v := range samples {
		r := CatchallRule(0)
		r.SetDLVLAN(v.VID)
		if r.Flow.VLANTCI != v.ExpectedTCI || r.Wildcards.VLANTCIMask != v.ExpectedMask {
			t.Fatalf("unexpected VLAN TCI for VID %d: expected=%#04x/%#04x, actual=%#04x/%#04x",
				v.VID, v.ExpectedTCI, v.ExpectedMask, r.Flow.VLANTCI, r.Wildcards.VLANTCIMask)
		}
	}
}

func TestSetDLVLANPCP(t *testing.T) {
	// Priority alone matches any tagged packet with that priority.
	r := CatchallRule(0)
	r.SetDLVLANPCP(3)
	if r.Flow.VLANTCI != 0x7000 || r.Wildcards.VLANTCIMask != VLAN_PCP_MASK|VLAN_CFI {
		t.Fatalf("unexpected VLAN TCI for priority-only match: actual=%#04x/%#04x",
			r.Flow.VLANTCI, r.Wildcards.VLANTCIMask)
	}

	// VID plus priority pins the whole TCI.
	r = CatchallRule(0)
	r.SetDLVLAN(42)
	r.SetDLVLANPCP(3)
	if r.Flow.VLANTCI != 0x702a || r.Wildcards.VLANTCIMask != 0xffff {
		t.Fatalf("unexpected VLAN TCI for VID and priority match: actual=%#04x/%#04x",
			r.Flow.VLANTCI, r.Wildcards.VLANTCIMask)
	}

	// Setting the priority again replaces the old one.
	r.SetDLVLANPCP(5)
	if r.Flow.VLANTCI != 0xb02a || r.Wildcards.VLANTCIMask != 0xffff {
		t.Fatalf("unexpected VLAN TCI after priority change: actual=%#04x/%#04x",
			r.Flow.VLANTCI, r.Wildcards.VLANTCIMask)
	}
}

func TestZeroWildcardedFields(t *testing.T) {
	// A fully wildcarded rule with garbage in every flow field must
	// collapse back to the catch-all rule once zeroed.
	r := Rule{
		Flow: Flow{
			InPort:     3,
			DLSrc:      EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			DLDst:      EthAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
			DLType:     ETH_TYPE_IP,
			VLANTCI:    0x102a,
			VLANTPID:   ETH_TYPE_VLAN,
			QinQTCI:    0x3001,
			NWSrc:      0x0a000001,
			NWDst:      0x0a000002,
			NWProto:    IPPROTO_TCP,
			NWTOS:      0xfc,
			NWTTL:      64,
			NWFrag:     FLOW_NW_FRAG_ANY,
			TPSrc:      80,
			TPDst:      8080,
			TunID:      0xdeadbeef,
			MPLSLabel:  42,
			MPLSTC:     3,
			MPLSStack:  1,
			IPv6Label:  0x12345,
			ARPSHA:     EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			ARPTHA:     EthAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
			IPv6Src:    IPv6Addr{0x20, 0x01, 0x0d, 0xb8},
			IPv6Dst:    IPv6Addr{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
			NDTarget:   IPv6Addr{0xfe, 0x80},
			Regs:       [FLOW_N_REGS]uint32{1, 2, 3, 4, 5, 6, 7, 8},
		},
		Wildcards: CatchallWildcards(),
		Priority:  100,
	}
	r.ZeroWildcardedFields()

	expected := CatchallRule(100)
	if r != expected {
		t.Fatalf("unexpected zeroed rule: expected=%v, actual=%v",
			spew.Sdump(expected), spew.Sdump(r))
	}
}

func TestZeroWildcardedFieldsPartial(t *testing.T) {
	r := CatchallRule(0)
	r.Wildcards.Flags &^= FWW_DL_TYPE | FWW_NW_PROTO
	r.Wildcards.NWSrcMask = 0xffffff00
	r.Flow.DLType = ETH_TYPE_IP
	r.Flow.NWProto = IPPROTO_TCP
	r.Flow.NWSrc = 0x0a0000ff
	r.Flow.TPSrc = 80
	r.ZeroWildcardedFields()

	// The exact-match fields survive, the masked address keeps only its
	// unmasked bits, and the wildcarded port is cleared.
	if r.Flow.DLType != ETH_TYPE_IP || r.Flow.NWProto != IPPROTO_TCP {
		t.Fatal("exact-match fields must survive zeroing")
	}
	if r.Flow.NWSrc != 0x0a000000 {
		t.Fatalf("unexpected masked nw_src: actual=%#08x", r.Flow.NWSrc)
	}
	if r.Flow.TPSrc != 0 {
		t.Fatalf("wildcarded tp_src must be zeroed: actual=%d", r.Flow.TPSrc)
	}
}
