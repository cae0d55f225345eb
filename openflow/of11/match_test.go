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

package of11

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
)

const exactMask = 0xffffffff

func TestMatchCodec(t *testing.T) {
	samples := []struct {
		Packet   string
		Expected Match
	}{
		{
			// TCP flow from 10.0.0.1:80 to 10.0.0.2:8080 on port 3,
			// VLAN 17 priority 2. Wire masks are inverted: zero
			// means every bit significant.
			Packet: "00000058" + "00000003" + "00000000" +
				"001122334455" + "000000000000" + "66778899aabb" + "000000000000" +
				"0011" + "02" + "00" + "0800" + "00" + "06" +
				"0a000001" + "00000000" + "0a000002" + "00000000" + "0050" + "1f90" +
				"00000000" + "00" + "000000" + "0000000000000000" + "ffffffffffffffff",
			Expected: Match{
				InPort:       3,
				DLSrc:        openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
				DLDst:        openflow.EthAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
				DLVLAN:       17,
				DLVLANPCP:    2,
				DLType:       openflow.ETH_TYPE_IP,
				NWProto:      openflow.IPPROTO_TCP,
				NWSrc:        0x0a000001,
				NWDst:        0x0a000002,
				TPSrc:        80,
				TPDst:        8080,
				MetadataMask: ^uint64(0),
			},
		},
		{
			// Everything wildcarded.
			Packet: "00000058" + "00000000" + "000003ff" +
				"000000000000" + "ffffffffffff" + "000000000000" + "ffffffffffff" +
				"0000" + "00" + "00" + "0000" + "00" + "00" +
				"00000000" + "ffffffff" + "00000000" + "ffffffff" + "0000" + "0000" +
				"00000000" + "00" + "000000" + "0000000000000000" + "ffffffffffffffff",
			Expected: Match{
				Wildcards:    OFPFW_ALL,
				DLSrcMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				DLDstMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				NWSrcMask:    exactMask,
				NWDstMask:    exactMask,
				MetadataMask: ^uint64(0),
			},
		},
	}

	for _, v := range samples {
		p, err := hex.DecodeString(v.Packet)
		if err != nil {
			panic("invalid sample ofp11_match")
		}

		var m Match
		if err := m.UnmarshalBinary(p); err != nil {
			t.Fatalf("failed to unmarshal an ofp11_match: %v", err)
		}
		if m != v.Expected {
			t.Fatalf("unexpected unmarshaled ofp11_match: expected=%v, actual=%v",
				spew.Sdump(v.Expected), spew.Sdump(m))
		}

		b, err := m.MarshalBinary()
		if err != nil {
			t.Fatalf("failed to marshal an ofp11_match: %v", err)
		}
		if bytes.Equal(b, p) == false {
			t.Fatalf("unexpected marshaled ofp11_match: expected=%v, actual=%v", p, b)
		}
	}

	var m Match
	err := m.UnmarshalBinary(make([]byte, StdMatchLen-1))
	if errors.Cause(err) != openflow.ErrBadLength {
		t.Fatalf("expected ErrBadLength for a truncated ofp11_match: actual=%v", err)
	}
}

func TestRuleFromMatch(t *testing.T) {
	tcpVLAN := openflow.CatchallRule(100)
	tcpVLAN.Wildcards.Flags &^= openflow.FWW_IN_PORT | openflow.FWW_DL_TYPE |
		openflow.FWW_NW_DSCP | openflow.FWW_NW_PROTO
	tcpVLAN.Flow.InPort = 3
	tcpVLAN.Flow.DLSrc = openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	tcpVLAN.Wildcards.DLSrcMask = openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	tcpVLAN.Flow.DLDst = openflow.EthAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb}
	tcpVLAN.Wildcards.DLDstMask = openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	tcpVLAN.Flow.VLANTCI = 0x5011
	tcpVLAN.Wildcards.VLANTCIMask = 0xffff
	tcpVLAN.Flow.DLType = openflow.ETH_TYPE_IP
	tcpVLAN.Flow.NWProto = openflow.IPPROTO_TCP
	tcpVLAN.Flow.NWSrc = 0x0a000001
	tcpVLAN.Wildcards.NWSrcMask = exactMask
	tcpVLAN.Flow.NWDst = 0x0a000002
	tcpVLAN.Wildcards.NWDstMask = exactMask
	tcpVLAN.Flow.TPSrc = 80
	tcpVLAN.Wildcards.TPSrcMask = 0xffff
	tcpVLAN.Flow.TPDst = 8080
	tcpVLAN.Wildcards.TPDstMask = 0xffff

	untagged := openflow.CatchallRule(100)
	untagged.SetDLVLAN(openflow.OFP_VLAN_NONE)

	anyTagged := openflow.CatchallRule(100)
	anyTagged.Flow.VLANTCI = openflow.VLAN_CFI
	anyTagged.Wildcards.VLANTCIMask = openflow.VLAN_CFI

	grePorts := openflow.CatchallRule(100)
	grePorts.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO
	grePorts.Flow.DLType = openflow.ETH_TYPE_IP
	grePorts.Flow.NWProto = 47
	grePorts.Wildcards.NWSrcMask = exactMask
	grePorts.Wildcards.NWDstMask = exactMask

	samples := []struct {
		Match       Match
		Expected    openflow.Rule
		ExpectedErr error
	}{
		{
			Match: Match{
				InPort:       3,
				DLSrc:        openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
				DLDst:        openflow.EthAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
				DLVLAN:       17,
				DLVLANPCP:    2,
				DLType:       openflow.ETH_TYPE_IP,
				NWProto:      openflow.IPPROTO_TCP,
				NWSrc:        0x0a000001,
				NWDst:        0x0a000002,
				TPSrc:        80,
				TPDst:        8080,
				MetadataMask: ^uint64(0),
			},
			Expected: tcpVLAN,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL,
				DLSrcMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				DLDstMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				NWSrcMask:    exactMask,
				NWDstMask:    exactMask,
				MetadataMask: ^uint64(0),
			},
			Expected: openflow.CatchallRule(100),
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL &^ OFPFW_DL_VLAN,
				DLVLAN:       OFPVID_NONE,
				DLSrcMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				DLDstMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				NWSrcMask:    exactMask,
				NWDstMask:    exactMask,
				MetadataMask: ^uint64(0),
			},
			Expected: untagged,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL &^ OFPFW_DL_VLAN,
				DLVLAN:       OFPVID_ANY,
				DLSrcMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				DLDstMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				NWSrcMask:    exactMask,
				NWDstMask:    exactMask,
				MetadataMask: ^uint64(0),
			},
			Expected: anyTagged,
		},
		{
			// Transport ports of a protocol without ports are ignored
			// rather than rejected.
			Match: Match{
				Wildcards:    OFPFW_ALL &^ (OFPFW_DL_TYPE | OFPFW_NW_PROTO | OFPFW_TP_SRC),
				DLType:       openflow.ETH_TYPE_IP,
				NWProto:      47,
				TPSrc:        99,
				DLSrcMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				DLDstMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				MetadataMask: ^uint64(0),
			},
			Expected: grePorts,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL &^ OFPFW_IN_PORT,
				InPort:       0xff00,
				MetadataMask: ^uint64(0),
			},
			ExpectedErr: openflow.ErrBadValue,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL &^ OFPFW_DL_VLAN,
				DLVLAN:       5000,
				MetadataMask: ^uint64(0),
			},
			ExpectedErr: openflow.ErrBadValue,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL &^ (OFPFW_DL_VLAN | OFPFW_DL_VLAN_PCP),
				DLVLAN:       1,
				DLVLANPCP:    8,
				MetadataMask: ^uint64(0),
			},
			ExpectedErr: openflow.ErrBadValue,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL &^ (OFPFW_DL_TYPE | OFPFW_NW_TOS),
				DLType:       openflow.ETH_TYPE_IP,
				NWTOS:        0x03,
				MetadataMask: ^uint64(0),
			},
			ExpectedErr: openflow.ErrBadValue,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL &^ (OFPFW_DL_TYPE | OFPFW_NW_PROTO | OFPFW_TP_SRC),
				DLType:       openflow.ETH_TYPE_IP,
				NWProto:      openflow.IPPROTO_ICMP,
				TPSrc:        0x100,
				MetadataMask: ^uint64(0),
			},
			ExpectedErr: openflow.ErrBadField,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL &^ (OFPFW_DL_TYPE | OFPFW_NW_PROTO | OFPFW_TP_SRC),
				DLType:       openflow.ETH_TYPE_IP,
				NWProto:      openflow.IPPROTO_SCTP,
				TPSrc:        5,
				MetadataMask: ^uint64(0),
			},
			ExpectedErr: openflow.ErrBadField,
		},
		{
			// An MPLS dl_type needs both MPLS fields wildcarded since
			// no flow field backs them.
			Match: Match{
				Wildcards:    OFPFW_ALL &^ (OFPFW_DL_TYPE | OFPFW_MPLS_LABEL),
				DLType:       openflow.ETH_TYPE_MPLS,
				MetadataMask: ^uint64(0),
			},
			ExpectedErr: openflow.ErrBadTag,
		},
		{
			Match: Match{
				Wildcards:    OFPFW_ALL,
				MetadataMask: 0,
			},
			ExpectedErr: openflow.ErrBadField,
		},
	}

	for _, v := range samples {
		rule, err := RuleFromMatch(&v.Match, 100)
		if v.ExpectedErr != nil {
			if errors.Cause(err) != v.ExpectedErr {
				t.Fatalf("unexpected error from ofp11_match conversion: expected=%v, actual=%v",
					v.ExpectedErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("failed to convert an ofp11_match: %v", err)
		}
		if rule != v.Expected {
			t.Fatalf("unexpected rule from ofp11_match: expected=%v, actual=%v",
				spew.Sdump(v.Expected), spew.Sdump(rule))
		}
	}
}

func TestMatchFromRule(t *testing.T) {
	tcpVLAN := openflow.CatchallRule(100)
	tcpVLAN.Wildcards.Flags &^= openflow.FWW_IN_PORT | openflow.FWW_DL_TYPE |
		openflow.FWW_NW_DSCP | openflow.FWW_NW_PROTO
	tcpVLAN.Flow.InPort = openflow.OFPP_LOCAL
	tcpVLAN.Flow.DLSrc = openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	tcpVLAN.Wildcards.DLSrcMask = openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	tcpVLAN.Flow.VLANTCI = 0x5011
	tcpVLAN.Wildcards.VLANTCIMask = 0xffff
	tcpVLAN.Flow.DLType = openflow.ETH_TYPE_IP
	tcpVLAN.Flow.NWProto = openflow.IPPROTO_TCP
	tcpVLAN.Flow.NWSrc = 0x0a000000
	tcpVLAN.Wildcards.NWSrcMask = 0xffffff00
	tcpVLAN.Flow.TPDst = 8080
	tcpVLAN.Wildcards.TPDstMask = 0xffff

	samples := []struct {
		Rule     openflow.Rule
		Expected Match
	}{
		{
			Rule: openflow.CatchallRule(100),
			Expected: Match{
				Wildcards:    OFPFW_ALL,
				DLSrcMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				DLDstMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				NWSrcMask:    exactMask,
				NWDstMask:    exactMask,
				MetadataMask: ^uint64(0),
			},
		},
		{
			// Reserved ports map into the 32-bit range, and the MPLS
			// fields always come out wildcarded.
			Rule: tcpVLAN,
			Expected: Match{
				Wildcards:    OFPFW_TP_SRC | OFPFW_MPLS_LABEL | OFPFW_MPLS_TC,
				InPort:       0xfffffffe,
				DLSrc:        openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
				DLDstMask:    openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				DLVLAN:       17,
				DLVLANPCP:    2,
				DLType:       openflow.ETH_TYPE_IP,
				NWProto:      openflow.IPPROTO_TCP,
				NWSrc:        0x0a000000,
				NWSrcMask:    0x000000ff,
				NWDstMask:    exactMask,
				TPDst:        8080,
				MetadataMask: ^uint64(0),
			},
		},
	}

	for _, v := range samples {
		m := MatchFromRule(&v.Rule)
		if m != v.Expected {
			t.Fatalf("unexpected ofp11_match from rule: expected=%v, actual=%v",
				spew.Sdump(v.Expected), spew.Sdump(m))
		}
	}
}
