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
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/mazizi/openvswitch/openflow"
)

func TestNormalizeRule(t *testing.T) {
	exactIPv6 := openflow.IPv6Addr{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}

	// ARP has no TOS field, so the TOS match is dropped.
	arpTOS := openflow.CatchallRule(100)
	arpTOS.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_DSCP
	arpTOS.Flow.DLType = openflow.ETH_TYPE_ARP
	arpTOS.Flow.NWTOS = 0x40
	arpTOSNorm := arpTOS
	arpTOSNorm.Wildcards.Flags |= openflow.FWW_NW_DSCP
	arpTOSNorm.Flow.NWTOS = 0

	// ARP does have protocol addresses and hardware addresses.
	arpKeep := openflow.CatchallRule(100)
	arpKeep.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO | openflow.FWW_ARP_SHA
	arpKeep.Flow.DLType = openflow.ETH_TYPE_ARP
	arpKeep.Flow.NWProto = 1
	arpKeep.Wildcards.NWSrcMask = 0xffffffff
	arpKeep.Flow.NWSrc = 0x0a000001
	arpKeep.Flow.ARPSHA = openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

	// A neighbor discovery target makes no sense in a TCP rule.
	tcpND := openflow.CatchallRule(0)
	tcpND.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO
	tcpND.Flow.DLType = openflow.ETH_TYPE_IP
	tcpND.Flow.NWProto = openflow.IPPROTO_TCP
	tcpND.Wildcards.TPDstMask = 0xffff
	tcpND.Flow.TPDst = 80
	tcpND.Wildcards.NDTargetMask = exactIPv6
	tcpND.Flow.NDTarget = openflow.IPv6Addr{0xfe, 0x80, 15: 0x01}
	tcpNDNorm := tcpND
	tcpNDNorm.Wildcards.NDTargetMask = openflow.IPv6Addr{}
	tcpNDNorm.Flow.NDTarget = openflow.IPv6Addr{}

	// SCTP is not parsed as an L4 protocol, so its ports cannot be matched.
	sctp := openflow.CatchallRule(0)
	sctp.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO
	sctp.Flow.DLType = openflow.ETH_TYPE_IP
	sctp.Flow.NWProto = openflow.IPPROTO_SCTP
	sctp.Wildcards.TPSrcMask = 0xffff
	sctp.Flow.TPSrc = 5000
	sctpNorm := sctp
	sctpNorm.Wildcards.TPSrcMask = 0
	sctpNorm.Flow.TPSrc = 0

	// A neighbor solicitation may match nd_target and the source link-layer
	// option, but not the target link-layer option.
	ndSol := openflow.CatchallRule(0)
	ndSol.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO |
		openflow.FWW_ARP_SHA | openflow.FWW_ARP_THA
	ndSol.Flow.DLType = openflow.ETH_TYPE_IPV6
	ndSol.Flow.NWProto = openflow.IPPROTO_ICMPV6
	ndSol.Wildcards.TPSrcMask = 0xffff
	ndSol.Flow.TPSrc = openflow.ND_NEIGHBOR_SOLICIT
	ndSol.Wildcards.NDTargetMask = exactIPv6
	ndSol.Flow.NDTarget = openflow.IPv6Addr{0xfe, 0x80, 15: 0x02}
	ndSol.Flow.ARPSHA = openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	ndSol.Flow.ARPTHA = openflow.EthAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb}
	ndSolNorm := ndSol
	ndSolNorm.Wildcards.Flags |= openflow.FWW_ARP_THA
	ndSolNorm.Flow.ARPTHA = openflow.EthAddr{}

	// An unknown ethertype keeps nothing above L2.
	unknown := openflow.CatchallRule(0)
	unknown.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO
	unknown.Flow.DLType = 0x9999
	unknown.Flow.NWProto = openflow.IPPROTO_TCP
	unknown.Wildcards.NWSrcMask = 0xffffff00
	unknown.Flow.NWSrc = 0x0a000000
	unknown.Wildcards.TPDstMask = 0xffff
	unknown.Flow.TPDst = 80
	unknownNorm := unknown
	unknownNorm.Wildcards.Flags |= openflow.FWW_NW_PROTO
	unknownNorm.Wildcards.NWSrcMask = 0
	unknownNorm.Wildcards.TPDstMask = 0
	unknownNorm.Flow.NWProto = 0
	unknownNorm.Flow.NWSrc = 0
	unknownNorm.Flow.TPDst = 0

	// MPLS keeps its label but has no visible IP header.
	mpls := openflow.CatchallRule(0)
	mpls.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_MPLS_LABEL
	mpls.Flow.DLType = openflow.ETH_TYPE_MPLS
	mpls.Flow.MPLSLabel = 100
	mpls.Wildcards.NWSrcMask = 0xffffffff
	mpls.Flow.NWSrc = 0x0a000001
	mplsNorm := mpls
	mplsNorm.Wildcards.NWSrcMask = 0
	mplsNorm.Flow.NWSrc = 0

	// An IPv4 rule cannot keep IPv6 addresses.
	v4v6 := openflow.CatchallRule(0)
	v4v6.Wildcards.Flags &^= openflow.FWW_DL_TYPE
	v4v6.Flow.DLType = openflow.ETH_TYPE_IP
	v4v6.Wildcards.IPv6SrcMask = exactIPv6
	v4v6.Flow.IPv6Src = openflow.IPv6Addr{0x20, 0x01, 0x0d, 0xb8, 15: 0x01}
	v4v6Norm := v4v6
	v4v6Norm.Wildcards.IPv6SrcMask = openflow.IPv6Addr{}
	v4v6Norm.Flow.IPv6Src = openflow.IPv6Addr{}

	samples := []struct {
		Rule     openflow.Rule
		Expected openflow.Rule
	}{
		{openflow.CatchallRule(0), openflow.CatchallRule(0)},
		{arpTOS, arpTOSNorm},
		{arpKeep, arpKeep},
		{tcpND, tcpNDNorm},
		{sctp, sctpNorm},
		{ndSol, ndSolNorm},
		{unknown, unknownNorm},
		{mpls, mplsNorm},
		{v4v6, v4v6Norm},
	}

	c := NewCodec(nil, nil)
	for i, v := range samples {
		rule := v.Rule
		c.NormalizeRule(&rule)
		if rule != v.Expected {
			t.Fatalf("unexpected rule in sample %d: expected=%v, actual=%v", i, spew.Sdump(v.Expected), spew.Sdump(rule))
		}

		// Normalizing a second time must change nothing.
		c.NormalizeRule(&rule)
		if rule != v.Expected {
			t.Fatalf("normalization of sample %d is not idempotent: actual=%v", i, spew.Sdump(rule))
		}
	}
}
