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

import "math/bits"

// FieldWildcards is a set of flags for the flow fields that are wildcarded
// all-or-nothing. A set bit means the field does not take part in matching.
// Fields that support bitwise masks are covered by the mask members of
// Wildcards instead.
type FieldWildcards uint32

const (
	FWW_IN_PORT FieldWildcards = 1 << iota
	FWW_DL_TYPE
	FWW_NW_PROTO
	FWW_NW_DSCP
	FWW_NW_ECN
	FWW_NW_TTL
	FWW_ARP_SHA
	FWW_ARP_THA
	FWW_IPV6_LABEL
	FWW_MPLS_LABEL
	FWW_MPLS_TC
	FWW_MPLS_STACK
	FWW_VLAN_TPID
	FWW_VLAN_QINQ_VID
	FWW_VLAN_QINQ_PCP

	FWW_ALL FieldWildcards = 1<<15 - 1
)

// Wildcards describes which parts of a Flow are matched. Flags holds the
// all-or-nothing fields. In the masks a 1-bit means the corresponding flow
// bit is significant, so an all-zero mask wildcards the field completely.
type Wildcards struct {
	Flags        FieldWildcards
	TunIDMask    uint64
	NWSrcMask    uint32
	NWDstMask    uint32
	RegMasks     [FLOW_N_REGS]uint32
	VLANTCIMask  uint16
	TPSrcMask    uint16
	TPDstMask    uint16
	DLSrcMask    EthAddr
	DLDstMask    EthAddr
	NWFragMask   uint8
	IPv6SrcMask  IPv6Addr
	IPv6DstMask  IPv6Addr
	NDTargetMask IPv6Addr
}

// CatchallWildcards returns wildcards that match every packet: all flags set
// and every mask zero.
func CatchallWildcards() Wildcards {
	return Wildcards{Flags: FWW_ALL}
}

// WcBitsToNetmask converts a version 1.0 wildcard bit count, which tells how
// many low-order address bits to ignore, into the equivalent netmask. Counts
// of 32 and up yield a zero mask.
func WcBitsToNetmask(wcbits uint32) uint32 {
	wcbits &= 0x3f
	if wcbits < 32 {
		return ^uint32(1<<wcbits - 1)
	}

	return 0
}

// NetmaskToWcBits is the inverse of WcBitsToNetmask for CIDR masks.
func NetmaskToWcBits(netmask uint32) uint32 {
	return uint32(bits.TrailingZeros32(netmask))
}

// IsCIDRMask reports whether mask consists of any number of leading 1-bits
// followed only by 0-bits.
func IsCIDRMask(mask uint32) bool {
	inv := ^mask

	return inv&(inv+1) == 0
}
