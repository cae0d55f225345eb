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
	"fmt"
	"net"
)

// Ethernet type numbers the flow model cares about.
const (
	ETH_TYPE_IP          = 0x0800
	ETH_TYPE_ARP         = 0x0806
	ETH_TYPE_VLAN        = 0x8100
	ETH_TYPE_IPV6        = 0x86dd
	ETH_TYPE_MPLS        = 0x8847
	ETH_TYPE_MPLS_MCAST  = 0x8848
	ETH_TYPE_VLAN_8021AD = 0x88a8
)

// FLOW_DL_TYPE_NONE is the dl_type value that stands for a frame without an
// Ethernet type, such as an 802.2 frame shorter than 1536 bytes. OpenFlow
// calls the same value OFP_DL_TYPE_NOT_ETH_TYPE on the wire.
const (
	FLOW_DL_TYPE_NONE        = 0x5ff
	OFP_DL_TYPE_NOT_ETH_TYPE = 0x5ff
)

// IP protocol numbers.
const (
	IPPROTO_ICMP   = 1
	IPPROTO_TCP    = 6
	IPPROTO_UDP    = 17
	IPPROTO_ICMPV6 = 58
	IPPROTO_SCTP   = 132
)

// ICMPv6 neighbor discovery message types, as they appear in tp_src.
const (
	ND_NEIGHBOR_SOLICIT = 135
	ND_NEIGHBOR_ADVERT  = 136
)

// Masks for the two halves of the IP ToS byte.
const (
	IP_DSCP_MASK = 0xfc
	IP_ECN_MASK  = 0x03
)

// Bits of the 802.1Q TCI.
const (
	VLAN_VID_MASK  = 0x0fff
	VLAN_PCP_MASK  = 0xe000
	VLAN_PCP_SHIFT = 13
	VLAN_CFI       = 0x1000
)

// OFP_VLAN_NONE in a version 1.0 match means "packets without an 802.1Q
// header".
const OFP_VLAN_NONE = 0xffff

// Bits of the nw_frag pseudo field describing IP fragmentation.
const (
	FLOW_NW_FRAG_ANY   = 1 << 0
	FLOW_NW_FRAG_LATER = 1 << 1
	FLOW_NW_FRAG_MASK  = FLOW_NW_FRAG_ANY | FLOW_NW_FRAG_LATER
)

// FLOW_N_REGS is the number of Nicira extension registers.
const FLOW_N_REGS = 8

// EthAddr is a MAC address.
type EthAddr [6]byte

func (r EthAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", r[0], r[1], r[2], r[3], r[4], r[5])
}

// IsZero reports whether every byte of the address is zero.
func (r EthAddr) IsZero() bool {
	return r == EthAddr{}
}

// IsExact reports whether the address, used as a mask, selects all 48 bits.
func (r EthAddr) IsExact() bool {
	return r == EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
}

// Mask returns the address ANDed bit by bit with mask.
func (r EthAddr) Mask(mask EthAddr) EthAddr {
	var v EthAddr
	for i := range r {
		v[i] = r[i] & mask[i]
	}

	return v
}

// IPv6Addr is an IPv6 address, or a 128-bit mask over one.
type IPv6Addr [16]byte

func (r IPv6Addr) String() string {
	return net.IP(r[:]).String()
}

// IsZero reports whether every byte of the address is zero.
func (r IPv6Addr) IsZero() bool {
	return r == IPv6Addr{}
}

// Mask returns the address ANDed bit by bit with mask.
func (r IPv6Addr) Mask(mask IPv6Addr) IPv6Addr {
	var v IPv6Addr
	for i := range r {
		v[i] = r[i] & mask[i]
	}

	return v
}

// Flow is the protocol independent form of everything a flow entry can match
// on. Multi-byte values hold the numeric value of their big-endian wire
// encoding. Whether a field takes part in matching at all is decided by the
// Wildcards that accompany the flow inside a Rule.
type Flow struct {
	TunID     uint64
	NWSrc     uint32
	NWDst     uint32
	Regs      [FLOW_N_REGS]uint32
	InPort    uint16
	VLANTCI   uint16
	DLType    uint16
	TPSrc     uint16
	TPDst     uint16
	DLSrc     EthAddr
	DLDst     EthAddr
	NWProto   uint8
	NWTOS     uint8
	NWTTL     uint8
	NWFrag    uint8
	IPv6Src   IPv6Addr
	IPv6Dst   IPv6Addr
	IPv6Label uint32
	NDTarget  IPv6Addr
	ARPSHA    EthAddr
	ARPTHA    EthAddr
	MPLSLabel uint32
	MPLSTC    uint8
	MPLSStack uint8
	VLANTPID  uint16
	QinQTCI   uint16
}

// DLTypeFromOpenflow translates a dl_type from its OpenFlow encoding to the
// flow model's, turning OFP_DL_TYPE_NOT_ETH_TYPE into FLOW_DL_TYPE_NONE.
func DLTypeFromOpenflow(dlType uint16) uint16 {
	if dlType == OFP_DL_TYPE_NOT_ETH_TYPE {
		return FLOW_DL_TYPE_NONE
	}

	return dlType
}

// DLTypeToOpenflow is the inverse of DLTypeFromOpenflow.
func DLTypeToOpenflow(dlType uint16) uint16 {
	if dlType == FLOW_DL_TYPE_NONE {
		return OFP_DL_TYPE_NOT_ETH_TYPE
	}

	return dlType
}
