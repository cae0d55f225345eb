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

package nx

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
)

// An NXM or OXM field header packs a 16-bit class, a 7-bit field number, a
// has-mask bit and the payload length into 32 bits:
//
//	class << 16 | field << 9 | hasmask << 8 | length
//
// A masked entry doubles the length because mask bytes follow the value.
// Class 0 holds the fields inherited from the version 1.0 match, class 1 the
// Nicira extensions and class 0x8000 the fields OpenFlow 1.2 standardized.
const (
	NXM_OF_IN_PORT   = 0x00000002
	NXM_OF_ETH_DST   = 0x00000206
	NXM_OF_ETH_DST_W = 0x0000030c
	NXM_OF_ETH_SRC   = 0x00000406
	NXM_OF_ETH_SRC_W = 0x0000050c
	NXM_OF_ETH_TYPE  = 0x00000602
	NXM_OF_VLAN_TCI  = 0x00000802
	NXM_OF_VLAN_TCI_W = 0x00000904
	NXM_OF_IP_TOS    = 0x00000a01
	NXM_OF_IP_PROTO  = 0x00000c01
	NXM_OF_IP_SRC    = 0x00000e04
	NXM_OF_IP_SRC_W  = 0x00000f08
	NXM_OF_IP_DST    = 0x00001004
	NXM_OF_IP_DST_W  = 0x00001108
	NXM_OF_TCP_SRC   = 0x00001202
	NXM_OF_TCP_SRC_W = 0x00001304
	NXM_OF_TCP_DST   = 0x00001402
	NXM_OF_TCP_DST_W = 0x00001504
	NXM_OF_UDP_SRC   = 0x00001602
	NXM_OF_UDP_SRC_W = 0x00001704
	NXM_OF_UDP_DST   = 0x00001802
	NXM_OF_UDP_DST_W = 0x00001904
	NXM_OF_ICMP_TYPE = 0x00001a01
	NXM_OF_ICMP_CODE = 0x00001c01
	NXM_OF_ARP_OP    = 0x00001e02
	NXM_OF_ARP_SPA   = 0x00002004
	NXM_OF_ARP_SPA_W = 0x00002108
	NXM_OF_ARP_TPA   = 0x00002204
	NXM_OF_ARP_TPA_W = 0x00002308

	NXM_NX_TUN_ID       = 0x00012008
	NXM_NX_TUN_ID_W     = 0x00012110
	NXM_NX_ARP_SHA      = 0x00012206
	NXM_NX_ARP_THA      = 0x00012406
	NXM_NX_IPV6_SRC     = 0x00012610
	NXM_NX_IPV6_SRC_W   = 0x00012720
	NXM_NX_IPV6_DST     = 0x00012810
	NXM_NX_IPV6_DST_W   = 0x00012920
	NXM_NX_ICMPV6_TYPE  = 0x00012a01
	NXM_NX_ICMPV6_CODE  = 0x00012c01
	NXM_NX_ND_TARGET    = 0x00012e10
	NXM_NX_ND_TARGET_W  = 0x00012f20
	NXM_NX_ND_SLL       = 0x00013006
	NXM_NX_ND_TLL       = 0x00013206
	NXM_NX_IP_FRAG      = 0x00013401
	NXM_NX_IP_FRAG_W    = 0x00013502
	NXM_NX_IPV6_LABEL   = 0x00013604
	NXM_NX_IP_ECN       = 0x00013801
	NXM_NX_IP_TTL       = 0x00013a01
	NXM_NX_COOKIE       = 0x00013c08
	NXM_NX_COOKIE_W     = 0x00013d10
	NXM_NX_MPLS_LABEL   = 0x00015004
	NXM_NX_MPLS_TC      = 0x00015201
	NXM_NX_MPLS_STACK   = 0x00015401
	NXM_NX_VLAN_TPID    = 0x00015602
	NXM_NX_QINQ_TCI     = 0x00015802
	NXM_NX_QINQ_TCI_W   = 0x00015904

	OXM_OF_IN_PORT        = 0x80000004
	OXM_OF_ETH_DST        = 0x80000606
	OXM_OF_ETH_DST_W      = 0x8000070c
	OXM_OF_ETH_SRC        = 0x80000806
	OXM_OF_ETH_SRC_W      = 0x8000090c
	OXM_OF_ETH_TYPE       = 0x80000a02
	OXM_OF_VLAN_VID       = 0x80000c02
	OXM_OF_VLAN_VID_W     = 0x80000d04
	OXM_OF_VLAN_PCP       = 0x80000e01
	OXM_OF_IP_DSCP        = 0x80001001
	OXM_OF_IP_ECN         = 0x80001201
	OXM_OF_IP_PROTO       = 0x80001401
	OXM_OF_IPV4_SRC       = 0x80001604
	OXM_OF_IPV4_SRC_W     = 0x80001708
	OXM_OF_IPV4_DST       = 0x80001804
	OXM_OF_IPV4_DST_W     = 0x80001908
	OXM_OF_TCP_SRC        = 0x80001a02
	OXM_OF_TCP_DST        = 0x80001c02
	OXM_OF_UDP_SRC        = 0x80001e02
	OXM_OF_UDP_DST        = 0x80002002
	OXM_OF_ICMPV4_TYPE    = 0x80002601
	OXM_OF_ICMPV4_CODE    = 0x80002801
	OXM_OF_ARP_OP         = 0x80002a02
	OXM_OF_ARP_SPA        = 0x80002c04
	OXM_OF_ARP_SPA_W      = 0x80002d08
	OXM_OF_ARP_TPA        = 0x80002e04
	OXM_OF_ARP_TPA_W      = 0x80002f08
	OXM_OF_ARP_SHA        = 0x80003006
	OXM_OF_ARP_THA        = 0x80003206
	OXM_OF_IPV6_SRC       = 0x80003410
	OXM_OF_IPV6_SRC_W     = 0x80003520
	OXM_OF_IPV6_DST       = 0x80003610
	OXM_OF_IPV6_DST_W     = 0x80003720
	OXM_OF_IPV6_FLABEL    = 0x80003804
	OXM_OF_ICMPV6_TYPE    = 0x80003a01
	OXM_OF_ICMPV6_CODE    = 0x80003c01
	OXM_OF_IPV6_ND_TARGET = 0x80003e10
	OXM_OF_IPV6_ND_SLL    = 0x80004006
	OXM_OF_IPV6_ND_TLL    = 0x80004206
	OXM_OF_MPLS_LABEL     = 0x80004404
	OXM_OF_MPLS_TC        = 0x80004601
)

// OFPVID_PRESENT is the bit of an OXM VLAN VID that says the packet has an
// 802.1Q header. It lines up with the CFI bit of the TCI.
const OFPVID_PRESENT = 0x1000

// NXM_NX_REG returns the header of Nicira extension register idx.
func NXM_NX_REG(idx int) uint32 {
	return 0x00010004 | uint32(idx)<<9
}

// NXM_NX_REG_W returns the masked header of Nicira extension register idx.
func NXM_NX_REG_W(idx int) uint32 {
	return 0x00010108 | uint32(idx)<<9
}

func nxmPayloadLen(header uint32) int {
	return int(header & 0xff)
}

func nxmHasMask(header uint32) bool {
	return header&0x100 != 0
}

// nxmFieldKey strips the has-mask bit and the length so that the plain and
// masked headers of one field collide, for duplicate detection.
func nxmFieldKey(header uint32) uint32 {
	return header & 0xfffffe00
}

// PaddedLen returns matchLen rounded up so that the match plus whatever
// padOffset bytes precede it in the message end on an 8 byte boundary.
func PaddedLen(matchLen, padOffset int) int {
	return (matchLen+padOffset+7)/8*8 - padOffset
}

func putHeader(b *openflow.Buffer, header uint32) {
	binary.BigEndian.PutUint32(b.PutZeros(4), header)
}

func put8(b *openflow.Buffer, header uint32, value uint8) {
	putHeader(b, header)
	b.PutZeros(1)[0] = value
}

func put8m(b *openflow.Buffer, header, headerW uint32, value, mask uint8) {
	switch mask {
	case 0:
	case 0xff:
		put8(b, header, value)
	default:
		putHeader(b, headerW)
		p := b.PutZeros(2)
		p[0], p[1] = value, mask
	}
}

func put16(b *openflow.Buffer, header uint32, value uint16) {
	putHeader(b, header)
	binary.BigEndian.PutUint16(b.PutZeros(2), value)
}

func put16w(b *openflow.Buffer, headerW uint32, value, mask uint16) {
	putHeader(b, headerW)
	p := b.PutZeros(4)
	binary.BigEndian.PutUint16(p[0:2], value)
	binary.BigEndian.PutUint16(p[2:4], mask)
}

func put16m(b *openflow.Buffer, header, headerW uint32, value, mask uint16) {
	switch mask {
	case 0:
	case 0xffff:
		put16(b, header, value)
	default:
		put16w(b, headerW, value, mask)
	}
}

func put32(b *openflow.Buffer, header uint32, value uint32) {
	putHeader(b, header)
	binary.BigEndian.PutUint32(b.PutZeros(4), value)
}

func put32m(b *openflow.Buffer, header, headerW uint32, value, mask uint32) {
	switch mask {
	case 0:
	case 0xffffffff:
		put32(b, header, value)
	default:
		putHeader(b, headerW)
		p := b.PutZeros(8)
		binary.BigEndian.PutUint32(p[0:4], value)
		binary.BigEndian.PutUint32(p[4:8], mask)
	}
}

func put64m(b *openflow.Buffer, header, headerW uint32, value, mask uint64) {
	switch mask {
	case 0:
	case 0xffffffffffffffff:
		putHeader(b, header)
		binary.BigEndian.PutUint64(b.PutZeros(8), value)
	default:
		putHeader(b, headerW)
		p := b.PutZeros(16)
		binary.BigEndian.PutUint64(p[0:8], value)
		binary.BigEndian.PutUint64(p[8:16], mask)
	}
}

func putEth(b *openflow.Buffer, header uint32, value openflow.EthAddr) {
	putHeader(b, header)
	copy(b.PutZeros(6), value[:])
}

func putEthM(b *openflow.Buffer, header, headerW uint32, value, mask openflow.EthAddr) {
	switch {
	case mask.IsZero():
	case mask.IsExact():
		putEth(b, header, value)
	default:
		putHeader(b, headerW)
		p := b.PutZeros(12)
		copy(p[0:6], value[:])
		copy(p[6:12], mask[:])
	}
}

func putIPv6(b *openflow.Buffer, header uint32, value openflow.IPv6Addr) {
	putHeader(b, header)
	copy(b.PutZeros(16), value[:])
}

func putIPv6M(b *openflow.Buffer, header, headerW uint32, value, mask openflow.IPv6Addr) {
	switch {
	case mask.IsZero():
	case mask == openflow.IPv6Addr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}:
		putIPv6(b, header, value)
	default:
		putHeader(b, headerW)
		p := b.PutZeros(32)
		copy(p[0:16], value[:])
		copy(p[16:32], mask[:])
	}
}

// PutMatch appends rule as a sequence of NXM entries, padded so that the
// match plus the four byte OXM envelope when oxm is set ends on an 8 byte
// boundary, and returns the match length before padding. With oxm set the
// fields that OpenFlow 1.2 standardized use their OXM headers; extension
// fields keep their Nicira headers either way. A nonzero cookieMask appends
// a cookie entry, which only flow mods and flow stats requests may carry.
func PutMatch(b *openflow.Buffer, oxm bool, rule *openflow.Rule, cookie, cookieMask uint64) int {
	flow, wc := &rule.Flow, &rule.Wildcards
	start := b.Size()

	if wc.Flags&openflow.FWW_IN_PORT == 0 {
		if oxm {
			put32(b, OXM_OF_IN_PORT, openflow.PortToOFP11(flow.InPort))
		} else {
			put16(b, NXM_OF_IN_PORT, flow.InPort)
		}
	}

	// Ethernet.
	if oxm {
		putEthM(b, OXM_OF_ETH_DST, OXM_OF_ETH_DST_W, flow.DLDst, wc.DLDstMask)
		putEthM(b, OXM_OF_ETH_SRC, OXM_OF_ETH_SRC_W, flow.DLSrc, wc.DLSrcMask)
	} else {
		putEthM(b, NXM_OF_ETH_DST, NXM_OF_ETH_DST_W, flow.DLDst, wc.DLDstMask)
		putEthM(b, NXM_OF_ETH_SRC, NXM_OF_ETH_SRC_W, flow.DLSrc, wc.DLSrcMask)
	}
	if wc.Flags&openflow.FWW_DL_TYPE == 0 {
		header := uint32(NXM_OF_ETH_TYPE)
		if oxm {
			header = OXM_OF_ETH_TYPE
		}
		put16(b, header, openflow.DLTypeToOpenflow(flow.DLType))
	}

	// 802.1Q. OXM splits the TCI into a VID with a present bit, which sits
	// at the same bit position as the CFI, and a separate PCP.
	if oxm {
		const vidCFI = openflow.VLAN_VID_MASK | openflow.VLAN_CFI
		vid := flow.VLANTCI & vidCFI
		mask := wc.VLANTCIMask & vidCFI
		if mask == vidCFI {
			put16(b, OXM_OF_VLAN_VID, vid)
		} else if mask != 0 {
			put16w(b, OXM_OF_VLAN_VID_W, vid, mask)
		}
		if vid != 0 && wc.VLANTCIMask&openflow.VLAN_PCP_MASK != 0 {
			put8(b, OXM_OF_VLAN_PCP, uint8(flow.VLANTCI&openflow.VLAN_PCP_MASK>>openflow.VLAN_PCP_SHIFT))
		}
	} else {
		put16m(b, NXM_OF_VLAN_TCI, NXM_OF_VLAN_TCI_W, flow.VLANTCI, wc.VLANTCIMask)
	}

	// 802.1ad.
	if wc.Flags&openflow.FWW_VLAN_TPID == 0 {
		put16(b, NXM_NX_VLAN_TPID, flow.VLANTPID)
	}
	var qinqMask uint16
	if wc.Flags&openflow.FWW_VLAN_QINQ_VID == 0 {
		qinqMask |= openflow.VLAN_VID_MASK | openflow.VLAN_CFI
	}
	if wc.Flags&openflow.FWW_VLAN_QINQ_PCP == 0 {
		qinqMask |= openflow.VLAN_PCP_MASK
	}
	put16m(b, NXM_NX_QINQ_TCI, NXM_NX_QINQ_TCI_W, flow.QinQTCI, qinqMask)

	switch flow.DLType {
	case openflow.ETH_TYPE_IP:
		if oxm {
			put32m(b, OXM_OF_IPV4_SRC, OXM_OF_IPV4_SRC_W, flow.NWSrc, wc.NWSrcMask)
			put32m(b, OXM_OF_IPV4_DST, OXM_OF_IPV4_DST_W, flow.NWDst, wc.NWDstMask)
		} else {
			put32m(b, NXM_OF_IP_SRC, NXM_OF_IP_SRC_W, flow.NWSrc, wc.NWSrcMask)
			put32m(b, NXM_OF_IP_DST, NXM_OF_IP_DST_W, flow.NWDst, wc.NWDstMask)
		}
		putIPFields(b, oxm, flow, wc)

	case openflow.ETH_TYPE_IPV6:
		if oxm {
			putIPv6M(b, OXM_OF_IPV6_SRC, OXM_OF_IPV6_SRC_W, flow.IPv6Src, wc.IPv6SrcMask)
			putIPv6M(b, OXM_OF_IPV6_DST, OXM_OF_IPV6_DST_W, flow.IPv6Dst, wc.IPv6DstMask)
		} else {
			putIPv6M(b, NXM_NX_IPV6_SRC, NXM_NX_IPV6_SRC_W, flow.IPv6Src, wc.IPv6SrcMask)
			putIPv6M(b, NXM_NX_IPV6_DST, NXM_NX_IPV6_DST_W, flow.IPv6Dst, wc.IPv6DstMask)
		}
		if wc.Flags&openflow.FWW_IPV6_LABEL == 0 {
			header := uint32(NXM_NX_IPV6_LABEL)
			if oxm {
				header = OXM_OF_IPV6_FLABEL
			}
			put32(b, header, flow.IPv6Label)
		}
		putIPFields(b, oxm, flow, wc)

	case openflow.ETH_TYPE_ARP:
		if wc.Flags&openflow.FWW_NW_PROTO == 0 {
			header := uint32(NXM_OF_ARP_OP)
			if oxm {
				header = OXM_OF_ARP_OP
			}
			put16(b, header, uint16(flow.NWProto))
		}
		if oxm {
			put32m(b, OXM_OF_ARP_SPA, OXM_OF_ARP_SPA_W, flow.NWSrc, wc.NWSrcMask)
			put32m(b, OXM_OF_ARP_TPA, OXM_OF_ARP_TPA_W, flow.NWDst, wc.NWDstMask)
		} else {
			put32m(b, NXM_OF_ARP_SPA, NXM_OF_ARP_SPA_W, flow.NWSrc, wc.NWSrcMask)
			put32m(b, NXM_OF_ARP_TPA, NXM_OF_ARP_TPA_W, flow.NWDst, wc.NWDstMask)
		}
		if wc.Flags&openflow.FWW_ARP_SHA == 0 {
			header := uint32(NXM_NX_ARP_SHA)
			if oxm {
				header = OXM_OF_ARP_SHA
			}
			putEth(b, header, flow.ARPSHA)
		}
		if wc.Flags&openflow.FWW_ARP_THA == 0 {
			header := uint32(NXM_NX_ARP_THA)
			if oxm {
				header = OXM_OF_ARP_THA
			}
			putEth(b, header, flow.ARPTHA)
		}

	case openflow.ETH_TYPE_MPLS, openflow.ETH_TYPE_MPLS_MCAST:
		if wc.Flags&openflow.FWW_MPLS_LABEL == 0 {
			header := uint32(NXM_NX_MPLS_LABEL)
			if oxm {
				header = OXM_OF_MPLS_LABEL
			}
			put32(b, header, flow.MPLSLabel)
		}
		if wc.Flags&openflow.FWW_MPLS_TC == 0 {
			header := uint32(NXM_NX_MPLS_TC)
			if oxm {
				header = OXM_OF_MPLS_TC
			}
			put8(b, header, flow.MPLSTC)
		}
		if wc.Flags&openflow.FWW_MPLS_STACK == 0 {
			put8(b, NXM_NX_MPLS_STACK, flow.MPLSStack)
		}
	}

	// Tunnel ID and registers.
	put64m(b, NXM_NX_TUN_ID, NXM_NX_TUN_ID_W, flow.TunID, wc.TunIDMask)
	for i := 0; i < openflow.FLOW_N_REGS; i++ {
		put32m(b, NXM_NX_REG(i), NXM_NX_REG_W(i), flow.Regs[i], wc.RegMasks[i])
	}

	put64m(b, NXM_NX_COOKIE, NXM_NX_COOKIE_W, cookie, cookieMask)

	matchLen := b.Size() - start
	padOffset := 0
	if oxm {
		padOffset = 4
	}
	b.PutZeros(PaddedLen(matchLen, padOffset) - matchLen)

	return matchLen
}

// putIPFields appends the entries common to IPv4 and IPv6 flows, including
// the transport protocol fields.
func putIPFields(b *openflow.Buffer, oxm bool, flow *openflow.Flow, wc *openflow.Wildcards) {
	if wc.Flags&openflow.FWW_NW_DSCP == 0 {
		if oxm {
			// The OXM DSCP sits in the low six bits of its byte.
			put8(b, OXM_OF_IP_DSCP, flow.NWTOS&openflow.IP_DSCP_MASK>>2)
		} else {
			put8(b, NXM_OF_IP_TOS, flow.NWTOS&openflow.IP_DSCP_MASK)
		}
	}
	if wc.Flags&openflow.FWW_NW_ECN == 0 {
		header := uint32(NXM_NX_IP_ECN)
		if oxm {
			header = OXM_OF_IP_ECN
		}
		put8(b, header, flow.NWTOS&openflow.IP_ECN_MASK)
	}
	if wc.Flags&openflow.FWW_NW_TTL == 0 {
		put8(b, NXM_NX_IP_TTL, flow.NWTTL)
	}
	put8m(b, NXM_NX_IP_FRAG, NXM_NX_IP_FRAG_W, flow.NWFrag, wc.NWFragMask)

	if wc.Flags&openflow.FWW_NW_PROTO != 0 {
		return
	}
	header := uint32(NXM_OF_IP_PROTO)
	if oxm {
		header = OXM_OF_IP_PROTO
	}
	put8(b, header, flow.NWProto)

	switch flow.NWProto {
	case openflow.IPPROTO_TCP:
		if oxm {
			// OXM TCP ports take no mask; partial masks fall back to the
			// extension headers.
			put16m(b, OXM_OF_TCP_SRC, NXM_OF_TCP_SRC_W, flow.TPSrc, wc.TPSrcMask)
			put16m(b, OXM_OF_TCP_DST, NXM_OF_TCP_DST_W, flow.TPDst, wc.TPDstMask)
		} else {
			put16m(b, NXM_OF_TCP_SRC, NXM_OF_TCP_SRC_W, flow.TPSrc, wc.TPSrcMask)
			put16m(b, NXM_OF_TCP_DST, NXM_OF_TCP_DST_W, flow.TPDst, wc.TPDstMask)
		}

	case openflow.IPPROTO_UDP:
		if oxm {
			put16m(b, OXM_OF_UDP_SRC, NXM_OF_UDP_SRC_W, flow.TPSrc, wc.TPSrcMask)
			put16m(b, OXM_OF_UDP_DST, NXM_OF_UDP_DST_W, flow.TPDst, wc.TPDstMask)
		} else {
			put16m(b, NXM_OF_UDP_SRC, NXM_OF_UDP_SRC_W, flow.TPSrc, wc.TPSrcMask)
			put16m(b, NXM_OF_UDP_DST, NXM_OF_UDP_DST_W, flow.TPDst, wc.TPDstMask)
		}

	case openflow.IPPROTO_ICMP:
		if flow.DLType != openflow.ETH_TYPE_IP {
			break
		}
		if wc.TPSrcMask == 0xffff {
			header := uint32(NXM_OF_ICMP_TYPE)
			if oxm {
				header = OXM_OF_ICMPV4_TYPE
			}
			put8(b, header, uint8(flow.TPSrc))
		}
		if wc.TPDstMask == 0xffff {
			header := uint32(NXM_OF_ICMP_CODE)
			if oxm {
				header = OXM_OF_ICMPV4_CODE
			}
			put8(b, header, uint8(flow.TPDst))
		}

	case openflow.IPPROTO_ICMPV6:
		if flow.DLType != openflow.ETH_TYPE_IPV6 {
			break
		}
		if wc.TPSrcMask == 0xffff {
			header := uint32(NXM_NX_ICMPV6_TYPE)
			if oxm {
				header = OXM_OF_ICMPV6_TYPE
			}
			put8(b, header, uint8(flow.TPSrc))

			if flow.TPSrc == openflow.ND_NEIGHBOR_SOLICIT ||
				flow.TPSrc == openflow.ND_NEIGHBOR_ADVERT {
				if oxm {
					putIPv6M(b, OXM_OF_IPV6_ND_TARGET, NXM_NX_ND_TARGET_W,
						flow.NDTarget, wc.NDTargetMask)
				} else {
					putIPv6M(b, NXM_NX_ND_TARGET, NXM_NX_ND_TARGET_W,
						flow.NDTarget, wc.NDTargetMask)
				}
				if flow.TPSrc == openflow.ND_NEIGHBOR_SOLICIT &&
					wc.Flags&openflow.FWW_ARP_SHA == 0 {
					header := uint32(NXM_NX_ND_SLL)
					if oxm {
						header = OXM_OF_IPV6_ND_SLL
					}
					putEth(b, header, flow.ARPSHA)
				}
				if flow.TPSrc == openflow.ND_NEIGHBOR_ADVERT &&
					wc.Flags&openflow.FWW_ARP_THA == 0 {
					header := uint32(NXM_NX_ND_TLL)
					if oxm {
						header = OXM_OF_IPV6_ND_TLL
					}
					putEth(b, header, flow.ARPTHA)
				}
			}
		}
		if wc.TPDstMask == 0xffff {
			header := uint32(NXM_NX_ICMPV6_CODE)
			if oxm {
				header = OXM_OF_ICMPV6_CODE
			}
			put8(b, header, uint8(flow.TPDst))
		}
	}
}

// PullMatch consumes a match of matchLen bytes, plus the padding that brings
// it to an 8 byte boundary counting the padOffset bytes that preceded it,
// and fills in rule at the given priority. A cookie entry is stored through
// cookie and cookieMask; passing nil for them rejects cookie entries.
// Unknown field headers, prerequisite violations and nonzero padding are
// errors.
func PullMatch(b *openflow.Buffer, matchLen, padOffset int, priority uint16,
	rule *openflow.Rule, cookie, cookieMask *uint64) error {
	return pullMatch(b, matchLen, padOffset, priority, rule, cookie, cookieMask, true)
}

// PullMatchLoose is PullMatch except that unknown field headers, entries
// with unsatisfied prerequisites and cookie entries without a destination
// are skipped, with a rate limited log line, instead of rejected.
func PullMatchLoose(b *openflow.Buffer, matchLen, padOffset int, priority uint16,
	rule *openflow.Rule, cookie, cookieMask *uint64) error {
	return pullMatch(b, matchLen, padOffset, priority, rule, cookie, cookieMask, false)
}

func pullMatch(b *openflow.Buffer, matchLen, padOffset int, priority uint16,
	rule *openflow.Rule, cookie, cookieMask *uint64, strict bool) error {
	*rule = openflow.CatchallRule(priority)
	if cookie != nil {
		*cookie, *cookieMask = 0, 0
	}

	p := b.TryPull(PaddedLen(matchLen, padOffset))
	if p == nil {
		return errors.Wrapf(openflow.ErrBadLength,
			"nx_match length %d, rounded up to a multiple of 8, is longer than space in message (%d bytes)",
			matchLen, b.Size())
	}
	if strict {
		for _, c := range p[matchLen:] {
			if c != 0 {
				return errors.Wrapf(openflow.ErrBadNXM, "nx_match padding contains nonzero byte %#02x", c)
			}
		}
	}
	p = p[:matchLen]

	seen := make(map[uint32]bool)
	for len(p) != 0 {
		if len(p) < 4 {
			return errors.Wrapf(openflow.ErrBadLength, "nx_match ends with partial nxm_header (%d bytes)", len(p))
		}
		header := binary.BigEndian.Uint32(p)
		length := nxmPayloadLen(header)
		if length == 0 {
			return errors.Wrapf(openflow.ErrBadNXM, "nxm_entry %#08x has zero length", header)
		}
		if len(p) < 4+length {
			return errors.Wrapf(openflow.ErrBadNXM,
				"nxm_entry %#08x has length %d but only %d bytes follow", header, length, len(p)-4)
		}
		payload := p[4 : 4+length]
		p = p[4+length:]

		if seen[nxmFieldKey(header)] {
			return errors.Wrapf(openflow.ErrBadNXM, "duplicate nxm_entry %#08x", header)
		}
		seen[nxmFieldKey(header)] = true

		err := parseEntry(rule, header, payload, cookie, cookieMask, strict)
		if err != nil {
			return err
		}
	}

	return nil
}
