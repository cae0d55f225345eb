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

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
)

var (
	exactEth  = openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	exactIPv6 = openflow.IPv6Addr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// Loose pulls see matches composed by the switch, which may carry fields or
// orderings this side does not handle. They are skipped, not fatal, and a
// broken switch can emit them at line rate, so the complaints share the rate
// limited diagnostics of the rest of the decoder.
var diag = openflow.NewDiagnostics(logging.MustGetLogger("nx"))

func badPrereq(header uint32, strict bool) error {
	if strict {
		return errors.Wrapf(openflow.ErrBadNXM, "nxm_entry %#08x has unsatisfied prerequisite", header)
	}
	diag.Warningf("prereq", "skipping nxm_entry %#08x with unsatisfied prerequisite", header)

	return nil
}

func badValue(header uint32) error {
	return errors.Wrapf(openflow.ErrBadValue, "nxm_entry %#08x has invalid value", header)
}

func isIPAny(flow *openflow.Flow) bool {
	return flow.DLType == openflow.ETH_TYPE_IP || flow.DLType == openflow.ETH_TYPE_IPV6
}

func isProto(flow *openflow.Flow, proto uint8) bool {
	return isIPAny(flow) && flow.NWProto == proto
}

func isICMPv4(flow *openflow.Flow) bool {
	return flow.DLType == openflow.ETH_TYPE_IP && flow.NWProto == openflow.IPPROTO_ICMP
}

func isICMPv6(flow *openflow.Flow) bool {
	return flow.DLType == openflow.ETH_TYPE_IPV6 && flow.NWProto == openflow.IPPROTO_ICMPV6
}

func isMPLS(flow *openflow.Flow) bool {
	return flow.DLType == openflow.ETH_TYPE_MPLS || flow.DLType == openflow.ETH_TYPE_MPLS_MCAST
}

// isND reports whether the flow pins down an ICMPv6 neighbor discovery
// message, which the ND target and link layer address fields require.
func isND(rule *openflow.Rule) bool {
	if !isICMPv6(&rule.Flow) || rule.Wildcards.TPSrcMask != 0xffff {
		return false
	}

	return rule.Flow.TPSrc == openflow.ND_NEIGHBOR_SOLICIT ||
		rule.Flow.TPSrc == openflow.ND_NEIGHBOR_ADVERT
}

func ethAddr(p []byte) openflow.EthAddr {
	var a openflow.EthAddr
	copy(a[:], p)

	return a
}

func ipv6Addr(p []byte) openflow.IPv6Addr {
	var a openflow.IPv6Addr
	copy(a[:], p)

	return a
}

// parseEntry applies one nxm_entry to rule. Registers are recognized before
// the switch because their headers are computed from the register index.
func parseEntry(rule *openflow.Rule, header uint32, payload []byte,
	cookie, cookieMask *uint64, strict bool) error {
	flow, wc := &rule.Flow, &rule.Wildcards

	if header>>16 == 0x0001 && header>>9&0x7f < openflow.FLOW_N_REGS {
		idx := int(header >> 9 & 0x7f)
		switch {
		case !nxmHasMask(header) && len(payload) == 4:
			flow.Regs[idx] = binary.BigEndian.Uint32(payload)
			wc.RegMasks[idx] = 0xffffffff
		case nxmHasMask(header) && len(payload) == 8:
			mask := binary.BigEndian.Uint32(payload[4:8])
			flow.Regs[idx] = binary.BigEndian.Uint32(payload[0:4]) & mask
			wc.RegMasks[idx] = mask
		default:
			return unknownEntry(header, strict)
		}

		return nil
	}

	switch header {
	case NXM_OF_IN_PORT:
		flow.InPort = binary.BigEndian.Uint16(payload)
		wc.Flags &^= openflow.FWW_IN_PORT
	case OXM_OF_IN_PORT:
		port, err := openflow.PortFromOFP11(binary.BigEndian.Uint32(payload))
		if err != nil {
			return badValue(header)
		}
		flow.InPort = port
		wc.Flags &^= openflow.FWW_IN_PORT

	case NXM_OF_ETH_DST, OXM_OF_ETH_DST:
		flow.DLDst = ethAddr(payload)
		wc.DLDstMask = exactEth
	case NXM_OF_ETH_DST_W, OXM_OF_ETH_DST_W:
		mask := ethAddr(payload[6:12])
		flow.DLDst = ethAddr(payload[0:6]).Mask(mask)
		wc.DLDstMask = mask
	case NXM_OF_ETH_SRC, OXM_OF_ETH_SRC:
		flow.DLSrc = ethAddr(payload)
		wc.DLSrcMask = exactEth
	case NXM_OF_ETH_SRC_W, OXM_OF_ETH_SRC_W:
		mask := ethAddr(payload[6:12])
		flow.DLSrc = ethAddr(payload[0:6]).Mask(mask)
		wc.DLSrcMask = mask

	case NXM_OF_ETH_TYPE, OXM_OF_ETH_TYPE:
		flow.DLType = openflow.DLTypeFromOpenflow(binary.BigEndian.Uint16(payload))
		wc.Flags &^= openflow.FWW_DL_TYPE

	case NXM_OF_VLAN_TCI:
		flow.VLANTCI = binary.BigEndian.Uint16(payload)
		wc.VLANTCIMask = 0xffff
	case NXM_OF_VLAN_TCI_W:
		mask := binary.BigEndian.Uint16(payload[2:4])
		flow.VLANTCI = binary.BigEndian.Uint16(payload[0:2]) & mask
		wc.VLANTCIMask = mask
	case OXM_OF_VLAN_VID:
		v := binary.BigEndian.Uint16(payload)
		if v&^(openflow.VLAN_VID_MASK|openflow.VLAN_CFI) != 0 {
			return badValue(header)
		}
		flow.VLANTCI = flow.VLANTCI&openflow.VLAN_PCP_MASK | v
		wc.VLANTCIMask |= openflow.VLAN_VID_MASK | openflow.VLAN_CFI
	case OXM_OF_VLAN_VID_W:
		const vidCFI = openflow.VLAN_VID_MASK | openflow.VLAN_CFI
		mask := binary.BigEndian.Uint16(payload[2:4]) & vidCFI
		v := binary.BigEndian.Uint16(payload[0:2]) & mask
		flow.VLANTCI = flow.VLANTCI&openflow.VLAN_PCP_MASK | v
		wc.VLANTCIMask = wc.VLANTCIMask&openflow.VLAN_PCP_MASK | mask
	case OXM_OF_VLAN_PCP:
		if flow.VLANTCI&openflow.VLAN_CFI == 0 || wc.VLANTCIMask&openflow.VLAN_CFI == 0 {
			return badPrereq(header, strict)
		}
		if payload[0] > 7 {
			return badValue(header)
		}
		rule.SetDLVLANPCP(payload[0])

	case NXM_OF_IP_TOS:
		if !isIPAny(flow) {
			return badPrereq(header, strict)
		}
		if payload[0]&^uint8(openflow.IP_DSCP_MASK) != 0 {
			return badValue(header)
		}
		flow.NWTOS = flow.NWTOS&^uint8(openflow.IP_DSCP_MASK) | payload[0]
		wc.Flags &^= openflow.FWW_NW_DSCP
	case OXM_OF_IP_DSCP:
		if !isIPAny(flow) {
			return badPrereq(header, strict)
		}
		if payload[0]&^uint8(openflow.IP_DSCP_MASK>>2) != 0 {
			return badValue(header)
		}
		flow.NWTOS = flow.NWTOS&^uint8(openflow.IP_DSCP_MASK) | payload[0]<<2
		wc.Flags &^= openflow.FWW_NW_DSCP

	case NXM_NX_IP_ECN, OXM_OF_IP_ECN:
		if !isIPAny(flow) {
			return badPrereq(header, strict)
		}
		if payload[0]&^uint8(openflow.IP_ECN_MASK) != 0 {
			return badValue(header)
		}
		flow.NWTOS = flow.NWTOS&^uint8(openflow.IP_ECN_MASK) | payload[0]
		wc.Flags &^= openflow.FWW_NW_ECN

	case NXM_NX_IP_TTL:
		if !isIPAny(flow) {
			return badPrereq(header, strict)
		}
		flow.NWTTL = payload[0]
		wc.Flags &^= openflow.FWW_NW_TTL

	case NXM_OF_IP_PROTO, OXM_OF_IP_PROTO:
		if !isIPAny(flow) {
			return badPrereq(header, strict)
		}
		flow.NWProto = payload[0]
		wc.Flags &^= openflow.FWW_NW_PROTO

	case NXM_OF_IP_SRC, OXM_OF_IPV4_SRC:
		if flow.DLType != openflow.ETH_TYPE_IP {
			return badPrereq(header, strict)
		}
		flow.NWSrc = binary.BigEndian.Uint32(payload)
		wc.NWSrcMask = 0xffffffff
	case NXM_OF_IP_SRC_W, OXM_OF_IPV4_SRC_W:
		if flow.DLType != openflow.ETH_TYPE_IP {
			return badPrereq(header, strict)
		}
		mask := binary.BigEndian.Uint32(payload[4:8])
		flow.NWSrc = binary.BigEndian.Uint32(payload[0:4]) & mask
		wc.NWSrcMask = mask
	case NXM_OF_IP_DST, OXM_OF_IPV4_DST:
		if flow.DLType != openflow.ETH_TYPE_IP {
			return badPrereq(header, strict)
		}
		flow.NWDst = binary.BigEndian.Uint32(payload)
		wc.NWDstMask = 0xffffffff
	case NXM_OF_IP_DST_W, OXM_OF_IPV4_DST_W:
		if flow.DLType != openflow.ETH_TYPE_IP {
			return badPrereq(header, strict)
		}
		mask := binary.BigEndian.Uint32(payload[4:8])
		flow.NWDst = binary.BigEndian.Uint32(payload[0:4]) & mask
		wc.NWDstMask = mask

	case NXM_OF_TCP_SRC, OXM_OF_TCP_SRC:
		if !isProto(flow, openflow.IPPROTO_TCP) {
			return badPrereq(header, strict)
		}
		flow.TPSrc = binary.BigEndian.Uint16(payload)
		wc.TPSrcMask = 0xffff
	case NXM_OF_TCP_SRC_W:
		if !isProto(flow, openflow.IPPROTO_TCP) {
			return badPrereq(header, strict)
		}
		mask := binary.BigEndian.Uint16(payload[2:4])
		flow.TPSrc = binary.BigEndian.Uint16(payload[0:2]) & mask
		wc.TPSrcMask = mask
	case NXM_OF_TCP_DST, OXM_OF_TCP_DST:
		if !isProto(flow, openflow.IPPROTO_TCP) {
			return badPrereq(header, strict)
		}
		flow.TPDst = binary.BigEndian.Uint16(payload)
		wc.TPDstMask = 0xffff
	case NXM_OF_TCP_DST_W:
		if !isProto(flow, openflow.IPPROTO_TCP) {
			return badPrereq(header, strict)
		}
		mask := binary.BigEndian.Uint16(payload[2:4])
		flow.TPDst = binary.BigEndian.Uint16(payload[0:2]) & mask
		wc.TPDstMask = mask

	case NXM_OF_UDP_SRC, OXM_OF_UDP_SRC:
		if !isProto(flow, openflow.IPPROTO_UDP) {
			return badPrereq(header, strict)
		}
		flow.TPSrc = binary.BigEndian.Uint16(payload)
		wc.TPSrcMask = 0xffff
	case NXM_OF_UDP_SRC_W:
		if !isProto(flow, openflow.IPPROTO_UDP) {
			return badPrereq(header, strict)
		}
		mask := binary.BigEndian.Uint16(payload[2:4])
		flow.TPSrc = binary.BigEndian.Uint16(payload[0:2]) & mask
		wc.TPSrcMask = mask
	case NXM_OF_UDP_DST, OXM_OF_UDP_DST:
		if !isProto(flow, openflow.IPPROTO_UDP) {
			return badPrereq(header, strict)
		}
		flow.TPDst = binary.BigEndian.Uint16(payload)
		wc.TPDstMask = 0xffff
	case NXM_OF_UDP_DST_W:
		if !isProto(flow, openflow.IPPROTO_UDP) {
			return badPrereq(header, strict)
		}
		mask := binary.BigEndian.Uint16(payload[2:4])
		flow.TPDst = binary.BigEndian.Uint16(payload[0:2]) & mask
		wc.TPDstMask = mask

	case NXM_OF_ICMP_TYPE, OXM_OF_ICMPV4_TYPE:
		if !isICMPv4(flow) {
			return badPrereq(header, strict)
		}
		flow.TPSrc = uint16(payload[0])
		wc.TPSrcMask = 0xffff
	case NXM_OF_ICMP_CODE, OXM_OF_ICMPV4_CODE:
		if !isICMPv4(flow) {
			return badPrereq(header, strict)
		}
		flow.TPDst = uint16(payload[0])
		wc.TPDstMask = 0xffff

	case NXM_OF_ARP_OP, OXM_OF_ARP_OP:
		if flow.DLType != openflow.ETH_TYPE_ARP {
			return badPrereq(header, strict)
		}
		op := binary.BigEndian.Uint16(payload)
		if op > 0xff {
			return badValue(header)
		}
		flow.NWProto = uint8(op)
		wc.Flags &^= openflow.FWW_NW_PROTO

	case NXM_OF_ARP_SPA, OXM_OF_ARP_SPA:
		if flow.DLType != openflow.ETH_TYPE_ARP {
			return badPrereq(header, strict)
		}
		flow.NWSrc = binary.BigEndian.Uint32(payload)
		wc.NWSrcMask = 0xffffffff
	case NXM_OF_ARP_SPA_W, OXM_OF_ARP_SPA_W:
		if flow.DLType != openflow.ETH_TYPE_ARP {
			return badPrereq(header, strict)
		}
		mask := binary.BigEndian.Uint32(payload[4:8])
		flow.NWSrc = binary.BigEndian.Uint32(payload[0:4]) & mask
		wc.NWSrcMask = mask
	case NXM_OF_ARP_TPA, OXM_OF_ARP_TPA:
		if flow.DLType != openflow.ETH_TYPE_ARP {
			return badPrereq(header, strict)
		}
		flow.NWDst = binary.BigEndian.Uint32(payload)
		wc.NWDstMask = 0xffffffff
	case NXM_OF_ARP_TPA_W, OXM_OF_ARP_TPA_W:
		if flow.DLType != openflow.ETH_TYPE_ARP {
			return badPrereq(header, strict)
		}
		mask := binary.BigEndian.Uint32(payload[4:8])
		flow.NWDst = binary.BigEndian.Uint32(payload[0:4]) & mask
		wc.NWDstMask = mask

	case NXM_NX_ARP_SHA, OXM_OF_ARP_SHA:
		if flow.DLType != openflow.ETH_TYPE_ARP {
			return badPrereq(header, strict)
		}
		flow.ARPSHA = ethAddr(payload)
		wc.Flags &^= openflow.FWW_ARP_SHA
	case NXM_NX_ARP_THA, OXM_OF_ARP_THA:
		if flow.DLType != openflow.ETH_TYPE_ARP {
			return badPrereq(header, strict)
		}
		flow.ARPTHA = ethAddr(payload)
		wc.Flags &^= openflow.FWW_ARP_THA

	case NXM_NX_IPV6_SRC, OXM_OF_IPV6_SRC:
		if flow.DLType != openflow.ETH_TYPE_IPV6 {
			return badPrereq(header, strict)
		}
		flow.IPv6Src = ipv6Addr(payload)
		wc.IPv6SrcMask = exactIPv6
	case NXM_NX_IPV6_SRC_W, OXM_OF_IPV6_SRC_W:
		if flow.DLType != openflow.ETH_TYPE_IPV6 {
			return badPrereq(header, strict)
		}
		mask := ipv6Addr(payload[16:32])
		flow.IPv6Src = ipv6Addr(payload[0:16]).Mask(mask)
		wc.IPv6SrcMask = mask
	case NXM_NX_IPV6_DST, OXM_OF_IPV6_DST:
		if flow.DLType != openflow.ETH_TYPE_IPV6 {
			return badPrereq(header, strict)
		}
		flow.IPv6Dst = ipv6Addr(payload)
		wc.IPv6DstMask = exactIPv6
	case NXM_NX_IPV6_DST_W, OXM_OF_IPV6_DST_W:
		if flow.DLType != openflow.ETH_TYPE_IPV6 {
			return badPrereq(header, strict)
		}
		mask := ipv6Addr(payload[16:32])
		flow.IPv6Dst = ipv6Addr(payload[0:16]).Mask(mask)
		wc.IPv6DstMask = mask

	case NXM_NX_IPV6_LABEL, OXM_OF_IPV6_FLABEL:
		if flow.DLType != openflow.ETH_TYPE_IPV6 {
			return badPrereq(header, strict)
		}
		v := binary.BigEndian.Uint32(payload)
		if v&^0x000fffff != 0 {
			return badValue(header)
		}
		flow.IPv6Label = v
		wc.Flags &^= openflow.FWW_IPV6_LABEL

	case NXM_NX_ICMPV6_TYPE, OXM_OF_ICMPV6_TYPE:
		if !isICMPv6(flow) {
			return badPrereq(header, strict)
		}
		flow.TPSrc = uint16(payload[0])
		wc.TPSrcMask = 0xffff
	case NXM_NX_ICMPV6_CODE, OXM_OF_ICMPV6_CODE:
		if !isICMPv6(flow) {
			return badPrereq(header, strict)
		}
		flow.TPDst = uint16(payload[0])
		wc.TPDstMask = 0xffff

	case NXM_NX_ND_TARGET, OXM_OF_IPV6_ND_TARGET:
		if !isND(rule) {
			return badPrereq(header, strict)
		}
		flow.NDTarget = ipv6Addr(payload)
		wc.NDTargetMask = exactIPv6
	case NXM_NX_ND_TARGET_W:
		if !isND(rule) {
			return badPrereq(header, strict)
		}
		mask := ipv6Addr(payload[16:32])
		flow.NDTarget = ipv6Addr(payload[0:16]).Mask(mask)
		wc.NDTargetMask = mask

	case NXM_NX_ND_SLL, OXM_OF_IPV6_ND_SLL:
		if !isND(rule) || flow.TPSrc != openflow.ND_NEIGHBOR_SOLICIT {
			return badPrereq(header, strict)
		}
		flow.ARPSHA = ethAddr(payload)
		wc.Flags &^= openflow.FWW_ARP_SHA
	case NXM_NX_ND_TLL, OXM_OF_IPV6_ND_TLL:
		if !isND(rule) || flow.TPSrc != openflow.ND_NEIGHBOR_ADVERT {
			return badPrereq(header, strict)
		}
		flow.ARPTHA = ethAddr(payload)
		wc.Flags &^= openflow.FWW_ARP_THA

	case NXM_NX_IP_FRAG:
		if !isIPAny(flow) {
			return badPrereq(header, strict)
		}
		flow.NWFrag = payload[0] & openflow.FLOW_NW_FRAG_MASK
		wc.NWFragMask = 0xff
	case NXM_NX_IP_FRAG_W:
		if !isIPAny(flow) {
			return badPrereq(header, strict)
		}
		flow.NWFrag = payload[0] & payload[1] & openflow.FLOW_NW_FRAG_MASK
		wc.NWFragMask = payload[1]

	case NXM_NX_TUN_ID:
		flow.TunID = binary.BigEndian.Uint64(payload)
		wc.TunIDMask = 0xffffffffffffffff
	case NXM_NX_TUN_ID_W:
		mask := binary.BigEndian.Uint64(payload[8:16])
		flow.TunID = binary.BigEndian.Uint64(payload[0:8]) & mask
		wc.TunIDMask = mask

	case NXM_NX_COOKIE:
		if cookie == nil {
			return disallowedEntry(header, strict)
		}
		*cookie = binary.BigEndian.Uint64(payload)
		*cookieMask = 0xffffffffffffffff
	case NXM_NX_COOKIE_W:
		if cookie == nil {
			return disallowedEntry(header, strict)
		}
		*cookieMask = binary.BigEndian.Uint64(payload[8:16])
		*cookie = binary.BigEndian.Uint64(payload[0:8]) & *cookieMask

	case NXM_NX_MPLS_LABEL, OXM_OF_MPLS_LABEL:
		if !isMPLS(flow) {
			return badPrereq(header, strict)
		}
		v := binary.BigEndian.Uint32(payload)
		if v&^0x000fffff != 0 {
			return badValue(header)
		}
		flow.MPLSLabel = v
		wc.Flags &^= openflow.FWW_MPLS_LABEL
	case NXM_NX_MPLS_TC, OXM_OF_MPLS_TC:
		if !isMPLS(flow) {
			return badPrereq(header, strict)
		}
		if payload[0] > 7 {
			return badValue(header)
		}
		flow.MPLSTC = payload[0]
		wc.Flags &^= openflow.FWW_MPLS_TC
	case NXM_NX_MPLS_STACK:
		if !isMPLS(flow) {
			return badPrereq(header, strict)
		}
		if payload[0] > 1 {
			return badValue(header)
		}
		flow.MPLSStack = payload[0]
		wc.Flags &^= openflow.FWW_MPLS_STACK

	case NXM_NX_VLAN_TPID:
		flow.VLANTPID = binary.BigEndian.Uint16(payload)
		wc.Flags &^= openflow.FWW_VLAN_TPID

	case NXM_NX_QINQ_TCI:
		flow.QinQTCI = binary.BigEndian.Uint16(payload)
		wc.Flags &^= openflow.FWW_VLAN_QINQ_VID | openflow.FWW_VLAN_QINQ_PCP
	case NXM_NX_QINQ_TCI_W:
		mask := binary.BigEndian.Uint16(payload[2:4])
		flow.QinQTCI = binary.BigEndian.Uint16(payload[0:2]) & mask
		if mask&(openflow.VLAN_VID_MASK|openflow.VLAN_CFI) != 0 {
			wc.Flags &^= openflow.FWW_VLAN_QINQ_VID
		}
		if mask&openflow.VLAN_PCP_MASK != 0 {
			wc.Flags &^= openflow.FWW_VLAN_QINQ_PCP
		}

	default:
		return unknownEntry(header, strict)
	}

	return nil
}

func unknownEntry(header uint32, strict bool) error {
	if strict {
		return errors.Wrapf(openflow.ErrBadNXM, "unknown nxm_entry %#08x", header)
	}
	diag.Warningf("unknown", "skipping unknown nxm_entry %#08x", header)

	return nil
}

func disallowedEntry(header uint32, strict bool) error {
	if strict {
		return errors.Wrapf(openflow.ErrBadNXM, "nxm_entry %#08x is not allowed here", header)
	}
	diag.Warningf("disallowed", "skipping nxm_entry %#08x, which is not allowed here", header)

	return nil
}
