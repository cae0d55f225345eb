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

// Rule is a matching rule: a flow, the wildcards that say which parts of it
// matter, and a priority to break ties between overlapping rules.
//
// Rule is comparable, so two rules match the same packets at the same
// priority exactly when they are == after ZeroWildcardedFields.
type Rule struct {
	Flow      Flow
	Wildcards Wildcards
	Priority  uint16
}

// CatchallRule returns a rule that matches every packet at the given
// priority.
func CatchallRule(priority uint16) Rule {
	return Rule{Wildcards: CatchallWildcards(), Priority: priority}
}

// SetDLVLAN updates the rule to match the given 802.1Q VLAN ID. The value
// OFP_VLAN_NONE means packets without any 802.1Q header.
func (r *Rule) SetDLVLAN(dlVLAN uint16) {
	if dlVLAN == OFP_VLAN_NONE {
		r.Flow.VLANTCI = 0
		r.Wildcards.VLANTCIMask = 0xffff
	} else {
		r.Flow.VLANTCI &^= VLAN_VID_MASK | VLAN_CFI
		r.Flow.VLANTCI |= dlVLAN&VLAN_VID_MASK | VLAN_CFI
		r.Wildcards.VLANTCIMask |= VLAN_VID_MASK | VLAN_CFI
	}
}

// SetDLVLANPCP updates the rule to match the given 802.1Q priority on tagged
// packets, leaving the VLAN ID part of the match alone.
func (r *Rule) SetDLVLANPCP(pcp uint8) {
	r.Flow.VLANTCI &^= VLAN_PCP_MASK
	r.Flow.VLANTCI |= uint16(pcp)<<VLAN_PCP_SHIFT | VLAN_CFI
	r.Wildcards.VLANTCIMask |= VLAN_PCP_MASK | VLAN_CFI
}

// ZeroWildcardedFields clears every flow bit the wildcards exclude from
// matching, putting the rule into the canonical form where rules that match
// the same packets compare equal.
func (r *Rule) ZeroWildcardedFields() {
	flow, wc := &r.Flow, &r.Wildcards

	flow.TunID &= wc.TunIDMask
	flow.NWSrc &= wc.NWSrcMask
	flow.NWDst &= wc.NWDstMask
	for i := range flow.Regs {
		flow.Regs[i] &= wc.RegMasks[i]
	}
	if wc.Flags&FWW_IN_PORT != 0 {
		flow.InPort = 0
	}
	flow.VLANTCI &= wc.VLANTCIMask
	if wc.Flags&FWW_DL_TYPE != 0 {
		flow.DLType = 0
	}
	flow.TPSrc &= wc.TPSrcMask
	flow.TPDst &= wc.TPDstMask
	flow.DLSrc = flow.DLSrc.Mask(wc.DLSrcMask)
	flow.DLDst = flow.DLDst.Mask(wc.DLDstMask)
	if wc.Flags&FWW_NW_PROTO != 0 {
		flow.NWProto = 0
	}
	if wc.Flags&FWW_NW_DSCP != 0 {
		flow.NWTOS &= ^uint8(IP_DSCP_MASK)
	}
	if wc.Flags&FWW_NW_ECN != 0 {
		flow.NWTOS &= ^uint8(IP_ECN_MASK)
	}
	if wc.Flags&FWW_NW_TTL != 0 {
		flow.NWTTL = 0
	}
	flow.NWFrag &= wc.NWFragMask
	if wc.Flags&FWW_ARP_SHA != 0 {
		flow.ARPSHA = EthAddr{}
	}
	if wc.Flags&FWW_ARP_THA != 0 {
		flow.ARPTHA = EthAddr{}
	}
	flow.IPv6Src = flow.IPv6Src.Mask(wc.IPv6SrcMask)
	flow.IPv6Dst = flow.IPv6Dst.Mask(wc.IPv6DstMask)
	if wc.Flags&FWW_IPV6_LABEL != 0 {
		flow.IPv6Label = 0
	}
	flow.NDTarget = flow.NDTarget.Mask(wc.NDTargetMask)
	if wc.Flags&FWW_MPLS_LABEL != 0 {
		flow.MPLSLabel = 0
	}
	if wc.Flags&FWW_MPLS_TC != 0 {
		flow.MPLSTC = 0
	}
	if wc.Flags&FWW_MPLS_STACK != 0 {
		flow.MPLSStack = 0
	}
	if wc.Flags&FWW_VLAN_TPID != 0 {
		flow.VLANTPID = 0
	}
	if wc.Flags&FWW_VLAN_QINQ_VID != 0 {
		flow.QinQTCI &= VLAN_PCP_MASK
	}
	if wc.Flags&FWW_VLAN_QINQ_PCP != 0 {
		flow.QinQTCI &= VLAN_VID_MASK | VLAN_CFI
	}
}
