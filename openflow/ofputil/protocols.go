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

import "github.com/mazizi/openvswitch/openflow"

func regsFullyWildcarded(wc *openflow.Wildcards) bool {
	for _, mask := range wc.RegMasks {
		if mask != 0 {
			return false
		}
	}

	return true
}

// UsableProtocols returns the set of protocols that can carry rule to a
// switch, e.g. in a flow addition or removal. Only NXM can handle tunnel
// IDs, registers and the other extension fields; otherwise OpenFlow 1.0 is
// kept available for backward compatibility. The result always has at least
// one bit set.
func UsableProtocols(rule *openflow.Rule) openflow.Protocol {
	wc := &rule.Wildcards

	// NXM and OF1.1+ support bitwise matching on ethernet addresses.
	if !wc.DLSrcMask.IsExact() && !wc.DLSrcMask.IsZero() {
		return openflow.P_NXM_ANY
	}
	if !wc.DLDstMask.IsExact() && !wc.DLDstMask.IsZero() {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching ARP hardware addresses.
	if wc.Flags&openflow.FWW_ARP_SHA == 0 || wc.Flags&openflow.FWW_ARP_THA == 0 {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching IPv6 traffic.
	if wc.Flags&openflow.FWW_DL_TYPE == 0 && rule.Flow.DLType == openflow.ETH_TYPE_IPV6 {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching registers.
	if !regsFullyWildcarded(wc) {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching tun_id.
	if wc.TunIDMask != 0 {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching fragments.
	if wc.NWFragMask != 0 {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching the IPv6 flow label.
	if wc.Flags&openflow.FWW_IPV6_LABEL == 0 {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching IP ECN bits.
	if wc.Flags&openflow.FWW_NW_ECN == 0 {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching the IP TTL/hop limit.
	if wc.Flags&openflow.FWW_NW_TTL == 0 {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports non-CIDR IPv4 address masks.
	if !openflow.IsCIDRMask(wc.NWSrcMask) || !openflow.IsCIDRMask(wc.NWDstMask) {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports bitwise matching on transport ports.
	if (wc.TPSrcMask != 0 && wc.TPSrcMask != 0xffff) ||
		(wc.TPDstMask != 0 && wc.TPDstMask != 0xffff) {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching the MPLS label, tc and stack bit.
	if wc.Flags&openflow.FWW_MPLS_LABEL == 0 {
		return openflow.P_NXM_ANY
	}
	if wc.Flags&openflow.FWW_MPLS_TC == 0 {
		return openflow.P_NXM_ANY
	}
	if wc.Flags&openflow.FWW_MPLS_STACK == 0 {
		return openflow.P_NXM_ANY
	}

	// Only NXM supports matching the VLAN TPID and the QinQ tag.
	if wc.Flags&openflow.FWW_VLAN_TPID == 0 {
		return openflow.P_NXM_ANY
	}
	if wc.Flags&openflow.FWW_VLAN_QINQ_VID == 0 {
		return openflow.P_NXM_ANY
	}
	if wc.Flags&openflow.FWW_VLAN_QINQ_PCP == 0 {
		return openflow.P_NXM_ANY
	}

	// Other formats can express this rule.
	return openflow.P_ANY
}

func usableProtocolsWithAction(a openflow.Action) openflow.Protocol {
	protocols := openflow.P_ANY | openflow.P_TID
	if a.Instruction() {
		protocols &= openflow.P_NXM_ANY | openflow.P_OF12
	}
	switch a.Type() {
	case openflow.OFPACT_APPLY_ACTIONS, openflow.OFPACT_WRITE_ACTIONS:
		if nested, ok := a.(openflow.NestedActions); ok {
			protocols &= UsableProtocolsWithActions(nested.Actions())
		}

	case openflow.OFPACT_CLEAR_ACTIONS:

	case openflow.OFPACT_RESUBMIT:
		if a.Instruction() {
			protocols &= openflow.P_OF12
			break
		}
		protocols &= openflow.P_NXM_ANY | openflow.P_OF12

	case openflow.OFPACT_SET_FIELD:
		protocols &= openflow.P_OF12

	case openflow.OFPACT_REG_LOAD:
		protocols &= openflow.P_NXM_ANY | openflow.P_OF12

	case openflow.OFPACT_OUTPUT, openflow.OFPACT_ENQUEUE,
		openflow.OFPACT_SET_VLAN_VID, openflow.OFPACT_SET_VLAN_PCP,
		openflow.OFPACT_STRIP_VLAN,
		openflow.OFPACT_SET_ETH_SRC, openflow.OFPACT_SET_ETH_DST,
		openflow.OFPACT_SET_IPV4_SRC, openflow.OFPACT_SET_IPV4_DST,
		openflow.OFPACT_SET_IPV4_DSCP:

	case openflow.OFPACT_COPY_TTL_OUT, openflow.OFPACT_COPY_TTL_IN,
		openflow.OFPACT_POP_VLAN:
		protocols &= openflow.P_OF12

	case openflow.OFPACT_PUSH_MPLS, openflow.OFPACT_POP_MPLS,
		openflow.OFPACT_PUSH_VLAN,
		openflow.OFPACT_SET_MPLS_LABEL, openflow.OFPACT_SET_MPLS_TC,
		openflow.OFPACT_SET_MPLS_TTL, openflow.OFPACT_DEC_MPLS_TTL:
		protocols &= openflow.P_OF12 | openflow.P_NXM_ANY

	case openflow.OFPACT_SET_L4_SRC_PORT, openflow.OFPACT_SET_L4_DST_PORT:
		// OF12 cannot express these.
		protocols &= openflow.P_OF10 | openflow.P_NXM_ANY

	case openflow.OFPACT_CONTROLLER, openflow.OFPACT_OUTPUT_REG,
		openflow.OFPACT_BUNDLE, openflow.OFPACT_REG_MOVE,
		openflow.OFPACT_DEC_TTL, openflow.OFPACT_SET_TUNNEL,
		openflow.OFPACT_SET_QUEUE, openflow.OFPACT_POP_QUEUE,
		openflow.OFPACT_FIN_TIMEOUT, openflow.OFPACT_LEARN,
		openflow.OFPACT_MULTIPATH, openflow.OFPACT_AUTOPATH,
		openflow.OFPACT_NOTE, openflow.OFPACT_EXIT:
		protocols &= openflow.P_NXM_ANY | openflow.P_OF12
	}

	return protocols
}

// UsableProtocolsWithActions returns the set of protocols that can carry the
// given action list. Raw action lists impose no restriction because their
// contents are not interpreted.
func UsableProtocolsWithActions(actions openflow.ActionList) openflow.Protocol {
	protocols := openflow.P_ANY
	for _, a := range actions {
		protocols &= usableProtocolsWithAction(a)
	}

	return protocols
}

// FlowModUsableProtocols returns the set of protocols that can accurately
// carry every flow modification in fms. The result always has at least one
// bit set.
func FlowModUsableProtocols(fms []*FlowMod) openflow.Protocol {
	usable := openflow.P_ANY
	for _, fm := range fms {
		usable &= UsableProtocols(&fm.Rule)
		if fm.TableID != 0xff {
			usable &= openflow.P_TID
		}

		// Matching on the cookie is only supported through NXM.
		if fm.CookieMask != 0 {
			usable &= openflow.P_NXM_ANY
		}

		usable |= openflow.P_OF12
		usable &= UsableProtocolsWithActions(fm.Actions)
	}

	return usable
}
