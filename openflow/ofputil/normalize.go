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
	"github.com/davecgh/go-spew/spew"

	"github.com/mazizi/openvswitch/openflow"
)

// NormalizeRule drops the parts of a rule that make no sense together, so
// that two rules that can never be told apart by a packet compare equal:
//
//  1. If the type of a protocol level is known, only the fields valid for
//     that level stay matched. ARP has no TOS field, so nw_tos is wildcarded
//     in an ARP rule, and an IPv4 rule cannot keep IPv6 addresses.
//
//  2. If the type of a protocol level is unknown, no field of that level
//     stays matched at all. SCTP is not parsed as an L4 protocol here, so
//     tp_src and tp_dst are wildcarded in an SCTP rule.
//
// When normalization changes the rule, the change is logged at a limited
// rate and the wildcarded field values are zeroed.
func (r *Codec) NormalizeRule(rule *openflow.Rule) {
	const (
		mayNWAddr = 1 << iota // nw_src, nw_dst
		mayTPAddr             // tp_src, tp_dst
		mayNWProto
		mayIPvx // tos, frag, ttl
		mayARPSHA
		mayARPTHA
		mayIPv6 // ipv6_src, ipv6_dst, ipv6_label
		mayNDTarget
		mayMPLS // mpls label, tc and stack
		mayVLANQinQ
	)

	// Figure out what fields may be matched.
	var mayMatch uint
	switch {
	case rule.Flow.DLType == openflow.ETH_TYPE_IP:
		mayMatch = mayNWProto | mayIPvx | mayNWAddr
		switch rule.Flow.NWProto {
		case openflow.IPPROTO_TCP, openflow.IPPROTO_UDP, openflow.IPPROTO_ICMP:
			mayMatch |= mayTPAddr
		}
	case rule.Flow.DLType == openflow.ETH_TYPE_IPV6:
		mayMatch = mayNWProto | mayIPvx | mayIPv6
		switch rule.Flow.NWProto {
		case openflow.IPPROTO_TCP, openflow.IPPROTO_UDP:
			mayMatch |= mayTPAddr
		case openflow.IPPROTO_ICMPV6:
			mayMatch |= mayTPAddr
			if rule.Flow.TPSrc == openflow.ND_NEIGHBOR_SOLICIT {
				mayMatch |= mayNDTarget | mayARPSHA
			} else if rule.Flow.TPSrc == openflow.ND_NEIGHBOR_ADVERT {
				mayMatch |= mayNDTarget | mayARPTHA
			}
		}
	case rule.Flow.DLType == openflow.ETH_TYPE_ARP:
		mayMatch = mayNWProto | mayNWAddr | mayARPSHA | mayARPTHA
	case rule.Flow.DLType == openflow.ETH_TYPE_MPLS || rule.Flow.DLType == openflow.ETH_TYPE_MPLS_MCAST:
		mayMatch = mayMPLS
	case (rule.Flow.VLANTPID == openflow.ETH_TYPE_VLAN || rule.Flow.VLANTPID == openflow.ETH_TYPE_VLAN_8021AD) &&
		rule.Flow.QinQTCI != 0:
		mayMatch = mayVLANQinQ
	}

	// Clear the fields that may not be matched.
	wc := rule.Wildcards
	if mayMatch&mayNWAddr == 0 {
		wc.NWSrcMask, wc.NWDstMask = 0, 0
	}
	if mayMatch&mayTPAddr == 0 {
		wc.TPSrcMask, wc.TPDstMask = 0, 0
	}
	if mayMatch&mayNWProto == 0 {
		wc.Flags |= openflow.FWW_NW_PROTO
	}
	if mayMatch&mayIPvx == 0 {
		wc.Flags |= openflow.FWW_NW_DSCP
		wc.Flags |= openflow.FWW_NW_ECN
		wc.Flags |= openflow.FWW_NW_TTL
	}
	if mayMatch&mayARPSHA == 0 {
		wc.Flags |= openflow.FWW_ARP_SHA
	}
	if mayMatch&mayARPTHA == 0 {
		wc.Flags |= openflow.FWW_ARP_THA
	}
	if mayMatch&mayIPv6 == 0 {
		wc.IPv6SrcMask, wc.IPv6DstMask = openflow.IPv6Addr{}, openflow.IPv6Addr{}
		wc.Flags |= openflow.FWW_IPV6_LABEL
	}
	if mayMatch&mayNDTarget == 0 {
		wc.NDTargetMask = openflow.IPv6Addr{}
	}
	if mayMatch&mayMPLS == 0 {
		wc.Flags |= openflow.FWW_MPLS_LABEL
		wc.Flags |= openflow.FWW_MPLS_TC
		wc.Flags |= openflow.FWW_MPLS_STACK
	}

	// Log any changes.
	if wc != rule.Wildcards {
		log := r.diag.Allow("NormalizeRule")
		var pre string
		if log {
			pre = spew.Sprintf("%+v", *rule)
		}

		rule.Wildcards = wc
		rule.ZeroWildcardedFields()

		if log {
			logger := r.diag.Logger()
			logger.Infof("normalization changed ofp_match, details:")
			logger.Infof(" pre: %s", pre)
			logger.Infof("post: %s", spew.Sprintf("%+v", *rule))
		}
	}
}
