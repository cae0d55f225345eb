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

package of10

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
)

// Match is the version 1.0 flow match structure.
type Match struct {
	Wildcards uint32
	InPort    uint16
	DLSrc     openflow.EthAddr
	DLDst     openflow.EthAddr
	DLVLAN    uint16
	DLVLANPCP uint8
	DLType    uint16
	NWTOS     uint8
	NWProto   uint8
	NWSrc     uint32
	NWDst     uint32
	TPSrc     uint16
	TPDst     uint16
}

func (r *Match) UnmarshalBinary(data []byte) error {
	if len(data) < MatchLen {
		return errors.Wrap(openflow.ErrBadLength, "truncated ofp_match")
	}
	r.Wildcards = binary.BigEndian.Uint32(data[0:4])
	r.InPort = binary.BigEndian.Uint16(data[4:6])
	copy(r.DLSrc[:], data[6:12])
	copy(r.DLDst[:], data[12:18])
	r.DLVLAN = binary.BigEndian.Uint16(data[18:20])
	r.DLVLANPCP = data[20]
	// data[21] is padding
	r.DLType = binary.BigEndian.Uint16(data[22:24])
	r.NWTOS = data[24]
	r.NWProto = data[25]
	// data[26:28] is padding
	r.NWSrc = binary.BigEndian.Uint32(data[28:32])
	r.NWDst = binary.BigEndian.Uint32(data[32:36])
	r.TPSrc = binary.BigEndian.Uint16(data[36:38])
	r.TPDst = binary.BigEndian.Uint16(data[38:40])

	return nil
}

func (r *Match) MarshalBinary() ([]byte, error) {
	data := make([]byte, MatchLen)
	binary.BigEndian.PutUint32(data[0:4], r.Wildcards)
	binary.BigEndian.PutUint16(data[4:6], r.InPort)
	copy(data[6:12], r.DLSrc[:])
	copy(data[12:18], r.DLDst[:])
	binary.BigEndian.PutUint16(data[18:20], r.DLVLAN)
	data[20] = r.DLVLANPCP
	binary.BigEndian.PutUint16(data[22:24], r.DLType)
	data[24] = r.NWTOS
	data[25] = r.NWProto
	binary.BigEndian.PutUint32(data[28:32], r.NWSrc)
	binary.BigEndian.PutUint32(data[32:36], r.NWDst)
	binary.BigEndian.PutUint16(data[36:38], r.TPSrc)
	binary.BigEndian.PutUint16(data[38:40], r.TPDst)

	return data, nil
}

// WildcardsFromOFPFW translates version 1.0 wildcard bits into flow
// wildcards. Fields that have no 1.0 representation stay wildcarded.
func WildcardsFromOFPFW(ofpfw uint32) openflow.Wildcards {
	wc := openflow.CatchallWildcards()

	if ofpfw&OFPFW_IN_PORT == 0 {
		wc.Flags &^= openflow.FWW_IN_PORT
	}
	if ofpfw&OFPFW_DL_TYPE == 0 {
		wc.Flags &^= openflow.FWW_DL_TYPE
	}
	if ofpfw&OFPFW_NW_PROTO == 0 {
		wc.Flags &^= openflow.FWW_NW_PROTO
	}
	if ofpfw&OFPFW_NW_TOS == 0 {
		wc.Flags &^= openflow.FWW_NW_DSCP
	}

	wc.NWSrcMask = openflow.WcBitsToNetmask(ofpfw >> OFPFW_NW_SRC_SHIFT)
	wc.NWDstMask = openflow.WcBitsToNetmask(ofpfw >> OFPFW_NW_DST_SHIFT)

	if ofpfw&OFPFW_TP_SRC == 0 {
		wc.TPSrcMask = 0xffff
	}
	if ofpfw&OFPFW_TP_DST == 0 {
		wc.TPDstMask = 0xffff
	}
	if ofpfw&OFPFW_DL_SRC == 0 {
		wc.DLSrcMask = openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	}
	if ofpfw&OFPFW_DL_DST == 0 {
		wc.DLDstMask = openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	}

	// The two VLAN wildcard bits build up one TCI mask. Either one also
	// makes the CFI significant.
	if ofpfw&OFPFW_DL_VLAN_PCP == 0 {
		wc.VLANTCIMask |= openflow.VLAN_PCP_MASK | openflow.VLAN_CFI
	}
	if ofpfw&OFPFW_DL_VLAN == 0 {
		wc.VLANTCIMask |= openflow.VLAN_VID_MASK | openflow.VLAN_CFI
	}

	return wc
}

// RuleFromMatch converts a version 1.0 match into a rule. An exact match
// gets the maximum priority no matter what priority says, because 1.0
// switches ignore the priority of exact matches.
func RuleFromMatch(m *Match, priority uint16) openflow.Rule {
	ofpfw := m.Wildcards & OFPFW_ALL

	var rule openflow.Rule
	if ofpfw == 0 {
		rule.Priority = 0xffff
	} else {
		rule.Priority = priority
	}
	rule.Wildcards = WildcardsFromOFPFW(ofpfw)

	rule.Flow.NWSrc = m.NWSrc
	rule.Flow.NWDst = m.NWDst
	rule.Flow.InPort = m.InPort
	rule.Flow.DLType = openflow.DLTypeFromOpenflow(m.DLType)
	rule.Flow.TPSrc = m.TPSrc
	rule.Flow.TPDst = m.TPDst
	rule.Flow.DLSrc = m.DLSrc
	rule.Flow.DLDst = m.DLDst
	rule.Flow.NWTOS = m.NWTOS & openflow.IP_DSCP_MASK
	rule.Flow.NWProto = m.NWProto

	if ofpfw&OFPFW_DL_VLAN == 0 && m.DLVLAN == openflow.OFP_VLAN_NONE {
		// Match only packets without an 802.1Q header.
		rule.Flow.VLANTCI = 0
		rule.Wildcards.VLANTCIMask = 0xffff
	} else {
		vid := m.DLVLAN & openflow.VLAN_VID_MASK
		pcp := uint16(m.DLVLANPCP) << openflow.VLAN_PCP_SHIFT & openflow.VLAN_PCP_MASK
		rule.Flow.VLANTCI = (vid | pcp | openflow.VLAN_CFI) & rule.Wildcards.VLANTCIMask
	}

	rule.ZeroWildcardedFields()

	return rule
}

// MatchFromRule converts a rule into a version 1.0 match, losing whatever
// the 1.0 match cannot express.
func MatchFromRule(rule *openflow.Rule) Match {
	wc := &rule.Wildcards

	var ofpfw uint32
	if wc.Flags&openflow.FWW_IN_PORT != 0 {
		ofpfw |= OFPFW_IN_PORT
	}
	if wc.Flags&openflow.FWW_DL_TYPE != 0 {
		ofpfw |= OFPFW_DL_TYPE
	}
	if wc.Flags&openflow.FWW_NW_PROTO != 0 {
		ofpfw |= OFPFW_NW_PROTO
	}
	ofpfw |= openflow.NetmaskToWcBits(wc.NWSrcMask) << OFPFW_NW_SRC_SHIFT
	ofpfw |= openflow.NetmaskToWcBits(wc.NWDstMask) << OFPFW_NW_DST_SHIFT
	if wc.Flags&openflow.FWW_NW_DSCP != 0 {
		ofpfw |= OFPFW_NW_TOS
	}
	if wc.TPSrcMask == 0 {
		ofpfw |= OFPFW_TP_SRC
	}
	if wc.TPDstMask == 0 {
		ofpfw |= OFPFW_TP_DST
	}
	if wc.DLSrcMask.IsZero() {
		ofpfw |= OFPFW_DL_SRC
	}
	if wc.DLDstMask.IsZero() {
		ofpfw |= OFPFW_DL_DST
	}

	var m Match
	if wc.VLANTCIMask == 0 {
		ofpfw |= OFPFW_DL_VLAN | OFPFW_DL_VLAN_PCP
	} else if wc.VLANTCIMask&openflow.VLAN_CFI != 0 && rule.Flow.VLANTCI&openflow.VLAN_CFI == 0 {
		// Match only packets without an 802.1Q header.
		m.DLVLAN = openflow.OFP_VLAN_NONE
	} else {
		if wc.VLANTCIMask&openflow.VLAN_VID_MASK == 0 {
			ofpfw |= OFPFW_DL_VLAN
		} else {
			m.DLVLAN = rule.Flow.VLANTCI & openflow.VLAN_VID_MASK
		}
		if wc.VLANTCIMask&openflow.VLAN_PCP_MASK == 0 {
			ofpfw |= OFPFW_DL_VLAN_PCP
		} else {
			m.DLVLANPCP = uint8(rule.Flow.VLANTCI & openflow.VLAN_PCP_MASK >> openflow.VLAN_PCP_SHIFT)
		}
	}

	m.Wildcards = ofpfw
	m.InPort = rule.Flow.InPort
	m.DLSrc = rule.Flow.DLSrc
	m.DLDst = rule.Flow.DLDst
	m.DLType = openflow.DLTypeToOpenflow(rule.Flow.DLType)
	m.NWSrc = rule.Flow.NWSrc
	m.NWDst = rule.Flow.NWDst
	m.NWTOS = rule.Flow.NWTOS & openflow.IP_DSCP_MASK
	m.NWProto = rule.Flow.NWProto
	m.TPSrc = rule.Flow.TPSrc
	m.TPDst = rule.Flow.TPDst

	return m
}
