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
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
)

// Match is the version 1.1 standard match structure, without its four byte
// ofp_match_header.
type Match struct {
	InPort       uint32
	Wildcards    uint32
	DLSrc        openflow.EthAddr
	DLSrcMask    openflow.EthAddr
	DLDst        openflow.EthAddr
	DLDstMask    openflow.EthAddr
	DLVLAN       uint16
	DLVLANPCP    uint8
	DLType       uint16
	NWTOS        uint8
	NWProto      uint8
	NWSrc        uint32
	NWSrcMask    uint32
	NWDst        uint32
	NWDstMask    uint32
	TPSrc        uint16
	TPDst        uint16
	MPLSLabel    uint32
	MPLSTC       uint8
	Metadata     uint64
	MetadataMask uint64
}

// UnmarshalBinary reads a standard match including its header. The caller
// has already checked that the header says OFPMT_STANDARD.
func (r *Match) UnmarshalBinary(data []byte) error {
	if len(data) < StdMatchLen {
		return errors.Wrap(openflow.ErrBadLength, "truncated ofp11_match")
	}
	r.InPort = binary.BigEndian.Uint32(data[4:8])
	r.Wildcards = binary.BigEndian.Uint32(data[8:12])
	copy(r.DLSrc[:], data[12:18])
	copy(r.DLSrcMask[:], data[18:24])
	copy(r.DLDst[:], data[24:30])
	copy(r.DLDstMask[:], data[30:36])
	r.DLVLAN = binary.BigEndian.Uint16(data[36:38])
	r.DLVLANPCP = data[38]
	// data[39] is padding
	r.DLType = binary.BigEndian.Uint16(data[40:42])
	r.NWTOS = data[42]
	r.NWProto = data[43]
	r.NWSrc = binary.BigEndian.Uint32(data[44:48])
	r.NWSrcMask = binary.BigEndian.Uint32(data[48:52])
	r.NWDst = binary.BigEndian.Uint32(data[52:56])
	r.NWDstMask = binary.BigEndian.Uint32(data[56:60])
	r.TPSrc = binary.BigEndian.Uint16(data[60:62])
	r.TPDst = binary.BigEndian.Uint16(data[62:64])
	r.MPLSLabel = binary.BigEndian.Uint32(data[64:68])
	r.MPLSTC = data[68]
	// data[69:72] is padding
	r.Metadata = binary.BigEndian.Uint64(data[72:80])
	r.MetadataMask = binary.BigEndian.Uint64(data[80:88])

	return nil
}

func (r *Match) MarshalBinary() ([]byte, error) {
	data := make([]byte, StdMatchLen)
	binary.BigEndian.PutUint16(data[0:2], OFPMT_STANDARD)
	binary.BigEndian.PutUint16(data[2:4], StdMatchLen)
	binary.BigEndian.PutUint32(data[4:8], r.InPort)
	binary.BigEndian.PutUint32(data[8:12], r.Wildcards)
	copy(data[12:18], r.DLSrc[:])
	copy(data[18:24], r.DLSrcMask[:])
	copy(data[24:30], r.DLDst[:])
	copy(data[30:36], r.DLDstMask[:])
	binary.BigEndian.PutUint16(data[36:38], r.DLVLAN)
	data[38] = r.DLVLANPCP
	binary.BigEndian.PutUint16(data[40:42], r.DLType)
	data[42] = r.NWTOS
	data[43] = r.NWProto
	binary.BigEndian.PutUint32(data[44:48], r.NWSrc)
	binary.BigEndian.PutUint32(data[48:52], r.NWSrcMask)
	binary.BigEndian.PutUint32(data[52:56], r.NWDst)
	binary.BigEndian.PutUint32(data[56:60], r.NWDstMask)
	binary.BigEndian.PutUint16(data[60:62], r.TPSrc)
	binary.BigEndian.PutUint16(data[62:64], r.TPDst)
	binary.BigEndian.PutUint32(data[64:68], r.MPLSLabel)
	data[68] = r.MPLSTC
	binary.BigEndian.PutUint64(data[72:80], r.Metadata)
	binary.BigEndian.PutUint64(data[80:88], r.MetadataMask)

	return data, nil
}

func invertEthMask(mask openflow.EthAddr) openflow.EthAddr {
	var inv openflow.EthAddr
	for i := range mask {
		inv[i] = ^mask[i]
	}

	return inv
}

// RuleFromMatch converts a version 1.1 standard match into a rule. The wire
// format inverts its bitwise masks relative to the flow model: a wire 1-bit
// means ignore.
func RuleFromMatch(m *Match, priority uint16) (openflow.Rule, error) {
	wc := m.Wildcards
	rule := openflow.CatchallRule(priority)

	if wc&OFPFW_IN_PORT == 0 {
		port, err := openflow.PortFromOFP11(m.InPort)
		if err != nil {
			return rule, errors.Wrapf(openflow.ErrBadValue, "in_port %d", m.InPort)
		}
		rule.Flow.InPort = port
		rule.Wildcards.Flags &^= openflow.FWW_IN_PORT
	}

	dlSrcMask := invertEthMask(m.DLSrcMask)
	rule.Flow.DLSrc = m.DLSrc.Mask(dlSrcMask)
	rule.Wildcards.DLSrcMask = dlSrcMask

	dlDstMask := invertEthMask(m.DLDstMask)
	rule.Flow.DLDst = m.DLDst.Mask(dlDstMask)
	rule.Wildcards.DLDstMask = dlDstMask

	if wc&OFPFW_DL_VLAN == 0 {
		if m.DLVLAN == OFPVID_NONE {
			// Match only packets without a VLAN tag.
			rule.Flow.VLANTCI = 0
			rule.Wildcards.VLANTCIMask = 0xffff
		} else {
			switch {
			case m.DLVLAN == OFPVID_ANY:
				// Match any tagged packet regardless of VID.
				rule.Flow.VLANTCI = openflow.VLAN_CFI
				rule.Wildcards.VLANTCIMask = openflow.VLAN_CFI
			case m.DLVLAN < 4096:
				rule.Flow.VLANTCI = openflow.VLAN_CFI | m.DLVLAN
				rule.Wildcards.VLANTCIMask = openflow.VLAN_CFI | openflow.VLAN_VID_MASK
			default:
				return rule, errors.Wrapf(openflow.ErrBadValue, "VLAN ID %d", m.DLVLAN)
			}

			if wc&OFPFW_DL_VLAN_PCP == 0 {
				if m.DLVLANPCP > 7 {
					return rule, errors.Wrapf(openflow.ErrBadValue, "VLAN PCP %d", m.DLVLANPCP)
				}
				rule.Flow.VLANTCI |= uint16(m.DLVLANPCP) << openflow.VLAN_PCP_SHIFT
				rule.Wildcards.VLANTCIMask |= openflow.VLAN_PCP_MASK
			}
		}
	}

	if wc&OFPFW_DL_TYPE == 0 {
		rule.Flow.DLType = openflow.DLTypeFromOpenflow(m.DLType)
		rule.Wildcards.Flags &^= openflow.FWW_DL_TYPE
	}

	ipv4 := rule.Flow.DLType == openflow.ETH_TYPE_IP
	arp := rule.Flow.DLType == openflow.ETH_TYPE_ARP

	if ipv4 && wc&OFPFW_NW_TOS == 0 {
		if m.NWTOS&^uint8(openflow.IP_DSCP_MASK) != 0 {
			return rule, errors.Wrapf(openflow.ErrBadValue, "nw_tos %#x", m.NWTOS)
		}
		rule.Flow.NWTOS = rule.Flow.NWTOS&^uint8(openflow.IP_DSCP_MASK) | m.NWTOS&openflow.IP_DSCP_MASK
		rule.Wildcards.Flags &^= openflow.FWW_NW_DSCP
	}

	if ipv4 || arp {
		if wc&OFPFW_NW_PROTO == 0 {
			rule.Flow.NWProto = m.NWProto
			rule.Wildcards.Flags &^= openflow.FWW_NW_PROTO
		}
		rule.Flow.NWSrc = m.NWSrc & ^m.NWSrcMask
		rule.Wildcards.NWSrcMask = ^m.NWSrcMask
		rule.Flow.NWDst = m.NWDst & ^m.NWDstMask
		rule.Wildcards.NWDstMask = ^m.NWDstMask
	}

	const tpAll = OFPFW_TP_SRC | OFPFW_TP_DST
	if ipv4 && wc&tpAll != tpAll {
		switch rule.Flow.NWProto {
		case openflow.IPPROTO_ICMP:
			// The 1.1 text says transport ports only apply to TCP, UDP
			// and SCTP, but dropping ICMP type and code matches would be
			// a regression from 1.0.
			if wc&OFPFW_TP_SRC == 0 {
				if m.TPSrc >= 0x100 {
					return rule, errors.Wrapf(openflow.ErrBadField, "ICMP type %d", m.TPSrc)
				}
				rule.Flow.TPSrc = m.TPSrc
				rule.Wildcards.TPSrcMask = 0xffff
			}
			if wc&OFPFW_TP_DST == 0 {
				if m.TPDst >= 0x100 {
					return rule, errors.Wrapf(openflow.ErrBadField, "ICMP code %d", m.TPDst)
				}
				rule.Flow.TPDst = m.TPDst
				rule.Wildcards.TPDstMask = 0xffff
			}

		case openflow.IPPROTO_TCP, openflow.IPPROTO_UDP:
			if wc&OFPFW_TP_SRC == 0 {
				rule.Flow.TPSrc = m.TPSrc
				rule.Wildcards.TPSrcMask = 0xffff
			}
			if wc&OFPFW_TP_DST == 0 {
				rule.Flow.TPDst = m.TPDst
				rule.Wildcards.TPDstMask = 0xffff
			}

		case openflow.IPPROTO_SCTP:
			return rule, errors.Wrap(openflow.ErrBadField, "SCTP ports")

		default:
			// The 1.1 text says explicitly to ignore the ports here.
		}
	}

	if rule.Flow.DLType == openflow.ETH_TYPE_MPLS ||
		rule.Flow.DLType == openflow.ETH_TYPE_MPLS_MCAST {
		const mplsAll = OFPFW_MPLS_LABEL | OFPFW_MPLS_TC
		if wc&mplsAll != mplsAll {
			return rule, errors.Wrap(openflow.ErrBadTag, "MPLS match")
		}
	}

	if m.MetadataMask != ^uint64(0) {
		// No flow field maps onto metadata yet.
		return rule, errors.Wrap(openflow.ErrBadField, "metadata match")
	}

	return rule, nil
}

// MatchFromRule converts a rule into a version 1.1 standard match, losing
// whatever the standard match cannot express.
func MatchFromRule(rule *openflow.Rule) Match {
	var m Match
	var wc uint32

	if rule.Wildcards.Flags&openflow.FWW_IN_PORT != 0 {
		wc |= OFPFW_IN_PORT
	} else {
		m.InPort = openflow.PortToOFP11(rule.Flow.InPort)
	}

	m.DLSrc = rule.Flow.DLSrc
	m.DLSrcMask = invertEthMask(rule.Wildcards.DLSrcMask)
	m.DLDst = rule.Flow.DLDst
	m.DLDstMask = invertEthMask(rule.Wildcards.DLDstMask)

	if rule.Wildcards.VLANTCIMask == 0 {
		wc |= OFPFW_DL_VLAN | OFPFW_DL_VLAN_PCP
	} else if rule.Wildcards.VLANTCIMask&openflow.VLAN_CFI != 0 &&
		rule.Flow.VLANTCI&openflow.VLAN_CFI == 0 {
		m.DLVLAN = OFPVID_NONE
		wc |= OFPFW_DL_VLAN_PCP
	} else {
		if rule.Wildcards.VLANTCIMask&openflow.VLAN_VID_MASK == 0 {
			m.DLVLAN = OFPVID_ANY
		} else {
			m.DLVLAN = rule.Flow.VLANTCI & openflow.VLAN_VID_MASK
		}
		if rule.Wildcards.VLANTCIMask&openflow.VLAN_PCP_MASK == 0 {
			wc |= OFPFW_DL_VLAN_PCP
		} else {
			m.DLVLANPCP = uint8(rule.Flow.VLANTCI & openflow.VLAN_PCP_MASK >> openflow.VLAN_PCP_SHIFT)
		}
	}

	if rule.Wildcards.Flags&openflow.FWW_DL_TYPE != 0 {
		wc |= OFPFW_DL_TYPE
	} else {
		m.DLType = openflow.DLTypeToOpenflow(rule.Flow.DLType)
	}

	if rule.Wildcards.Flags&openflow.FWW_NW_DSCP != 0 {
		wc |= OFPFW_NW_TOS
	} else {
		m.NWTOS = rule.Flow.NWTOS & openflow.IP_DSCP_MASK
	}

	if rule.Wildcards.Flags&openflow.FWW_NW_PROTO != 0 {
		wc |= OFPFW_NW_PROTO
	} else {
		m.NWProto = rule.Flow.NWProto
	}

	m.NWSrc = rule.Flow.NWSrc
	m.NWSrcMask = ^rule.Wildcards.NWSrcMask
	m.NWDst = rule.Flow.NWDst
	m.NWDstMask = ^rule.Wildcards.NWDstMask

	if rule.Wildcards.TPSrcMask == 0 {
		wc |= OFPFW_TP_SRC
	} else {
		m.TPSrc = rule.Flow.TPSrc
	}
	if rule.Wildcards.TPDstMask == 0 {
		wc |= OFPFW_TP_DST
	} else {
		m.TPDst = rule.Flow.TPDst
	}

	// The standard match cannot express MPLS or metadata matches.
	wc |= OFPFW_MPLS_LABEL | OFPFW_MPLS_TC
	m.MetadataMask = ^uint64(0)

	m.Wildcards = wc

	return m
}
