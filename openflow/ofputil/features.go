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
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// Datapath capabilities in version neutral form. The first six bits sit at
// the same position in every wire version.
const (
	C_FLOW_STATS   = 1 << 0
	C_TABLE_STATS  = 1 << 1
	C_PORT_STATS   = 1 << 2
	C_IP_REASM     = 1 << 5
	C_QUEUE_STATS  = 1 << 6
	C_ARP_MATCH_IP = 1 << 7

	// Version 1.0 only.
	C_STP = 1 << 3

	// Version 1.1 and up. The wire encoding uses a different bit.
	C_GROUP_STATS = 1 << 4

	// Version 1.2 and up.
	C_PORT_BLOCKED = 1 << 8
)

// capsCommon holds the capability bits shared by every version.
const capsCommon = C_FLOW_STATS | C_TABLE_STATS | C_PORT_STATS |
	C_IP_REASM | C_QUEUE_STATS

// Actions a datapath advertises in its features reply, as version neutral
// bits. Versions 1.1 and 1.2 renumbered the wire bits, so replies pass
// through a per version translation table.
const (
	A_OUTPUT = 1 << iota
	A_SET_VLAN_VID
	A_SET_VLAN_PCP
	A_STRIP_VLAN
	A_SET_DL_SRC
	A_SET_DL_DST
	A_SET_NW_SRC
	A_SET_NW_DST
	A_SET_NW_TOS
	A_SET_NW_ECN
	A_SET_TP_SRC
	A_SET_TP_DST
	A_ENQUEUE
	A_COPY_TTL_OUT
	A_COPY_TTL_IN
	A_SET_MPLS_LABEL
	A_SET_MPLS_TC
	A_SET_MPLS_TTL
	A_DEC_MPLS_TTL
	A_PUSH_VLAN
	A_POP_VLAN
	A_PUSH_MPLS
	A_POP_MPLS
	A_SET_QUEUE
	A_GROUP
	A_SET_NW_TTL
	A_DEC_NW_TTL
	A_SET_FIELD
)

// switchFeaturesLen is the fixed part of OFPT_FEATURES_REPLY ahead of the
// port descriptions. It is the same in every version.
const switchFeaturesLen = 32

// actionBit ties one abstract action bit to its position in the features
// reply of a single version.
type actionBit struct {
	bit uint32
	of  uint
}

var of10ActionBits = []actionBit{
	{A_OUTPUT, of10.OFPAT_OUTPUT},
	{A_SET_VLAN_VID, of10.OFPAT_SET_VLAN_VID},
	{A_SET_VLAN_PCP, of10.OFPAT_SET_VLAN_PCP},
	{A_STRIP_VLAN, of10.OFPAT_STRIP_VLAN},
	{A_SET_DL_SRC, of10.OFPAT_SET_DL_SRC},
	{A_SET_DL_DST, of10.OFPAT_SET_DL_DST},
	{A_SET_NW_SRC, of10.OFPAT_SET_NW_SRC},
	{A_SET_NW_DST, of10.OFPAT_SET_NW_DST},
	{A_SET_NW_TOS, of10.OFPAT_SET_NW_TOS},
	{A_SET_TP_SRC, of10.OFPAT_SET_TP_SRC},
	{A_SET_TP_DST, of10.OFPAT_SET_TP_DST},
	{A_ENQUEUE, of10.OFPAT_ENQUEUE},
}

var of11ActionBits = []actionBit{
	{A_OUTPUT, of11.OFPAT_OUTPUT},
	{A_SET_VLAN_VID, of11.OFPAT_SET_VLAN_VID},
	{A_SET_VLAN_PCP, of11.OFPAT_SET_VLAN_PCP},
	{A_SET_DL_SRC, of11.OFPAT_SET_DL_SRC},
	{A_SET_DL_DST, of11.OFPAT_SET_DL_DST},
	{A_SET_NW_SRC, of11.OFPAT_SET_NW_SRC},
	{A_SET_NW_DST, of11.OFPAT_SET_NW_DST},
	{A_SET_NW_TOS, of11.OFPAT_SET_NW_TOS},
	{A_SET_NW_ECN, of11.OFPAT_SET_NW_ECN},
	{A_SET_TP_SRC, of11.OFPAT_SET_TP_SRC},
	{A_SET_TP_DST, of11.OFPAT_SET_TP_DST},
	{A_COPY_TTL_OUT, of11.OFPAT_COPY_TTL_OUT},
	{A_COPY_TTL_IN, of11.OFPAT_COPY_TTL_IN},
	{A_SET_MPLS_LABEL, of11.OFPAT_SET_MPLS_LABEL},
	{A_SET_MPLS_TC, of11.OFPAT_SET_MPLS_TC},
	{A_SET_MPLS_TTL, of11.OFPAT_SET_MPLS_TTL},
	{A_DEC_MPLS_TTL, of11.OFPAT_DEC_MPLS_TTL},
	{A_PUSH_VLAN, of11.OFPAT_PUSH_VLAN},
	{A_POP_VLAN, of11.OFPAT_POP_VLAN},
	{A_PUSH_MPLS, of11.OFPAT_PUSH_MPLS},
	{A_POP_MPLS, of11.OFPAT_POP_MPLS},
	{A_SET_QUEUE, of11.OFPAT_SET_QUEUE},
	{A_GROUP, of11.OFPAT_GROUP},
	{A_SET_NW_TTL, of11.OFPAT_SET_NW_TTL},
	{A_DEC_NW_TTL, of11.OFPAT_DEC_NW_TTL},
}

// Version 1.2 turned the field setting actions into OFPAT_SET_FIELD, so
// its bitmap is much shorter than the 1.1 one.
var of12ActionBits = []actionBit{
	{A_OUTPUT, of11.OFPAT_OUTPUT},
	{A_COPY_TTL_OUT, of11.OFPAT_COPY_TTL_OUT},
	{A_COPY_TTL_IN, of11.OFPAT_COPY_TTL_IN},
	{A_SET_MPLS_TTL, of11.OFPAT_SET_MPLS_TTL},
	{A_DEC_MPLS_TTL, of11.OFPAT_DEC_MPLS_TTL},
	{A_PUSH_VLAN, of11.OFPAT_PUSH_VLAN},
	{A_POP_VLAN, of11.OFPAT_POP_VLAN},
	{A_PUSH_MPLS, of11.OFPAT_PUSH_MPLS},
	{A_POP_MPLS, of11.OFPAT_POP_MPLS},
	{A_SET_QUEUE, of11.OFPAT_SET_QUEUE},
	{A_GROUP, of11.OFPAT_GROUP},
	{A_SET_NW_TTL, of11.OFPAT_SET_NW_TTL},
	{A_DEC_NW_TTL, of11.OFPAT_DEC_NW_TTL},
	{A_SET_FIELD, of11.OFPAT_SET_FIELD},
}

func decodeActionBits(ofActions uint32, table []actionBit) uint32 {
	var actions uint32
	for _, x := range table {
		if ofActions&(1<<x.of) != 0 {
			actions |= x.bit
		}
	}

	return actions
}

func encodeActionBits(actions uint32, table []actionBit) uint32 {
	var ofActions uint32
	for _, x := range table {
		if actions&x.bit != 0 {
			ofActions |= 1 << x.of
		}
	}

	return ofActions
}

// capabilitiesMask returns the capability bits that the given version
// carries at the same wire position as the C_* numbering.
func capabilitiesMask(version uint8) uint32 {
	switch version {
	case openflow.OF10_VERSION, openflow.OF11_VERSION:
		return capsCommon | C_ARP_MATCH_IP
	case openflow.OF12_VERSION:
		return capsCommon | C_PORT_BLOCKED
	default:
		return 0
	}
}

// SwitchFeatures is a decoded OFPT_FEATURES_REPLY message.
type SwitchFeatures struct {
	DatapathID uint64
	NBuffers   uint32
	NTables    uint8

	// Capabilities holds C_* bits and Actions holds A_* bits.
	Capabilities uint32
	Actions      uint32

	Ports []openflow.PhyPort
}

// EncodeFeaturesRequest builds an OFPT_FEATURES_REQUEST message.
func (r *Codec) EncodeFeaturesRequest(version uint8) *openflow.Buffer {
	return openflow.MakeOpenflow(version, openflow.OFPT_FEATURES_REQUEST, openflow.HeaderLen, r.xids.Next())
}

// DecodeSwitchFeatures decodes a features reply of any supported version,
// including the trailing port descriptions.
func (r *Codec) DecodeSwitchFeatures(msg []byte) (*SwitchFeatures, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}
	if t.Code != OFPT_FEATURES_REPLY {
		return nil, errors.Wrapf(openflow.ErrBadType, "%s is not a features reply", t)
	}

	version := msg[0]
	sf := &SwitchFeatures{
		DatapathID: binary.BigEndian.Uint64(msg[8:16]),
		NBuffers:   binary.BigEndian.Uint32(msg[16:20]),
		NTables:    msg[20],
	}

	caps := binary.BigEndian.Uint32(msg[24:28])
	actions := binary.BigEndian.Uint32(msg[28:32])
	sf.Capabilities = caps & capabilitiesMask(version)
	if version == openflow.OF10_VERSION {
		if caps&of10.OFPC_STP != 0 {
			sf.Capabilities |= C_STP
		}
		sf.Actions = decodeActionBits(actions, of10ActionBits)
	} else {
		if caps&of11.OFPC_GROUP_STATS != 0 {
			sf.Capabilities |= C_GROUP_STATS
		}
		if version == openflow.OF11_VERSION {
			sf.Actions = decodeActionBits(actions, of11ActionBits)
		} else {
			sf.Actions = decodeActionBits(actions, of12ActionBits)
		}
	}

	b := openflow.NewBuffer(msg)
	b.Pull(switchFeaturesLen)
	sf.Ports = make([]openflow.PhyPort, 0, b.Size()/phyPortSize(version))
	for {
		pp, err := PullPhyPort(version, b)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sf.Ports = append(sf.Ports, pp)
	}

	return sf, nil
}

// EncodeSwitchFeatures converts sf into a features reply in the version
// selected by protocol, answering the transaction ID xid. Ports that no
// longer fit in the message are silently dropped; SwitchFeaturesPortsTrunc
// tells such replies apart.
func (r *Codec) EncodeSwitchFeatures(sf *SwitchFeatures, protocol openflow.Protocol, xid uint32) *openflow.Buffer {
	version := protocol.OFPVersion()
	b := openflow.MakeOpenflow(version, openflow.OFPT_FEATURES_REPLY, switchFeaturesLen, xid)
	p := b.Bytes()
	binary.BigEndian.PutUint64(p[8:16], sf.DatapathID)
	binary.BigEndian.PutUint32(p[16:20], sf.NBuffers)
	p[20] = sf.NTables

	caps := sf.Capabilities & capabilitiesMask(version)
	if version == openflow.OF10_VERSION {
		if sf.Capabilities&C_STP != 0 {
			caps |= of10.OFPC_STP
		}
		binary.BigEndian.PutUint32(p[28:32], encodeActionBits(sf.Actions, of10ActionBits))
	} else {
		if sf.Capabilities&C_GROUP_STATS != 0 {
			caps |= of11.OFPC_GROUP_STATS
		}
		if version == openflow.OF11_VERSION {
			binary.BigEndian.PutUint32(p[28:32], encodeActionBits(sf.Actions, of11ActionBits))
		} else if version == openflow.OF12_VERSION {
			binary.BigEndian.PutUint32(p[28:32], encodeActionBits(sf.Actions, of12ActionBits))
		}
	}
	binary.BigEndian.PutUint32(p[24:28], caps)

	for i := range sf.Ports {
		PutPhyPort(version, &sf.Ports[i], b)
	}
	b.UpdateLength()

	return b
}

// PutSwitchFeaturesPort appends one more port description to a features
// reply built by EncodeSwitchFeatures. A port that no longer fits in the
// message is silently dropped.
func PutSwitchFeaturesPort(pp *openflow.PhyPort, b *openflow.Buffer) {
	PutPhyPort(b.Bytes()[0], pp, b)
	b.UpdateLength()
}

// SwitchFeaturesPortsTrunc reports whether the features reply in b was
// filled up to the maximum number of ports that fit in one message. If so
// it also strips the ports from the reply, and the caller should direct
// the peer to a port description stats request for the full list.
func SwitchFeaturesPortsTrunc(b *openflow.Buffer) bool {
	p := b.Bytes()
	if int(binary.BigEndian.Uint16(p[2:4]))+phyPortSize(p[0]) > openflow.MaxMessageLen {
		b.Truncate(switchFeaturesLen)
		b.UpdateLength()

		return true
	}

	return false
}
