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

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
	"github.com/mazizi/openvswitch/openflow/nx"
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// FlowRemoved is a version independent OFPT_FLOW_REMOVED or NXT_FLOW_REMOVED
// message. Reason is one of the OFPRR_* values.
type FlowRemoved struct {
	Rule         openflow.Rule
	Cookie       uint64
	Reason       uint8
	DurationSec  uint32
	DurationNsec uint32
	IdleTimeout  uint16
	PacketCount  uint64
	ByteCount    uint64
}

// DecodeFlowRemoved converts an OFPT_FLOW_REMOVED or NXT_FLOW_REMOVED
// message into its abstract form.
func (r *Codec) DecodeFlowRemoved(msg []byte) (*FlowRemoved, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}

	fr := &FlowRemoved{}
	switch {
	case t.Code == OFPT_FLOW_REMOVED && msg[0] == openflow.OF12_VERSION:
		b := openflow.NewBuffer(msg)
		p := b.Pull(of11.FlowRemoved12Len)
		priority := binary.BigEndian.Uint16(p[16:18])
		if err := PullOFP12Match(b, priority, &fr.Rule, nil, nil, nil); err != nil {
			return nil, err
		}

		fr.Cookie = binary.BigEndian.Uint64(p[8:16])
		fr.Reason = p[18]
		fr.DurationSec = binary.BigEndian.Uint32(p[20:24])
		fr.DurationNsec = binary.BigEndian.Uint32(p[24:28])
		fr.IdleTimeout = binary.BigEndian.Uint16(p[28:30])
		fr.PacketCount = binary.BigEndian.Uint64(p[32:40])
		fr.ByteCount = binary.BigEndian.Uint64(p[40:48])

	case t.Code == OFPT_FLOW_REMOVED && msg[0] == openflow.OF10_VERSION:
		var m of10.Match
		if err := m.UnmarshalBinary(msg[8:48]); err != nil {
			return nil, err
		}
		fr.Rule = of10.RuleFromMatch(&m, binary.BigEndian.Uint16(msg[56:58]))
		fr.Cookie = binary.BigEndian.Uint64(msg[48:56])
		fr.Reason = msg[58]
		fr.DurationSec = binary.BigEndian.Uint32(msg[60:64])
		fr.DurationNsec = binary.BigEndian.Uint32(msg[64:68])
		fr.IdleTimeout = binary.BigEndian.Uint16(msg[68:70])
		fr.PacketCount = binary.BigEndian.Uint64(msg[72:80])
		fr.ByteCount = binary.BigEndian.Uint64(msg[80:88])

	case t.Code == NXT_FLOW_REMOVED:
		b := openflow.NewBuffer(msg)
		p := b.Pull(nx.FlowRemovedLen)
		matchLen := int(binary.BigEndian.Uint16(p[38:40]))
		priority := binary.BigEndian.Uint16(p[24:26])
		if err := nx.PullMatch(b, matchLen, 0, priority, &fr.Rule, nil, nil); err != nil {
			return nil, err
		}
		if b.Size() != 0 {
			return nil, errors.Wrapf(openflow.ErrBadLength,
				"%d trailing bytes after flow_removed", b.Size())
		}

		fr.Cookie = binary.BigEndian.Uint64(p[16:24])
		fr.Reason = p[26]
		fr.DurationSec = binary.BigEndian.Uint32(p[28:32])
		fr.DurationNsec = binary.BigEndian.Uint32(p[32:36])
		fr.IdleTimeout = binary.BigEndian.Uint16(p[36:38])
		fr.PacketCount = binary.BigEndian.Uint64(p[40:48])
		fr.ByteCount = binary.BigEndian.Uint64(p[48:56])

	default:
		return nil, errors.Wrapf(openflow.ErrBadType, "%s is not a flow_removed", t.Name)
	}

	return fr, nil
}

// EncodeFlowRemoved converts fr into an OFPT_FLOW_REMOVED or
// NXT_FLOW_REMOVED message in the flow format protocol asks for.
func (r *Codec) EncodeFlowRemoved(fr *FlowRemoved, protocol openflow.Protocol) *openflow.Buffer {
	switch protocol {
	case openflow.P_OF12:
		b := openflow.MakeOpenflow(protocol.OFPVersion(), openflow.OFPT_FLOW_REMOVED,
			of11.FlowRemoved12Len, 0)
		p := b.Bytes()
		binary.BigEndian.PutUint64(p[8:16], fr.Cookie)
		binary.BigEndian.PutUint16(p[16:18], fr.Rule.Priority)
		p[18] = fr.Reason
		binary.BigEndian.PutUint32(p[20:24], fr.DurationSec)
		binary.BigEndian.PutUint32(p[24:28], fr.DurationNsec)
		binary.BigEndian.PutUint16(p[28:30], fr.IdleTimeout)
		binary.BigEndian.PutUint64(p[32:40], fr.PacketCount)
		binary.BigEndian.PutUint64(p[40:48], fr.ByteCount)
		putMatch(b, &fr.Rule, 0, 0, protocol)
		b.UpdateLength()

		return b

	case openflow.P_OF10, openflow.P_OF10_TID:
		b := openflow.MakeOpenflow(protocol.OFPVersion(), openflow.OFPT_FLOW_REMOVED,
			of10.FlowRemovedLen, 0)
		p := b.Bytes()
		m := of10.MatchFromRule(&fr.Rule)
		data, _ := m.MarshalBinary()
		copy(p[8:48], data)
		binary.BigEndian.PutUint64(p[48:56], fr.Cookie)
		binary.BigEndian.PutUint16(p[56:58], fr.Rule.Priority)
		p[58] = fr.Reason
		binary.BigEndian.PutUint32(p[60:64], fr.DurationSec)
		binary.BigEndian.PutUint32(p[64:68], fr.DurationNsec)
		binary.BigEndian.PutUint16(p[68:70], fr.IdleTimeout)
		binary.BigEndian.PutUint64(p[72:80], unknownToZero(fr.PacketCount))
		binary.BigEndian.PutUint64(p[80:88], unknownToZero(fr.ByteCount))

		return b

	case openflow.P_NXM, openflow.P_NXM_TID:
		b := nx.MakeMessage(nx.FlowRemovedLen, nx.NXT_FLOW_REMOVED, 0)
		matchLen := putMatch(b, &fr.Rule, 0, 0, openflow.P_NXM)
		p := b.Bytes()
		binary.BigEndian.PutUint64(p[16:24], fr.Cookie)
		binary.BigEndian.PutUint16(p[24:26], fr.Rule.Priority)
		p[26] = fr.Reason
		binary.BigEndian.PutUint32(p[28:32], fr.DurationSec)
		binary.BigEndian.PutUint32(p[32:36], fr.DurationNsec)
		binary.BigEndian.PutUint16(p[36:38], fr.IdleTimeout)
		binary.BigEndian.PutUint16(p[38:40], uint16(matchLen))
		binary.BigEndian.PutUint64(p[40:48], fr.PacketCount)
		binary.BigEndian.PutUint64(p[48:56], fr.ByteCount)
		b.UpdateLength()

		return b

	default:
		panic("flow_removed cannot be encoded in this flow format")
	}
}
