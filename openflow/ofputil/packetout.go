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
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// PacketOut is a version independent OFPT_PACKET_OUT message. The raw
// packet rides along only when BufferID is ^uint32(0); otherwise the switch
// sends the buffered packet that BufferID names.
type PacketOut struct {
	Packet   []byte
	BufferID uint32
	InPort   uint16
	Actions  openflow.ActionList
}

// DecodePacketOut converts an OFPT_PACKET_OUT message into its abstract
// form. The returned packet data aliases msg.
func (r *Codec) DecodePacketOut(msg []byte) (*PacketOut, error) {
	const site = "DecodePacketOut"

	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}
	if t.Code != OFPT_PACKET_OUT {
		return nil, errors.Wrapf(openflow.ErrBadType, "%s is not a packet-out", t.Name)
	}

	po := &PacketOut{}
	b := openflow.NewBuffer(msg)
	if msg[0] == openflow.OF10_VERSION {
		p := b.Pull(of10.PacketOutLen)
		po.BufferID = binary.BigEndian.Uint32(p[8:12])
		po.InPort = binary.BigEndian.Uint16(p[12:14])
		po.Actions, err = r.actions.PullActions(b, int(binary.BigEndian.Uint16(p[14:16])))
		if err != nil {
			return nil, err
		}
	} else {
		p := b.Pull(of11.PacketOutLen)
		po.BufferID = binary.BigEndian.Uint32(p[8:12])
		po.InPort, err = openflow.PortFromOFP11(binary.BigEndian.Uint32(p[12:16]))
		if err != nil {
			return nil, err
		}
		po.Actions, err = r.actions.PullInstructions(b,
			int(binary.BigEndian.Uint16(p[16:18])), msg[0])
		if err != nil {
			return nil, err
		}
	}

	if po.InPort >= openflow.OFPP_MAX && po.InPort != openflow.OFPP_LOCAL &&
		po.InPort != openflow.OFPP_NONE && po.InPort != openflow.OFPP_CONTROLLER {
		r.diag.Warningf(site, "packet-out has bad input port %#x", po.InPort)
		return nil, errors.Wrapf(openflow.ErrBadInPort, "input port %#x", po.InPort)
	}

	if po.BufferID == ^uint32(0) {
		po.Packet = b.Bytes()
	}

	return po, nil
}

// EncodePacketOut converts po into an OFPT_PACKET_OUT message for the flow
// format's version.
func (r *Codec) EncodePacketOut(po *PacketOut, protocol openflow.Protocol) *openflow.Buffer {
	version := protocol.OFPVersion()

	var b *openflow.Buffer
	if version == openflow.OF10_VERSION {
		b = openflow.MakeOpenflow(version, openflow.OFPT_PACKET_OUT,
			of10.PacketOutLen, r.xids.Next())
		p := b.Bytes()
		binary.BigEndian.PutUint32(p[8:12], po.BufferID)
		binary.BigEndian.PutUint16(p[12:14], po.InPort)
		r.actions.PutActions(b, po.Actions)
		binary.BigEndian.PutUint16(b.Bytes()[14:16], uint16(b.Size()-of10.PacketOutLen))
	} else {
		b = openflow.MakeOpenflow(version, openflow.OFPT_PACKET_OUT,
			of11.PacketOutLen, r.xids.Next())
		p := b.Bytes()
		binary.BigEndian.PutUint32(p[8:12], po.BufferID)
		binary.BigEndian.PutUint32(p[12:16], openflow.PortToOFP11(po.InPort))
		r.actions.PutInstructions(b, po.Actions, version)
		binary.BigEndian.PutUint16(b.Bytes()[16:18], uint16(b.Size()-of11.PacketOutLen))
	}

	if po.BufferID == ^uint32(0) {
		b.Put(po.Packet)
	}
	b.UpdateLength()

	return b
}
