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
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
	"github.com/mazizi/openvswitch/openflow/nx"
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// FlowMetadata is the flow information a packet-in carries alongside the
// packet itself: the ingress port plus the tunnel and register metadata the
// packet had when it missed.
type FlowMetadata struct {
	InPort    uint16
	TunID     uint64
	TunIDMask uint64
	Regs      [openflow.FLOW_N_REGS]uint32
	RegMasks  [openflow.FLOW_N_REGS]uint32
}

// PacketIn is a version independent OFPT_PACKET_IN or NXT_PACKET_IN message.
// Reason is one of the OFPR_* values. SendLen caps how much of Packet the
// encoded message carries.
type PacketIn struct {
	Packet   []byte
	Metadata FlowMetadata
	Reason   uint8
	TableID  uint8
	Cookie   uint64
	BufferID uint32
	TotalLen uint16
	SendLen  int
}

// decodePacketInFinish stores the packet data left in b and the flow
// metadata that came in through the match.
func decodePacketInFinish(pin *PacketIn, rule *openflow.Rule, b *openflow.Buffer) {
	pin.Packet = b.Bytes()

	pin.Metadata.InPort = rule.Flow.InPort
	pin.Metadata.TunID = rule.Flow.TunID
	pin.Metadata.TunIDMask = rule.Wildcards.TunIDMask
	pin.Metadata.Regs = rule.Flow.Regs
	pin.Metadata.RegMasks = rule.Wildcards.RegMasks
}

// DecodePacketIn converts an OFPT_PACKET_IN or NXT_PACKET_IN message into
// its abstract form. The returned packet data aliases msg.
func (r *Codec) DecodePacketIn(msg []byte) (*PacketIn, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}

	pin := &PacketIn{}
	switch {
	case t.Code == OFPT_PACKET_IN && msg[0] == openflow.OF12_VERSION:
		b := openflow.NewBuffer(msg)
		p := b.Pull(of11.PacketIn12Len)
		var rule openflow.Rule
		if err := PullOFP12Match(b, 0, &rule, nil, nil, nil); err != nil {
			return nil, err
		}
		if b.TryPull(2) == nil {
			return nil, errors.Wrap(openflow.ErrBadLength, "packet-in too short for padding")
		}

		pin.Reason = p[14]
		pin.TableID = p[15]
		pin.BufferID = binary.BigEndian.Uint32(p[8:12])
		pin.TotalLen = binary.BigEndian.Uint16(p[12:14])
		decodePacketInFinish(pin, &rule, b)

	case t.Code == OFPT_PACKET_IN && msg[0] == openflow.OF10_VERSION:
		pin.Packet = msg[of10.PacketInLen:]
		pin.Metadata.InPort = binary.BigEndian.Uint16(msg[14:16])
		pin.Reason = msg[16]
		pin.BufferID = binary.BigEndian.Uint32(msg[8:12])
		pin.TotalLen = binary.BigEndian.Uint16(msg[12:14])

	case t.Code == NXT_PACKET_IN:
		b := openflow.NewBuffer(msg)
		p := b.Pull(nx.PacketInLen)
		matchLen := int(binary.BigEndian.Uint16(p[32:34]))
		var rule openflow.Rule
		if err := nx.PullMatchLoose(b, matchLen, 0, 0, &rule, nil, nil); err != nil {
			return nil, err
		}
		if b.TryPull(2) == nil {
			return nil, errors.Wrap(openflow.ErrBadLength, "packet-in too short for padding")
		}

		pin.Reason = p[22]
		pin.TableID = p[23]
		pin.Cookie = binary.BigEndian.Uint64(p[24:32])
		pin.BufferID = binary.BigEndian.Uint32(p[16:20])
		pin.TotalLen = binary.BigEndian.Uint16(p[20:22])
		decodePacketInFinish(pin, &rule, b)

	default:
		return nil, errors.Wrapf(openflow.ErrBadType, "%s is not a packet-in", t.Name)
	}

	return pin, nil
}

// encodePacketInTail appends the match built from the flow metadata, the two
// padding bytes and the packet data, and returns the unpadded match length.
func encodePacketInTail(pin *PacketIn, b *openflow.Buffer, protocol openflow.Protocol) int {
	sendLen := pin.SendLen
	if sendLen > len(pin.Packet) {
		sendLen = len(pin.Packet)
	}

	rule := openflow.CatchallRule(0)
	rule.Flow.TunID = pin.Metadata.TunID & pin.Metadata.TunIDMask
	rule.Wildcards.TunIDMask = pin.Metadata.TunIDMask
	for i := 0; i < openflow.FLOW_N_REGS; i++ {
		rule.Flow.Regs[i] = pin.Metadata.Regs[i] & pin.Metadata.RegMasks[i]
		rule.Wildcards.RegMasks[i] = pin.Metadata.RegMasks[i]
	}
	rule.Flow.InPort = pin.Metadata.InPort
	rule.Wildcards.Flags &^= openflow.FWW_IN_PORT

	matchLen := putMatch(b, &rule, 0, 0, protocol)
	b.PutZeros(2)
	b.Put(pin.Packet[:sendLen])

	return matchLen
}

// EncodePacketIn converts pin into a packet-in message: an OpenFlow 1.2
// OFPT_PACKET_IN when protocol is the OXM flow format, and otherwise the
// version 1.0 OFPT_PACKET_IN or NXT_PACKET_IN that packetInFormat picks.
func (r *Codec) EncodePacketIn(pin *PacketIn, protocol openflow.Protocol,
	packetInFormat uint32) *openflow.Buffer {
	switch {
	case protocol == openflow.P_OF12:
		b := openflow.MakeOpenflow(openflow.OF12_VERSION, openflow.OFPT_PACKET_IN,
			of11.PacketIn12Len, 0)
		encodePacketInTail(pin, b, openflow.P_OF12)
		p := b.Bytes()
		binary.BigEndian.PutUint32(p[8:12], pin.BufferID)
		binary.BigEndian.PutUint16(p[12:14], pin.TotalLen)
		p[14] = pin.Reason
		p[15] = pin.TableID
		b.UpdateLength()

		return b

	case packetInFormat == nx.NXPIF_OPENFLOW10:
		sendLen := pin.SendLen
		if sendLen > len(pin.Packet) {
			sendLen = len(pin.Packet)
		}
		b := openflow.MakeOpenflow(openflow.OF10_VERSION, openflow.OFPT_PACKET_IN,
			of10.PacketInLen, 0)
		p := b.Bytes()
		binary.BigEndian.PutUint16(p[12:14], pin.TotalLen)
		binary.BigEndian.PutUint16(p[14:16], pin.Metadata.InPort)
		p[16] = pin.Reason
		binary.BigEndian.PutUint32(p[8:12], pin.BufferID)
		b.Put(pin.Packet[:sendLen])
		b.UpdateLength()

		return b

	case packetInFormat == nx.NXPIF_NXM:
		b := nx.MakeMessage(nx.PacketInLen, nx.NXT_PACKET_IN, 0)
		matchLen := encodePacketInTail(pin, b, openflow.P_NXM)
		p := b.Bytes()
		binary.BigEndian.PutUint32(p[16:20], pin.BufferID)
		binary.BigEndian.PutUint16(p[20:22], pin.TotalLen)
		p[22] = pin.Reason
		p[23] = pin.TableID
		binary.BigEndian.PutUint64(p[24:32], pin.Cookie)
		binary.BigEndian.PutUint16(p[32:34], uint16(matchLen))
		b.UpdateLength()

		return b

	default:
		panic("unknown packet-in format")
	}
}

// PacketInReasonToString formats a packet-in reason for prose, falling back
// to the decimal value for reasons this library does not know.
func PacketInReasonToString(reason uint8) string {
	switch reason {
	case openflow.OFPR_NO_MATCH:
		return "no_match"
	case openflow.OFPR_ACTION:
		return "action"
	case openflow.OFPR_INVALID_TTL:
		return "invalid_ttl"
	default:
		return strconv.Itoa(int(reason))
	}
}

// PacketInReasonFromString parses the strings PacketInReasonToString
// produces, ignoring case.
func PacketInReasonFromString(s string) (uint8, bool) {
	for reason := uint8(openflow.OFPR_NO_MATCH); reason <= openflow.OFPR_INVALID_TTL; reason++ {
		if strings.EqualFold(s, PacketInReasonToString(reason)) {
			return reason, true
		}
	}

	return 0, false
}
