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
)

// NXFlowFormatToProtocol maps an NXFF_* flow format onto the base protocol
// it selects, or 0 for an unknown format.
func NXFlowFormatToProtocol(format uint32) openflow.Protocol {
	switch format {
	case nx.NXFF_OPENFLOW10:
		return openflow.P_OF10
	case nx.NXFF_NXM:
		return openflow.P_NXM
	case nx.NXFF_OPENFLOW12:
		return openflow.P_OF12
	default:
		return 0
	}
}

// NXFlowFormatIsValid reports whether format is a known NXFF_* value.
func NXFlowFormatIsValid(format uint32) bool {
	return NXFlowFormatToProtocol(format) != 0
}

// NXFlowFormatToString names a valid NXFF_* value.
func NXFlowFormatToString(format uint32) string {
	switch format {
	case nx.NXFF_OPENFLOW10:
		return "openflow10"
	case nx.NXFF_NXM:
		return "nxm"
	case nx.NXFF_OPENFLOW12:
		return "openflow12"
	default:
		panic("unknown flow format")
	}
}

// PacketInFormatIsValid reports whether format is a known NXPIF_* value.
func PacketInFormatIsValid(format uint32) bool {
	switch format {
	case nx.NXPIF_OPENFLOW10, nx.NXPIF_NXM:
		return true
	default:
		return false
	}
}

// PacketInFormatToString names a valid NXPIF_* value.
func PacketInFormatToString(format uint32) string {
	switch format {
	case nx.NXPIF_OPENFLOW10:
		return "openflow10"
	case nx.NXPIF_NXM:
		return "nxm"
	default:
		panic("unknown packet-in format")
	}
}

// PacketInFormatFromString parses a packet-in format name.
func PacketInFormatFromString(s string) (uint32, error) {
	switch s {
	case "openflow10":
		return nx.NXPIF_OPENFLOW10, nil
	case "nxm":
		return nx.NXPIF_NXM, nil
	default:
		return 0, errors.Errorf("unknown packet-in format %q", s)
	}
}

// EncodeSetFlowFormat builds the NXT_SET_FLOW_FORMAT that selects the given
// NXFF_* flow format.
func (r *Codec) EncodeSetFlowFormat(format uint32) *openflow.Buffer {
	b := nx.MakeMessage(nx.SetFlowFormatLen, nx.NXT_SET_FLOW_FORMAT, r.xids.Next())
	binary.BigEndian.PutUint32(b.Bytes()[16:20], format)

	return b
}

// EncodeFlowModTableID builds the NXT_FLOW_MOD_TABLE_ID that turns the
// flow_mod_table_id extension on or off.
func (r *Codec) EncodeFlowModTableID(enable bool) *openflow.Buffer {
	b := nx.MakeMessage(nx.FlowModTableIDLen, nx.NXT_FLOW_MOD_TABLE_ID, r.xids.Next())
	if enable {
		b.Bytes()[16] = 1
	}

	return b
}

// EncodeSetPacketInFormat builds the NXT_SET_PACKET_IN_FORMAT that selects
// the given NXPIF_* packet-in format.
func (r *Codec) EncodeSetPacketInFormat(format uint32) *openflow.Buffer {
	b := nx.MakeMessage(nx.SetPacketInFormatLen, nx.NXT_SET_PACKET_IN_FORMAT, r.xids.Next())
	binary.BigEndian.PutUint32(b.Bytes()[16:20], format)

	return b
}

// EncodeSetProtocol returns the next message of the negotiation that moves a
// connection from the current flow format to want, together with the format
// the connection will speak once the switch accepts it. At most two steps
// are ever needed: one to change the base format and one to toggle the
// flow_mod_table_id extension. A nil message means the negotiation is done.
func (r *Codec) EncodeSetProtocol(current, want openflow.Protocol) (*openflow.Buffer, openflow.Protocol) {
	curBase, wantBase := current.ToBase(), want.ToBase()
	if curBase != wantBase {
		next := current.SetBase(wantBase)
		switch wantBase {
		case openflow.P_NXM:
			return r.EncodeSetFlowFormat(nx.NXFF_NXM), next
		case openflow.P_OF10:
			return r.EncodeSetFlowFormat(nx.NXFF_OPENFLOW10), next
		case openflow.P_OF12:
			return r.EncodeSetFlowFormat(nx.NXFF_OPENFLOW12), next
		}
	}

	curTID := current&openflow.P_TID != 0
	wantTID := want&openflow.P_TID != 0
	if curTID != wantTID {
		return r.EncodeFlowModTableID(wantTID), current.SetTID(wantTID)
	}

	return nil, current
}

// EncodeRoleRequest builds an NXT_ROLE_REQUEST asking for the given
// NX_ROLE_* role.
func (r *Codec) EncodeRoleRequest(role uint32) *openflow.Buffer {
	b := nx.MakeMessage(nx.RoleLen, nx.NXT_ROLE_REQUEST, r.xids.Next())
	binary.BigEndian.PutUint32(b.Bytes()[16:20], role)

	return b
}

// EncodeRoleReply builds the NXT_ROLE_REPLY to a role request, confirming
// the given role.
func (r *Codec) EncodeRoleReply(request []byte, role uint32) *openflow.Buffer {
	b := nx.MakeMessage(nx.RoleLen, nx.NXT_ROLE_REPLY, binary.BigEndian.Uint32(request[4:8]))
	binary.BigEndian.PutUint32(b.Bytes()[16:20], role)

	return b
}

// DecodeRole reads the role out of an NXT_ROLE_REQUEST or NXT_ROLE_REPLY.
func DecodeRole(msg []byte) (uint32, error) {
	if len(msg) < nx.RoleLen {
		return 0, errors.Wrap(openflow.ErrBadLength, "truncated role message")
	}
	role := binary.BigEndian.Uint32(msg[16:20])
	switch role {
	case nx.NX_ROLE_OTHER, nx.NX_ROLE_MASTER, nx.NX_ROLE_SLAVE:
		return role, nil
	default:
		return 0, errors.Wrapf(openflow.ErrBadValue, "unknown role %d", role)
	}
}

// AsyncConfig is the pair of bit masks of an NXT_SET_ASYNC_CONFIG for each
// asynchronous message kind: the first element applies while the controller
// is master or other, the second while it is slave. Each bit position is a
// reason code of the message kind.
type AsyncConfig struct {
	PacketInMask    [2]uint32
	PortStatusMask  [2]uint32
	FlowRemovedMask [2]uint32
}

// EncodeSetAsyncConfig builds the NXT_SET_ASYNC_CONFIG that installs ac.
func (r *Codec) EncodeSetAsyncConfig(ac *AsyncConfig) *openflow.Buffer {
	b := nx.MakeMessage(nx.SetAsyncConfigLen, nx.NXT_SET_ASYNC_CONFIG, r.xids.Next())
	p := b.Bytes()
	for i := 0; i < 2; i++ {
		binary.BigEndian.PutUint32(p[16+4*i:], ac.PacketInMask[i])
		binary.BigEndian.PutUint32(p[24+4*i:], ac.PortStatusMask[i])
		binary.BigEndian.PutUint32(p[32+4*i:], ac.FlowRemovedMask[i])
	}

	return b
}

// DecodeSetAsyncConfig reads an NXT_SET_ASYNC_CONFIG.
func DecodeSetAsyncConfig(msg []byte) (*AsyncConfig, error) {
	if len(msg) < nx.SetAsyncConfigLen {
		return nil, errors.Wrap(openflow.ErrBadLength, "truncated NXT_SET_ASYNC_CONFIG")
	}
	ac := new(AsyncConfig)
	for i := 0; i < 2; i++ {
		ac.PacketInMask[i] = binary.BigEndian.Uint32(msg[16+4*i:])
		ac.PortStatusMask[i] = binary.BigEndian.Uint32(msg[24+4*i:])
		ac.FlowRemovedMask[i] = binary.BigEndian.Uint32(msg[32+4*i:])
	}

	return ac, nil
}

// EncodeSetControllerID builds the NXT_SET_CONTROLLER_ID that names this
// connection in NXAST_CONTROLLER actions.
func (r *Codec) EncodeSetControllerID(id uint16) *openflow.Buffer {
	b := nx.MakeMessage(nx.SetControllerIDLen, nx.NXT_SET_CONTROLLER_ID, r.xids.Next())
	binary.BigEndian.PutUint16(b.Bytes()[22:24], id)

	return b
}
