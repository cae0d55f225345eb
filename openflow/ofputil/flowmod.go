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

// FlowMod is a flow table modification in its version independent form.
//
// Cookie and CookieMask restrict a modify or delete to flows whose cookie
// matches; both stay zero for additions. NewCookie is the cookie an added
// flow gets, or the all-ones value to keep the old cookie of a modified
// flow. Flags carries the wire OFPFF_* bits unchanged.
type FlowMod struct {
	Rule        openflow.Rule
	Cookie      uint64
	CookieMask  uint64
	NewCookie   uint64
	TableID     uint8
	Command     uint16
	IdleTimeout uint16
	HardTimeout uint16
	BufferID    uint32
	OutPort     uint16
	Flags       uint16
	Actions     openflow.ActionList
}

// DecodeFlowMod reads a flow_mod of any flow format. protocol is the flow
// format the connection currently speaks; it decides how the command field
// of the 1.0 based formats is interpreted.
//
// The actions are not validated beyond their framing.
func (r *Codec) DecodeFlowMod(msg []byte, protocol openflow.Protocol) (*FlowMod, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}

	fm := new(FlowMod)
	b := openflow.NewBuffer(msg)

	switch t.Code {
	case OFPT11_FLOW_MOD:
		p := b.Pull(of11.FlowModLen)
		priority := binary.BigEndian.Uint16(p[30:32])
		// A version 1.1 message may only carry a standard match.
		if err := pullMatchEnvelope(b, priority, &fm.Rule, &fm.Cookie, &fm.CookieMask,
			nil, msg[0]); err != nil {
			return nil, err
		}
		fm.Actions, err = r.actions.PullInstructions(b, b.Size(), msg[0])
		if err != nil {
			return nil, err
		}

		if p[25] == openflow.OFPFC_ADD {
			fm.Cookie = 0
			fm.CookieMask = 0
			fm.NewCookie = binary.BigEndian.Uint64(p[8:16])
		} else {
			fm.Cookie = binary.BigEndian.Uint64(p[8:16])
			fm.CookieMask = binary.BigEndian.Uint64(p[16:24])
			fm.NewCookie = ^uint64(0)
		}
		fm.Command = uint16(p[25])
		fm.TableID = p[24]
		fm.IdleTimeout = binary.BigEndian.Uint16(p[26:28])
		fm.HardTimeout = binary.BigEndian.Uint16(p[28:30])
		fm.BufferID = binary.BigEndian.Uint32(p[32:36])
		fm.OutPort, err = openflow.PortFromOFP11(binary.BigEndian.Uint32(p[36:40]))
		if err != nil {
			return nil, err
		}
		if binary.BigEndian.Uint32(p[40:44]) != of11.OFPG_ANY {
			return nil, errors.Wrap(openflow.ErrGroupsNotSupported, "flow_mod with out_group")
		}
		fm.Flags = binary.BigEndian.Uint16(p[44:46])

		return fm, nil

	case OFPT10_FLOW_MOD:
		p := b.Pull(of10.FlowModLen)

		var m of10.Match
		if err := m.UnmarshalBinary(p[8:48]); err != nil {
			return nil, err
		}
		fm.Rule = of10.RuleFromMatch(&m, binary.BigEndian.Uint16(p[62:64]))
		r.NormalizeRule(&fm.Rule)

		fm.Actions, err = r.actions.PullActions(b, b.Size())
		if err != nil {
			return nil, err
		}

		fm.NewCookie = binary.BigEndian.Uint64(p[48:56])
		command := binary.BigEndian.Uint16(p[56:58])
		fm.IdleTimeout = binary.BigEndian.Uint16(p[58:60])
		fm.HardTimeout = binary.BigEndian.Uint16(p[60:62])
		fm.BufferID = binary.BigEndian.Uint32(p[64:68])
		fm.OutPort = binary.BigEndian.Uint16(p[68:70])
		fm.Flags = binary.BigEndian.Uint16(p[70:72])
		fm.splitCommand(command, protocol)

		return fm, nil

	case NXT_FLOW_MOD:
		p := b.Pull(nx.FlowModLen)
		matchLen := int(binary.BigEndian.Uint16(p[40:42]))
		priority := binary.BigEndian.Uint16(p[30:32])
		if err := nx.PullMatch(b, matchLen, 0, priority, &fm.Rule, &fm.Cookie, &fm.CookieMask); err != nil {
			return nil, err
		}
		fm.Actions, err = r.actions.PullActions(b, b.Size())
		if err != nil {
			return nil, err
		}

		command := binary.BigEndian.Uint16(p[24:26])
		if command&0xff == openflow.OFPFC_ADD && fm.CookieMask != 0 {
			// Additions may only set a new cookie, not match an existing
			// one.
			return nil, errors.Wrap(openflow.ErrBadNXM, "flow addition matching on cookie")
		}
		fm.NewCookie = binary.BigEndian.Uint64(p[16:24])
		fm.IdleTimeout = binary.BigEndian.Uint16(p[26:28])
		fm.HardTimeout = binary.BigEndian.Uint16(p[28:30])
		fm.BufferID = binary.BigEndian.Uint32(p[32:36])
		fm.OutPort = binary.BigEndian.Uint16(p[36:38])
		fm.Flags = binary.BigEndian.Uint16(p[38:40])
		fm.splitCommand(command, protocol)

		return fm, nil

	default:
		return nil, errors.Wrapf(openflow.ErrBadType, "%s is not a flow_mod", t.Name)
	}
}

// splitCommand picks the command and table ID out of the wire command field
// of the 1.0 based flow formats. With the flow_mod_table_id extension on,
// the upper byte of the command names a table.
func (r *FlowMod) splitCommand(command uint16, protocol openflow.Protocol) {
	if protocol&openflow.P_TID != 0 {
		r.Command = command & 0xff
		r.TableID = uint8(command >> 8)
	} else {
		r.Command = command
		r.TableID = 0xff
	}
}

// tidCommand is the inverse of splitCommand.
func tidCommand(fm *FlowMod, protocol openflow.Protocol) uint16 {
	if protocol&openflow.P_TID != 0 {
		return fm.Command&0xff | uint16(fm.TableID)<<8
	}

	return fm.Command
}

// EncodeFlowMod builds the flow_mod for fm in the given flow format.
func (r *Codec) EncodeFlowMod(fm *FlowMod, protocol openflow.Protocol) *openflow.Buffer {
	switch protocol {
	case openflow.P_OF12:
		b := openflow.MakeOpenflow(openflow.OF12_VERSION, openflow.OFPT_FLOW_MOD,
			of11.FlowModLen, r.xids.Next())
		p := b.Bytes()
		binary.BigEndian.PutUint64(p[8:16], fm.NewCookie)
		binary.BigEndian.PutUint64(p[16:24], fm.CookieMask)
		p[24] = fm.TableID
		p[25] = uint8(fm.Command)
		binary.BigEndian.PutUint16(p[26:28], fm.IdleTimeout)
		binary.BigEndian.PutUint16(p[28:30], fm.HardTimeout)
		binary.BigEndian.PutUint16(p[30:32], fm.Rule.Priority)
		binary.BigEndian.PutUint32(p[32:36], fm.BufferID)
		binary.BigEndian.PutUint32(p[36:40], openflow.PortToOFP11(fm.OutPort))
		binary.BigEndian.PutUint32(p[40:44], of11.OFPG_ANY)
		binary.BigEndian.PutUint16(p[44:46], fm.Flags)
		putMatch(b, &fm.Rule, fm.Cookie, fm.CookieMask, protocol)
		r.actions.PutInstructions(b, fm.Actions, openflow.OF12_VERSION)
		b.UpdateLength()

		return b

	case openflow.P_OF10, openflow.P_OF10_TID:
		b := openflow.MakeOpenflow(openflow.OF10_VERSION, openflow.OFPT_FLOW_MOD,
			of10.FlowModLen, r.xids.Next())
		p := b.Bytes()
		m := of10.MatchFromRule(&fm.Rule)
		data, _ := m.MarshalBinary()
		copy(p[8:48], data)
		binary.BigEndian.PutUint64(p[48:56], fm.NewCookie)
		binary.BigEndian.PutUint16(p[56:58], tidCommand(fm, protocol))
		binary.BigEndian.PutUint16(p[58:60], fm.IdleTimeout)
		binary.BigEndian.PutUint16(p[60:62], fm.HardTimeout)
		binary.BigEndian.PutUint16(p[62:64], fm.Rule.Priority)
		binary.BigEndian.PutUint32(p[64:68], fm.BufferID)
		binary.BigEndian.PutUint16(p[68:70], fm.OutPort)
		binary.BigEndian.PutUint16(p[70:72], fm.Flags)
		r.actions.PutActions(b, fm.Actions)
		b.UpdateLength()

		return b

	case openflow.P_NXM, openflow.P_NXM_TID:
		b := nx.MakeMessage(nx.FlowModLen, nx.NXT_FLOW_MOD, r.xids.Next())
		p := b.Bytes()
		binary.BigEndian.PutUint64(p[16:24], fm.NewCookie)
		binary.BigEndian.PutUint16(p[24:26], tidCommand(fm, protocol))
		binary.BigEndian.PutUint16(p[26:28], fm.IdleTimeout)
		binary.BigEndian.PutUint16(p[28:30], fm.HardTimeout)
		binary.BigEndian.PutUint16(p[30:32], fm.Rule.Priority)
		binary.BigEndian.PutUint32(p[32:36], fm.BufferID)
		binary.BigEndian.PutUint16(p[36:38], fm.OutPort)
		binary.BigEndian.PutUint16(p[38:40], fm.Flags)
		matchLen := putMatch(b, &fm.Rule, fm.Cookie, fm.CookieMask, openflow.P_NXM)
		binary.BigEndian.PutUint16(b.Bytes()[40:42], uint16(matchLen))
		r.actions.PutActions(b, fm.Actions)
		b.UpdateLength()

		return b

	default:
		panic("not a single flow protocol")
	}
}
