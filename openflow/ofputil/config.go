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
	"strings"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/nx"
)

// SwitchConfig is a decoded OFPT_GET_CONFIG_REPLY or OFPT_SET_CONFIG
// message. The two share one layout in every version.
type SwitchConfig struct {
	// Flags holds the fragment handling policy in its low two bits plus
	// the other OFPC_* configuration bits.
	Flags uint16

	// MissSendLen is how many bytes of a packet without a matching flow
	// the datapath sends to the controller.
	MissSendLen uint16
}

// DecodeSwitchConfig decodes a get config reply or a set config message of
// any supported version.
func (r *Codec) DecodeSwitchConfig(msg []byte) (*SwitchConfig, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}
	if t.Code != OFPT_GET_CONFIG_REPLY && t.Code != OFPT_SET_CONFIG {
		return nil, errors.Wrapf(openflow.ErrBadType, "%s is not a switch config", t)
	}

	return &SwitchConfig{
		Flags:       binary.BigEndian.Uint16(msg[8:10]),
		MissSendLen: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

// EncodeGetConfigRequest builds an OFPT_GET_CONFIG_REQUEST message.
func (r *Codec) EncodeGetConfigRequest(version uint8) *openflow.Buffer {
	return openflow.MakeOpenflow(version, openflow.OFPT_GET_CONFIG_REQUEST, openflow.HeaderLen, r.xids.Next())
}

// EncodeGetConfigReply answers the get config request in request with the
// configuration in sc.
func (r *Codec) EncodeGetConfigReply(sc *SwitchConfig, request []byte) (*openflow.Buffer, error) {
	if len(request) < openflow.HeaderLen {
		return nil, errors.Wrap(openflow.ErrBadLength, "truncated get config request")
	}

	xid := binary.BigEndian.Uint32(request[4:8])
	b := openflow.MakeOpenflow(request[0], openflow.OFPT_GET_CONFIG_REPLY, of10.SwitchConfigLen, xid)
	p := b.Bytes()
	binary.BigEndian.PutUint16(p[8:10], sc.Flags)
	binary.BigEndian.PutUint16(p[10:12], sc.MissSendLen)

	return b, nil
}

// EncodeSetConfig builds an OFPT_SET_CONFIG message carrying sc.
func (r *Codec) EncodeSetConfig(sc *SwitchConfig, version uint8) *openflow.Buffer {
	b := openflow.MakeOpenflow(version, openflow.OFPT_SET_CONFIG, of10.SwitchConfigLen, r.xids.Next())
	p := b.Bytes()
	binary.BigEndian.PutUint16(p[8:10], sc.Flags)
	binary.BigEndian.PutUint16(p[10:12], sc.MissSendLen)

	return b
}

// FragHandlingToString names the fragment handling policy selected by
// flags.
func FragHandlingToString(flags uint16) string {
	switch flags & openflow.OFPC_FRAG_MASK {
	case openflow.OFPC_FRAG_NORMAL:
		return "normal"
	case openflow.OFPC_FRAG_DROP:
		return "drop"
	case openflow.OFPC_FRAG_REASM:
		return "reassemble"
	case nx.OFPC_FRAG_NX_MATCH:
		return "nx-match"
	}

	panic("unreachable")
}

// FragHandlingFromString parses a fragment handling policy name, ignoring
// case. The second return value reports whether s named one.
func FragHandlingFromString(s string) (uint16, bool) {
	switch {
	case strings.EqualFold(s, "normal"):
		return openflow.OFPC_FRAG_NORMAL, true
	case strings.EqualFold(s, "drop"):
		return openflow.OFPC_FRAG_DROP, true
	case strings.EqualFold(s, "reassemble"):
		return openflow.OFPC_FRAG_REASM, true
	case strings.EqualFold(s, "nx-match"):
		return nx.OFPC_FRAG_NX_MATCH, true
	}

	return 0, false
}
