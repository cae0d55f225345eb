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

package openflow

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// OpenFlow protocol version numbers.
const (
	OF10_VERSION uint8 = 0x01
	OF11_VERSION uint8 = 0x02
	OF12_VERSION uint8 = 0x03
)

// Message types that use the same number in every OpenFlow version. The
// numbering diverges after OFPT_FLOW_MOD; the of10 and of11 packages define
// the version-specific tail.
const (
	OFPT_HELLO = iota
	OFPT_ERROR
	OFPT_ECHO_REQUEST
	OFPT_ECHO_REPLY
	OFPT_VENDOR
	OFPT_FEATURES_REQUEST
	OFPT_FEATURES_REPLY
	OFPT_GET_CONFIG_REQUEST
	OFPT_GET_CONFIG_REPLY
	OFPT_SET_CONFIG
	OFPT_PACKET_IN
	OFPT_FLOW_REMOVED
	OFPT_PORT_STATUS
	OFPT_PACKET_OUT
	OFPT_FLOW_MOD
)

// Flags of OFPT_SET_CONFIG and OFPT_GET_CONFIG_REPLY. The low two bits
// select the fragment handling policy; the nx package defines one more
// policy value.
const (
	OFPC_FRAG_NORMAL = 0
	OFPC_FRAG_DROP   = 1
	OFPC_FRAG_REASM  = 2
	OFPC_FRAG_MASK   = 3

	OFPC_INVALID_TTL_TO_CONTROLLER = 1 << 2
)

// Flow mod commands, shared by every version.
const (
	OFPFC_ADD = iota
	OFPFC_MODIFY
	OFPFC_MODIFY_STRICT
	OFPFC_DELETE
	OFPFC_DELETE_STRICT
)

// Reasons of OFPT_PACKET_IN. OFPR_INVALID_TTL exists from version 1.2 on.
const (
	OFPR_NO_MATCH = iota
	OFPR_ACTION
	OFPR_INVALID_TTL
)

// Reasons of OFPT_FLOW_REMOVED. OFPRR_GROUP_DELETE exists from version 1.1
// on.
const (
	OFPRR_IDLE_TIMEOUT = iota
	OFPRR_HARD_TIMEOUT
	OFPRR_DELETE
	OFPRR_GROUP_DELETE
)

// Reasons of OFPT_PORT_STATUS.
const (
	OFPPR_ADD = iota
	OFPPR_DELETE
	OFPPR_MODIFY
)

// Statistics types, shared by every version. OFPST_PORT_DESC is an
// extension that later OpenFlow versions adopted as a standard multipart
// type with the same number.
const (
	OFPST_DESC      = 0
	OFPST_FLOW      = 1
	OFPST_AGGREGATE = 2
	OFPST_TABLE     = 3
	OFPST_PORT      = 4
	OFPST_QUEUE     = 5
	OFPST_PORT_DESC = 13
	OFPST_VENDOR    = 0xffff
)

// OFPSF_REPLY_MORE in a stats reply's flags announces more reply segments.
const OFPSF_REPLY_MORE = 1 << 0

// HeaderLen is the size of the fixed header that starts every OpenFlow
// message.
const HeaderLen = 8

// Header is the fixed OpenFlow message header.
type Header struct {
	Version uint8
	Type    uint8
	Length  uint16
	XID     uint32
}

func (r *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderLen {
		return errors.Wrap(ErrBadLength, "truncated OpenFlow header")
	}
	r.Version = data[0]
	r.Type = data[1]
	r.Length = binary.BigEndian.Uint16(data[2:4])
	r.XID = binary.BigEndian.Uint32(data[4:8])

	return nil
}

func (r *Header) MarshalBinary() ([]byte, error) {
	data := make([]byte, HeaderLen)
	data[0] = r.Version
	data[1] = r.Type
	binary.BigEndian.PutUint16(data[2:4], r.Length)
	binary.BigEndian.PutUint32(data[4:8], r.XID)

	return data, nil
}
