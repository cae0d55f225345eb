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

// Package nx implements the Nicira vendor extensions to OpenFlow 1.0: the
// vendor messages, the vendor statistics and the NXM extensible match,
// which OpenFlow 1.2 standardized as OXM.
package nx

import (
	"encoding/binary"

	"github.com/mazizi/openvswitch/openflow"
)

// NX_VENDOR_ID is the Nicira vendor (experimenter) ID.
const NX_VENDOR_ID = 0x00002320

// Subtypes of Nicira vendor messages.
const (
	NXT_ROLE_REQUEST         = 10
	NXT_ROLE_REPLY           = 11
	NXT_SET_FLOW_FORMAT      = 12
	NXT_FLOW_MOD             = 13
	NXT_FLOW_REMOVED         = 14
	NXT_FLOW_MOD_TABLE_ID    = 15
	NXT_SET_PACKET_IN_FORMAT = 16
	NXT_PACKET_IN            = 17
	NXT_FLOW_AGE             = 18
	NXT_SET_ASYNC_CONFIG     = 19
	NXT_SET_CONTROLLER_ID    = 20
)

// Subtypes of Nicira vendor statistics.
const (
	NXST_FLOW      = 0
	NXST_AGGREGATE = 1
)

// Flow formats settable with NXT_SET_FLOW_FORMAT.
const (
	NXFF_OPENFLOW10 = 0
	NXFF_NXM        = 2
	NXFF_OPENFLOW12 = 3
)

// Packet-in formats settable with NXT_SET_PACKET_IN_FORMAT.
const (
	NXPIF_OPENFLOW10 = 0
	NXPIF_NXM        = 1
)

// OFPC_FRAG_NX_MATCH is an extra fragment handling policy selectable in
// OFPT_SET_CONFIG: pass the first fragment of a fragmented packet through
// flow matching instead of treating it specially.
const OFPC_FRAG_NX_MATCH = 3

// Roles settable with NXT_ROLE_REQUEST.
const (
	NX_ROLE_OTHER = iota
	NX_ROLE_MASTER
	NX_ROLE_SLAVE
)

// Wire sizes of Nicira structures. All include the OpenFlow header.
const (
	// VendorHeaderLen is the OFPT_VENDOR size up to the vendor body: the
	// OpenFlow header plus the vendor ID.
	VendorHeaderLen = 12

	// HeaderLen is the size of the full Nicira message header, the vendor
	// header plus a subtype and padding.
	HeaderLen = 16

	// StatsMsgLen is the size of the Nicira stats header: the version 1.0
	// stats header plus vendor ID, subtype and padding.
	StatsMsgLen = 24

	// VendorStatsMsgLen10 and VendorStatsMsgLen11 are the sizes of a
	// vendor stats header, up to but not including the vendor subtype.
	VendorStatsMsgLen10 = 16
	VendorStatsMsgLen11 = 20

	// RoleLen is the full NXT_ROLE_REQUEST and NXT_ROLE_REPLY size.
	RoleLen = 20

	// SetFlowFormatLen is the full NXT_SET_FLOW_FORMAT size.
	SetFlowFormatLen = 20

	// FlowModTableIDLen is the full NXT_FLOW_MOD_TABLE_ID size.
	FlowModTableIDLen = 24

	// SetPacketInFormatLen is the full NXT_SET_PACKET_IN_FORMAT size.
	SetPacketInFormatLen = 20

	// FlowModLen is the NXT_FLOW_MOD size up to the match.
	FlowModLen = 48

	// FlowRemovedLen is the NXT_FLOW_REMOVED size up to the match.
	FlowRemovedLen = 56

	// PacketInLen is the NXT_PACKET_IN size up to the match.
	PacketInLen = 40

	// FlowStatsRequestLen is the body size of an NXST_FLOW or
	// NXST_AGGREGATE request up to the match, without the stats header.
	FlowStatsRequestLen = 8

	// FlowStatsLen is the size of one NXST_FLOW reply record up to the
	// match.
	FlowStatsLen = 48

	// AggregateStatsReplyLen is the body size of an NXST_AGGREGATE reply,
	// without the stats header.
	AggregateStatsReplyLen = 24

	// SetAsyncConfigLen is the full NXT_SET_ASYNC_CONFIG size.
	SetAsyncConfigLen = 40

	// SetControllerIDLen is the full NXT_SET_CONTROLLER_ID size.
	SetControllerIDLen = 24
)

// MakeMessage returns a new Nicira vendor message of size zeroed bytes. The
// OpenFlow header is always version 1.0 because the extensions are only
// spoken over 1.0 connections.
func MakeMessage(size int, subtype uint32, xid uint32) *openflow.Buffer {
	b := openflow.MakeOpenflow(openflow.OF10_VERSION, openflow.OFPT_VENDOR, size, xid)
	data := b.Base()
	binary.BigEndian.PutUint32(data[8:12], NX_VENDOR_ID)
	binary.BigEndian.PutUint32(data[12:16], subtype)

	return b
}
