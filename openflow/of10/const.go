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

// Package of10 implements the OpenFlow 1.0 wire structures. Message types 0
// through OFPT_FLOW_MOD are shared with the other versions and live in the
// openflow package.
package of10

// Version 1.0 message types above the shared range.
const (
	OFPT_PORT_MOD = iota + 15
	OFPT_STATS_REQUEST
	OFPT_STATS_REPLY
	OFPT_BARRIER_REQUEST
	OFPT_BARRIER_REPLY
	OFPT_QUEUE_GET_CONFIG_REQUEST
	OFPT_QUEUE_GET_CONFIG_REPLY
)

// Flow wildcards of the version 1.0 match.
const (
	OFPFW_IN_PORT  = 1 << 0
	OFPFW_DL_VLAN  = 1 << 1
	OFPFW_DL_SRC   = 1 << 2
	OFPFW_DL_DST   = 1 << 3
	OFPFW_DL_TYPE  = 1 << 4
	OFPFW_NW_PROTO = 1 << 5
	OFPFW_TP_SRC   = 1 << 6
	OFPFW_TP_DST   = 1 << 7
)

// The IP address wildcards are bit counts, not single flags.
const (
	OFPFW_NW_SRC_SHIFT = 8
	OFPFW_NW_SRC_BITS  = 6
	OFPFW_NW_SRC_MASK  = ((1 << OFPFW_NW_SRC_BITS) - 1) << OFPFW_NW_SRC_SHIFT
	OFPFW_NW_SRC_ALL   = 32 << OFPFW_NW_SRC_SHIFT

	OFPFW_NW_DST_SHIFT = 14
	OFPFW_NW_DST_BITS  = 6
	OFPFW_NW_DST_MASK  = ((1 << OFPFW_NW_DST_BITS) - 1) << OFPFW_NW_DST_SHIFT
	OFPFW_NW_DST_ALL   = 32 << OFPFW_NW_DST_SHIFT

	OFPFW_DL_VLAN_PCP = 1 << 20
	OFPFW_NW_TOS      = 1 << 21

	OFPFW_ALL = 1<<22 - 1
)

// Datapath capabilities advertised in OFPT_FEATURES_REPLY.
const (
	OFPC_FLOW_STATS   = 1 << 0
	OFPC_TABLE_STATS  = 1 << 1
	OFPC_PORT_STATS   = 1 << 2
	OFPC_STP          = 1 << 3
	OFPC_RESERVED     = 1 << 4
	OFPC_IP_REASM     = 1 << 5
	OFPC_QUEUE_STATS  = 1 << 6
	OFPC_ARP_MATCH_IP = 1 << 7
)

// Version 1.0 action types, also the bit positions of the action bitmap in
// OFPT_FEATURES_REPLY.
const (
	OFPAT_OUTPUT = iota
	OFPAT_SET_VLAN_VID
	OFPAT_SET_VLAN_PCP
	OFPAT_STRIP_VLAN
	OFPAT_SET_DL_SRC
	OFPAT_SET_DL_DST
	OFPAT_SET_NW_SRC
	OFPAT_SET_NW_DST
	OFPAT_SET_NW_TOS
	OFPAT_SET_TP_SRC
	OFPAT_SET_TP_DST
	OFPAT_ENQUEUE
)

// Port configuration bits.
const (
	OFPPC_PORT_DOWN    = 1 << 0
	OFPPC_NO_STP       = 1 << 1
	OFPPC_NO_RECV      = 1 << 2
	OFPPC_NO_RECV_STP  = 1 << 3
	OFPPC_NO_FLOOD     = 1 << 4
	OFPPC_NO_FWD       = 1 << 5
	OFPPC_NO_PACKET_IN = 1 << 6

	OFPPC_ALL = OFPPC_PORT_DOWN | OFPPC_NO_STP | OFPPC_NO_RECV |
		OFPPC_NO_RECV_STP | OFPPC_NO_FLOOD | OFPPC_NO_FWD | OFPPC_NO_PACKET_IN
)

// Port state bits.
const (
	OFPPS_LINK_DOWN = 1 << 0

	OFPPS_STP_LISTEN  = 0 << 8
	OFPPS_STP_LEARN   = 1 << 8
	OFPPS_STP_FORWARD = 2 << 8
	OFPPS_STP_BLOCK   = 3 << 8
	OFPPS_STP_MASK    = 3 << 8

	OFPPS_ALL = OFPPS_LINK_DOWN | OFPPS_STP_MASK
)

// Port feature bits.
const (
	OFPPF_10MB_HD    = 1 << 0
	OFPPF_10MB_FD    = 1 << 1
	OFPPF_100MB_HD   = 1 << 2
	OFPPF_100MB_FD   = 1 << 3
	OFPPF_1GB_HD     = 1 << 4
	OFPPF_1GB_FD     = 1 << 5
	OFPPF_10GB_FD    = 1 << 6
	OFPPF_COPPER     = 1 << 7
	OFPPF_FIBER      = 1 << 8
	OFPPF_AUTONEG    = 1 << 9
	OFPPF_PAUSE      = 1 << 10
	OFPPF_PAUSE_ASYM = 1 << 11
)

// Flow mod flags.
const (
	OFPFF_SEND_FLOW_REM = 1 << 0
	OFPFF_CHECK_OVERLAP = 1 << 1
	OFPFF_EMERG         = 1 << 2
)

// Wire sizes of version 1.0 structures, without any OpenFlow header except
// where noted.
const (
	// MatchLen is the size of the fixed ofp_match.
	MatchLen = 40

	// FlowModLen is the full OFPT_FLOW_MOD size up to the actions.
	FlowModLen = 72

	// PhyPortLen is the size of one physical port description.
	PhyPortLen = 48

	// SwitchFeaturesLen is the OFPT_FEATURES_REPLY size up to the ports.
	SwitchFeaturesLen = 32

	// SwitchConfigLen is the full OFPT_GET_CONFIG_REPLY or OFPT_SET_CONFIG
	// size.
	SwitchConfigLen = 12

	// PacketInLen is the OFPT_PACKET_IN size up to the frame data.
	PacketInLen = 18

	// FlowRemovedLen is the full OFPT_FLOW_REMOVED size.
	FlowRemovedLen = 88

	// PacketOutLen is the OFPT_PACKET_OUT size up to the actions.
	PacketOutLen = 16

	// PortModLen is the full OFPT_PORT_MOD size.
	PortModLen = 32

	// StatsMsgLen is the size of the stats request and reply header, an
	// OpenFlow header plus type and flags.
	StatsMsgLen = 12

	// FlowStatsRequestLen is the body size of an OFPST_FLOW or
	// OFPST_AGGREGATE request, without the stats header.
	FlowStatsRequestLen = 44

	// FlowStatsLen is the size of one OFPST_FLOW reply record up to the
	// actions.
	FlowStatsLen = 88

	// DescStatsLen is the body size of an OFPST_DESC reply.
	DescStatsLen = 1056

	// AggregateStatsReplyLen is the body size of an OFPST_AGGREGATE reply.
	AggregateStatsReplyLen = 24

	// PortStatsRequestLen and QueueStatsRequestLen are the body sizes of
	// the OFPST_PORT and OFPST_QUEUE requests.
	PortStatsRequestLen  = 8
	QueueStatsRequestLen = 8

	// TableStatsLen, PortStatsLen and QueueStatsLen are the sizes of one
	// record in the corresponding stats replies.
	TableStatsLen = 64
	PortStatsLen  = 104
	QueueStatsLen = 32
)
