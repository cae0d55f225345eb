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

// Package of11 implements the wire structures that OpenFlow 1.1 introduced
// and 1.2 kept, including the OXM match envelope. Message types 0 through
// OFPT_FLOW_MOD are shared with version 1.0 and live in the openflow
// package.
package of11

// Message types above the shared range. The role messages exist from
// version 1.2 on.
const (
	OFPT_GROUP_MOD = iota + 15
	OFPT_PORT_MOD
	OFPT_TABLE_MOD
	OFPT_STATS_REQUEST
	OFPT_STATS_REPLY
	OFPT_BARRIER_REQUEST
	OFPT_BARRIER_REPLY
	OFPT_QUEUE_GET_CONFIG_REQUEST
	OFPT_QUEUE_GET_CONFIG_REPLY
	OFPT_ROLE_REQUEST
	OFPT_ROLE_REPLY
)

// Match types of the ofp_match_header.
const (
	OFPMT_STANDARD = 0
	OFPMT_OXM      = 1
)

// Flow wildcards of the version 1.1 standard match.
const (
	OFPFW_IN_PORT     = 1 << 0
	OFPFW_DL_VLAN     = 1 << 1
	OFPFW_DL_VLAN_PCP = 1 << 2
	OFPFW_DL_TYPE     = 1 << 3
	OFPFW_NW_TOS      = 1 << 4
	OFPFW_NW_PROTO    = 1 << 5
	OFPFW_TP_SRC      = 1 << 6
	OFPFW_TP_DST      = 1 << 7
	OFPFW_MPLS_LABEL  = 1 << 8
	OFPFW_MPLS_TC     = 1 << 9

	OFPFW_ALL = 1<<10 - 1
)

// Special VLAN IDs of the version 1.1 standard match.
const (
	// OFPVID_ANY matches any tagged packet regardless of its VLAN ID.
	OFPVID_ANY = 0xfffe

	// OFPVID_NONE matches only packets without an 802.1Q header.
	OFPVID_NONE = 0xffff
)

// Datapath capabilities advertised in OFPT_FEATURES_REPLY. OFPC_PORT_BLOCKED
// exists from version 1.2 on.
const (
	OFPC_FLOW_STATS   = 1 << 0
	OFPC_TABLE_STATS  = 1 << 1
	OFPC_PORT_STATS   = 1 << 2
	OFPC_GROUP_STATS  = 1 << 3
	OFPC_IP_REASM     = 1 << 5
	OFPC_QUEUE_STATS  = 1 << 6
	OFPC_ARP_MATCH_IP = 1 << 7
	OFPC_PORT_BLOCKED = 1 << 8
)

// Action types. Version 1.2 keeps the same numbers but drops the field
// setting actions 1 through 10 in favor of OFPAT_SET_FIELD.
const (
	OFPAT_OUTPUT = iota
	OFPAT_SET_VLAN_VID
	OFPAT_SET_VLAN_PCP
	OFPAT_SET_DL_SRC
	OFPAT_SET_DL_DST
	OFPAT_SET_NW_SRC
	OFPAT_SET_NW_DST
	OFPAT_SET_NW_TOS
	OFPAT_SET_NW_ECN
	OFPAT_SET_TP_SRC
	OFPAT_SET_TP_DST
	OFPAT_COPY_TTL_OUT
	OFPAT_COPY_TTL_IN
	OFPAT_SET_MPLS_LABEL
	OFPAT_SET_MPLS_TC
	OFPAT_SET_MPLS_TTL
	OFPAT_DEC_MPLS_TTL
	OFPAT_PUSH_VLAN
	OFPAT_POP_VLAN
	OFPAT_PUSH_MPLS
	OFPAT_POP_MPLS
	OFPAT_SET_QUEUE
	OFPAT_GROUP
	OFPAT_SET_NW_TTL
	OFPAT_DEC_NW_TTL
	OFPAT_SET_FIELD
)

// Port configuration bits.
const (
	OFPPC_PORT_DOWN    = 1 << 0
	OFPPC_NO_RECV      = 1 << 2
	OFPPC_NO_FWD       = 1 << 5
	OFPPC_NO_PACKET_IN = 1 << 6

	OFPPC_ALL = OFPPC_PORT_DOWN | OFPPC_NO_RECV | OFPPC_NO_FWD | OFPPC_NO_PACKET_IN
)

// Port state bits.
const (
	OFPPS_LINK_DOWN = 1 << 0
	OFPPS_BLOCKED   = 1 << 1
	OFPPS_LIVE      = 1 << 2

	OFPPS_ALL = OFPPS_LINK_DOWN | OFPPS_BLOCKED | OFPPS_LIVE
)

// Port feature bits, identical to the NETDEV_F_* encoding.
const (
	OFPPF_10MB_HD    = 1 << 0
	OFPPF_10MB_FD    = 1 << 1
	OFPPF_100MB_HD   = 1 << 2
	OFPPF_100MB_FD   = 1 << 3
	OFPPF_1GB_HD     = 1 << 4
	OFPPF_1GB_FD     = 1 << 5
	OFPPF_10GB_FD    = 1 << 6
	OFPPF_40GB_FD    = 1 << 7
	OFPPF_100GB_FD   = 1 << 8
	OFPPF_1TB_FD     = 1 << 9
	OFPPF_OTHER      = 1 << 10
	OFPPF_COPPER     = 1 << 11
	OFPPF_FIBER      = 1 << 12
	OFPPF_AUTONEG    = 1 << 13
	OFPPF_PAUSE      = 1 << 14
	OFPPF_PAUSE_ASYM = 1 << 15
)

// Group numbers with special meaning.
const (
	OFPG_ALL = 0xfffffffc
	OFPG_ANY = 0xffffffff
)

// Flow mod flags.
const (
	OFPFF_SEND_FLOW_REM = 1 << 0
	OFPFF_CHECK_OVERLAP = 1 << 1
	OFPFF_RESET_COUNTS  = 1 << 2
)

// Wire sizes of structures shared by versions 1.1 and 1.2, without any
// OpenFlow header except where noted.
const (
	// MatchHeaderLen is the size of the ofp_match_header that starts both
	// standard and OXM matches.
	MatchHeaderLen = 4

	// StdMatchLen is the full size of the version 1.1 standard match,
	// including its header.
	StdMatchLen = 88

	// FlowModLen is the OFPT_FLOW_MOD size up to the match.
	FlowModLen = 48

	// PortLen is the size of one port description.
	PortLen = 64

	// SwitchFeaturesLen is the OFPT_FEATURES_REPLY size up to the ports.
	SwitchFeaturesLen = 32

	// PacketIn12Len is the version 1.2 OFPT_PACKET_IN size up to the
	// match.
	PacketIn12Len = 16

	// FlowRemoved12Len is the version 1.2 OFPT_FLOW_REMOVED size up to the
	// match.
	FlowRemoved12Len = 48

	// PacketOutLen is the OFPT_PACKET_OUT size up to the actions.
	PacketOutLen = 24

	// PortModLen is the full OFPT_PORT_MOD size.
	PortModLen = 40

	// StatsMsgLen is the size of the stats request and reply header, an
	// OpenFlow header plus type, flags and padding.
	StatsMsgLen = 16

	// FlowStatsRequestLen is the body size of an OFPST_FLOW or
	// OFPST_AGGREGATE request up to the match, without the stats header.
	FlowStatsRequestLen = 32

	// FlowStatsLen is the size of one OFPST_FLOW reply record up to the
	// match.
	FlowStatsLen = 48

	// DescStatsLen is the body size of an OFPST_DESC reply.
	DescStatsLen = 1056

	// AggregateStatsReplyLen is the body size of an OFPST_AGGREGATE reply.
	AggregateStatsReplyLen = 24

	// PortStatsRequestLen and QueueStatsRequestLen are the body sizes of
	// the OFPST_PORT and OFPST_QUEUE requests.
	PortStatsRequestLen  = 8
	QueueStatsRequestLen = 8

	// TableStatsLen, PortStatsLen and QueueStatsLen are the sizes of one
	// record in the corresponding stats replies. TableStats12Len is the
	// version 1.2 table stats record.
	TableStatsLen   = 88
	TableStats12Len = 128
	PortStatsLen    = 104
	QueueStatsLen   = 32
)
