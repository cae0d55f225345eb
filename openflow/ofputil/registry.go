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

// Package ofputil translates OpenFlow 1.0, 1.1 and 1.2 messages and the
// Nicira extension messages to and from version independent forms, so that
// the rest of a controller can work with one representation of a flow entry,
// a port or a statistic regardless of what a switch speaks.
package ofputil

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
	"github.com/mazizi/openvswitch/openflow/nx"
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// MessageCode identifies a message variety independent of its wire encoding.
// One code can cover several encodings: OFPT_HELLO stands for the hello of
// every version, while OFPST10_FLOW_REPLY and OFPST11_FLOW_REPLY are split
// because their bodies differ.
type MessageCode int

const (
	MSG_INVALID MessageCode = iota

	OFPT_HELLO
	OFPT_ERROR
	OFPT_ECHO_REQUEST
	OFPT_ECHO_REPLY
	OFPT_FEATURES_REQUEST
	OFPT_FEATURES_REPLY
	OFPT_GET_CONFIG_REQUEST
	OFPT_GET_CONFIG_REPLY
	OFPT_SET_CONFIG
	OFPT_PACKET_IN
	OFPT_FLOW_REMOVED
	OFPT_PORT_STATUS
	OFPT_PACKET_OUT
	OFPT10_FLOW_MOD
	OFPT11_FLOW_MOD
	OFPT_PORT_MOD
	OFPT_BARRIER_REQUEST
	OFPT_BARRIER_REPLY

	OFPST_DESC_REQUEST
	OFPST_DESC_REPLY
	OFPST10_FLOW_REQUEST
	OFPST10_FLOW_REPLY
	OFPST11_FLOW_REQUEST
	OFPST11_FLOW_REPLY
	OFPST10_AGGREGATE_REQUEST
	OFPST10_AGGREGATE_REPLY
	OFPST11_AGGREGATE_REQUEST
	OFPST11_AGGREGATE_REPLY
	OFPST_TABLE_REQUEST
	OFPST_TABLE_REPLY
	OFPST_PORT_REQUEST
	OFPST_PORT_REPLY
	OFPST_QUEUE_REQUEST
	OFPST_QUEUE_REPLY
	OFPST_PORT_DESC_REQUEST
	OFPST_PORT_DESC_REPLY

	NXT_ROLE_REQUEST
	NXT_ROLE_REPLY
	NXT_SET_FLOW_FORMAT
	NXT_SET_PACKET_IN_FORMAT
	NXT_PACKET_IN
	NXT_FLOW_MOD
	NXT_FLOW_REMOVED
	NXT_FLOW_MOD_TABLE_ID
	NXT_FLOW_AGE
	NXT_SET_ASYNC_CONFIG
	NXT_SET_CONTROLLER_ID

	NXST_FLOW_REQUEST
	NXST_FLOW_REPLY
	NXST_AGGREGATE_REQUEST
	NXST_AGGREGATE_REPLY
)

// MessageType describes one wire encoding of a message variety: the header
// fields that identify it and the size it must have.
type MessageType struct {
	Code MessageCode
	Name string

	// Identification. A zero version matches any version. The stat,
	// vendor and subtype fields only apply to the message types that
	// carry them and are zero otherwise.
	version uint8
	ofpType uint8
	stat    uint16
	vendor  uint32
	subtype uint32

	// minSize is the smallest valid total message size. extraMultiple is
	// zero if minSize is exact, one if any longer message is valid, and
	// otherwise the record size the message may grow by.
	minSize       int
	extraMultiple int
}

func (r *MessageType) String() string {
	return r.Name
}

var invalidType = MessageType{Code: MSG_INVALID, Name: "invalid"}

func ofpt(code MessageCode, version, rawType uint8, name string, minSize, extraMultiple int) MessageType {
	return MessageType{Code: code, Name: name, version: version, ofpType: rawType,
		minSize: minSize, extraMultiple: extraMultiple}
}

func ofpst(code MessageCode, version, rawType uint8, stat uint16, name string, minSize, extraMultiple int) MessageType {
	return MessageType{Code: code, Name: name, version: version, ofpType: rawType,
		stat: stat, minSize: minSize, extraMultiple: extraMultiple}
}

func nxt(code MessageCode, subtype uint32, name string, minSize, extraMultiple int) MessageType {
	return MessageType{Code: code, Name: name, version: openflow.OF10_VERSION,
		ofpType: openflow.OFPT_VENDOR, vendor: nx.NX_VENDOR_ID, subtype: subtype,
		minSize: minSize, extraMultiple: extraMultiple}
}

func nxst(code MessageCode, rawType uint8, subtype uint32, name string, minSize, extraMultiple int) MessageType {
	return MessageType{Code: code, Name: name, version: openflow.OF10_VERSION,
		ofpType: rawType, stat: openflow.OFPST_VENDOR, vendor: nx.NX_VENDOR_ID,
		subtype: subtype, minSize: minSize, extraMultiple: extraMultiple}
}

var messageTypes = []MessageType{
	ofpt(OFPT_ERROR, 0, openflow.OFPT_ERROR, "OFPT_ERROR", 12, 1),

	ofpt(OFPT_HELLO, openflow.OF10_VERSION, openflow.OFPT_HELLO, "OFPT_HELLO", 8, 1),
	ofpt(OFPT_ECHO_REQUEST, openflow.OF10_VERSION, openflow.OFPT_ECHO_REQUEST, "OFPT_ECHO_REQUEST", 8, 1),
	ofpt(OFPT_ECHO_REPLY, openflow.OF10_VERSION, openflow.OFPT_ECHO_REPLY, "OFPT_ECHO_REPLY", 8, 1),
	ofpt(OFPT_FEATURES_REQUEST, openflow.OF10_VERSION, openflow.OFPT_FEATURES_REQUEST, "OFPT_FEATURES_REQUEST", 8, 0),
	ofpt(OFPT_FEATURES_REPLY, openflow.OF10_VERSION, openflow.OFPT_FEATURES_REPLY, "OFPT_FEATURES_REPLY",
		of10.SwitchFeaturesLen, of10.PhyPortLen),
	ofpt(OFPT_GET_CONFIG_REQUEST, openflow.OF10_VERSION, openflow.OFPT_GET_CONFIG_REQUEST, "OFPT_GET_CONFIG_REQUEST", 8, 0),
	ofpt(OFPT_GET_CONFIG_REPLY, openflow.OF10_VERSION, openflow.OFPT_GET_CONFIG_REPLY, "OFPT_GET_CONFIG_REPLY",
		of10.SwitchConfigLen, 0),
	ofpt(OFPT_SET_CONFIG, openflow.OF10_VERSION, openflow.OFPT_SET_CONFIG, "OFPT_SET_CONFIG", of10.SwitchConfigLen, 0),
	ofpt(OFPT_PACKET_IN, openflow.OF10_VERSION, openflow.OFPT_PACKET_IN, "OFPT_PACKET_IN", of10.PacketInLen, 1),
	ofpt(OFPT_FLOW_REMOVED, openflow.OF10_VERSION, openflow.OFPT_FLOW_REMOVED, "OFPT_FLOW_REMOVED", of10.FlowRemovedLen, 0),
	ofpt(OFPT_PORT_STATUS, openflow.OF10_VERSION, openflow.OFPT_PORT_STATUS, "OFPT_PORT_STATUS",
		16+of10.PhyPortLen, 0),
	ofpt(OFPT_PACKET_OUT, openflow.OF10_VERSION, openflow.OFPT_PACKET_OUT, "OFPT_PACKET_OUT", of10.PacketOutLen, 1),
	ofpt(OFPT10_FLOW_MOD, openflow.OF10_VERSION, openflow.OFPT_FLOW_MOD, "OFPT10_FLOW_MOD", of10.FlowModLen, 1),
	ofpt(OFPT_PORT_MOD, openflow.OF10_VERSION, of10.OFPT_PORT_MOD, "OFPT_PORT_MOD", of10.PortModLen, 0),
	ofpt(OFPT_BARRIER_REQUEST, openflow.OF10_VERSION, of10.OFPT_BARRIER_REQUEST, "OFPT_BARRIER_REQUEST", 8, 0),
	ofpt(OFPT_BARRIER_REPLY, openflow.OF10_VERSION, of10.OFPT_BARRIER_REPLY, "OFPT_BARRIER_REPLY", 8, 0),

	ofpt(OFPT_FEATURES_REPLY, openflow.OF11_VERSION, openflow.OFPT_FEATURES_REPLY, "OFPT_FEATURES_REPLY",
		of11.SwitchFeaturesLen, of11.PortLen),
	ofpt(OFPT_PORT_STATUS, openflow.OF11_VERSION, openflow.OFPT_PORT_STATUS, "OFPT_PORT_STATUS",
		16+of11.PortLen, 0),
	ofpt(OFPT_PACKET_OUT, openflow.OF11_VERSION, openflow.OFPT_PACKET_OUT, "OFPT_PACKET_OUT", of11.PacketOutLen, 1),
	ofpt(OFPT11_FLOW_MOD, openflow.OF11_VERSION, openflow.OFPT_FLOW_MOD, "OFPT11_FLOW_MOD", of11.FlowModLen, 1),
	ofpt(OFPT_PORT_MOD, openflow.OF11_VERSION, of11.OFPT_PORT_MOD, "OFPT_PORT_MOD", of11.PortModLen, 0),

	ofpt(OFPT_HELLO, openflow.OF12_VERSION, openflow.OFPT_HELLO, "OFPT_HELLO", 8, 1),
	ofpt(OFPT_ECHO_REQUEST, openflow.OF12_VERSION, openflow.OFPT_ECHO_REQUEST, "OFPT_ECHO_REQUEST", 8, 1),
	ofpt(OFPT_ECHO_REPLY, openflow.OF12_VERSION, openflow.OFPT_ECHO_REPLY, "OFPT_ECHO_REPLY", 8, 1),
	ofpt(OFPT_FEATURES_REQUEST, openflow.OF12_VERSION, openflow.OFPT_FEATURES_REQUEST, "OFPT_FEATURES_REQUEST", 8, 0),
	ofpt(OFPT_FEATURES_REPLY, openflow.OF12_VERSION, openflow.OFPT_FEATURES_REPLY, "OFPT_FEATURES_REPLY",
		of11.SwitchFeaturesLen, of11.PortLen),
	ofpt(OFPT_GET_CONFIG_REQUEST, openflow.OF12_VERSION, openflow.OFPT_GET_CONFIG_REQUEST, "OFPT_GET_CONFIG_REQUEST", 8, 0),
	ofpt(OFPT_GET_CONFIG_REPLY, openflow.OF12_VERSION, openflow.OFPT_GET_CONFIG_REPLY, "OFPT_GET_CONFIG_REPLY",
		of10.SwitchConfigLen, 0),
	ofpt(OFPT_SET_CONFIG, openflow.OF12_VERSION, openflow.OFPT_SET_CONFIG, "OFPT_SET_CONFIG", of10.SwitchConfigLen, 0),
	ofpt(OFPT_FLOW_REMOVED, openflow.OF12_VERSION, openflow.OFPT_FLOW_REMOVED, "OFPT_FLOW_REMOVED",
		of11.FlowRemoved12Len+8, 8),
	ofpt(OFPT_PACKET_IN, openflow.OF12_VERSION, openflow.OFPT_PACKET_IN, "OFPT_PACKET_IN", of10.PacketInLen, 1),
	ofpt(OFPT_PACKET_OUT, openflow.OF12_VERSION, openflow.OFPT_PACKET_OUT, "OFPT_PACKET_OUT", of11.PacketOutLen, 1),
	ofpt(OFPT11_FLOW_MOD, openflow.OF12_VERSION, openflow.OFPT_FLOW_MOD, "OFPT11_FLOW_MOD", of11.FlowModLen, 1),
	ofpt(OFPT_PORT_MOD, openflow.OF12_VERSION, of11.OFPT_PORT_MOD, "OFPT_PORT_MOD", of11.PortModLen, 0),
	ofpt(OFPT_BARRIER_REQUEST, openflow.OF12_VERSION, of11.OFPT_BARRIER_REQUEST, "OFPT_BARRIER_REQUEST", 8, 0),
	ofpt(OFPT_BARRIER_REPLY, openflow.OF12_VERSION, of11.OFPT_BARRIER_REPLY, "OFPT_BARRIER_REPLY", 8, 0),

	ofpst(OFPST_DESC_REQUEST, openflow.OF10_VERSION, of10.OFPT_STATS_REQUEST, openflow.OFPST_DESC,
		"OFPST_DESC request", of10.StatsMsgLen, 0),
	ofpst(OFPST10_FLOW_REQUEST, openflow.OF10_VERSION, of10.OFPT_STATS_REQUEST, openflow.OFPST_FLOW,
		"OFPST10_FLOW request", of10.StatsMsgLen+of10.FlowStatsRequestLen, 0),
	ofpst(OFPST10_AGGREGATE_REQUEST, openflow.OF10_VERSION, of10.OFPT_STATS_REQUEST, openflow.OFPST_AGGREGATE,
		"OFPST10_AGGREGATE request", of10.StatsMsgLen+of10.FlowStatsRequestLen, 0),
	ofpst(OFPST_TABLE_REQUEST, openflow.OF10_VERSION, of10.OFPT_STATS_REQUEST, openflow.OFPST_TABLE,
		"OFPST_TABLE request", of10.StatsMsgLen, 0),
	ofpst(OFPST_PORT_REQUEST, openflow.OF10_VERSION, of10.OFPT_STATS_REQUEST, openflow.OFPST_PORT,
		"OFPST_PORT request", of10.StatsMsgLen+of10.PortStatsRequestLen, 0),
	ofpst(OFPST_QUEUE_REQUEST, openflow.OF10_VERSION, of10.OFPT_STATS_REQUEST, openflow.OFPST_QUEUE,
		"OFPST_QUEUE request", of10.StatsMsgLen+of10.QueueStatsRequestLen, 0),
	ofpst(OFPST_PORT_DESC_REQUEST, openflow.OF10_VERSION, of10.OFPT_STATS_REQUEST, openflow.OFPST_PORT_DESC,
		"OFPST_PORT_DESC request", of10.StatsMsgLen, 0),

	ofpst(OFPST_DESC_REQUEST, openflow.OF11_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_DESC,
		"OFPST_DESC request", of11.StatsMsgLen, 0),
	ofpst(OFPST_TABLE_REQUEST, openflow.OF11_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_TABLE,
		"OFPST_TABLE request", of11.StatsMsgLen, 0),
	ofpst(OFPST_PORT_REQUEST, openflow.OF11_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_PORT,
		"OFPST_PORT request", of11.StatsMsgLen+of11.PortStatsRequestLen, 0),
	ofpst(OFPST_QUEUE_REQUEST, openflow.OF11_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_QUEUE,
		"OFPST_QUEUE request", of11.StatsMsgLen+of11.QueueStatsRequestLen, 0),
	ofpst(OFPST_PORT_DESC_REQUEST, openflow.OF11_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_PORT_DESC,
		"OFPST_PORT_DESC request", of11.StatsMsgLen, 0),

	ofpst(OFPST_DESC_REQUEST, openflow.OF12_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_DESC,
		"OFPST_DESC request", of11.StatsMsgLen, 0),
	ofpst(OFPST11_FLOW_REQUEST, openflow.OF12_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_FLOW,
		"OFPST11_FLOW request", of11.StatsMsgLen+of11.FlowStatsRequestLen, 1),
	ofpst(OFPST11_AGGREGATE_REQUEST, openflow.OF12_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_AGGREGATE,
		"OFPST11_AGGREGATE request", of11.StatsMsgLen+of11.FlowStatsRequestLen, 1),
	ofpst(OFPST_TABLE_REQUEST, openflow.OF12_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_TABLE,
		"OFPST_TABLE request", of11.StatsMsgLen, 0),
	ofpst(OFPST_PORT_REQUEST, openflow.OF12_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_PORT,
		"OFPST_PORT request", of11.StatsMsgLen+of11.PortStatsRequestLen, 0),
	ofpst(OFPST_QUEUE_REQUEST, openflow.OF12_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_QUEUE,
		"OFPST_QUEUE request", of11.StatsMsgLen+of11.QueueStatsRequestLen, 0),
	ofpst(OFPST_PORT_DESC_REQUEST, openflow.OF12_VERSION, of11.OFPT_STATS_REQUEST, openflow.OFPST_PORT_DESC,
		"OFPST_PORT_DESC request", of11.StatsMsgLen, 0),

	ofpst(OFPST_DESC_REPLY, openflow.OF10_VERSION, of10.OFPT_STATS_REPLY, openflow.OFPST_DESC,
		"OFPST_DESC reply", of10.StatsMsgLen+of10.DescStatsLen, 0),
	ofpst(OFPST10_FLOW_REPLY, openflow.OF10_VERSION, of10.OFPT_STATS_REPLY, openflow.OFPST_FLOW,
		"OFPST10_FLOW reply", of10.StatsMsgLen, 1),
	ofpst(OFPST10_AGGREGATE_REPLY, openflow.OF10_VERSION, of10.OFPT_STATS_REPLY, openflow.OFPST_AGGREGATE,
		"OFPST10_AGGREGATE reply", of10.StatsMsgLen+of10.AggregateStatsReplyLen, 0),
	ofpst(OFPST_TABLE_REPLY, openflow.OF10_VERSION, of10.OFPT_STATS_REPLY, openflow.OFPST_TABLE,
		"OFPST_TABLE reply", of10.StatsMsgLen, of10.TableStatsLen),
	ofpst(OFPST_PORT_REPLY, openflow.OF10_VERSION, of10.OFPT_STATS_REPLY, openflow.OFPST_PORT,
		"OFPST_PORT reply", of10.StatsMsgLen, of10.PortStatsLen),
	ofpst(OFPST_QUEUE_REPLY, openflow.OF10_VERSION, of10.OFPT_STATS_REPLY, openflow.OFPST_QUEUE,
		"OFPST_QUEUE reply", of10.StatsMsgLen, of10.QueueStatsLen),
	ofpst(OFPST_PORT_DESC_REPLY, openflow.OF10_VERSION, of10.OFPT_STATS_REPLY, openflow.OFPST_PORT_DESC,
		"OFPST_PORT_DESC reply", of10.StatsMsgLen, of10.PhyPortLen),

	ofpst(OFPST_DESC_REPLY, openflow.OF11_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_DESC,
		"OFPST_DESC reply", of11.StatsMsgLen+of11.DescStatsLen, 0),
	ofpst(OFPST11_AGGREGATE_REPLY, openflow.OF11_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_AGGREGATE,
		"OFPST11_AGGREGATE reply", of11.StatsMsgLen+of11.AggregateStatsReplyLen, 0),
	ofpst(OFPST_TABLE_REPLY, openflow.OF11_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_TABLE,
		"OFPST_TABLE reply", of11.StatsMsgLen, of11.TableStatsLen),
	ofpst(OFPST_PORT_REPLY, openflow.OF11_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_PORT,
		"OFPST_PORT reply", of11.StatsMsgLen, of11.PortStatsLen),
	ofpst(OFPST_QUEUE_REPLY, openflow.OF11_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_QUEUE,
		"OFPST_QUEUE reply", of11.StatsMsgLen, of11.QueueStatsLen),
	ofpst(OFPST_PORT_DESC_REPLY, openflow.OF11_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_PORT_DESC,
		"OFPST_PORT_DESC reply", of11.StatsMsgLen, of11.PortLen),

	ofpst(OFPST_DESC_REPLY, openflow.OF12_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_DESC,
		"OFPST_DESC reply", of11.StatsMsgLen+of11.DescStatsLen, 0),
	ofpst(OFPST11_FLOW_REPLY, openflow.OF12_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_FLOW,
		"OFPST11_FLOW reply", of11.StatsMsgLen, 1),
	ofpst(OFPST11_AGGREGATE_REPLY, openflow.OF12_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_AGGREGATE,
		"OFPST11_AGGREGATE reply", of11.StatsMsgLen+of11.AggregateStatsReplyLen, 0),
	ofpst(OFPST_TABLE_REPLY, openflow.OF12_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_TABLE,
		"OFPST_TABLE reply", of11.StatsMsgLen, of11.TableStats12Len),
	ofpst(OFPST_PORT_REPLY, openflow.OF12_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_PORT,
		"OFPST_PORT reply", of11.StatsMsgLen, of11.PortStatsLen),
	ofpst(OFPST_QUEUE_REPLY, openflow.OF12_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_QUEUE,
		"OFPST_QUEUE reply", of11.StatsMsgLen, of11.QueueStatsLen),
	ofpst(OFPST_PORT_DESC_REPLY, openflow.OF12_VERSION, of11.OFPT_STATS_REPLY, openflow.OFPST_PORT_DESC,
		"OFPST_PORT_DESC reply", of11.StatsMsgLen, of11.PortLen),

	nxt(NXT_ROLE_REQUEST, nx.NXT_ROLE_REQUEST, "NXT_ROLE_REQUEST", nx.RoleLen, 0),
	nxt(NXT_ROLE_REPLY, nx.NXT_ROLE_REPLY, "NXT_ROLE_REPLY", nx.RoleLen, 0),
	nxt(NXT_SET_FLOW_FORMAT, nx.NXT_SET_FLOW_FORMAT, "NXT_SET_FLOW_FORMAT", nx.SetFlowFormatLen, 0),
	nxt(NXT_SET_PACKET_IN_FORMAT, nx.NXT_SET_PACKET_IN_FORMAT, "NXT_SET_PACKET_IN_FORMAT", nx.SetPacketInFormatLen, 0),
	nxt(NXT_PACKET_IN, nx.NXT_PACKET_IN, "NXT_PACKET_IN", nx.PacketInLen, 1),
	nxt(NXT_FLOW_MOD, nx.NXT_FLOW_MOD, "NXT_FLOW_MOD", nx.FlowModLen, 8),
	nxt(NXT_FLOW_REMOVED, nx.NXT_FLOW_REMOVED, "NXT_FLOW_REMOVED", nx.FlowRemovedLen, 8),
	nxt(NXT_FLOW_MOD_TABLE_ID, nx.NXT_FLOW_MOD_TABLE_ID, "NXT_FLOW_MOD_TABLE_ID", nx.FlowModTableIDLen, 0),
	nxt(NXT_FLOW_AGE, nx.NXT_FLOW_AGE, "NXT_FLOW_AGE", nx.HeaderLen, 0),
	nxt(NXT_SET_ASYNC_CONFIG, nx.NXT_SET_ASYNC_CONFIG, "NXT_SET_ASYNC_CONFIG", nx.SetAsyncConfigLen, 0),
	nxt(NXT_SET_CONTROLLER_ID, nx.NXT_SET_CONTROLLER_ID, "NXT_SET_CONTROLLER_ID", nx.SetControllerIDLen, 0),

	nxst(NXST_FLOW_REQUEST, of10.OFPT_STATS_REQUEST, nx.NXST_FLOW,
		"NXST_FLOW request", nx.StatsMsgLen+nx.FlowStatsRequestLen, 8),
	nxst(NXST_AGGREGATE_REQUEST, of10.OFPT_STATS_REQUEST, nx.NXST_AGGREGATE,
		"NXST_AGGREGATE request", nx.StatsMsgLen+nx.FlowStatsRequestLen, 8),
	nxst(NXST_FLOW_REPLY, of10.OFPT_STATS_REPLY, nx.NXST_FLOW,
		"NXST_FLOW reply", nx.StatsMsgLen, 8),
	nxst(NXST_AGGREGATE_REPLY, of10.OFPT_STATS_REPLY, nx.NXST_AGGREGATE,
		"NXST_AGGREGATE reply", nx.StatsMsgLen+nx.AggregateStatsReplyLen, 0),
}

// rawMsgType is the identifying header fields of a message as received.
type rawMsgType struct {
	version uint8
	ofpType uint8
	stat    uint16
	vendor  uint32
	subtype uint32
}

func isStatsType(version, ofpType uint8) bool {
	if version == openflow.OF10_VERSION {
		return ofpType == of10.OFPT_STATS_REQUEST || ofpType == of10.OFPT_STATS_REPLY
	}

	return ofpType == of11.OFPT_STATS_REQUEST || ofpType == of11.OFPT_STATS_REPLY
}

// decodeRawMsgType reads the identifying fields out of msg. Messages that
// carry a vendor ID are rejected outright when the vendor is unknown.
func decodeRawMsgType(msg []byte) (rawMsgType, error) {
	var raw rawMsgType

	if len(msg) < openflow.HeaderLen {
		return raw, errors.Wrapf(openflow.ErrBadLength,
			"message length %d is shorter than an OpenFlow header", len(msg))
	}
	raw.version = msg[0]
	raw.ofpType = msg[1]

	switch {
	case raw.ofpType == openflow.OFPT_VENDOR:
		if len(msg) < nx.VendorHeaderLen {
			return raw, errors.Wrap(openflow.ErrBadLength, "truncated vendor message")
		}
		raw.vendor = binary.BigEndian.Uint32(msg[8:12])
		if raw.vendor != nx.NX_VENDOR_ID {
			return raw, errors.Wrapf(openflow.ErrBadVendor,
				"vendor message for unknown vendor %#x", raw.vendor)
		}
		if len(msg) < nx.HeaderLen {
			return raw, errors.Wrap(openflow.ErrBadLength, "truncated Nicira message")
		}
		raw.subtype = binary.BigEndian.Uint32(msg[12:16])

	case (raw.version == openflow.OF10_VERSION || raw.version == openflow.OF11_VERSION ||
		raw.version == openflow.OF12_VERSION) && isStatsType(raw.version, raw.ofpType):
		statsLen := of10.StatsMsgLen
		if raw.version != openflow.OF10_VERSION {
			statsLen = of11.StatsMsgLen
		}
		if len(msg) < statsLen {
			return raw, errors.Wrap(openflow.ErrBadLength, "truncated stats message")
		}
		raw.stat = binary.BigEndian.Uint16(msg[8:10])
		if raw.stat != openflow.OFPST_VENDOR {
			break
		}
		if len(msg) < statsLen+4 {
			return raw, errors.Wrap(openflow.ErrBadLength, "truncated vendor stats message")
		}
		raw.vendor = binary.BigEndian.Uint32(msg[statsLen : statsLen+4])
		if raw.vendor != nx.NX_VENDOR_ID {
			return raw, errors.Wrapf(openflow.ErrBadVendor,
				"vendor stats message for unknown vendor %#x", raw.vendor)
		}
		if len(msg) < nx.StatsMsgLen {
			return raw, errors.Wrap(openflow.ErrBadLength, "truncated Nicira stats message")
		}
		raw.subtype = binary.BigEndian.Uint32(msg[statsLen+4 : statsLen+8])
	}

	return raw, nil
}

func decodeMessageType(msg []byte) (*MessageType, error) {
	raw, err := decodeRawMsgType(msg)
	if err != nil {
		return &invalidType, err
	}

	for i := range messageTypes {
		t := &messageTypes[i]
		if (t.version == 0 || t.version == raw.version) && t.ofpType == raw.ofpType &&
			t.stat == raw.stat && t.vendor == raw.vendor && t.subtype == raw.subtype {
			return t, nil
		}
	}

	switch {
	case raw.vendor != 0:
		return &invalidType, errors.Wrapf(openflow.ErrBadSubtype,
			"unknown vendor message subtype %d", raw.subtype)
	case raw.stat != 0:
		return &invalidType, errors.Wrapf(openflow.ErrBadStat,
			"unknown stats type %d", raw.stat)
	default:
		return &invalidType, errors.Wrapf(openflow.ErrBadType,
			"unknown message type %d for version %d", raw.ofpType, raw.version)
	}
}

// checkLength validates size against the size rule of t, logging a rate
// limited warning on mismatch.
func (r *Codec) checkLength(t *MessageType, size int) error {
	switch t.extraMultiple {
	case 0:
		if size != t.minSize {
			r.diag.Warningf(t.Name, "received %s with incorrect length %d (expected length %d)",
				t.Name, size, t.minSize)

			return errors.Wrapf(openflow.ErrBadLength, "%s with invalid length %d", t.Name, size)
		}

	case 1:
		if size < t.minSize {
			r.diag.Warningf(t.Name, "received %s with incorrect length %d (expected length at least %d bytes)",
				t.Name, size, t.minSize)

			return errors.Wrapf(openflow.ErrBadLength, "%s with invalid length %d", t.Name, size)
		}

	default:
		if size < t.minSize || (size-t.minSize)%t.extraMultiple != 0 {
			r.diag.Warningf(t.Name, "received %s with incorrect length %d (must be exactly %d bytes or longer by an integer multiple of %d bytes)",
				t.Name, size, t.minSize, t.extraMultiple)

			return errors.Wrapf(openflow.ErrBadLength, "%s with invalid length %d", t.Name, size)
		}
	}

	return nil
}

// DecodeMessageType classifies the complete message msg and validates its
// length. On failure it returns the invalid sentinel type together with the
// error, so the result can always be inspected.
func (r *Codec) DecodeMessageType(msg []byte) (*MessageType, error) {
	t, err := decodeMessageType(msg)
	if err != nil {
		return t, err
	}
	if err := r.checkLength(t, len(msg)); err != nil {
		return &invalidType, err
	}

	return t, nil
}

// DecodeMessageTypePartial classifies msg, of which only a prefix may be
// present. It skips the length rule, which cannot be checked until the whole
// message has arrived.
func (r *Codec) DecodeMessageTypePartial(msg []byte) (*MessageType, error) {
	return decodeMessageType(msg)
}
