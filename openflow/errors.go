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

import "github.com/pkg/errors"

// Wire-level decode failures. Each variable corresponds to an error code a
// controller would send back in an OFPT_ERROR message; callers can test them
// with errors.Cause or errors.Is after translation layers add context.
var (
	// ErrBadLength indicates a message or match whose length field does not
	// agree with its type.
	ErrBadLength = errors.New("bad message length")

	// ErrBadVersion indicates an OpenFlow version this library does not
	// speak (only 1.0, 1.1 and 1.2 are supported).
	ErrBadVersion = errors.New("unsupported OpenFlow version")

	// ErrBadType indicates an unknown message type for the given version.
	ErrBadType = errors.New("unknown message type")

	// ErrBadStat indicates an unknown statistics request or reply type.
	ErrBadStat = errors.New("unknown statistics type")

	// ErrBadVendor indicates a vendor (experimenter) ID other than Nicira.
	ErrBadVendor = errors.New("unknown vendor ID")

	// ErrBadSubtype indicates an unknown Nicira extension subtype.
	ErrBadSubtype = errors.New("unknown vendor subtype")

	// ErrBadMatchType indicates an ofp_match_header with a type this
	// library cannot interpret for the message's version.
	ErrBadMatchType = errors.New("unsupported match type")

	// ErrBadValue indicates a field value outside its legal range, such as
	// a VLAN ID above 4095.
	ErrBadValue = errors.New("bad field value")

	// ErrBadField indicates a match on a field that the message's protocol
	// cannot express.
	ErrBadField = errors.New("unsupported match field")

	// ErrBadTag indicates an unsupported VLAN or MPLS tag combination.
	ErrBadTag = errors.New("unsupported tag match")

	// ErrBadNXM indicates a malformed NXM or OXM payload.
	ErrBadNXM = errors.New("invalid NXM")

	// ErrGroupsNotSupported is returned for messages that select an
	// OpenFlow group, which this library does not implement.
	ErrGroupsNotSupported = errors.New("groups not supported")

	// ErrBadOutPort indicates an output port number that cannot be mapped
	// between OpenFlow versions.
	ErrBadOutPort = errors.New("bad output port")

	// ErrBadInPort indicates an invalid ingress port in a packet-out
	// request.
	ErrBadInPort = errors.New("bad input port")

	// ErrBadReason indicates an unknown reason code in an asynchronous
	// message such as OFPT_PORT_STATUS.
	ErrBadReason = errors.New("unknown reason code")
)
