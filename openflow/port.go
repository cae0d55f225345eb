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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Port numbers in the 16-bit OpenFlow 1.0 space, which this library uses as
// its internal form regardless of protocol version.
const (
	// OFPP_MAX is the highest possible physical port number.
	OFPP_MAX = 0xff00

	OFPP_IN_PORT    = 0xfff8
	OFPP_TABLE      = 0xfff9
	OFPP_NORMAL     = 0xfffa
	OFPP_FLOOD      = 0xfffb
	OFPP_ALL        = 0xfffc
	OFPP_CONTROLLER = 0xfffd
	OFPP_LOCAL      = 0xfffe
	OFPP_NONE       = 0xffff
)

// The reserved port numbers of the 32-bit OpenFlow 1.1 port space start at
// OFPP11_MAX. Reserved 1.0 ports map onto them by adding OFPP11_OFFSET.
const (
	OFPP11_MAX    = 0xffffff00
	OFPP11_OFFSET = 0xffff0000
)

var portNames = []struct {
	name string
	port uint16
}{
	{"IN_PORT", OFPP_IN_PORT},
	{"TABLE", OFPP_TABLE},
	{"NORMAL", OFPP_NORMAL},
	{"FLOOD", OFPP_FLOOD},
	{"ALL", OFPP_ALL},
	{"CONTROLLER", OFPP_CONTROLLER},
	{"LOCAL", OFPP_LOCAL},
	{"NONE", OFPP_NONE},
}

// PortFromOFP11 maps an OpenFlow 1.1 port number into the 16-bit port space.
// Ports in the dead zone between the two ranges cannot be mapped and yield
// ErrBadOutPort.
func PortFromOFP11(ofp11Port uint32) (uint16, error) {
	if ofp11Port < OFPP_MAX {
		return uint16(ofp11Port), nil
	}
	if ofp11Port >= OFPP11_MAX {
		return uint16(ofp11Port - OFPP11_OFFSET), nil
	}

	return 0, errors.Wrapf(ErrBadOutPort,
		"port %d is outside the supported range 0 through %#x or %#x through %#x",
		ofp11Port, uint32(OFPP_MAX), uint32(OFPP11_MAX), uint32(0xffffffff))
}

// PortToOFP11 maps a 16-bit port number into the OpenFlow 1.1 port space.
func PortToOFP11(port uint16) uint32 {
	if port < OFPP_MAX {
		return uint32(port)
	}

	return uint32(port) + OFPP11_OFFSET
}

// CheckOutputPort returns nil if port is valid as an output port on a switch
// with maxPorts physical ports.
func CheckOutputPort(port uint16, maxPorts int) error {
	switch port {
	case OFPP_IN_PORT, OFPP_TABLE, OFPP_NORMAL, OFPP_FLOOD, OFPP_ALL,
		OFPP_CONTROLLER, OFPP_LOCAL, OFPP_NONE:
		return nil
	default:
		if int(port) < maxPorts {
			return nil
		}
		return errors.Wrapf(ErrBadOutPort, "port %d", port)
	}
}

// PortFromString parses a port name such as "LOCAL", ignoring case, or a
// decimal port number.
func PortFromString(s string) (uint16, bool) {
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		return uint16(n), true
	}
	for _, e := range portNames {
		if strings.EqualFold(s, e.name) {
			return e.port, true
		}
	}

	return 0, false
}

// FormatPort formats a port number, using the symbolic name for reserved
// ports.
func FormatPort(port uint16) string {
	for _, e := range portNames {
		if port == e.port {
			return e.name
		}
	}

	return strconv.Itoa(int(port))
}
