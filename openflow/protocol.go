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
	"strings"

	"github.com/pkg/errors"
)

// Protocol identifies a flow format: the combination of OpenFlow version and
// extensions used to express flow entries on a connection. A Protocol value
// is a bitmap so that a set of acceptable formats can be carried around and
// narrowed; most functions that take a Protocol expect a single bit.
type Protocol uint32

const (
	// P_OF10 is the plain OpenFlow 1.0 flow format.
	P_OF10 Protocol = 1 << iota

	// P_OF10_TID is OpenFlow 1.0 with the Nicira flow_mod_table_id
	// extension enabled, which lets flow_mods name a table.
	P_OF10_TID

	// P_NXM is the Nicira extended match flow format over OpenFlow 1.0.
	P_NXM

	// P_NXM_TID is NXM with the flow_mod_table_id extension enabled.
	P_NXM_TID

	// P_OF12 is the OpenFlow 1.2 flow format with OXM matches.
	P_OF12
)

const (
	P_NONE     Protocol = 0
	P_OF10_ANY          = P_OF10 | P_OF10_TID
	P_NXM_ANY           = P_NXM | P_NXM_TID
	P_ANY               = P_OF10_ANY | P_NXM_ANY | P_OF12

	// P_TID covers the protocols with the flow_mod_table_id extension
	// enabled. OpenFlow 1.2 can always name a table, but it does not carry
	// this bit because no extension needs to be switched on for it.
	P_TID = P_OF10_TID | P_NXM_TID
)

// FlowDumpProtocols lists the single protocols that can dump every flow that
// can be set up with that same protocol, in order of preference.
var FlowDumpProtocols = []Protocol{P_OF12, P_NXM, P_OF10}

// ProtocolFromOFPVersion returns the protocol a connection starts out with
// after negotiating the given OpenFlow version, or 0 for versions this
// library does not speak.
func ProtocolFromOFPVersion(version uint8) Protocol {
	switch version {
	case OF10_VERSION:
		return P_OF10
	case OF12_VERSION:
		return P_OF12
	default:
		return 0
	}
}

// IsValid reports whether r is a single protocol rather than a set.
func (r Protocol) IsValid() bool {
	return r&P_ANY != 0 && r&(r-1) == 0
}

// OFPVersion returns the OpenFlow version that carries the protocol. It
// panics unless r is a single protocol.
func (r Protocol) OFPVersion() uint8 {
	switch r {
	case P_OF10, P_OF10_TID, P_NXM, P_NXM_TID:
		return OF10_VERSION
	case P_OF12:
		return OF12_VERSION
	default:
		panic("not a single protocol")
	}
}

// SetTID returns the protocol closest to r with the flow_mod_table_id
// extension enabled or disabled as given. It panics unless r is a single
// protocol.
func (r Protocol) SetTID(enable bool) Protocol {
	switch r {
	case P_OF10, P_OF10_TID:
		if enable {
			return P_OF10_TID
		}
		return P_OF10
	case P_NXM, P_NXM_TID:
		if enable {
			return P_NXM_TID
		}
		return P_NXM
	case P_OF12:
		return P_OF12
	default:
		panic("not a single protocol")
	}
}

// ToBase returns r with the flow_mod_table_id extension disabled.
func (r Protocol) ToBase() Protocol {
	return r.SetTID(false)
}

// SetBase returns the protocol with the given base flow format but the same
// flow_mod_table_id setting as r. Both arguments must be single protocols.
func (r Protocol) SetBase(base Protocol) Protocol {
	tid := r&P_TID != 0
	switch base.ToBase() {
	case P_OF10:
		return P_OF10.SetTID(tid)
	case P_NXM:
		return P_NXM.SetTID(tid)
	case P_OF12:
		return P_OF12
	default:
		panic("not a single protocol")
	}
}

type protocolName struct {
	protocol Protocol
	name     string
}

// Shorthands accepted and produced for common protocol sets.
var protocolAbbrevs = []protocolName{
	{P_ANY, "any"},
	{P_OF10_ANY, "OpenFlow10"},
	{P_NXM_ANY, "NXM"},
}

var protocolNames = []protocolName{
	{P_OF10, "OpenFlow10-table_id"},
	{P_OF10_TID, "OpenFlow10+table_id"},
	{P_NXM, "NXM-table_id"},
	{P_NXM_TID, "NXM+table_id"},
	{P_OF12, "OpenFlow12"},
}

// String formats a protocol or protocol set. Sets that have an abbreviation
// use it; other sets come out as a comma separated list of their members.
func (r Protocol) String() string {
	for _, abbrev := range protocolAbbrevs {
		if r == abbrev.protocol {
			return abbrev.name
		}
	}
	if r.IsValid() {
		for _, single := range protocolNames {
			if r == single.protocol {
				return single.name
			}
		}
	}

	var names []string
	for _, single := range protocolNames {
		if r&single.protocol != 0 {
			names = append(names, single.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, ",")
}

// ProtocolFromString parses a single protocol name or an abbreviation.
// Matching ignores case.
func ProtocolFromString(s string) (Protocol, error) {
	for _, abbrev := range protocolAbbrevs {
		if strings.EqualFold(s, abbrev.name) {
			return abbrev.protocol, nil
		}
	}
	for _, single := range protocolNames {
		if strings.EqualFold(s, single.name) {
			return single.protocol, nil
		}
	}

	return 0, errors.Errorf("unknown flow protocol %q", s)
}

// ProtocolsFromString parses a comma separated list of protocol names into
// the union of the named protocols.
func ProtocolsFromString(s string) (Protocol, error) {
	var protocols Protocol
	for _, name := range strings.Split(s, ",") {
		p, err := ProtocolFromString(name)
		if err != nil {
			return 0, err
		}
		protocols |= p
	}

	return protocols, nil
}
