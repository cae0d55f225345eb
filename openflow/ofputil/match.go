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
	"github.com/mazizi/openvswitch/openflow/of11"
)

// pullMatchEnvelope consumes the match that starts the unconsumed part of b:
// an ofp_match_header followed by a standard match body or, from version 1.2
// on, an OXM match. paddedMatchLen, when non-nil, reports the consumed size
// including padding. Cookie entries in an OXM match are stored through
// cookie and cookieMask; passing nil for them rejects cookie entries.
func pullMatchEnvelope(b *openflow.Buffer, priority uint16, rule *openflow.Rule,
	cookie, cookieMask *uint64, paddedMatchLen *int, maxVersion uint8) error {
	p := b.Bytes()
	if len(p) < of11.MatchHeaderLen {
		return errors.Wrap(openflow.ErrBadLength, "truncated match header")
	}
	matchType := binary.BigEndian.Uint16(p[0:2])
	matchLen := int(binary.BigEndian.Uint16(p[2:4]))

	switch matchType {
	case of11.OFPMT_STANDARD:
		if matchLen != of11.StdMatchLen || b.Size() < of11.StdMatchLen {
			return errors.Wrapf(openflow.ErrBadLength, "standard match with length %d", matchLen)
		}
		var m of11.Match
		if err := m.UnmarshalBinary(b.Pull(of11.StdMatchLen)); err != nil {
			return err
		}
		if paddedMatchLen != nil {
			*paddedMatchLen = of11.StdMatchLen
		}
		var err error
		*rule, err = of11.RuleFromMatch(&m, priority)

		return err

	case of11.OFPMT_OXM:
		if maxVersion < openflow.OF12_VERSION {
			return errors.Wrap(openflow.ErrBadMatchType, "OXM match")
		}
		if paddedMatchLen != nil {
			*paddedMatchLen = nx.PaddedLen(matchLen-of11.MatchHeaderLen, of11.MatchHeaderLen) +
				of11.MatchHeaderLen
		}
		b.Pull(of11.MatchHeaderLen)

		return nx.PullMatch(b, matchLen-of11.MatchHeaderLen, of11.MatchHeaderLen,
			priority, rule, cookie, cookieMask)

	default:
		return errors.Wrapf(openflow.ErrBadMatchType, "match type %d", matchType)
	}
}

// PullOFP11Match consumes the match of a version 1.1 message, which can only
// be a standard match.
func PullOFP11Match(b *openflow.Buffer, priority uint16, rule *openflow.Rule) error {
	return pullMatchEnvelope(b, priority, rule, nil, nil, nil, openflow.OF11_VERSION)
}

// PullOFP12Match consumes the match of a version 1.2 message.
func PullOFP12Match(b *openflow.Buffer, priority uint16, rule *openflow.Rule,
	cookie, cookieMask *uint64, paddedMatchLen *int) error {
	return pullMatchEnvelope(b, priority, rule, cookie, cookieMask, paddedMatchLen,
		openflow.OF12_VERSION)
}

// putMatch appends rule as a match in the flow format protocol asks for and
// returns the unpadded match length. The version 1.0 format has no variable
// size match, so only the NXM and OXM based protocols are meaningful here.
func putMatch(b *openflow.Buffer, rule *openflow.Rule, cookie, cookieMask uint64,
	protocol openflow.Protocol) int {
	switch protocol {
	case openflow.P_NXM, openflow.P_NXM_TID:
		return nx.PutMatch(b, false, rule, cookie, cookieMask)

	case openflow.P_OF12:
		start := len(b.Bytes())
		b.PutZeros(of11.MatchHeaderLen)
		matchLen := nx.PutMatch(b, true, rule, cookie, cookieMask) + of11.MatchHeaderLen
		header := b.Bytes()[start:]
		binary.BigEndian.PutUint16(header[0:2], of11.OFPMT_OXM)
		binary.BigEndian.PutUint16(header[2:4], uint16(matchLen))

		return matchLen

	default:
		panic("no variable size match in this protocol")
	}
}
