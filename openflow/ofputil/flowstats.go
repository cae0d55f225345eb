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
	"io"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
	"github.com/mazizi/openvswitch/openflow/nx"
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// FlowStatsRequest is a version independent flow or aggregate statistics
// request. A zero CookieMask matches flows with any cookie.
type FlowStatsRequest struct {
	Aggregate  bool
	Rule       openflow.Rule
	Cookie     uint64
	CookieMask uint64
	OutPort    uint16
	TableID    uint8
}

func decodeOFPSTFlowRequest(fsr *FlowStatsRequest, version uint8, b *openflow.Buffer, aggregate bool) error {
	fsr.Aggregate = aggregate

	if version == openflow.OF12_VERSION {
		p := b.Pull(of11.FlowStatsRequestLen)
		fsr.TableID = p[0]
		port, err := openflow.PortFromOFP11(binary.BigEndian.Uint32(p[4:8]))
		if err != nil {
			return err
		}
		fsr.OutPort = port
		if binary.BigEndian.Uint32(p[8:12]) != of11.OFPG_ANY {
			return errors.Wrap(openflow.ErrGroupsNotSupported, "flow stats request with out_group")
		}
		fsr.Cookie = binary.BigEndian.Uint64(p[16:24])
		fsr.CookieMask = binary.BigEndian.Uint64(p[24:32])

		return PullOFP12Match(b, 0, &fsr.Rule, nil, nil, nil)
	}

	p := b.Bytes()
	var m of10.Match
	if err := m.UnmarshalBinary(p[0:of10.MatchLen]); err != nil {
		return err
	}
	fsr.Rule = of10.RuleFromMatch(&m, 0)
	fsr.OutPort = binary.BigEndian.Uint16(p[42:44])
	fsr.TableID = p[40]
	fsr.Cookie, fsr.CookieMask = 0, 0

	return nil
}

func decodeNXSTFlowRequest(fsr *FlowStatsRequest, b *openflow.Buffer, aggregate bool) error {
	p := b.Pull(nx.FlowStatsRequestLen)
	matchLen := int(binary.BigEndian.Uint16(p[2:4]))
	err := nx.PullMatch(b, matchLen, 0, 0, &fsr.Rule, &fsr.Cookie, &fsr.CookieMask)
	if err != nil {
		return err
	}
	if b.Size() != 0 {
		return errors.Wrapf(openflow.ErrBadLength, "%d trailing bytes after flow stats request", b.Size())
	}

	fsr.Aggregate = aggregate
	fsr.OutPort = binary.BigEndian.Uint16(p[0:2])
	fsr.TableID = p[4]

	return nil
}

// DecodeFlowStatsRequest converts an OFPST_FLOW, OFPST_AGGREGATE, NXST_FLOW
// or NXST_AGGREGATE request into its abstract form.
func (r *Codec) DecodeFlowStatsRequest(msg []byte) (*FlowStatsRequest, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}

	b := openflow.NewBuffer(msg)
	pullStatsMsg(b)

	fsr := &FlowStatsRequest{}
	switch t.Code {
	case OFPST10_FLOW_REQUEST, OFPST11_FLOW_REQUEST:
		err = decodeOFPSTFlowRequest(fsr, msg[0], b, false)
	case OFPST10_AGGREGATE_REQUEST, OFPST11_AGGREGATE_REQUEST:
		err = decodeOFPSTFlowRequest(fsr, msg[0], b, true)
	case NXST_FLOW_REQUEST:
		err = decodeNXSTFlowRequest(fsr, b, false)
	case NXST_AGGREGATE_REQUEST:
		err = decodeNXSTFlowRequest(fsr, b, true)
	default:
		return nil, errors.Wrapf(openflow.ErrBadStat, "%s is not a flow stats request", t.Name)
	}
	if err != nil {
		return nil, err
	}

	return fsr, nil
}

// EncodeFlowStatsRequest converts fsr into a flow or aggregate statistics
// request in the flow format protocol asks for.
func (r *Codec) EncodeFlowStatsRequest(fsr *FlowStatsRequest, protocol openflow.Protocol) *openflow.Buffer {
	stat := uint16(openflow.OFPST_FLOW)
	if fsr.Aggregate {
		stat = openflow.OFPST_AGGREGATE
	}

	switch protocol {
	case openflow.P_OF12:
		b := r.makeStatsRequest(protocol.OFPVersion(), stat, 0, of11.FlowStatsRequestLen)
		p := b.Bytes()[of11.StatsMsgLen:]
		p[0] = fsr.TableID
		binary.BigEndian.PutUint32(p[4:8], openflow.PortToOFP11(fsr.OutPort))
		binary.BigEndian.PutUint32(p[8:12], of11.OFPG_ANY)
		binary.BigEndian.PutUint64(p[16:24], fsr.Cookie)
		binary.BigEndian.PutUint64(p[24:32], fsr.CookieMask)
		putMatch(b, &fsr.Rule, fsr.Cookie, fsr.CookieMask, protocol)
		b.UpdateLength()

		return b

	case openflow.P_OF10, openflow.P_OF10_TID:
		b := r.makeStatsRequest(protocol.OFPVersion(), stat, 0, of10.FlowStatsRequestLen)
		p := b.Bytes()[of10.StatsMsgLen:]
		m := of10.MatchFromRule(&fsr.Rule)
		data, _ := m.MarshalBinary()
		copy(p[0:of10.MatchLen], data)
		p[40] = fsr.TableID
		binary.BigEndian.PutUint16(p[42:44], fsr.OutPort)

		return b

	case openflow.P_NXM, openflow.P_NXM_TID:
		subtype := uint32(nx.NXST_FLOW)
		if fsr.Aggregate {
			subtype = nx.NXST_AGGREGATE
		}
		b := r.makeStatsRequest(protocol.OFPVersion(), openflow.OFPST_VENDOR, subtype,
			nx.FlowStatsRequestLen)
		matchLen := putMatch(b, &fsr.Rule, fsr.Cookie, fsr.CookieMask, openflow.P_NXM)
		p := b.Bytes()[nx.StatsMsgLen:]
		binary.BigEndian.PutUint16(p[0:2], fsr.OutPort)
		binary.BigEndian.PutUint16(p[2:4], uint16(matchLen))
		p[4] = fsr.TableID
		b.UpdateLength()

		return b

	default:
		panic("flow stats requests cannot be encoded in this flow format")
	}
}

// FlowStatsRequestUsableProtocols returns the set of flow formats that can
// accurately express fsr. At least one bit is set.
func FlowStatsRequestUsableProtocols(fsr *FlowStatsRequest) openflow.Protocol {
	usable := UsableProtocols(&fsr.Rule)
	if fsr.CookieMask != 0 {
		usable &= openflow.P_NXM_ANY
	}

	return usable
}

// FlowStats is one flow entry in an OFPST_FLOW or NXST_FLOW reply. A
// PacketCount or ByteCount of ^uint64(0) means the counter is unknown.
// IdleAge and HardAge count seconds since the last packet hit and the last
// modification; -1 means the switch did not report them, which only switches
// with the flow age extension do.
type FlowStats struct {
	Rule         openflow.Rule
	Cookie       uint64
	TableID      uint8
	DurationSec  uint32
	DurationNsec uint32
	IdleTimeout  uint16
	HardTimeout  uint16
	IdleAge      int
	HardAge      int
	PacketCount  uint64
	ByteCount    uint64
	Actions      openflow.ActionList
}

// DecodeFlowStatsReply reads the next flow entry from an OFPST_FLOW or
// NXST_FLOW reply. A reply packs any number of entries into one message, so
// calling this repeatedly on the same buffer iterates through them until a
// call returns io.EOF. Pass flowAgeExtension only for switches known to
// implement NXT_FLOW_AGE, so that the entry ages are decoded rather than
// left at -1.
func (r *Codec) DecodeFlowStatsReply(msg *openflow.Buffer, flowAgeExtension bool) (*FlowStats, error) {
	const site = "DecodeFlowStatsReply"

	if msg.Pulled() == 0 {
		t, err := r.DecodeMessageType(msg.Base())
		if err != nil {
			return nil, err
		}
		switch t.Code {
		case OFPST10_FLOW_REPLY, OFPST11_FLOW_REPLY, NXST_FLOW_REPLY:
		default:
			return nil, errors.Wrapf(openflow.ErrBadStat, "%s is not a flow stats reply", t.Name)
		}
		pullStatsMsg(msg)
	}

	if msg.Size() == 0 {
		return nil, io.EOF
	}

	fs := &FlowStats{IdleAge: -1, HardAge: -1}
	header := msg.Base()
	switch {
	case binary.BigEndian.Uint16(header[8:10]) == openflow.OFPST_VENDOR:
		nfs := msg.TryPull(nx.FlowStatsLen)
		if nfs == nil {
			r.diag.Warningf(site, "NXST_FLOW reply has %d leftover bytes at end", msg.Size())
			return nil, errors.Wrap(openflow.ErrBadLength, "flow stats entry")
		}

		length := int(binary.BigEndian.Uint16(nfs[0:2]))
		matchLen := int(binary.BigEndian.Uint16(nfs[18:20]))
		if length < nx.FlowStatsLen+nx.PaddedLen(matchLen, 0) {
			r.diag.Warningf(site, "NXST_FLOW reply with match_len=%d claims invalid length %d",
				matchLen, length)
			return nil, errors.Wrapf(openflow.ErrBadLength, "flow stats entry length %d", length)
		}
		priority := binary.BigEndian.Uint16(nfs[12:14])
		if err := nx.PullMatch(msg, matchLen, 0, priority, &fs.Rule, nil, nil); err != nil {
			return nil, err
		}

		var err error
		fs.Actions, err = r.actions.PullActions(msg, length-nx.FlowStatsLen-nx.PaddedLen(matchLen, 0))
		if err != nil {
			return nil, err
		}

		fs.Cookie = binary.BigEndian.Uint64(nfs[24:32])
		fs.TableID = nfs[2]
		fs.DurationSec = binary.BigEndian.Uint32(nfs[4:8])
		fs.DurationNsec = binary.BigEndian.Uint32(nfs[8:12])
		fs.IdleTimeout = binary.BigEndian.Uint16(nfs[14:16])
		fs.HardTimeout = binary.BigEndian.Uint16(nfs[16:18])
		if flowAgeExtension {
			if age := binary.BigEndian.Uint16(nfs[20:22]); age != 0 {
				fs.IdleAge = int(age) - 1
			}
			if age := binary.BigEndian.Uint16(nfs[22:24]); age != 0 {
				fs.HardAge = int(age) - 1
			}
		}
		fs.PacketCount = binary.BigEndian.Uint64(nfs[32:40])
		fs.ByteCount = binary.BigEndian.Uint64(nfs[40:48])

	case header[0] == openflow.OF10_VERSION:
		ofs := msg.TryPull(of10.FlowStatsLen)
		if ofs == nil {
			r.diag.Warningf(site, "OFPST_FLOW reply has %d leftover bytes at end", msg.Size())
			return nil, errors.Wrap(openflow.ErrBadLength, "flow stats entry")
		}

		length := int(binary.BigEndian.Uint16(ofs[0:2]))
		if length < of10.FlowStatsLen {
			r.diag.Warningf(site, "OFPST_FLOW reply claims invalid length %d", length)
			return nil, errors.Wrapf(openflow.ErrBadLength, "flow stats entry length %d", length)
		}

		var err error
		fs.Actions, err = r.actions.PullActions(msg, length-of10.FlowStatsLen)
		if err != nil {
			return nil, err
		}

		var m of10.Match
		if err := m.UnmarshalBinary(ofs[4:44]); err != nil {
			return nil, err
		}
		fs.Cookie = binary.BigEndian.Uint64(ofs[64:72])
		fs.Rule = of10.RuleFromMatch(&m, binary.BigEndian.Uint16(ofs[52:54]))
		fs.TableID = ofs[2]
		fs.DurationSec = binary.BigEndian.Uint32(ofs[44:48])
		fs.DurationNsec = binary.BigEndian.Uint32(ofs[48:52])
		fs.IdleTimeout = binary.BigEndian.Uint16(ofs[54:56])
		fs.HardTimeout = binary.BigEndian.Uint16(ofs[56:58])
		fs.PacketCount = binary.BigEndian.Uint64(ofs[72:80])
		fs.ByteCount = binary.BigEndian.Uint64(ofs[80:88])

	default:
		ofs := msg.TryPull(of11.FlowStatsLen)
		if ofs == nil {
			r.diag.Warningf(site, "OFPST_FLOW reply has %d leftover bytes at end", msg.Size())
			return nil, errors.Wrap(openflow.ErrBadLength, "flow stats entry")
		}

		length := int(binary.BigEndian.Uint16(ofs[0:2]))
		if length < of11.FlowStatsLen {
			r.diag.Warningf(site, "OFPST_FLOW reply claims invalid length %d", length)
			return nil, errors.Wrapf(openflow.ErrBadLength, "flow stats entry length %d", length)
		}

		var paddedMatchLen int
		priority := binary.BigEndian.Uint16(ofs[12:14])
		if err := pullMatchEnvelope(msg, priority, &fs.Rule, nil, nil,
			&paddedMatchLen, header[0]); err != nil {
			r.diag.Warningf(site, "OFPST_FLOW reply bad match")
			return nil, err
		}

		var err error
		fs.Actions, err = r.actions.PullInstructions(msg,
			length-of11.FlowStatsLen-paddedMatchLen, header[0])
		if err != nil {
			r.diag.Warningf(site, "OFPST_FLOW reply bad instructions")
			return nil, err
		}

		fs.TableID = ofs[2]
		fs.DurationSec = binary.BigEndian.Uint32(ofs[4:8])
		fs.DurationNsec = binary.BigEndian.Uint32(ofs[8:12])
		fs.IdleTimeout = binary.BigEndian.Uint16(ofs[14:16])
		fs.HardTimeout = binary.BigEndian.Uint16(ofs[16:18])
		fs.Cookie = binary.BigEndian.Uint64(ofs[24:32])
		fs.PacketCount = binary.BigEndian.Uint64(ofs[32:40])
		fs.ByteCount = binary.BigEndian.Uint64(ofs[40:48])
	}

	return fs, nil
}

// unknownToZero squashes the unknown counter value to zero for the message
// forms that have no way to say "unknown".
func unknownToZero(count uint64) uint64 {
	if count != ^uint64(0) {
		return count
	}

	return 0
}

// encodeAge converts an age in seconds to its wire form, where zero means
// unknown and known ages are biased by one.
func encodeAge(age int) uint16 {
	switch {
	case age < 0:
		return 0
	case age < 0xffff:
		return uint16(age + 1)
	default:
		return 0xffff
	}
}

// AppendFlowStats adds one flow entry to a flow statistics reply under
// construction. The reply must have been started from an OFPST_FLOW or
// NXST_FLOW request.
func (r *Codec) AppendFlowStats(fs *FlowStats, replies *StatsReplies) {
	b := replies.last()
	header := b.Bytes()
	version, stat := header[0], binary.BigEndian.Uint16(header[8:10])
	start := b.Size()

	switch {
	case stat == openflow.OFPST_FLOW && version == openflow.OF12_VERSION:
		rec := b.PutZeros(of11.FlowStatsLen)
		rec[2] = fs.TableID
		binary.BigEndian.PutUint32(rec[4:8], fs.DurationSec)
		binary.BigEndian.PutUint32(rec[8:12], fs.DurationNsec)
		binary.BigEndian.PutUint16(rec[12:14], fs.Rule.Priority)
		binary.BigEndian.PutUint16(rec[14:16], fs.IdleTimeout)
		binary.BigEndian.PutUint16(rec[16:18], fs.HardTimeout)
		binary.BigEndian.PutUint64(rec[24:32], fs.Cookie)
		binary.BigEndian.PutUint64(rec[32:40], unknownToZero(fs.PacketCount))
		binary.BigEndian.PutUint64(rec[40:48], unknownToZero(fs.ByteCount))
		putMatch(b, &fs.Rule, 0, 0, openflow.P_OF12)
		r.actions.PutInstructions(b, fs.Actions, version)
		binary.BigEndian.PutUint16(b.Bytes()[start:start+2], uint16(b.Size()-start))

	case stat == openflow.OFPST_FLOW && version == openflow.OF10_VERSION:
		rec := b.PutZeros(of10.FlowStatsLen)
		rec[2] = fs.TableID
		m := of10.MatchFromRule(&fs.Rule)
		data, _ := m.MarshalBinary()
		copy(rec[4:44], data)
		binary.BigEndian.PutUint32(rec[44:48], fs.DurationSec)
		binary.BigEndian.PutUint32(rec[48:52], fs.DurationNsec)
		binary.BigEndian.PutUint16(rec[52:54], fs.Rule.Priority)
		binary.BigEndian.PutUint16(rec[54:56], fs.IdleTimeout)
		binary.BigEndian.PutUint16(rec[56:58], fs.HardTimeout)
		binary.BigEndian.PutUint64(rec[64:72], fs.Cookie)
		binary.BigEndian.PutUint64(rec[72:80], unknownToZero(fs.PacketCount))
		binary.BigEndian.PutUint64(rec[80:88], unknownToZero(fs.ByteCount))
		r.actions.PutActions(b, fs.Actions)
		binary.BigEndian.PutUint16(b.Bytes()[start:start+2], uint16(b.Size()-start))

	case stat == openflow.OFPST_VENDOR:
		rec := b.PutZeros(nx.FlowStatsLen)
		rec[2] = fs.TableID
		binary.BigEndian.PutUint32(rec[4:8], fs.DurationSec)
		binary.BigEndian.PutUint32(rec[8:12], fs.DurationNsec)
		binary.BigEndian.PutUint16(rec[12:14], fs.Rule.Priority)
		binary.BigEndian.PutUint16(rec[14:16], fs.IdleTimeout)
		binary.BigEndian.PutUint16(rec[16:18], fs.HardTimeout)
		binary.BigEndian.PutUint16(rec[20:22], encodeAge(fs.IdleAge))
		binary.BigEndian.PutUint16(rec[22:24], encodeAge(fs.HardAge))
		binary.BigEndian.PutUint64(rec[24:32], fs.Cookie)
		binary.BigEndian.PutUint64(rec[32:40], fs.PacketCount)
		binary.BigEndian.PutUint64(rec[40:48], fs.ByteCount)
		matchLen := putMatch(b, &fs.Rule, 0, 0, openflow.P_NXM)
		r.actions.PutActions(b, fs.Actions)
		entry := b.Bytes()[start:]
		binary.BigEndian.PutUint16(entry[0:2], uint16(b.Size()-start))
		binary.BigEndian.PutUint16(entry[18:20], uint16(matchLen))

	default:
		panic("reply is not a flow stats reply")
	}

	replies.postappend(start)
}

// AggregateStats is the body of an OFPST_AGGREGATE or NXST_AGGREGATE reply.
// Unknown packet and byte counters are ^uint64(0), which the encoded form
// squashes to zero.
type AggregateStats struct {
	PacketCount uint64
	ByteCount   uint64
	FlowCount   uint32
}

// DecodeAggregateStatsReply converts an OFPST_AGGREGATE or NXST_AGGREGATE
// reply into its abstract form.
func (r *Codec) DecodeAggregateStatsReply(msg []byte) (*AggregateStats, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}
	switch t.Code {
	case OFPST10_AGGREGATE_REPLY, OFPST11_AGGREGATE_REPLY, NXST_AGGREGATE_REPLY:
	default:
		return nil, errors.Wrapf(openflow.ErrBadStat, "%s is not an aggregate stats reply", t.Name)
	}

	b := openflow.NewBuffer(msg)
	pullStatsMsg(b)
	p := b.Bytes()
	as := &AggregateStats{
		PacketCount: binary.BigEndian.Uint64(p[0:8]),
		ByteCount:   binary.BigEndian.Uint64(p[8:16]),
		FlowCount:   binary.BigEndian.Uint32(p[16:20]),
	}

	return as, nil
}

// EncodeAggregateStatsReply builds the reply to an OFPST_AGGREGATE or
// NXST_AGGREGATE request. The reply body is laid out the same way in every
// form.
func (r *Codec) EncodeAggregateStatsReply(stats *AggregateStats, request []byte) (*openflow.Buffer, error) {
	t, err := r.DecodeMessageType(request)
	if err != nil {
		return nil, err
	}
	switch t.Code {
	case OFPST10_AGGREGATE_REQUEST, OFPST11_AGGREGATE_REQUEST, NXST_AGGREGATE_REQUEST:
	default:
		return nil, errors.Wrapf(openflow.ErrBadStat, "%s is not an aggregate stats request", t.Name)
	}

	b := makeStatsReply(request, of10.AggregateStatsReplyLen)
	p := b.Bytes()[statsMsgLen(b.Bytes()):]
	binary.BigEndian.PutUint64(p[0:8], unknownToZero(stats.PacketCount))
	binary.BigEndian.PutUint64(p[8:16], unknownToZero(stats.ByteCount))
	binary.BigEndian.PutUint32(p[16:20], stats.FlowCount)

	return b, nil
}
