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
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
	"github.com/mazizi/openvswitch/openflow/nx"
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// statsMsgLen returns the size of the stats header that starts msg: the
// version 1.0 or 1.1 stats header, or the Nicira vendor stats header. msg
// must have been classified as a stats message, so it is long enough.
func statsMsgLen(msg []byte) int {
	if binary.BigEndian.Uint16(msg[8:10]) == openflow.OFPST_VENDOR {
		return nx.StatsMsgLen
	}
	if msg[0] == openflow.OF10_VERSION {
		return of10.StatsMsgLen
	}

	return of11.StatsMsgLen
}

// pullStatsMsg consumes the stats header at the front of b.
func pullStatsMsg(b *openflow.Buffer) {
	b.Pull(statsMsgLen(b.Base()))
}

// putStats starts a stats message. Vendor stats always use the Nicira
// header, which is built on a version 1.0 stats header whatever version was
// asked for.
func putStats(xid uint32, version, msgType uint8, stat uint16, subtype uint32) *openflow.Buffer {
	if stat == openflow.OFPST_VENDOR {
		b := openflow.MakeOpenflow(openflow.OF10_VERSION, msgType, nx.StatsMsgLen, xid)
		p := b.Bytes()
		binary.BigEndian.PutUint16(p[8:10], openflow.OFPST_VENDOR)
		binary.BigEndian.PutUint32(p[12:16], nx.NX_VENDOR_ID)
		binary.BigEndian.PutUint32(p[16:20], subtype)

		return b
	}

	size := of10.StatsMsgLen
	if version != openflow.OF10_VERSION {
		size = of11.StatsMsgLen
	}
	b := openflow.MakeOpenflow(version, msgType, size, xid)
	binary.BigEndian.PutUint16(b.Bytes()[8:10], stat)

	return b
}

// makeStatsRequest builds a stats request of the given type with bodyLen
// zeroed body bytes appended, ready for the caller to fill in.
func (r *Codec) makeStatsRequest(version uint8, stat uint16, subtype uint32, bodyLen int) *openflow.Buffer {
	msgType := uint8(of10.OFPT_STATS_REQUEST)
	if version != openflow.OF10_VERSION {
		msgType = of11.OFPT_STATS_REQUEST
	}
	b := putStats(r.xids.Next(), version, msgType, stat, subtype)
	b.PutZeros(bodyLen)
	b.UpdateLength()

	return b
}

// putStatsReply starts the stats reply matching request, which must be a
// stats message: the reply mirrors its version, stats type and transaction
// ID. Handing in an earlier reply segment instead of the request produces a
// follow-on segment of the same reply.
func putStatsReply(request []byte) *openflow.Buffer {
	version := request[0]
	msgType := uint8(of10.OFPT_STATS_REPLY)
	if version != openflow.OF10_VERSION {
		msgType = of11.OFPT_STATS_REPLY
	}
	stat := binary.BigEndian.Uint16(request[8:10])
	var subtype uint32
	if stat == openflow.OFPST_VENDOR {
		subtype = binary.BigEndian.Uint32(request[16:20])
	}

	return putStats(binary.BigEndian.Uint32(request[4:8]), version, msgType, stat, subtype)
}

// makeStatsReply builds the reply to request with bodyLen zeroed body bytes
// appended.
func makeStatsReply(request []byte, bodyLen int) *openflow.Buffer {
	b := putStatsReply(request)
	b.PutZeros(bodyLen)
	b.UpdateLength()

	return b
}

// StatsReplies accumulates the segments of one statistics reply. Appending
// more records than one message can carry marks the full segment with
// OFPSF_REPLY_MORE and continues in a fresh one.
type StatsReplies struct {
	replies []*openflow.Buffer
}

// StartStatsReply begins the reply to a decoded stats request.
func StartStatsReply(request []byte) *StatsReplies {
	return &StatsReplies{replies: []*openflow.Buffer{putStatsReply(request)}}
}

func (r *StatsReplies) last() *openflow.Buffer {
	return r.replies[len(r.replies)-1]
}

// reserve returns the segment an n byte record should go into, starting a
// new segment when the current one is full.
func (r *StatsReplies) reserve(n int) *openflow.Buffer {
	b := r.last()
	if b.Size()+n <= openflow.MaxMessageLen {
		return b
	}

	flags := b.Bytes()[10:12]
	binary.BigEndian.PutUint16(flags, binary.BigEndian.Uint16(flags)|openflow.OFPSF_REPLY_MORE)
	b = putStatsReply(b.Bytes())
	r.replies = append(r.replies, b)

	return b
}

// Append adds one fixed size record.
func (r *StatsReplies) Append(record []byte) {
	r.reserve(len(record)).Put(record)
}

// postappend repairs the segmenting after a variable size record was built
// directly in the last segment starting at offset start: if the segment
// outgrew the 16-bit length field, the record moves into a fresh segment.
func (r *StatsReplies) postappend(start int) {
	b := r.last()
	if b.Size() <= openflow.MaxMessageLen {
		return
	}

	record := b.Bytes()[start:]
	r.reserve(len(record)).Put(record)
	b.Truncate(start)
}

// Replies returns the finished segments with their lengths filled in.
func (r *StatsReplies) Replies() []*openflow.Buffer {
	for _, b := range r.replies {
		b.UpdateLength()
	}

	return r.replies
}

// DescStats is the body of an OFPST_DESC reply: fixed size free text fields
// describing the switch. The body layout is the same in every version.
type DescStats struct {
	Manufacturer string
	Hardware     string
	Software     string
	SerialNum    string
	Datapath     string
}

func descString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}

	return string(data)
}

func putDescString(data []byte, s string) {
	// Leave the final byte zero so the field stays terminated.
	copy(data[:len(data)-1], s)
}

// DecodeDescStats reads an OFPST_DESC reply of any version.
func DecodeDescStats(msg []byte) (*DescStats, error) {
	b := openflow.NewBuffer(msg)
	pullStatsMsg(b)
	body := b.Bytes()
	if len(body) < of10.DescStatsLen {
		return nil, errors.Wrap(openflow.ErrBadLength, "truncated OFPST_DESC reply")
	}

	ds := &DescStats{
		Manufacturer: descString(body[0:256]),
		Hardware:     descString(body[256:512]),
		Software:     descString(body[512:768]),
		SerialNum:    descString(body[768:800]),
		Datapath:     descString(body[800:1056]),
	}

	return ds, nil
}

// EncodeDescStatsReply builds the OFPST_DESC reply to request.
func EncodeDescStatsReply(ds *DescStats, request []byte) *openflow.Buffer {
	b := makeStatsReply(request, of10.DescStatsLen)
	body := b.Bytes()[statsMsgLen(b.Bytes()):]
	putDescString(body[0:256], ds.Manufacturer)
	putDescString(body[256:512], ds.Hardware)
	putDescString(body[512:768], ds.Software)
	putDescString(body[768:800], ds.SerialNum)
	putDescString(body[800:1056], ds.Datapath)

	return b
}

// EncodeDescStatsRequest builds an OFPST_DESC request.
func (r *Codec) EncodeDescStatsRequest(version uint8) *openflow.Buffer {
	return r.makeStatsRequest(version, openflow.OFPST_DESC, 0, 0)
}

// EncodePortDescStatsRequest builds an OFPST_PORT_DESC request.
func (r *Codec) EncodePortDescStatsRequest(version uint8) *openflow.Buffer {
	return r.makeStatsRequest(version, openflow.OFPST_PORT_DESC, 0, 0)
}
