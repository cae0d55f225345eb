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
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// Codec translates messages between their wire encodings and their version
// independent forms. It carries the transaction ID counter for the messages
// it originates, the action codec that interprets action and instruction
// lists, and the diagnostics sink for complaints about malformed input.
//
// A Codec is safe for concurrent use.
type Codec struct {
	actions openflow.ActionCodec
	diag    *openflow.Diagnostics
	xids    openflow.XIDSource
}

// NewCodec returns a codec using the given action codec and diagnostics.
// A nil actions falls back to RawActionCodec, which carries action lists
// around as opaque bytes. diag may be nil to drop all diagnostics.
func NewCodec(actions openflow.ActionCodec, diag *openflow.Diagnostics) *Codec {
	if actions == nil {
		actions = openflow.RawActionCodec{}
	}

	return &Codec{actions: actions, diag: diag}
}

// AllocXID returns a fresh transaction ID.
func (r *Codec) AllocXID() uint32 {
	return r.xids.Next()
}

// EncodeHello builds an OFPT_HELLO announcing the given version.
func (r *Codec) EncodeHello(version uint8) *openflow.Buffer {
	return openflow.MakeOpenflow(version, openflow.OFPT_HELLO, openflow.HeaderLen, r.xids.Next())
}

// EncodeEchoRequest builds an OFPT_ECHO_REQUEST with no payload. Echo
// replies mirror the whole request back, so the transaction ID stays zero.
func (r *Codec) EncodeEchoRequest(version uint8) *openflow.Buffer {
	return openflow.MakeOpenflow(version, openflow.OFPT_ECHO_REQUEST, openflow.HeaderLen, 0)
}

// EncodeEchoReply builds the OFPT_ECHO_REPLY for a received echo request,
// reflecting its payload and transaction ID.
func (r *Codec) EncodeEchoReply(request []byte) (*openflow.Buffer, error) {
	if len(request) < openflow.HeaderLen {
		return nil, errors.Wrap(openflow.ErrBadLength, "truncated echo request")
	}
	b := openflow.NewBuffer(nil)
	b.Put(request)
	reply := b.Bytes()
	reply[1] = openflow.OFPT_ECHO_REPLY
	b.UpdateLength()

	return b, nil
}

// EncodeBarrierRequest builds an OFPT_BARRIER_REQUEST for the given version.
func (r *Codec) EncodeBarrierRequest(version uint8) (*openflow.Buffer, error) {
	switch version {
	case openflow.OF10_VERSION:
		return openflow.MakeOpenflow(version, of10.OFPT_BARRIER_REQUEST, openflow.HeaderLen, r.xids.Next()), nil
	case openflow.OF11_VERSION, openflow.OF12_VERSION:
		return openflow.MakeOpenflow(version, of11.OFPT_BARRIER_REQUEST, openflow.HeaderLen, r.xids.Next()), nil
	default:
		return nil, errors.Wrapf(openflow.ErrBadVersion, "version %d", version)
	}
}

// EncodeBarrierReply answers the barrier request in request, keeping its
// transaction ID.
func (r *Codec) EncodeBarrierReply(request []byte) (*openflow.Buffer, error) {
	if len(request) < openflow.HeaderLen {
		return nil, errors.Wrap(openflow.ErrBadLength, "truncated barrier request")
	}

	xid := binary.BigEndian.Uint32(request[4:8])
	switch request[0] {
	case openflow.OF10_VERSION:
		return openflow.MakeOpenflow(request[0], of10.OFPT_BARRIER_REPLY, openflow.HeaderLen, xid), nil
	case openflow.OF11_VERSION, openflow.OF12_VERSION:
		return openflow.MakeOpenflow(request[0], of11.OFPT_BARRIER_REPLY, openflow.HeaderLen, xid), nil
	default:
		return nil, errors.Wrapf(openflow.ErrBadVersion, "version %d", request[0])
	}
}

// ErrorMsgDataLen is how much of an offending request an OFPT_ERROR carries.
const ErrorMsgDataLen = 64

// ErrorMsg is a decoded OFPT_ERROR.
type ErrorMsg struct {
	Type uint16
	Code uint16

	// Data is the prefix of the message the error is about.
	Data []byte
}

// DecodeErrorMsg reads an OFPT_ERROR of any version.
func DecodeErrorMsg(msg []byte) (*ErrorMsg, error) {
	if len(msg) < 12 {
		return nil, errors.Wrap(openflow.ErrBadLength, "truncated OFPT_ERROR")
	}
	e := &ErrorMsg{
		Type: binary.BigEndian.Uint16(msg[8:10]),
		Code: binary.BigEndian.Uint16(msg[10:12]),
		Data: msg[12:],
	}

	return e, nil
}

// EncodeErrorReply builds the OFPT_ERROR that rejects request, embedding up
// to ErrorMsgDataLen bytes of it. The reply reuses the transaction ID and
// version of the request.
func (r *Codec) EncodeErrorReply(request []byte, errType, code uint16) (*openflow.Buffer, error) {
	if len(request) < openflow.HeaderLen {
		return nil, errors.Wrap(openflow.ErrBadLength, "truncated request")
	}
	data := request
	if len(data) > ErrorMsgDataLen {
		data = data[:ErrorMsgDataLen]
	}

	xid := binary.BigEndian.Uint32(request[4:8])
	b := openflow.MakeOpenflow(request[0], openflow.OFPT_ERROR, 12, xid)
	p := b.Bytes()
	binary.BigEndian.PutUint16(p[8:10], errType)
	binary.BigEndian.PutUint16(p[10:12], code)
	b.Put(data)
	b.UpdateLength()

	return b, nil
}
