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
	"encoding/binary"
	"fmt"
)

// MaxMessageLen is the largest value the 16-bit length field of an OpenFlow
// header can carry.
const MaxMessageLen = 0xffff

// Buffer holds one OpenFlow message. Decoders consume it from the front with
// Pull and TryPull, encoders grow it at the back with Put and PutZeros. The
// consumed prefix stays addressable through Base so that a reply length can
// be patched into its header after variable parts have been appended.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer wraps data, which should start at an OpenFlow header, for
// decoding. The buffer borrows data instead of copying it.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// MakeOpenflow returns a new message of size zeroed bytes whose OpenFlow
// header carries the given version, type, length and transaction ID. It
// panics if size cannot be represented in an OpenFlow header.
func MakeOpenflow(version, msgType uint8, size int, xid uint32) *Buffer {
	if size < HeaderLen || size > MaxMessageLen {
		panic(fmt.Sprintf("invalid openflow message size %d", size))
	}
	data := make([]byte, size)
	data[0] = version
	data[1] = msgType
	binary.BigEndian.PutUint16(data[2:4], uint16(size))
	binary.BigEndian.PutUint32(data[4:8], xid)

	return &Buffer{data: data}
}

// Bytes returns the not yet consumed part of the buffer.
func (r *Buffer) Bytes() []byte {
	return r.data[r.off:]
}

// Size returns the number of not yet consumed bytes.
func (r *Buffer) Size() int {
	return len(r.data) - r.off
}

// Base returns the whole message including any consumed prefix.
func (r *Buffer) Base() []byte {
	return r.data
}

// Pulled returns how many bytes have been consumed from the front.
func (r *Buffer) Pulled() int {
	return r.off
}

// TryPull consumes the next n bytes and returns them, or returns nil without
// consuming anything if fewer than n bytes remain.
func (r *Buffer) TryPull(n int) []byte {
	if n < 0 || r.Size() < n {
		return nil
	}
	p := r.data[r.off : r.off+n]
	r.off += n

	return p
}

// Pull consumes the next n bytes. Unlike TryPull it panics if the buffer is
// too short, so it is only for counts that have already been validated.
func (r *Buffer) Pull(n int) []byte {
	p := r.TryPull(n)
	if p == nil {
		panic(fmt.Sprintf("cannot pull %d bytes from a buffer of %d", n, r.Size()))
	}

	return p
}

// Put appends p to the buffer.
func (r *Buffer) Put(p []byte) {
	r.data = append(r.data, p...)
}

// PutZeros appends n zero bytes and returns them so the caller can fill in
// fields at fixed offsets.
func (r *Buffer) PutZeros(n int) []byte {
	for i := 0; i < n; i++ {
		r.data = append(r.data, 0)
	}

	return r.data[len(r.data)-n:]
}

// Truncate drops every unconsumed byte beyond size n. It panics if the
// buffer holds fewer than n bytes.
func (r *Buffer) Truncate(n int) {
	if n < 0 || n > r.Size() {
		panic(fmt.Sprintf("cannot truncate a buffer of %d bytes to %d", r.Size(), n))
	}
	r.data = r.data[:r.off+n]
}

// UpdateLength stores the current total message size into the length field
// of the OpenFlow header at the start of the buffer.
func (r *Buffer) UpdateLength() {
	binary.BigEndian.PutUint16(r.data[2:4], uint16(len(r.data)))
}
