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
	"bytes"
	"encoding/hex"
	"testing"
)

func TestMakeOpenflow(t *testing.T) {
	b := MakeOpenflow(0x01, 0x00, 8, 0x01020304)
	expected, err := hex.DecodeString("0100000801020304")
	if err != nil {
		panic("invalid sample OpenFlow header")
	}
	if bytes.Equal(b.Bytes(), expected) == false {
		t.Fatalf("unexpected OpenFlow header: expected=%v, actual=%v", expected, b.Bytes())
	}

	// The body beyond the header starts out zeroed.
	b = MakeOpenflow(0x01, 0x0d, 16, 0xdeadbeef)
	p := b.Bytes()
	if len(p) != 16 {
		t.Fatalf("unexpected message size: expected=16, actual=%d", len(p))
	}
	for _, v := range p[8:] {
		if v != 0 {
			t.Fatal("message body must be zeroed")
		}
	}

	for _, size := range []int{7, 0, -1, 0x10000} {
		if makeOpenflowPanics(size) == false {
			t.Fatalf("MakeOpenflow must panic for size %d", size)
		}
	}
}

func makeOpenflowPanics(size int) (panicked bool) {
	defer func() {
		if recover() != nil {
			panicked = true
		}
	}()
	MakeOpenflow(0x01, 0x00, size, 0)

	return false
}

func TestBufferPull(t *testing.T) {
	b := NewBuffer([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	if b.Size() != 8 || b.Pulled() != 0 {
		t.Fatalf("unexpected fresh buffer state: size=%d, pulled=%d", b.Size(), b.Pulled())
	}

	p := b.Pull(3)
	if bytes.Equal(p, []byte{0, 1, 2}) == false {
		t.Fatalf("unexpected pulled bytes: actual=%v", p)
	}
	if b.Size() != 5 || b.Pulled() != 3 {
		t.Fatalf("unexpected buffer state after pull: size=%d, pulled=%d", b.Size(), b.Pulled())
	}
	if bytes.Equal(b.Bytes(), []byte{3, 4, 5, 6, 7}) == false {
		t.Fatalf("unexpected remaining bytes: actual=%v", b.Bytes())
	}
	if bytes.Equal(b.Base(), []byte{0, 1, 2, 3, 4, 5, 6, 7}) == false {
		t.Fatalf("unexpected base bytes: actual=%v", b.Base())
	}

	// TryPull refuses without consuming anything.
	if b.TryPull(6) != nil {
		t.Fatal("TryPull beyond the buffer must return nil")
	}
	if b.TryPull(-1) != nil {
		t.Fatal("TryPull with a negative count must return nil")
	}
	if b.Size() != 5 {
		t.Fatal("failed TryPull must not consume bytes")
	}

	p = b.TryPull(5)
	if bytes.Equal(p, []byte{3, 4, 5, 6, 7}) == false {
		t.Fatalf("unexpected pulled bytes: actual=%v", p)
	}
	if b.Size() != 0 {
		t.Fatal("buffer must be exhausted")
	}
}

func TestBufferPut(t *testing.T) {
	b := MakeOpenflow(0x01, 0x00, 8, 0)
	b.Put([]byte{0xaa, 0xbb})
	z := b.PutZeros(2)
	z[0] = 0xcc
	b.UpdateLength()

	expected, err := hex.DecodeString("0100000c00000000aabbcc00")
	if err != nil {
		panic("invalid sample OpenFlow message")
	}
	if bytes.Equal(b.Bytes(), expected) == false {
		t.Fatalf("unexpected message: expected=%v, actual=%v", expected, b.Bytes())
	}
}

func TestBufferTruncate(t *testing.T) {
	b := NewBuffer([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	b.Pull(2)
	b.Truncate(4)
	if bytes.Equal(b.Bytes(), []byte{2, 3, 4, 5}) == false {
		t.Fatalf("unexpected truncated bytes: actual=%v", b.Bytes())
	}
	// The consumed prefix survives truncation.
	if bytes.Equal(b.Base(), []byte{0, 1, 2, 3, 4, 5}) == false {
		t.Fatalf("unexpected base after truncation: actual=%v", b.Base())
	}
}
