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

import "testing"

func TestWcBitsToNetmask(t *testing.T) {
	samples := []struct {
		WcBits   uint32
		Expected uint32
	}{
		{WcBits: 0, Expected: 0xffffffff},
		{WcBits: 1, Expected: 0xfffffffe},
		{WcBits: 8, Expected: 0xffffff00},
		{WcBits: 16, Expected: 0xffff0000},
		{WcBits: 24, Expected: 0xff000000},
		{WcBits: 31, Expected: 0x80000000},
		{WcBits: 32, Expected: 0},
		// The wildcard bit counts are six bit fields, so anything up to
		// 63 is expressible and anything from 32 up means "all".
		{WcBits: 33, Expected: 0},
		{WcBits: 63, Expected: 0},
	}

	for _, v := range samples {
		mask := WcBitsToNetmask(v.WcBits)
		if mask != v.Expected {
			t.Fatalf("unexpected netmask for %d wildcard bits: expected=%#08x, actual=%#08x",
				v.WcBits, v.Expected, mask)
		}
	}

	for wcbits := uint32(0); wcbits <= 32; wcbits++ {
		if NetmaskToWcBits(WcBitsToNetmask(wcbits)) != wcbits {
			t.Fatalf("netmask round trip broken for %d wildcard bits", wcbits)
		}
	}
}

func TestIsCIDRMask(t *testing.T) {
	samples := []struct {
		Mask     uint32
		Expected bool
	}{
		{Mask: 0, Expected: true},
		{Mask: 0xffffffff, Expected: true},
		{Mask: 0xffffff00, Expected: true},
		{Mask: 0xfffe0000, Expected: true},
		{Mask: 0x80000000, Expected: true},
		{Mask: 0x00ffffff, Expected: false},
		{Mask: 0xfffffeff, Expected: false},
		{Mask: 0x0000ff00, Expected: false},
	}

	for _, v := range samples {
		if IsCIDRMask(v.Mask) != v.Expected {
			t.Fatalf("unexpected CIDR check for mask %#08x: expected=%v", v.Mask, v.Expected)
		}
	}
}
