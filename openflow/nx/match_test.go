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

package nx

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/mazizi/openvswitch/openflow"
)

func TestPaddedLen(t *testing.T) {
	samples := []struct {
		MatchLen  int
		PadOffset int
		Expected  int
	}{
		{MatchLen: 0, PadOffset: 0, Expected: 0},
		{MatchLen: 1, PadOffset: 0, Expected: 8},
		{MatchLen: 8, PadOffset: 0, Expected: 8},
		{MatchLen: 35, PadOffset: 0, Expected: 40},
		{MatchLen: 41, PadOffset: 4, Expected: 44},
		{MatchLen: 4, PadOffset: 4, Expected: 8},
		{MatchLen: 5, PadOffset: 4, Expected: 12},
	}

	for _, v := range samples {
		if PaddedLen(v.MatchLen, v.PadOffset) != v.Expected {
			t.Fatalf("unexpected padded length for %d bytes at offset %d: expected=%d, actual=%d",
				v.MatchLen, v.PadOffset, v.Expected, PaddedLen(v.MatchLen, v.PadOffset))
		}
	}
}

func TestMatchCodec(t *testing.T) {
	tcp := openflow.CatchallRule(100)
	tcp.Wildcards.Flags &^= openflow.FWW_IN_PORT | openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO
	tcp.Flow.InPort = 1
	tcp.Flow.DLType = openflow.ETH_TYPE_IP
	tcp.Flow.NWSrc = 0x0a000000
	tcp.Wildcards.NWSrcMask = 0xffffff00
	tcp.Flow.NWProto = openflow.IPPROTO_TCP
	tcp.Flow.TPDst = 80
	tcp.Wildcards.TPDstMask = 0xffff

	arp := openflow.CatchallRule(100)
	arp.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO | openflow.FWW_ARP_SHA
	arp.Flow.DLType = openflow.ETH_TYPE_ARP
	arp.Flow.VLANTCI = 0x5011
	arp.Wildcards.VLANTCIMask = 0xffff
	arp.Flow.NWProto = 1
	arp.Flow.NWSrc = 0x0a000001
	arp.Wildcards.NWSrcMask = 0xffffffff
	arp.Flow.ARPSHA = openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

	samples := []struct {
		Packet    string
		MatchLen  int
		PadOffset int
		OXM       bool
		Rule      openflow.Rule
	}{
		{
			// in_port 1, dl_type IP, masked nw_src, nw_proto TCP,
			// tp_dst 80, with five bytes of padding.
			Packet: "000000020001" + "000006020800" + "00000f080a000000ffffff00" +
				"00000c0106" + "000014020050" + "0000000000",
			MatchLen:  35,
			PadOffset: 0,
			OXM:       false,
			Rule:      tcp,
		},
		{
			// OXM headers for the 1.2 fields: dl_type ARP, VLAN 17
			// priority 2, arp_op 1, arp_spa, arp_sha.
			Packet: "80000a020806" + "80000c021011" + "80000e0102" +
				"80002a020001" + "80002c040a000001" + "80003006001122334455" + "000000",
			MatchLen:  41,
			PadOffset: 4,
			OXM:       true,
			Rule:      arp,
		},
	}

	for _, v := range samples {
		p, err := hex.DecodeString(v.Packet)
		if err != nil {
			panic("invalid sample nx_match")
		}

		var rule openflow.Rule
		var cookie, cookieMask uint64
		b := openflow.NewBuffer(p)
		if err := PullMatch(b, v.MatchLen, v.PadOffset, 100, &rule, &cookie, &cookieMask); err != nil {
			t.Fatalf("failed to pull an nx_match: %v", err)
		}
		if rule != v.Rule {
			t.Fatalf("unexpected rule from nx_match: expected=%v, actual=%v",
				spew.Sdump(v.Rule), spew.Sdump(rule))
		}
		if cookie != 0 || cookieMask != 0 {
			t.Fatalf("unexpected cookie from nx_match without one: %#x/%#x", cookie, cookieMask)
		}
		if b.Size() != 0 {
			t.Fatalf("nx_match padding not consumed: %d bytes left", b.Size())
		}

		out := openflow.NewBuffer(nil)
		matchLen := PutMatch(out, v.OXM, &v.Rule, 0, 0)
		if matchLen != v.MatchLen {
			t.Fatalf("unexpected nx_match length: expected=%d, actual=%d", v.MatchLen, matchLen)
		}
		if bytes.Equal(out.Bytes(), p) == false {
			t.Fatalf("unexpected marshaled nx_match: expected=%v, actual=%v", p, out.Bytes())
		}
	}
}

func TestPullMatchCookie(t *testing.T) {
	samples := []struct {
		Packet     string
		MatchLen   int
		Cookie     uint64
		CookieMask uint64
	}{
		{
			Packet:     "00013c08" + "0123456789abcdef" + "00000000",
			MatchLen:   12,
			Cookie:     0x0123456789abcdef,
			CookieMask: 0xffffffffffffffff,
		},
		{
			// A masked cookie keeps only the bits its mask selects.
			Packet:     "00013d10" + "0123456789abcdef" + "ffffffff00000000" + "00000000",
			MatchLen:   20,
			Cookie:     0x0123456700000000,
			CookieMask: 0xffffffff00000000,
		},
	}

	for _, v := range samples {
		p, err := hex.DecodeString(v.Packet)
		if err != nil {
			panic("invalid sample nx_match")
		}

		var rule openflow.Rule
		var cookie, cookieMask uint64
		b := openflow.NewBuffer(p)
		if err := PullMatch(b, v.MatchLen, 0, 100, &rule, &cookie, &cookieMask); err != nil {
			t.Fatalf("failed to pull an nx_match: %v", err)
		}
		if cookie != v.Cookie || cookieMask != v.CookieMask {
			t.Fatalf("unexpected cookie: expected=%#x/%#x, actual=%#x/%#x",
				v.Cookie, v.CookieMask, cookie, cookieMask)
		}
		if rule != openflow.CatchallRule(100) {
			t.Fatal("a cookie entry must not touch the rule")
		}
	}

	// Messages that carry their cookie elsewhere reject cookie entries in
	// strict mode and skip them in loose mode.
	p, err := hex.DecodeString("00013c08" + "0123456789abcdef" + "00000000")
	if err != nil {
		panic("invalid sample nx_match")
	}

	var rule openflow.Rule
	err = PullMatch(openflow.NewBuffer(p), 12, 0, 100, &rule, nil, nil)
	if errors.Cause(err) != openflow.ErrBadNXM {
		t.Fatalf("expected ErrBadNXM for a disallowed cookie entry: actual=%v", err)
	}

	if err := PullMatchLoose(openflow.NewBuffer(p), 12, 0, 100, &rule, nil, nil); err != nil {
		t.Fatalf("unexpected error from the loose parser: %v", err)
	}
	if rule != openflow.CatchallRule(100) {
		t.Fatal("a skipped cookie entry must not touch the rule")
	}
}

func TestPullMatchErrors(t *testing.T) {
	samples := []struct {
		Packet      string
		MatchLen    int
		ExpectedErr error
	}{
		// Match length beyond the end of the message.
		{Packet: "0000000000000000", MatchLen: 16, ExpectedErr: openflow.ErrBadLength},
		// Trailing partial header.
		{Packet: "0000000000000000", MatchLen: 2, ExpectedErr: openflow.ErrBadLength},
		// Zero payload length.
		{Packet: "00000600" + "00000000", MatchLen: 4, ExpectedErr: openflow.ErrBadNXM},
		// Payload longer than the remaining match.
		{Packet: "0000060208" + "000000", MatchLen: 5, ExpectedErr: openflow.ErrBadNXM},
		// Duplicate field.
		{Packet: "000000020001" + "000000020002" + "00000000", MatchLen: 12, ExpectedErr: openflow.ErrBadNXM},
		// Plain and masked variants of one field are still a duplicate.
		{
			Packet:      "00000406" + "001122334455" + "0000050c" + "001122334455" + "ffffffffffff" + "000000000000",
			MatchLen:    26,
			ExpectedErr: openflow.ErrBadNXM,
		},
		// Unknown field.
		{Packet: "0001fe04" + "00000000", MatchLen: 8, ExpectedErr: openflow.ErrBadNXM},
		// nw_src without its dl_type prerequisite.
		{Packet: "00000e04" + "0a000001", MatchLen: 8, ExpectedErr: openflow.ErrBadNXM},
		// OXM VLAN ID with a bit above the present bit.
		{Packet: "80000c02" + "8000" + "0000", MatchLen: 6, ExpectedErr: openflow.ErrBadValue},
		// Garbage in the padding behind the match.
		{Packet: "000006020800" + "00ff", MatchLen: 6, ExpectedErr: openflow.ErrBadNXM},
	}

	for _, v := range samples {
		p, err := hex.DecodeString(v.Packet)
		if err != nil {
			panic("invalid sample nx_match")
		}

		var rule openflow.Rule
		var cookie, cookieMask uint64
		err = PullMatch(openflow.NewBuffer(p), v.MatchLen, 0, 100, &rule, &cookie, &cookieMask)
		if errors.Cause(err) != v.ExpectedErr {
			t.Fatalf("unexpected error for nx_match %s: expected=%v, actual=%v",
				v.Packet, v.ExpectedErr, err)
		}
	}
}

func TestPullMatchLoose(t *testing.T) {
	// An unknown entry hides the field it names but not the rest of the
	// match.
	p, err := hex.DecodeString("0001fe04" + "00000000" + "000006020800" + "0000")
	if err != nil {
		panic("invalid sample nx_match")
	}

	expected := openflow.CatchallRule(100)
	expected.Wildcards.Flags &^= openflow.FWW_DL_TYPE
	expected.Flow.DLType = openflow.ETH_TYPE_IP

	var rule openflow.Rule
	var cookie, cookieMask uint64
	if err := PullMatchLoose(openflow.NewBuffer(p), 14, 0, 100, &rule, &cookie, &cookieMask); err != nil {
		t.Fatalf("unexpected error from the loose parser: %v", err)
	}
	if rule != expected {
		t.Fatalf("unexpected rule from nx_match: expected=%v, actual=%v",
			spew.Sdump(expected), spew.Sdump(rule))
	}

	// A prerequisite violation hides the field the same way: nw_src with
	// no dl_type in sight stays wildcarded.
	p, err = hex.DecodeString("00000e04" + "0a000001")
	if err != nil {
		panic("invalid sample nx_match")
	}
	if err := PullMatchLoose(openflow.NewBuffer(p), 8, 0, 100, &rule, &cookie, &cookieMask); err != nil {
		t.Fatalf("unexpected error from the loose parser: %v", err)
	}
	if rule != openflow.CatchallRule(100) {
		t.Fatalf("unexpected rule from nx_match: expected=%v, actual=%v",
			spew.Sdump(openflow.CatchallRule(100)), spew.Sdump(rule))
	}

	// Sloppy padding from the switch is tolerated.
	p, err = hex.DecodeString("000006020800" + "00ff")
	if err != nil {
		panic("invalid sample nx_match")
	}
	if err := PullMatchLoose(openflow.NewBuffer(p), 6, 0, 100, &rule, &cookie, &cookieMask); err != nil {
		t.Fatalf("unexpected error from the loose parser: %v", err)
	}
	if rule != expected {
		t.Fatalf("unexpected rule from nx_match: expected=%v, actual=%v",
			spew.Sdump(expected), spew.Sdump(rule))
	}
}
