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
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/mazizi/openvswitch/openflow"
)

// arpRequest builds the kind of packet a controller typically originates.
func arpRequest(t *testing.T) []byte {
	srcMAC := net.HardwareAddr{0x00, 0x16, 0x3e, 0x01, 0x02, 0x03}
	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   srcMAC,
		SourceProtAddress: []byte{10, 0, 0, 1},
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    []byte{10, 0, 0, 2},
	}

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, eth, arp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return buf.Bytes()
}

func TestPacketOutCodec(t *testing.T) {
	po := &PacketOut{
		Packet:   arpRequest(t),
		BufferID: 0xffffffff,
		InPort:   openflow.OFPP_NONE,
		Actions: openflow.ActionList{
			openflow.RawActions{0x00, 0x00, 0x00, 0x08, 0xff, 0xfb, 0x00, 0x00},
		},
	}

	for _, protocol := range []openflow.Protocol{openflow.P_OF10, openflow.P_NXM, openflow.P_OF12} {
		c := NewCodec(nil, nil)
		b := c.EncodePacketOut(po, protocol)
		decoded, err := c.DecodePacketOut(b.Bytes())
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", protocol, err)
		}
		if diff := cmp.Diff(po, decoded); diff != "" {
			t.Fatalf("packet-out changed by a %v round trip (-encoded +decoded):\n%s", protocol, diff)
		}
	}
}

func TestPacketOutBuffered(t *testing.T) {
	// A packet-out naming a buffered packet carries no packet data of its
	// own, whatever is in Packet at encode time.
	po := &PacketOut{
		Packet:   []byte("must not appear on the wire"),
		BufferID: 0x17,
		InPort:   openflow.OFPP_CONTROLLER,
	}

	c := NewCodec(nil, nil)
	b := c.EncodePacketOut(po, openflow.P_OF10)
	decoded, err := c.DecodePacketOut(b.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Packet != nil {
		t.Fatalf("unexpected packet data: %q", decoded.Packet)
	}
	if decoded.BufferID != po.BufferID || decoded.InPort != po.InPort {
		t.Fatalf("unexpected message fields: %+v", decoded)
	}
}

func TestDecodePacketOutBadInPort(t *testing.T) {
	// A reserved port other than LOCAL, NONE or CONTROLLER cannot be a
	// packet's ingress.
	po := &PacketOut{BufferID: 0x17, InPort: openflow.OFPP_FLOOD}

	c := NewCodec(nil, nil)
	for _, protocol := range []openflow.Protocol{openflow.P_OF10, openflow.P_OF12} {
		b := c.EncodePacketOut(po, protocol)
		if _, err := c.DecodePacketOut(b.Bytes()); errors.Cause(err) != openflow.ErrBadInPort {
			t.Fatalf("unexpected error for %v: %v", protocol, err)
		}
	}
}
