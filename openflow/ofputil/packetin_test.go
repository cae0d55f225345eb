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
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/mazizi/openvswitch/openflow"
	"github.com/mazizi/openvswitch/openflow/nx"
)

// udpPacket builds a UDP datagram the way a switch would punt it to the
// controller.
func udpPacket(t *testing.T, payload []byte) []byte {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x16, 0x3e, 0x01, 0x02, 0x03},
		DstMAC:       net.HardwareAddr{0x00, 0x16, 0x3e, 0x04, 0x05, 0x06},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP{10, 0, 0, 1},
		DstIP:    net.IP{10, 0, 0, 2},
	}
	udp := &layers.UDP{SrcPort: 4789, DstPort: 4789}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return buf.Bytes()
}

func TestPacketInNXMCodec(t *testing.T) {
	packet := udpPacket(t, []byte("vxlan inner frame"))
	pin := &PacketIn{
		Packet: packet,
		Metadata: FlowMetadata{
			InPort:    7,
			TunID:     0x11223344,
			TunIDMask: ^uint64(0),
			Regs:      [openflow.FLOW_N_REGS]uint32{0xcafe, 0, 3},
			RegMasks:  [openflow.FLOW_N_REGS]uint32{0xffffffff, 0, 0xffffffff},
		},
		Reason:   openflow.OFPR_ACTION,
		TableID:  4,
		Cookie:   0xdeadbeef,
		BufferID: 0xffffffff,
		TotalLen: uint16(len(packet)),
		SendLen:  len(packet),
	}

	c := NewCodec(nil, nil)
	b := c.EncodePacketIn(pin, openflow.P_NXM, nx.NXPIF_NXM)
	decoded, err := c.DecodePacketIn(b.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(decoded.Packet, packet) {
		t.Fatalf("packet data changed by the round trip")
	}
	if diff := cmp.Diff(pin.Metadata, decoded.Metadata); diff != "" {
		t.Fatalf("flow metadata changed by the round trip (-encoded +decoded):\n%s", diff)
	}
	if decoded.Reason != pin.Reason || decoded.TableID != pin.TableID ||
		decoded.Cookie != pin.Cookie || decoded.BufferID != pin.BufferID ||
		decoded.TotalLen != pin.TotalLen {
		t.Fatalf("unexpected message fields: %+v", decoded)
	}
}

func TestPacketInOpenflowForms(t *testing.T) {
	packet := udpPacket(t, []byte("hello"))
	pin := &PacketIn{
		Packet:   packet,
		Metadata: FlowMetadata{InPort: 2},
		Reason:   openflow.OFPR_NO_MATCH,
		BufferID: 0x100,
		TotalLen: uint16(len(packet)),
		SendLen:  len(packet),
	}

	c := NewCodec(nil, nil)
	samples := []struct {
		name string
		msg  *openflow.Buffer
	}{
		{"of10", c.EncodePacketIn(pin, openflow.P_NXM, nx.NXPIF_OPENFLOW10)},
		{"of12", c.EncodePacketIn(pin, openflow.P_OF12, nx.NXPIF_NXM)},
	}
	for _, sample := range samples {
		decoded, err := c.DecodePacketIn(sample.msg.Bytes())
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", sample.name, err)
		}
		if !bytes.Equal(decoded.Packet, packet) {
			t.Fatalf("%s: packet data changed by the round trip", sample.name)
		}
		if decoded.Metadata.InPort != pin.Metadata.InPort {
			t.Fatalf("%s: in_port %d became %d", sample.name, pin.Metadata.InPort, decoded.Metadata.InPort)
		}
		if decoded.Reason != pin.Reason || decoded.BufferID != pin.BufferID ||
			decoded.TotalLen != pin.TotalLen {
			t.Fatalf("%s: unexpected message fields: %+v", sample.name, decoded)
		}
	}
}

func TestPacketInSendLenTruncation(t *testing.T) {
	packet := udpPacket(t, bytes.Repeat([]byte{0xab}, 512))
	pin := &PacketIn{
		Packet:   packet,
		Metadata: FlowMetadata{InPort: 1},
		Reason:   openflow.OFPR_ACTION,
		BufferID: 0x42,
		TotalLen: uint16(len(packet)),
		SendLen:  64,
	}

	c := NewCodec(nil, nil)
	for _, format := range []uint32{nx.NXPIF_OPENFLOW10, nx.NXPIF_NXM} {
		decoded, err := c.DecodePacketIn(c.EncodePacketIn(pin, openflow.P_NXM, format).Bytes())
		if err != nil {
			t.Fatalf("unexpected error for format %d: %v", format, err)
		}
		if !bytes.Equal(decoded.Packet, packet[:64]) {
			t.Fatalf("format %d: expected the first 64 packet bytes, got %d bytes",
				format, len(decoded.Packet))
		}
		// TotalLen still reports the size before truncation.
		if decoded.TotalLen != uint16(len(packet)) {
			t.Fatalf("format %d: unexpected total_len %d", format, decoded.TotalLen)
		}
	}
}

func TestPacketInSkipsOddMatchFields(t *testing.T) {
	packet := []byte{0xde, 0xad, 0xbe, 0xef}

	// A switch built match leading with a field whose prerequisite never
	// arrived. The match is read loosely, so the field is dropped and the
	// packet-in survives.
	b := nx.MakeMessage(nx.PacketInLen+8+2+len(packet), nx.NXT_PACKET_IN, 0)
	p := b.Bytes()
	binary.BigEndian.PutUint16(p[32:34], 8)
	binary.BigEndian.PutUint32(p[40:44], nx.NXM_OF_IP_SRC)
	binary.BigEndian.PutUint32(p[44:48], 0x0a000001)
	copy(p[50:], packet)

	c := NewCodec(nil, nil)
	pin, err := c.DecodePacketIn(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(pin.Packet, packet) {
		t.Fatalf("unexpected packet data: %v", pin.Packet)
	}
	if pin.Metadata.InPort != 0 || pin.Metadata.TunIDMask != 0 {
		t.Fatalf("skipped match entry leaked into the metadata: %+v", pin.Metadata)
	}
}

func TestPacketInReasonStrings(t *testing.T) {
	for reason := uint8(openflow.OFPR_NO_MATCH); reason <= openflow.OFPR_INVALID_TTL; reason++ {
		parsed, ok := PacketInReasonFromString(PacketInReasonToString(reason))
		if !ok || parsed != reason {
			t.Fatalf("reason %d did not survive the string round trip", reason)
		}
	}
	if s := PacketInReasonToString(77); s != "77" {
		t.Fatalf("unexpected name for an unknown reason: %q", s)
	}
	if _, ok := PacketInReasonFromString("breakfast"); ok {
		t.Fatalf("parsed a nonsense reason")
	}
}
