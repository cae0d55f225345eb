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
	"github.com/mazizi/openvswitch/openflow/of10"
	"github.com/mazizi/openvswitch/openflow/of11"
)

// portStatusLen is the fixed prefix of OFPT_PORT_STATUS ahead of the port
// description. It is the same in every version.
const portStatusLen = 16

// phyPortSize returns the encoded size of one port description in the
// given version.
func phyPortSize(version uint8) int {
	if version == openflow.OF10_VERSION {
		return of10.PhyPortLen
	}

	return of11.PortLen
}

// PullPhyPort reads one port description in the given version from the
// front of b. It returns io.EOF once b holds less than a full description,
// so callers can iterate until the message runs out.
func PullPhyPort(version uint8, b *openflow.Buffer) (openflow.PhyPort, error) {
	if version == openflow.OF10_VERSION {
		p := b.TryPull(of10.PhyPortLen)
		if p == nil {
			return openflow.PhyPort{}, io.EOF
		}

		return of10.DecodePhyPort(p), nil
	}

	p := b.TryPull(of11.PortLen)
	if p == nil {
		return openflow.PhyPort{}, io.EOF
	}

	return of11.DecodePort(p)
}

// PutPhyPort appends pp to b as a port description in the given version.
// A port that would push the message past the 16-bit length limit is
// silently dropped.
func PutPhyPort(version uint8, pp *openflow.PhyPort, b *openflow.Buffer) {
	size := phyPortSize(version)
	if b.Size()+size > openflow.MaxMessageLen {
		return
	}

	rec := b.PutZeros(size)
	if version == openflow.OF10_VERSION {
		of10.EncodePhyPort(pp, rec)
	} else {
		of11.EncodePort(pp, rec)
	}
}

// AppendPortDescStatsReply adds one port description record to a port
// description stats reply under construction, opening a new reply segment
// when the current one is full.
func AppendPortDescStatsReply(pp *openflow.PhyPort, replies *StatsReplies) {
	if replies.last().Bytes()[0] == openflow.OF10_VERSION {
		var rec [of10.PhyPortLen]byte
		of10.EncodePhyPort(pp, rec[:])
		replies.Append(rec[:])
	} else {
		var rec [of11.PortLen]byte
		of11.EncodePort(pp, rec[:])
		replies.Append(rec[:])
	}
}

// PortStatus is a decoded OFPT_PORT_STATUS message.
type PortStatus struct {
	// Reason is one of the OFPPR_* values.
	Reason uint8
	Port   openflow.PhyPort
}

// DecodePortStatus decodes a port status message of any supported version.
func (r *Codec) DecodePortStatus(msg []byte) (*PortStatus, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}
	if t.Code != OFPT_PORT_STATUS {
		return nil, errors.Wrapf(openflow.ErrBadType, "%s is not a port status", t)
	}

	reason := msg[8]
	if reason != openflow.OFPPR_ADD && reason != openflow.OFPPR_DELETE &&
		reason != openflow.OFPPR_MODIFY {
		return nil, errors.Wrapf(openflow.ErrBadReason, "port status reason %d", reason)
	}

	b := openflow.NewBuffer(msg)
	b.Pull(portStatusLen)
	pp, err := PullPhyPort(msg[0], b)
	if err != nil {
		// err is never io.EOF here. The length was already checked
		// against the size of a full port description.
		return nil, err
	}

	return &PortStatus{Reason: reason, Port: pp}, nil
}

// EncodePortStatus converts ps into a port status message in the version
// selected by protocol.
func (r *Codec) EncodePortStatus(ps *PortStatus, protocol openflow.Protocol) *openflow.Buffer {
	version := protocol.OFPVersion()
	b := openflow.MakeOpenflow(version, openflow.OFPT_PORT_STATUS, portStatusLen, 0)
	b.Bytes()[8] = ps.Reason
	PutPhyPort(version, &ps.Port, b)
	b.UpdateLength()

	return b
}

// PortMod is a decoded OFPT_PORT_MOD message.
type PortMod struct {
	PortNo uint16
	HWAddr openflow.EthAddr

	// Config carries the OFPPC_* bits to change and Mask selects which of
	// them are meaningful. Config never has a bit set that Mask clears.
	Config uint32
	Mask   uint32

	// Advertise holds NETDEV_F_* link features, or zero to leave the
	// advertised features alone.
	Advertise uint32
}

// DecodePortMod decodes a port mod message of any supported version.
func (r *Codec) DecodePortMod(msg []byte) (*PortMod, error) {
	t, err := r.DecodeMessageType(msg)
	if err != nil {
		return nil, err
	}
	if t.Code != OFPT_PORT_MOD {
		return nil, errors.Wrapf(openflow.ErrBadType, "%s is not a port mod", t)
	}

	pm := &PortMod{}
	if msg[0] == openflow.OF10_VERSION {
		pm.PortNo = binary.BigEndian.Uint16(msg[8:10])
		copy(pm.HWAddr[:], msg[10:16])
		pm.Config = binary.BigEndian.Uint32(msg[16:20]) & of10.OFPPC_ALL
		pm.Mask = binary.BigEndian.Uint32(msg[20:24]) & of10.OFPPC_ALL
		pm.Advertise = openflow.PortFeaturesFromOFP10(binary.BigEndian.Uint32(msg[24:28]))
	} else {
		portNo, err := openflow.PortFromOFP11(binary.BigEndian.Uint32(msg[8:12]))
		if err != nil {
			return nil, err
		}
		pm.PortNo = portNo
		copy(pm.HWAddr[:], msg[16:22])
		pm.Config = binary.BigEndian.Uint32(msg[24:28]) & of11.OFPPC_ALL
		pm.Mask = binary.BigEndian.Uint32(msg[28:32]) & of11.OFPPC_ALL
		pm.Advertise = openflow.PortFeaturesFromOFP11(binary.BigEndian.Uint32(msg[32:36]))
	}
	pm.Config &= pm.Mask

	return pm, nil
}

// EncodePortMod converts pm into a port mod message in the version selected
// by protocol.
func (r *Codec) EncodePortMod(pm *PortMod, protocol openflow.Protocol) *openflow.Buffer {
	version := protocol.OFPVersion()
	if version == openflow.OF10_VERSION {
		b := openflow.MakeOpenflow(version, of10.OFPT_PORT_MOD, of10.PortModLen, r.xids.Next())
		p := b.Bytes()
		binary.BigEndian.PutUint16(p[8:10], pm.PortNo)
		copy(p[10:16], pm.HWAddr[:])
		binary.BigEndian.PutUint32(p[16:20], pm.Config&of10.OFPPC_ALL)
		binary.BigEndian.PutUint32(p[20:24], pm.Mask&of10.OFPPC_ALL)
		binary.BigEndian.PutUint32(p[24:28], openflow.PortFeaturesToOFP10(pm.Advertise))

		return b
	}

	b := openflow.MakeOpenflow(version, of11.OFPT_PORT_MOD, of11.PortModLen, r.xids.Next())
	p := b.Bytes()
	binary.BigEndian.PutUint32(p[8:12], openflow.PortToOFP11(pm.PortNo))
	copy(p[16:22], pm.HWAddr[:])
	binary.BigEndian.PutUint32(p[24:28], pm.Config&of11.OFPPC_ALL)
	binary.BigEndian.PutUint32(p[28:32], pm.Mask&of11.OFPPC_ALL)
	binary.BigEndian.PutUint32(p[32:36], openflow.PortFeaturesToOFP11(pm.Advertise))

	return b
}
