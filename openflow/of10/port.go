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

package of10

import (
	"bytes"
	"encoding/binary"

	"github.com/mazizi/openvswitch/openflow"
)

// DecodePhyPort reads a version 1.0 physical port description. data must
// hold at least PhyPortLen bytes. The speed fields are derived from the
// feature bits because 1.0 does not carry speeds.
func DecodePhyPort(data []byte) openflow.PhyPort {
	var pp openflow.PhyPort
	pp.PortNo = binary.BigEndian.Uint16(data[0:2])
	copy(pp.HWAddr[:], data[2:8])
	pp.Name = portName(data[8:24])
	pp.Config = binary.BigEndian.Uint32(data[24:28]) & OFPPC_ALL
	pp.State = binary.BigEndian.Uint32(data[28:32]) & OFPPS_ALL
	pp.Curr = openflow.PortFeaturesFromOFP10(binary.BigEndian.Uint32(data[32:36]))
	pp.Advertised = openflow.PortFeaturesFromOFP10(binary.BigEndian.Uint32(data[36:40]))
	pp.Supported = openflow.PortFeaturesFromOFP10(binary.BigEndian.Uint32(data[40:44]))
	pp.Peer = openflow.PortFeaturesFromOFP10(binary.BigEndian.Uint32(data[44:48]))
	pp.CurrSpeed = uint32(openflow.FeaturesToBps(pp.Curr) / 1000)
	pp.MaxSpeed = uint32(openflow.FeaturesToBps(pp.Supported) / 1000)

	return pp
}

// EncodePhyPort writes pp as a version 1.0 physical port description into
// the first PhyPortLen bytes of data.
func EncodePhyPort(pp *openflow.PhyPort, data []byte) {
	for i := range data[:PhyPortLen] {
		data[i] = 0
	}
	binary.BigEndian.PutUint16(data[0:2], pp.PortNo)
	copy(data[2:8], pp.HWAddr[:])
	copy(data[8:8+openflow.MaxPortNameLen-1], pp.Name)
	binary.BigEndian.PutUint32(data[24:28], pp.Config&OFPPC_ALL)
	binary.BigEndian.PutUint32(data[28:32], pp.State&OFPPS_ALL)
	binary.BigEndian.PutUint32(data[32:36], openflow.PortFeaturesToOFP10(pp.Curr))
	binary.BigEndian.PutUint32(data[36:40], openflow.PortFeaturesToOFP10(pp.Advertised))
	binary.BigEndian.PutUint32(data[40:44], openflow.PortFeaturesToOFP10(pp.Supported))
	binary.BigEndian.PutUint32(data[44:48], openflow.PortFeaturesToOFP10(pp.Peer))
}

// portName cuts a fixed size, NUL padded port name field down to a string.
func portName(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}

	return string(data)
}
