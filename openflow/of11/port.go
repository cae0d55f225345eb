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

package of11

import (
	"bytes"
	"encoding/binary"

	"github.com/mazizi/openvswitch/openflow"
)

// DecodePort reads a version 1.1 port description. data must hold at least
// PortLen bytes. Port numbers outside the mappable ranges are rejected.
func DecodePort(data []byte) (openflow.PhyPort, error) {
	var pp openflow.PhyPort

	portNo, err := openflow.PortFromOFP11(binary.BigEndian.Uint32(data[0:4]))
	if err != nil {
		return pp, err
	}
	pp.PortNo = portNo
	copy(pp.HWAddr[:], data[8:14])
	pp.Name = portName(data[16:32])
	pp.Config = binary.BigEndian.Uint32(data[32:36]) & OFPPC_ALL
	pp.State = binary.BigEndian.Uint32(data[36:40]) & OFPPS_ALL
	pp.Curr = openflow.PortFeaturesFromOFP11(binary.BigEndian.Uint32(data[40:44]))
	pp.Advertised = openflow.PortFeaturesFromOFP11(binary.BigEndian.Uint32(data[44:48]))
	pp.Supported = openflow.PortFeaturesFromOFP11(binary.BigEndian.Uint32(data[48:52]))
	pp.Peer = openflow.PortFeaturesFromOFP11(binary.BigEndian.Uint32(data[52:56]))
	pp.CurrSpeed = binary.BigEndian.Uint32(data[56:60])
	pp.MaxSpeed = binary.BigEndian.Uint32(data[60:64])

	return pp, nil
}

// EncodePort writes pp as a version 1.1 port description into the first
// PortLen bytes of data.
func EncodePort(pp *openflow.PhyPort, data []byte) {
	for i := range data[:PortLen] {
		data[i] = 0
	}
	binary.BigEndian.PutUint32(data[0:4], openflow.PortToOFP11(pp.PortNo))
	copy(data[8:14], pp.HWAddr[:])
	copy(data[16:16+openflow.MaxPortNameLen-1], pp.Name)
	binary.BigEndian.PutUint32(data[32:36], pp.Config&OFPPC_ALL)
	binary.BigEndian.PutUint32(data[36:40], pp.State&OFPPS_ALL)
	binary.BigEndian.PutUint32(data[40:44], openflow.PortFeaturesToOFP11(pp.Curr))
	binary.BigEndian.PutUint32(data[44:48], openflow.PortFeaturesToOFP11(pp.Advertised))
	binary.BigEndian.PutUint32(data[48:52], openflow.PortFeaturesToOFP11(pp.Supported))
	binary.BigEndian.PutUint32(data[52:56], openflow.PortFeaturesToOFP11(pp.Peer))
	binary.BigEndian.PutUint32(data[56:60], pp.CurrSpeed)
	binary.BigEndian.PutUint32(data[60:64], pp.MaxSpeed)
}

// portName cuts a fixed size, NUL padded port name field down to a string.
func portName(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}

	return string(data)
}
