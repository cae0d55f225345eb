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

// Link features of a port, in a version independent encoding that matches
// the OpenFlow 1.1 wire bits.
const (
	NETDEV_F_10MB_HD uint32 = 1 << iota
	NETDEV_F_10MB_FD
	NETDEV_F_100MB_HD
	NETDEV_F_100MB_FD
	NETDEV_F_1GB_HD
	NETDEV_F_1GB_FD
	NETDEV_F_10GB_FD
	NETDEV_F_40GB_FD
	NETDEV_F_100GB_FD
	NETDEV_F_1TB_FD
	NETDEV_F_OTHER
	NETDEV_F_COPPER
	NETDEV_F_FIBER
	NETDEV_F_AUTONEG
	NETDEV_F_PAUSE
	NETDEV_F_PAUSE_ASYM
)

// MaxPortNameLen is the size of the fixed name field in port descriptions.
const MaxPortNameLen = 16

// PhyPort describes one switch port in a version independent form. Config
// and State carry the wire bits of the version the description arrived in;
// the feature sets use the NETDEV_F_* encoding. CurrSpeed and MaxSpeed are
// in kbps and are derived from the feature bits for OpenFlow 1.0, which has
// no speed fields of its own.
type PhyPort struct {
	PortNo     uint16
	HWAddr     EthAddr
	Name       string
	Config     uint32
	State      uint32
	Curr       uint32
	Advertised uint32
	Supported  uint32
	Peer       uint32
	CurrSpeed  uint32
	MaxSpeed   uint32
}

// PortFeaturesFromOFP10 converts OpenFlow 1.0 port feature bits to
// NETDEV_F_*. The low seven bits agree between the two encodings; 1.0 packs
// its medium and pause bits right after them.
func PortFeaturesFromOFP10(ofp10 uint32) uint32 {
	return ofp10&0x7f | ofp10&0xf80<<4
}

// PortFeaturesToOFP10 is the inverse of PortFeaturesFromOFP10. Features 1.0
// cannot express, such as speeds above 10 Gbps, are dropped.
func PortFeaturesToOFP10(features uint32) uint32 {
	return features&0x7f | features&0xf800>>4
}

// PortFeaturesFromOFP11 converts OpenFlow 1.1 port feature bits to
// NETDEV_F_*.
func PortFeaturesFromOFP11(ofp11 uint32) uint32 {
	return ofp11 & 0xffff
}

// PortFeaturesToOFP11 is the inverse of PortFeaturesFromOFP11.
func PortFeaturesToOFP11(features uint32) uint32 {
	return features & 0xffff
}

// FeaturesToBps returns the link speed in bits per second suggested by a set
// of NETDEV_F_* bits, assuming 100 Mbps when no speed bit is present.
func FeaturesToBps(features uint32) uint64 {
	switch {
	case features&NETDEV_F_1TB_FD != 0:
		return 1000 * 1000 * 1000 * 1000
	case features&NETDEV_F_100GB_FD != 0:
		return 100 * 1000 * 1000 * 1000
	case features&NETDEV_F_40GB_FD != 0:
		return 40 * 1000 * 1000 * 1000
	case features&NETDEV_F_10GB_FD != 0:
		return 10 * 1000 * 1000 * 1000
	case features&(NETDEV_F_1GB_HD|NETDEV_F_1GB_FD) != 0:
		return 1000 * 1000 * 1000
	case features&(NETDEV_F_100MB_HD|NETDEV_F_100MB_FD) != 0:
		return 100 * 1000 * 1000
	case features&(NETDEV_F_10MB_HD|NETDEV_F_10MB_FD) != 0:
		return 10 * 1000 * 1000
	default:
		return 100 * 1000 * 1000
	}
}
