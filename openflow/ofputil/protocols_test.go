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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mazizi/openvswitch/openflow"
)

type stubAction struct {
	typ         openflow.ActionType
	instruction bool
}

func (r stubAction) Type() openflow.ActionType { return r.typ }

func (r stubAction) Instruction() bool { return r.instruction }

type stubNested struct {
	stubAction
	nested openflow.ActionList
}

func (r stubNested) Actions() openflow.ActionList { return r.nested }

func TestUsableProtocols(t *testing.T) {
	samples := []struct {
		Mutate   func(rule *openflow.Rule)
		Expected openflow.Protocol
	}{
		// A catchall rule fits every flow format.
		{
			func(rule *openflow.Rule) {},
			openflow.P_ANY,
		},
		// So does an ordinary exact TCP match with a CIDR source mask.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.Flags &^= openflow.FWW_DL_TYPE | openflow.FWW_NW_PROTO
				rule.Flow.DLType = openflow.ETH_TYPE_IP
				rule.Flow.NWProto = 6
				rule.Wildcards.NWSrcMask = 0xffffff00
				rule.Flow.NWSrc = 0x0a000000
				rule.Wildcards.TPDstMask = 0xffff
				rule.Flow.TPDst = 80
			},
			openflow.P_ANY,
		},
		// Exact ethernet masks are fine, too.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.DLDstMask = openflow.EthAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
				rule.Flow.DLDst = openflow.EthAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
			},
			openflow.P_ANY,
		},
		// A partial ethernet mask forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.DLSrcMask = openflow.EthAddr{0x01}
			},
			openflow.P_NXM_ANY,
		},
		// Matching an ARP hardware address forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.Flags &^= openflow.FWW_ARP_SHA
			},
			openflow.P_NXM_ANY,
		},
		// Matching IPv6 traffic forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.Flags &^= openflow.FWW_DL_TYPE
				rule.Flow.DLType = openflow.ETH_TYPE_IPV6
			},
			openflow.P_NXM_ANY,
		},
		// Matching a register forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.RegMasks[1] = 0xffffffff
			},
			openflow.P_NXM_ANY,
		},
		// Matching the tunnel ID forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.TunIDMask = ^uint64(0)
			},
			openflow.P_NXM_ANY,
		},
		// Matching fragments forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.NWFragMask = openflow.FLOW_NW_FRAG_MASK
				rule.Flow.NWFrag = openflow.FLOW_NW_FRAG_ANY
			},
			openflow.P_NXM_ANY,
		},
		// Matching ECN bits forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.Flags &^= openflow.FWW_NW_ECN
			},
			openflow.P_NXM_ANY,
		},
		// A non-CIDR IPv4 mask forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.NWDstMask = 0x00ff0000
			},
			openflow.P_NXM_ANY,
		},
		// A partial transport port mask forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.TPSrcMask = 0xfff0
			},
			openflow.P_NXM_ANY,
		},
		// Matching the MPLS label forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.Flags &^= openflow.FWW_MPLS_LABEL
			},
			openflow.P_NXM_ANY,
		},
		// Matching the QinQ outer tag forces NXM.
		{
			func(rule *openflow.Rule) {
				rule.Wildcards.Flags &^= openflow.FWW_VLAN_QINQ_VID
			},
			openflow.P_NXM_ANY,
		},
	}

	for i, v := range samples {
		rule := openflow.CatchallRule(100)
		v.Mutate(&rule)
		assert.Equal(t, v.Expected, UsableProtocols(&rule), "sample %d", i)
	}
}

func TestUsableProtocolsWithActions(t *testing.T) {
	samples := []struct {
		Actions  openflow.ActionList
		Expected openflow.Protocol
	}{
		{
			nil,
			openflow.P_ANY,
		},
		// Undecoded actions impose no restriction.
		{
			openflow.ActionList{openflow.RawActions{0x00, 0x00, 0x00, 0x08, 0x00, 0x01, 0x00, 0x00}},
			openflow.P_ANY,
		},
		{
			openflow.ActionList{stubAction{openflow.OFPACT_OUTPUT, false}},
			openflow.P_ANY,
		},
		{
			openflow.ActionList{stubAction{openflow.OFPACT_SET_FIELD, false}},
			openflow.P_OF12,
		},
		{
			openflow.ActionList{stubAction{openflow.OFPACT_REG_LOAD, false}},
			openflow.P_NXM_ANY | openflow.P_OF12,
		},
		{
			openflow.ActionList{stubAction{openflow.OFPACT_SET_L4_SRC_PORT, false}},
			openflow.P_OF10 | openflow.P_NXM_ANY,
		},
		{
			openflow.ActionList{stubAction{openflow.OFPACT_RESUBMIT, false}},
			openflow.P_NXM_ANY | openflow.P_OF12,
		},
		// Resubmit as an instruction only exists in OpenFlow 1.2.
		{
			openflow.ActionList{stubAction{openflow.OFPACT_RESUBMIT, true}},
			openflow.P_OF12,
		},
		{
			openflow.ActionList{stubAction{openflow.OFPACT_POP_VLAN, true}},
			openflow.P_OF12,
		},
		{
			openflow.ActionList{stubAction{openflow.OFPACT_PUSH_MPLS, false}},
			openflow.P_OF12 | openflow.P_NXM_ANY,
		},
		{
			openflow.ActionList{stubAction{openflow.OFPACT_NOTE, false}},
			openflow.P_NXM_ANY | openflow.P_OF12,
		},
		// Nested actions restrict the apply-actions instruction itself.
		{
			openflow.ActionList{stubNested{
				stubAction{openflow.OFPACT_APPLY_ACTIONS, true},
				openflow.ActionList{stubAction{openflow.OFPACT_SET_FIELD, false}},
			}},
			openflow.P_OF12,
		},
		// Restrictions of separate actions intersect.
		{
			openflow.ActionList{
				stubAction{openflow.OFPACT_REG_LOAD, false},
				stubAction{openflow.OFPACT_SET_L4_DST_PORT, false},
			},
			openflow.P_NXM_ANY,
		},
	}

	for i, v := range samples {
		assert.Equal(t, v.Expected, UsableProtocolsWithActions(v.Actions), "sample %d", i)
	}
}

func TestFlowModUsableProtocols(t *testing.T) {
	tunnelRule := openflow.CatchallRule(0)
	tunnelRule.Wildcards.TunIDMask = ^uint64(0)
	tunnelRule.Flow.TunID = 7

	samples := []struct {
		FlowMods []*FlowMod
		Expected openflow.Protocol
	}{
		{
			nil,
			openflow.P_ANY,
		},
		{
			[]*FlowMod{{Rule: openflow.CatchallRule(0), TableID: 0xff}},
			openflow.P_ANY,
		},
		// A table ID needs the flow_mod_table_id extension or OpenFlow 1.2.
		{
			[]*FlowMod{{Rule: openflow.CatchallRule(0), TableID: 3}},
			openflow.P_TID | openflow.P_OF12,
		},
		// Matching the cookie needs NXM or OpenFlow 1.2.
		{
			[]*FlowMod{{Rule: openflow.CatchallRule(0), TableID: 0xff, Cookie: 0x12, CookieMask: 0xff}},
			openflow.P_NXM_ANY | openflow.P_OF12,
		},
		// So does an extension match field like tun_id.
		{
			[]*FlowMod{{Rule: tunnelRule, TableID: 0xff}},
			openflow.P_NXM_ANY | openflow.P_OF12,
		},
		{
			[]*FlowMod{{Rule: openflow.CatchallRule(0), TableID: 2, CookieMask: ^uint64(0)}},
			openflow.P_NXM_TID | openflow.P_OF12,
		},
		// Actions narrow the result after the OpenFlow 1.2 override.
		{
			[]*FlowMod{{
				Rule:    openflow.CatchallRule(0),
				TableID: 1,
				Actions: openflow.ActionList{stubAction{openflow.OFPACT_SET_L4_SRC_PORT, false}},
			}},
			openflow.P_NXM_TID,
		},
		// Restrictions accumulate over the whole batch.
		{
			[]*FlowMod{
				{Rule: openflow.CatchallRule(0), TableID: 1},
				{Rule: tunnelRule, TableID: 0xff},
			},
			openflow.P_NXM_TID | openflow.P_OF12,
		},
	}

	for i, v := range samples {
		assert.Equal(t, v.Expected, FlowModUsableProtocols(v.FlowMods), "sample %d", i)
	}
}
