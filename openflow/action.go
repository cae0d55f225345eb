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

import "github.com/pkg/errors"

// ActionType identifies an action in its version independent form. The
// values cover OpenFlow 1.0 and 1.1 actions, OpenFlow 1.1 instructions and
// the Nicira vendor actions.
type ActionType int

const (
	OFPACT_OUTPUT ActionType = iota
	OFPACT_CONTROLLER
	OFPACT_ENQUEUE
	OFPACT_OUTPUT_REG
	OFPACT_BUNDLE

	OFPACT_SET_VLAN_VID
	OFPACT_SET_VLAN_PCP
	OFPACT_STRIP_VLAN
	OFPACT_PUSH_VLAN
	OFPACT_POP_VLAN
	OFPACT_SET_ETH_SRC
	OFPACT_SET_ETH_DST
	OFPACT_SET_IPV4_SRC
	OFPACT_SET_IPV4_DST
	OFPACT_SET_IPV4_DSCP
	OFPACT_SET_L4_SRC_PORT
	OFPACT_SET_L4_DST_PORT
	OFPACT_REG_MOVE
	OFPACT_REG_LOAD
	OFPACT_SET_FIELD
	OFPACT_DEC_TTL
	OFPACT_SET_TUNNEL
	OFPACT_COPY_TTL_OUT
	OFPACT_COPY_TTL_IN
	OFPACT_PUSH_MPLS
	OFPACT_POP_MPLS
	OFPACT_SET_MPLS_LABEL
	OFPACT_SET_MPLS_TC
	OFPACT_SET_MPLS_TTL
	OFPACT_DEC_MPLS_TTL

	OFPACT_SET_QUEUE
	OFPACT_POP_QUEUE
	OFPACT_FIN_TIMEOUT
	OFPACT_RESUBMIT
	OFPACT_LEARN
	OFPACT_MULTIPATH
	OFPACT_AUTOPATH
	OFPACT_NOTE
	OFPACT_EXIT

	OFPACT_APPLY_ACTIONS
	OFPACT_CLEAR_ACTIONS
	OFPACT_WRITE_ACTIONS

	// OFPACT_RAW is an action list kept in its undecoded wire form.
	OFPACT_RAW
)

// Action is one action or instruction of a flow entry.
type Action interface {
	Type() ActionType

	// Instruction reports whether the action arrived as an OpenFlow 1.1
	// instruction rather than as a plain action.
	Instruction() bool
}

// NestedActions is implemented by actions that carry their own action list,
// such as the apply-actions and write-actions instructions.
type NestedActions interface {
	Actions() ActionList
}

// ActionList is the ordered actions of one flow entry.
type ActionList []Action

// ActionCodec translates action lists between their wire forms and
// ActionList. The message translators call it for the action part of
// messages; RawActionCodec is the implementation used when the caller does
// not need to look inside actions.
type ActionCodec interface {
	// PullActions decodes an OpenFlow 1.0 action array of length bytes
	// from the front of b.
	PullActions(b *Buffer, length int) (ActionList, error)

	// PullInstructions decodes an OpenFlow 1.1 or 1.2 instruction stream
	// of length bytes from the front of b.
	PullInstructions(b *Buffer, length int, version uint8) (ActionList, error)

	// PutActions appends actions to b as an OpenFlow 1.0 action array.
	PutActions(b *Buffer, actions ActionList)

	// PutInstructions appends actions to b as an instruction stream for
	// the given version.
	PutInstructions(b *Buffer, actions ActionList, version uint8)
}

// RawActions is an action list in its undecoded wire form. It satisfies
// Action so that a message can be decoded, inspected and re-encoded without
// this library understanding the actions it carries.
type RawActions []byte

func (r RawActions) Type() ActionType { return OFPACT_RAW }

func (r RawActions) Instruction() bool { return false }

// RawActionCodec passes action bytes through without interpreting them
// beyond the alignment rule that action arrays are multiples of 8 bytes.
type RawActionCodec struct{}

func (r RawActionCodec) PullActions(b *Buffer, length int) (ActionList, error) {
	return r.pullRaw(b, length)
}

func (r RawActionCodec) PullInstructions(b *Buffer, length int, version uint8) (ActionList, error) {
	return r.pullRaw(b, length)
}

func (r RawActionCodec) pullRaw(b *Buffer, length int) (ActionList, error) {
	if length%8 != 0 {
		return nil, errors.Wrapf(ErrBadLength, "action list length %d is not a multiple of 8", length)
	}
	if length == 0 {
		return nil, nil
	}
	p := b.TryPull(length)
	if p == nil {
		return nil, errors.Wrapf(ErrBadLength, "action list of %d bytes overruns the message", length)
	}

	return ActionList{RawActions(p)}, nil
}

func (r RawActionCodec) PutActions(b *Buffer, actions ActionList) {
	r.putRaw(b, actions)
}

func (r RawActionCodec) PutInstructions(b *Buffer, actions ActionList, version uint8) {
	r.putRaw(b, actions)
}

func (r RawActionCodec) putRaw(b *Buffer, actions ActionList) {
	for _, a := range actions {
		raw, ok := a.(RawActions)
		if !ok {
			panic("raw action codec cannot encode decoded actions")
		}
		b.Put(raw)
	}
}
