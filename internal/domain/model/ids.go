// Package model contains the simulation vocabulary shared between layers:
// player ids, scheme and formation enums, and the throw summary handed to
// external graders.
package model

import "strings"

// ReceiverID names one of the five eligible receivers.
type ReceiverID string

const (
	RecX    ReceiverID = "X"
	RecZ    ReceiverID = "Z"
	RecSlot ReceiverID = "SLOT"
	RecTE   ReceiverID = "TE"
	RecRB   ReceiverID = "RB"
)

// Receivers lists receiver ids in their canonical order.
var Receivers = []ReceiverID{RecX, RecZ, RecSlot, RecTE, RecRB}

// ParseReceiver resolves a receiver id case-insensitively.
func ParseReceiver(s string) (ReceiverID, bool) {
	id := ReceiverID(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range Receivers {
		if r == id {
			return r, true
		}
	}
	return "", false
}

// DefenderID names one of the twelve defensive slots the engine models:
// two corners, a nickel, two safeties, three linebackers and four linemen.
type DefenderID string

const (
	LCB    DefenderID = "LCB"
	RCB    DefenderID = "RCB"
	Nickel DefenderID = "NICKEL"
	FS     DefenderID = "FS"
	SS     DefenderID = "SS"
	WLB    DefenderID = "WLB"
	MLB    DefenderID = "MLB"
	SLB    DefenderID = "SLB"
	LDE    DefenderID = "LDE"
	LDT    DefenderID = "LDT"
	RDT    DefenderID = "RDT"
	RDE    DefenderID = "RDE"
)

// Defenders lists defender ids in their canonical order.
var Defenders = []DefenderID{LCB, RCB, Nickel, FS, SS, WLB, MLB, SLB, LDE, LDT, RDT, RDE}

// DefenderGroup buckets defenders by speed class.
type DefenderGroup int

const (
	GroupDB DefenderGroup = iota
	GroupLB
	GroupDL
)

// Group returns the defender's speed class.
func (d DefenderID) Group() DefenderGroup {
	switch d {
	case LCB, RCB, Nickel, FS, SS:
		return GroupDB
	case WLB, MLB, SLB:
		return GroupLB
	default:
		return GroupDL
	}
}

// IsCorner reports whether d is one of the two corners.
func (d DefenderID) IsCorner() bool { return d == LCB || d == RCB }

// IsLinebacker reports whether d is a linebacker.
func (d DefenderID) IsLinebacker() bool { return d.Group() == GroupLB }

// CornerFor returns the corner aligned on the given side (-1 left, +1 right).
func CornerFor(side float64) DefenderID {
	if side < 0 {
		return LCB
	}
	return RCB
}

// LinebackerFor returns the outside linebacker on the given side relative to
// the formation strength: strong side gets the SAM, weak side the WILL.
func LinebackerFor(side, strength float64) DefenderID {
	if side == strength {
		return SLB
	}
	return WLB
}

// SpeedFactor scales the base receiver speed by position.
func (r ReceiverID) SpeedFactor() float64 {
	switch r {
	case RecSlot:
		return 1.02
	case RecTE:
		return 0.88
	case RecRB:
		return 0.92
	default:
		return 1.0
	}
}

// Star reports whether r is the offense's featured receiver; contested
// catches by a star get a bonus.
func (r ReceiverID) Star() bool { return r == RecX }
