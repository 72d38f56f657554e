package model

import "strings"

// CoverageScheme is one of the supported coverage calls.
type CoverageScheme string

const (
	Cover0   CoverageScheme = "C0"
	Cover1   CoverageScheme = "C1"
	Cover2   CoverageScheme = "C2"
	Tampa2   CoverageScheme = "TAMPA2"
	Cover3   CoverageScheme = "C3"
	Cover4   CoverageScheme = "C4"
	Palms    CoverageScheme = "PALMS"
	Quarters CoverageScheme = "QUARTERS"
	Cover6   CoverageScheme = "COVER6"
	Cover9   CoverageScheme = "COVER9"
)

// Schemes lists every supported coverage.
var Schemes = []CoverageScheme{Cover0, Cover1, Cover2, Tampa2, Cover3, Cover4, Palms, Quarters, Cover6, Cover9}

// Family groups coverages by how defenders pick up receivers.
type Family string

const (
	FamilyMan   Family = "MAN"
	FamilyZone  Family = "ZONE"
	FamilyMatch Family = "MATCH"
)

// Family returns the coverage family of s.
func (s CoverageScheme) Family() Family {
	switch s {
	case Cover0, Cover1:
		return FamilyMan
	case Palms, Quarters, Cover6, Cover9:
		return FamilyMatch
	default:
		return FamilyZone
	}
}

// TwoHigh reports whether the post-snap shell keeps two deep safeties.
func (s CoverageScheme) TwoHigh() bool {
	switch s {
	case Cover2, Tampa2, Cover4, Palms, Quarters, Cover6:
		return true
	}
	return false
}

// MOF describes the middle-of-field state.
type MOF string

const (
	MOFZero   MOF = "ZERO"
	MOFClosed MOF = "CLOSED"
	MOFOpen   MOF = "OPEN"
)

// MOF returns the middle-of-field state after the snap.
func (s CoverageScheme) MOF() MOF {
	switch {
	case s == Cover0:
		return MOFZero
	case s.TwoHigh():
		return MOFOpen
	default:
		return MOFClosed
	}
}

// ParseCoverage resolves a coverage name, accepting a few common aliases.
func ParseCoverage(s string) (CoverageScheme, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "C0", "COVER0":
		return Cover0, true
	case "C1", "COVER1":
		return Cover1, true
	case "C2", "COVER2":
		return Cover2, true
	case "TAMPA2", "TAMPA", "T2":
		return Tampa2, true
	case "C3", "COVER3":
		return Cover3, true
	case "C4", "COVER4":
		return Cover4, true
	case "PALMS", "PALM", "2READ":
		return Palms, true
	case "QUARTERS", "QUARTERSMATCH", "C4M":
		return Quarters, true
	case "COVER6", "C6":
		return Cover6, true
	case "COVER9", "C9":
		return Cover9, true
	}
	return "", false
}

// Formation is one of the supported offensive sets.
type Formation string

const (
	FormationTrips     Formation = "trips"
	FormationDoubles   Formation = "two-by-two"
	FormationBunchWeak Formation = "bunch-weak"
)

// Formations lists every supported formation.
var Formations = []Formation{FormationTrips, FormationDoubles, FormationBunchWeak}

// ParseFormation resolves a formation name.
func ParseFormation(s string) (Formation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trips", "three-receiver-strong", "3x1":
		return FormationTrips, true
	case "two-by-two", "2x2", "doubles":
		return FormationDoubles, true
	case "bunch-weak", "bunch":
		return FormationBunchWeak, true
	}
	return "", false
}

// PressOutcome is the result of a corner's press at the line.
type PressOutcome string

const (
	PressNone          PressOutcome = "NONE"
	PressJamLock       PressOutcome = "JAM_LOCK"
	PressWhiff         PressOutcome = "WHIFF"
	PressJamAndRelease PressOutcome = "JAM_AND_RELEASE"
)

// ParsePressOutcome resolves a press outcome name.
func ParsePressOutcome(s string) (PressOutcome, bool) {
	switch PressOutcome(strings.ToUpper(strings.TrimSpace(s))) {
	case PressNone:
		return PressNone, true
	case PressJamLock:
		return PressJamLock, true
	case PressWhiff:
		return PressWhiff, true
	case PressJamAndRelease:
		return PressJamAndRelease, true
	}
	return "", false
}

// PressTechnique controls whether corners press in man coverage.
type PressTechnique string

const (
	PressAuto PressTechnique = "AUTO"
	PressOn   PressTechnique = "PRESS"
	PressOff  PressTechnique = "OFF"
)

// ParsePressTechnique resolves a press technique; ok is false for unknown
// input.
func ParsePressTechnique(s string) (PressTechnique, bool) {
	switch PressTechnique(strings.ToUpper(strings.TrimSpace(s))) {
	case PressAuto:
		return PressAuto, true
	case PressOn:
		return PressOn, true
	case PressOff:
		return PressOff, true
	}
	return "", false
}

// RotationMode controls post-snap safety rotation for one-high calls.
type RotationMode string

const (
	RotationAuto   RotationMode = "AUTO"
	RotationNone   RotationMode = "NONE"
	RotationStrong RotationMode = "STRONG"
	RotationWeak   RotationMode = "WEAK"
)

// ParseRotationMode resolves a rotation mode; ok is false for unknown input.
func ParseRotationMode(s string) (RotationMode, bool) {
	switch RotationMode(strings.ToUpper(strings.TrimSpace(s))) {
	case RotationAuto:
		return RotationAuto, true
	case RotationNone:
		return RotationNone, true
	case RotationStrong:
		return RotationStrong, true
	case RotationWeak:
		return RotationWeak, true
	}
	return "", false
}
