// internal/driver/capabilities.go
package driver

// Op names a logical element operation. Used both for error tagging and for
// capability lookups.
type Op string

const (
	OpAttribute    Op = "attribute"
	OpText         Op = "text"
	OpValue        Op = "value"
	OpSet          Op = "set"
	OpState        Op = "state"
	OpTagName      Op = "tag_name"
	OpPath         Op = "path"
	OpTrigger      Op = "trigger"
	OpClick        Op = "click"
	OpRightClick   Op = "right_click"
	OpDoubleClick  Op = "double_click"
	OpHover        Op = "hover"
	OpSendKeys     Op = "send_keys"
	OpDragTo       Op = "drag_to"
	OpSelect       Op = "select_option"
	OpUnselect     Op = "unselect_option"
	OpFind         Op = "find"
)

// Capabilities is a driver's statically declared support for extended
// argument forms. Each backend fills this in once; callers consult it
// instead of probing method signatures at runtime. A zero value means the
// minimal form only, which every driver must accept.
type Capabilities struct {
	// ExtendedClick: pointer actions accept modifier keys and an offset
	// from the element's corner.
	ExtendedClick bool
	// ExtendedSet: value mutation accepts SetOptions (fill strategy,
	// keystroke delay).
	ExtendedSet bool
}

// SupportsExtended reports whether the extended argument form of op is
// accepted by a driver declaring these capabilities. Operations with no
// extended form report false.
func (c Capabilities) SupportsExtended(op Op) bool {
	switch op {
	case OpClick, OpRightClick, OpDoubleClick:
		return c.ExtendedClick
	case OpSet:
		return c.ExtendedSet
	default:
		return false
	}
}
