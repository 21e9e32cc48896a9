package exam

import "errors"

// Sentinel errors matched with errors.Is by the HTTP layer.
var (
    // ErrAlreadyActive rejects a second login while a session is online.
    ErrAlreadyActive = errors.New("account already active on another device")
    // ErrAccountLocked rejects a login for an account locked by an admin.
    // Distinct from ErrAlreadyActive so clients can tell the two apart.
    ErrAccountLocked = errors.New("account locked by administrator")
    ErrNotFound      = errors.New("record not found")
    ErrValidation    = errors.New("invalid input")
)
