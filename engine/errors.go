package engine

import (
	"errors"
	"fmt"
)

// Error is the error type of the engine package. Critical errors
// mean that the engine's toolchain is not usable, and the whole comparison
// should stop. Non-critical errors only affect the engine that produced them.
type Error struct {
	message    string
	engine     Name
	file       string //the file that has problems, or empty string if none.
	additional string
	deco       []string
	critical   bool
	err        error
}

func (err Error) Error() string {
	var e string
	en := string(err.engine)
	if en == "" {
		en = "engine"
	}
	if err.file != "" {
		e = fmt.Sprintf("%s file %s error: %s", en, err.file, err.message)
	} else {
		e = fmt.Sprintf("%s error: %s", en, err.message)
	}
	if err.additional != "" {
		e = e + " " + err.additional
	}
	if err.err != nil {
		e = e + ": " + err.err.Error()
	}
	return e
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// NewError returns an Error produced by engine. If critical is true, the
// error will stop a comparison.
func NewError(message string, engine Name, critical bool) Error {
	return Error{message: message, engine: engine, critical: critical}
}

// Critical returns whether the error should stop the whole comparison.
func (err Error) Critical() bool { return err.critical }

// Engine returns the name of the engine that produced the error.
func (err Error) Engine() Name { return err.engine }

// FileName returns the file with problems, if any.
func (err Error) FileName() string { return err.file }

func (err Error) Unwrap() error { return err.err }

// IsCritical returns true if err, or any error it wraps, is a critical Error.
func IsCritical(err error) bool {
	var e Error
	if errors.As(err, &e) {
		return e.critical
	}
	return false
}

// errDecorate adds caller to the decoration of err, if err is an
// engine Error, and returns it.
func errDecorate(err error, caller string) error {
	e, ok := err.(Error)
	if !ok {
		return err
	}
	e.deco = e.Decorate(caller)
	return e
}

const (
	ErrNotAvailable     = "toolchain not available"
	ErrCantInput        = "can't build input"
	ErrNotRunning       = "can't run the engine"
	ErrNoEnergy         = "can't obtain the energy"
	ErrReservedEngine   = "engine is reserved and can't be run"
	ErrUnknownEngine    = "unknown engine"
	ErrMissingCompanion = "companion program not found"
)
