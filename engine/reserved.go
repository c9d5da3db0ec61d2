package engine

import "context"

// reservedHandle is the handle for engines that are recognized but that
// commpare can't run. It is never available.
type reservedHandle struct {
	name Name
}

func (R *reservedHandle) Name() Name      { return R.name }
func (R *reservedHandle) Available() bool { return false }

func (R *reservedHandle) BuildInput(sb *Sandbox, st *Structure) error {
	return Error{message: ErrReservedEngine, engine: R.name, deco: []string{"BuildInput"}}
}

func (R *reservedHandle) Run(ctx context.Context, sb *Sandbox) (bool, error) {
	return false, Error{message: ErrReservedEngine, engine: R.name, deco: []string{"Run"}}
}

func (R *reservedHandle) Energy(ctx context.Context, sb *Sandbox) (*Report, error) {
	return nil, Error{message: ErrReservedEngine, engine: R.name, deco: []string{"Energy"}}
}

func (R *reservedHandle) Close() error { return nil }
