package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/ragnotes/pkg/logger"
)

// dualWriteOp is a two-step write across the note store (primary) and the
// vector index (secondary). There is no transaction spanning the two.
type dualWriteOp struct {
	name string

	// noteID is set by primary once the note id is known.
	noteID int64

	primary   func(ctx context.Context) error
	secondary func(ctx context.Context) error

	// compensate undoes primary. Nil when there is nothing to undo.
	compensate func(ctx context.Context) error
}

// dualWrite runs op.primary then op.secondary. A primary failure is returned
// as-is since nothing has been committed. A secondary failure is handled by
// the notebook's PartialFailurePolicy and always returns ErrPartialWrite.
func (n *Notebook) dualWrite(ctx context.Context, op *dualWriteOp) error {
	if err := op.primary(ctx); err != nil {
		return err
	}

	err := op.secondary(ctx)
	if err == nil {
		return nil
	}

	n.logger.Error("partial write: note store committed, vector index failed",
		"op", op.name,
		logger.NoteID(op.noteID),
		"policy", string(n.policy),
		logger.Err(err),
	)
	partial := fmt.Errorf("%w: %s %d: %w", ErrPartialWrite, op.name, op.noteID, err)

	if n.policy != PolicyCompensate || op.compensate == nil {
		return partial
	}

	// The request may already be cancelled; compensation still has to run.
	if cerr := op.compensate(context.WithoutCancel(ctx)); cerr != nil {
		n.logger.Error("compensating action failed",
			"op", op.name,
			logger.NoteID(op.noteID),
			logger.Err(cerr),
		)
		return errors.Join(partial, fmt.Errorf("compensating %s %d: %w", op.name, op.noteID, cerr))
	}

	n.logger.Warn("compensated partial write",
		"op", op.name,
		logger.NoteID(op.noteID),
	)
	return partial
}
