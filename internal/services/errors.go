package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/database"
)

// Error kinds. Match with errors.Is; every *Error unwraps to exactly one kind.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrTransactionTimeout = errors.New("transaction timeout")
	ErrDependency         = errors.New("dependency error")
)

var (
	ErrShopNameTaken    = &Error{Kind: ErrConflict, Msg: "Shop name already exists. Please choose a different shop name."}
	ErrShopEmailTaken   = &Error{Kind: ErrConflict, Msg: "A shop is already registered for this email."}
	ErrShopNotFound     = &Error{Kind: ErrNotFound, Msg: "Shop not found."}
	ErrProductNameTaken = &Error{Kind: ErrConflict, Msg: "Product name already exists in your shop. Please choose a different name or edit the existing product."}
	ErrProductNotFound  = &Error{Kind: ErrNotFound, Msg: "Product not found."}
	ErrInvalidWindow    = &Error{Kind: ErrValidation, Msg: "Invalid sales filter."}
)

// Error is the single error type returned by the service layer.
type Error struct {
	Kind error
	Op   string // operation prefix, e.g. "Error in updating shop"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && msg != "":
		return e.Op + ": " + msg
	case e.Op != "":
		return e.Op
	case msg != "":
		return msg
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func validationError(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

// wrapFailure classifies an error escaping a store or cache call. Errors that
// already carry a kind pass through; transaction bounds become
// ErrTransactionTimeout; everything else is an ErrDependency with op as prefix.
func wrapFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	switch {
	case errors.Is(err, database.ErrTxWaitExceeded),
		errors.Is(err, database.ErrTxTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrTransactionTimeout, Op: op, Err: err}
	}
	return &Error{Kind: ErrDependency, Op: op, Err: err}
}
