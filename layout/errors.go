package layout

import "errors"

// Precondition failures. They indicate a programming error in the caller and
// are never produced by well-formed input.
var (
	ErrInvalidOptions = errors.New("layout: invalid options")
	ErrNilPaint       = errors.New("layout: nil text paint")
	ErrNegativeWidth  = errors.New("layout: negative available width")
	ErrNegativeSize   = errors.New("layout: negative measure size")
	ErrNotMeasured    = errors.New("layout: draw before measure")
)
