package status

import (
	"errors"
	"fmt"
)

// Code is the closed result taxonomy every display operation reports.
type Code int

const (
	Success Code = iota
	Failure
	IllegalArgument
	NoneAvailable
	VendorUnknown
	RangeCheck
	// InvalidDisplay is only produced while constructing a display handle.
	InvalidDisplay
	// Unsupported means the device itself reports the feature absent.
	Unsupported
)

// Raw status values as reported by the display API.
const (
	RawSuccess         int32 = 0
	RawFailure         int32 = 1000
	RawIllegalArgument int32 = 1001
	RawRangeCheck      int32 = 1007
	RawNoneAvailable   int32 = 1011
	RawVendorUnknown   int32 = 1970170734 // 'unkn'
)

var names = map[Code]string{
	Success:         "Success",
	Failure:         "Failure",
	IllegalArgument: "IllegalArgument",
	NoneAvailable:   "NoneAvailable",
	VendorUnknown:   "VendorUnknown",
	RangeCheck:      "RangeCheck",
	InvalidDisplay:  "InvalidDisplay",
	Unsupported:     "Unsupported",
}

func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// ParseCode converts a code name back into a Code.
func ParseCode(s string) (Code, bool) {
	for c, n := range names {
		if n == s {
			return c, true
		}
	}
	return 0, false
}

var rawTable = map[int32]Code{
	RawSuccess:         Success,
	RawFailure:         Failure,
	RawIllegalArgument: IllegalArgument,
	RawNoneAvailable:   NoneAvailable,
	RawVendorUnknown:   VendorUnknown,
	RawRangeCheck:      RangeCheck,
}

// Translator maps raw platform status values into Codes. Values missing from
// the table translate to Fallback.
type Translator struct {
	Fallback Code
}

// DefaultTranslator degrades unrecognized raw values to Success.
var DefaultTranslator = Translator{Fallback: Success}

// Translate looks raw up in the fixed table.
func (t Translator) Translate(raw int32) Code {
	if c, ok := rawTable[raw]; ok {
		return c
	}
	return t.Fallback
}

// Known reports whether raw is present in the fixed table.
func (t Translator) Known(raw int32) bool {
	_, ok := rawTable[raw]
	return ok
}

// Translate uses DefaultTranslator.
func Translate(raw int32) Code {
	return DefaultTranslator.Translate(raw)
}

// Error is the error value returned by display operations.
type Error struct {
	Op   string
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Code, so errors.Is(err, status.New("", c)) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Op == "" && t.Code == e.Code
}

// New returns an *Error for op with code c. A Success code yields nil.
func New(op string, c Code) error {
	if c == Success {
		return nil
	}
	return &Error{Op: op, Code: c}
}

// Wrap attaches code c to err.
func Wrap(op string, c Code, err error) error {
	if c == Success {
		return nil
	}
	return &Error{Op: op, Code: c, Err: err}
}

// Errorf is Wrap with a formatted cause.
func Errorf(op string, c Code, format string, args ...any) error {
	return Wrap(op, c, fmt.Errorf(format, args...))
}

// CodeOf extracts the Code carried by err. nil is Success and errors that
// carry no Code are Failure.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return Failure
}

// Sentinel values for errors.Is comparisons.
var (
	ErrFailure         = &Error{Code: Failure}
	ErrIllegalArgument = &Error{Code: IllegalArgument}
	ErrNoneAvailable   = &Error{Code: NoneAvailable}
	ErrVendorUnknown   = &Error{Code: VendorUnknown}
	ErrRangeCheck      = &Error{Code: RangeCheck}
	ErrInvalidDisplay  = &Error{Code: InvalidDisplay}
	ErrUnsupported     = &Error{Code: Unsupported}
)
