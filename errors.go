package koopa

import "fmt"

// Errors come in four flavours:
//
//   - Rejection: a grammar did not accept its input. Not fatal.
//   - GenerationError: a grammar definition could not be compiled. Reported per file.
//   - IOError: input could not be read.
//   - ContractViolation: a bug in a grammar or in the core. Panicked, and
//     recovered at most once at the boundary of a single parse.

// Rejection is returned if the entry rule of a grammar fails to accept the
// complete input.
type Rejection struct {
	Source   string
	Index    int      // furthest token index reached
	Token    *Token   // token at the furthest index, nil at end of input
	Position Position // position of the furthest token, or end of last token
}

func (r *Rejection) Error() string {
	if r.Token != nil {
		return fmt.Sprintf("%s: input rejected at token %d, unexpected %q", r.Position, r.Index, r.Token.Text)
	}
	return fmt.Sprintf("%s: input rejected at token %d, unexpected end of input", r.Position, r.Index)
}

// GenerationError is reported when a grammar definition fails to compile.
type GenerationError struct {
	Path string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("cannot generate grammar from %s: %v", e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IOError is the failure kind for missing or unreadable input.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("i/o error for %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ContractViolation is the panic value for broken internal contracts, such as
// an unbalanced stack or a limiter removed out of order.
type ContractViolation struct {
	Msg string
}

func (c ContractViolation) Error() string {
	return "contract violation: " + c.Msg
}

// Violation panics with a ContractViolation.
func Violation(format string, args ...interface{}) {
	panic(ContractViolation{Msg: fmt.Sprintf(format, args...)})
}
