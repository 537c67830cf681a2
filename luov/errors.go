package luov

import (
	"errors"
)

// Error kinds. Errors returned by this package wrap one of these values
// (possibly with some context) and can be tested with errors.Is().
var (
	// An internally derived matrix or vector does not have the exact
	// expected dimensions. This is always a defect, never corrected.
	ErrShapeMismatch = errors.New("luov: shape mismatch")

	// Inversion of zero was attempted.
	ErrDivisionByZero = errors.New("luov: division by zero")

	// A linear system has no unique solution. The signer retries on
	// this condition; it is surfaced only through ErrSigningFailed.
	ErrSingularSystem = errors.New("luov: singular system")

	// The XOF was asked for more output than it can provide.
	ErrInsufficientOutput = errors.New("luov: insufficient XOF output")

	ErrMalformedSignature  = errors.New("luov: malformed signature")
	ErrMalformedPublicKey  = errors.New("luov: malformed public key")
	ErrMalformedPrivateKey = errors.New("luov: malformed private key")

	// The configured maximum number of signing attempts was reached.
	ErrSigningFailed = errors.New("luov: signing failed (attempts exhausted)")

	ErrInvalidParams = errors.New("luov: invalid parameters")
)
