package luov

import (
	"crypto/rand"
	"io"
	"log/slog"
)

// Options for the signing process.
type SignOptions struct {
	// Maximum number of attempts (vinegar samples) before giving up with
	// ErrSigningFailed. Zero means no limit; since a random system is
	// non-singular with high probability, only a few attempts are
	// expected in any case.
	MaxAttempts int

	// Number of concurrent workers trying vinegar samples. Values lower
	// than 2 mean that everything runs in the calling goroutine, and that
	// the output is a deterministic function of the random source.
	Workers int

	// Destination of retry-loop records (nil to discard them).
	Logger *slog.Logger
}

var DefaultSignOptions = SignOptions{}

var discard_logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (o *SignOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return discard_logger
	}
	return o.Logger
}

// Sign a message using a given private key.
//
//	- rng is the random source to use (nil to use the OS RNG)
//	- p is the parameter set
//	- skey is the private key (private seed)
//	- msg is the message to sign
//
// Using the OS RNG (i.e. setting rng to nil) is recommended. If an
// explicit random source is provided, then the caller MUST make sure that
// it provides sufficient entropy; the salt and the vinegar values are
// drawn from it.
func Sign(rng io.Reader, p *Params, skey []byte, msg []byte) ([]byte, error) {
	return SignWithOptions(rng, p, skey, msg, &DefaultSignOptions)
}

// Similar to [Sign], with explicit options (nil for the defaults).
func SignWithOptions(rng io.Reader, p *Params, skey []byte, msg []byte,
	opts *SignOptions) ([]byte, error) {

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.Reader
	}
	if opts == nil {
		opts = &DefaultSignOptions
	}
	sig, _, err := sign_inner(rng, p, skey, msg, opts)
	return sig, err
}

// Inner signature function. The parameters are assumed valid. The
// number of attempts that were made is returned along with the
// signature.
func sign_inner(rng io.Reader, p *Params, skey []byte, msg []byte,
	opts *SignOptions) ([]byte, int, error) {

	sk, err := expand_signing_key(p, skey)
	if err != nil {
		return nil, 0, err
	}

	// The salt is drawn once; only the vinegar values change between
	// attempts, so that the digest stays the one the verifier recomputes.
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rng, salt); err != nil {
		return nil, 0, err
	}
	h := hash_message(p, msg, salt)

	var vin, oil []uint8
	var attempts int
	if opts.Workers > 1 {
		var wseed [32]byte
		if _, err := io.ReadFull(rng, wseed[:]); err != nil {
			return nil, 0, err
		}
		vin, oil, attempts, err = sk.solve_parallel(wseed[:], h, opts)
	} else {
		vin, oil, attempts, err = sk.solve_serial(rng, h, opts)
	}
	if err != nil {
		return nil, attempts, err
	}

	s, err := sk.project(vin, oil)
	if err != nil {
		return nil, attempts, err
	}
	sig, err := encode_signature(p, sk.f, s, salt)
	return sig, attempts, err
}
