// This package implements the algebraic core of the LUOV signature
// algorithm, a multivariate-quadratic scheme of the oil-and-vinegar family.
//
// WARNING: this implementation targets correctness and readability of
// the algebra; it makes no attempt at protecting secret values against
// timing or cache side channels. It should be used only for tests,
// research and prototype purposes.
//
// A parameter set (see [Params]) selects the field GF(2^r), the number m
// of oil variables (equal to the number of public equations) and the
// number v of vinegar variables. Standard sets are [LUOV_7_57_197],
// [LUOV_7_83_283] and [LUOV_7_110_374], for NIST security levels 1, 3
// and 5 ([ParamsForLevel] maps a level to its set). Smaller sets can be
// built by the caller for tests; any set is checked by [Params.Validate]
// before use.
//
// The private key is a seed of [Params.PrivateKeySize] bytes. All secret
// material (the linear map T) and all public matrices (C, L and Q1) are
// re-derived from it with SHAKE, so the private key stays minimal. The
// public key consists of a public seed, from which C, L and Q1 are
// expanded, and of the matrix Q2 that is compiled from Q1 and T; Q2 is
// binary and encoded at one bit per coefficient. A new key pair is
// created with the [KeyGen] function, which takes the parameter set and a
// source of randomness. The random source MUST be cryptographically
// secure. If the source is nil, then the operating system's RNG is used
// (through crypto/rand.Reader).
//
// A signature is generated with [Sign] (or [SignWithOptions], to bound
// the number of attempts, spread the work over several goroutines, or
// log the retry loop). The message is hashed together with a 16-byte
// random salt; the signer then samples vinegar values and solves a linear
// system in the oil values, retrying with new vinegar values when the
// system is singular. Signatures have a fixed size, given by
// [Params.SignatureSize]: n = v+m field elements of r bits each, then the
// salt.
//
// Signature verification is performed with [Verify], which evaluates the
// public quadratic map at the signature and compares the result with the
// message digest. The output is Boolean; undecodable keys or signatures
// are reported with an error.
package luov
