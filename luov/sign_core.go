package luov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Expanded private key, as used by the signer. All values are derived
// from the private seed.
type signing_key struct {
	p   *Params
	f   *gf
	T   *gfmat   // v x m
	C   []uint8  // m
	Lv  *gfmat   // m x v, vinegar columns of L
	LT  *gfmat   // m x m, L*[T; I]
	pk1 []*gfmat // per coordinate, v x v upper triangular
	pk2 []*gfmat // per coordinate, v x m
}

func expand_signing_key(p *Params, skey []byte) (*signing_key, error) {
	f, err := gf_for(p.R)
	if err != nil {
		return nil, err
	}
	public_seed, T, err := derive_private(p, skey)
	if err != nil {
		return nil, err
	}
	C, L, Q1, err := derive_public_map(p, public_seed)
	if err != nil {
		return nil, err
	}

	m, v := p.M, p.V
	sk := &signing_key{p: p, f: f, T: T, C: C}

	// Split L into its vinegar and oil columns; the oil unknowns see
	// L*[T; I] = Lv*T + Lo once the signature is projected through T.
	sk.Lv = new_gfmat(m, v)
	Lo := new_gfmat(m, m)
	for k := 0; k < m; k++ {
		copy(sk.Lv.row(k), L.row(k)[:v])
		copy(Lo.row(k), L.row(k)[v:])
	}
	LvT, err := f.mat_mul(sk.Lv, T)
	if err != nil {
		return nil, err
	}
	if sk.LT, err = gfmat_add(LvT, Lo); err != nil {
		return nil, err
	}

	sk.pk1 = make([]*gfmat, m)
	sk.pk2 = make([]*gfmat, m)
	for k := 0; k < m; k++ {
		sk.pk1[k] = extract_Pk1(p, Q1, k)
		sk.pk2[k] = extract_Pk2(p, Q1, k)
	}
	return sk, nil
}

// Build the linear system in the oil unknowns, for the vinegar vector
// vin. Row k is
//
//	L*[T; I]_k + vin^t*Fk2, with Fk2 = -(Pk1 + Pk1^t)*T + Pk2
//
// and the right-hand side is
//
//	h_k - C_k - (L*(vin||0))_k - vin^t*Pk1*vin
func (sk *signing_key) build_system(h []uint8, vin []uint8) (*gfmat, []uint8, error) {
	p, f := sk.p, sk.f
	m := p.M
	if err := expect_len("digest", h, m); err != nil {
		return nil, nil, err
	}
	if err := expect_len("vinegar vector", vin, p.V); err != nil {
		return nil, nil, err
	}
	lv, err := f.mat_vec(sk.Lv, vin)
	if err != nil {
		return nil, nil, err
	}

	A := new_gfmat(m, m)
	rhs := make([]uint8, m)
	for k := 0; k < m; k++ {
		Pk1 := sk.pk1[k]
		u, err := f.vec_mat(vin, Pk1)
		if err != nil {
			return nil, nil, err
		}
		w, err := f.mat_vec(Pk1, vin)
		if err != nil {
			return nil, nil, err
		}
		vpv, err := f.dot(vin, w)
		if err != nil {
			return nil, nil, err
		}
		rhs[k] = gf_add(gf_add(h[k], sk.C[k]), gf_add(lv[k], vpv))

		// vin^t*(Pk1 + Pk1^t) = u + w
		if err := gfvec_add_into(u, w); err != nil {
			return nil, nil, err
		}
		row, err := f.vec_mat(u, sk.T)
		if err != nil {
			return nil, nil, err
		}
		t2, err := f.vec_mat(vin, sk.pk2[k])
		if err != nil {
			return nil, nil, err
		}
		if err := gfvec_add_into(row, t2); err != nil {
			return nil, nil, err
		}
		if err := gfvec_add_into(row, sk.LT.row(k)); err != nil {
			return nil, nil, err
		}
		copy(A.row(k), row)
	}
	return A, rhs, nil
}

// One signing attempt: sample vinegar values and solve for the oil
// values. ErrSingularSystem is returned if the system has no unique
// solution.
func (sk *signing_key) attempt(rng io.Reader, h []uint8) ([]uint8, []uint8, error) {
	vin, err := sample_elements(rng, sk.p.R, sk.p.V)
	if err != nil {
		return nil, nil, err
	}
	A, rhs, err := sk.build_system(h, vin)
	if err != nil {
		return nil, nil, err
	}
	oil, err := sk.f.solve(A, rhs)
	if err != nil {
		return nil, nil, err
	}
	return vin, oil, nil
}

// Project the solution (vin, oil) to the signature vector
// s = ([I | -T]*(vin||oil) || oil).
func (sk *signing_key) project(vin []uint8, oil []uint8) ([]uint8, error) {
	v := sk.p.V
	if err := expect_len("oil vector", oil, sk.p.M); err != nil {
		return nil, err
	}
	to, err := sk.f.mat_vec(sk.T, oil)
	if err != nil {
		return nil, err
	}
	s := make([]uint8, sk.p.N())
	copy(s[:v], vin)
	if err := gfvec_add_into(s[:v], to); err != nil {
		return nil, err
	}
	copy(s[v:], oil)
	return s, nil
}

// Run attempts until one succeeds, or limit attempts have been made (if
// limit > 0). The try function returns ErrSingularSystem to ask for another
// attempt; any other error stops the loop. The number of attempts made is
// returned.
func retry_attempts(limit int, log *slog.Logger, p *Params,
	try func(attempt int) error) (int, error) {

	for attempt := 1; limit <= 0 || attempt <= limit; attempt++ {
		err := try(attempt)
		if err == nil {
			log.Debug("signing system solved",
				"params", p.String(), "attempts", attempt)
			return attempt, nil
		}
		if !errors.Is(err, ErrSingularSystem) {
			return attempt, err
		}
		log.Debug("singular system, retrying",
			"attempt", attempt, "m", p.M, "v", p.V)
	}
	log.Warn("signing attempts exhausted",
		"params", p.String(), "max_attempts", limit)
	return limit, fmt.Errorf("%w: %d attempts", ErrSigningFailed, limit)
}

func (sk *signing_key) solve_serial(rng io.Reader, h []uint8,
	opts *SignOptions) (vin []uint8, oil []uint8, attempts int, err error) {

	attempts, err = retry_attempts(opts.MaxAttempts, opts.logger(), sk.p,
		func(int) error {
			var err error
			vin, oil, err = sk.attempt(rng, h)
			return err
		})
	return
}

// Race opts.Workers goroutines, each with its own random stream derived
// from seed; the first non-singular system wins. The attempt limit
// applies to the total number of attempts over all workers.
func (sk *signing_key) solve_parallel(seed []byte, h []uint8,
	opts *SignOptions) ([]uint8, []uint8, int, error) {

	type result struct {
		vin []uint8
		oil []uint8
		err error
	}
	log := opts.logger()
	limit := int64(opts.MaxAttempts)
	var counter atomic.Int64
	done := make(chan struct{})
	results := make(chan result, opts.Workers)
	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rng := new_worker_stream(seed, i)
			for {
				select {
				case <-done:
					return
				default:
				}
				n := counter.Add(1)
				if limit > 0 && n > limit {
					return
				}
				vin, oil, err := sk.attempt(rng, h)
				if errors.Is(err, ErrSingularSystem) {
					log.Debug("singular system, retrying",
						"attempt", n, "worker", i,
						"m", sk.p.M, "v", sk.p.V)
					continue
				}
				results <- result{vin, oil, err}
				return
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	r, ok := <-results
	close(done)
	attempts := int(counter.Load())
	if !ok {
		log.Warn("signing attempts exhausted",
			"params", sk.p.String(), "max_attempts", opts.MaxAttempts)
		return nil, nil, opts.MaxAttempts,
			fmt.Errorf("%w: %d attempts", ErrSigningFailed, opts.MaxAttempts)
	}
	if r.err != nil {
		return nil, nil, attempts, r.err
	}
	if limit > 0 && int64(attempts) > limit {
		attempts = opts.MaxAttempts
	}
	log.Debug("signing system solved", "params", sk.p.String(),
		"attempts", attempts, "workers", opts.Workers)
	return r.vin, r.oil, attempts, nil
}
