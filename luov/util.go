package luov

import (
	"io"

	sha3 "golang.org/x/crypto/sha3"
)

// Utility functions.

// Hash the message into m field elements.
//
//	msg    message to sign/verify
//	salt   signature salt (SaltSize bytes)
//
// The XOF (selected by the parameter set) is applied to msg || 0x00 ||
// salt, and m*r bits are read and split into m values of r bits each,
// most significant bit first.
func hash_message(p *Params, msg []byte, salt []byte) []uint8 {
	sh := p.XOF.new_shake()
	sh.Write(msg)
	sh.Write([]byte{0x00})
	sh.Write(salt)
	nbits := p.M * int(p.R)
	buf := make([]byte, (nbits+7)>>3)
	sh.Read(buf)
	h := make([]uint8, p.M)
	// Cannot fail: the stream has exactly the needed length.
	_ = new_bitstream(buf, nbits).read_into(h, int(p.R))
	return h
}

// Draw n uniform field elements from a random source.
func sample_elements(rng io.Reader, r uint, n int) ([]uint8, error) {
	nbits := n * int(r)
	buf := make([]byte, (nbits+7)>>3)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	x := make([]uint8, n)
	if err := new_bitstream(buf, nbits).read_into(x, int(r)); err != nil {
		return nil, err
	}
	return x, nil
}

// Create an independent random stream for signing worker i, from a
// shared seed: SHAKE256(seed || i).
func new_worker_stream(seed []byte, i int) io.Reader {
	sh := sha3.NewShake256()
	sh.Write(seed)
	var ib [4]byte
	ib[0] = uint8(i)
	ib[1] = uint8(i >> 8)
	ib[2] = uint8(i >> 16)
	ib[3] = uint8(i >> 24)
	sh.Write(ib[:])
	return sh
}
