package secure

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrEmptyPayload is returned when sealing zero bytes is attempted. An
// empty secret value is almost always a broken pipeline, so it is rejected
// at the door rather than stored remotely.
var ErrEmptyPayload = errors.New("secure: empty payload")

// ErrDestroyed is returned by Open once the buffer has been destroyed.
var ErrDestroyed = errors.New("secure: buffer destroyed")

// SecureBuffer holds a secret payload in an encrypted memguard enclave so
// that plaintext only exists in memory while a request is being built.
//
// memguard.Enclave has no Destroy method of its own; the encrypted blob is
// safe to leave for the garbage collector. Destroy here just drops the
// reference and blocks further use. Call memguard.Purge() at process exit
// for full cleanup of all enclaves.
type SecureBuffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy() calls and prevents use after
	// destruction.
	destroyed bool
}

// NewSecureBuffer seals secret bytes into a protected memory region.
// memguard wipes the source slice as part of sealing, so callers must not
// reuse data afterwards. Zero bytes fail with ErrEmptyPayload.
//
// If mlock is unavailable (for example due to RLIMIT_MEMLOCK), memguard
// degrades to standard allocation rather than failing.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	// NewEnclave encrypts with XSalsa20Poly1305, attempts to mlock the
	// backing pages, and wipes the input.
	enclave := memguard.NewEnclave(data)

	return &SecureBuffer{
		enclave:   enclave,
		destroyed: false,
	}, nil
}

// ReadAll drains r into a SecureBuffer. This is how secret values arrive
// from stdin: the transient read buffer is wiped by the enclave constructor,
// so the plaintext does not linger in ordinary heap memory.
func ReadAll(r io.Reader) (*SecureBuffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		memguard.WipeBytes(data)
		return nil, fmt.Errorf("reading secret payload: %w", err)
	}

	return NewSecureBuffer(data)
}

// Open decrypts the payload into a locked buffer. The caller MUST call
// Destroy() on the returned LockedBuffer once the plaintext has been used:
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	value := locked.Bytes()
//
// After the SecureBuffer itself is destroyed, Open fails with ErrDestroyed.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.enclave == nil {
		return nil, ErrDestroyed
	}

	return s.enclave.Open()
}

// Destroy marks the buffer as unusable. Idempotent. The encrypted enclave
// data is left for garbage collection; memguard.Purge() at exit handles the
// rest.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}

	s.enclave = nil
	s.destroyed = true
}
