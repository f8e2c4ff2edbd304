// Package secure keeps secret payloads out of ordinary process memory.
//
// Secret values flow through the CLI twice: once when read from stdin or a
// flag, and once when encoded into a Secret Manager request body. Between
// those two points they live in a memguard enclave, which keeps them:
//
//   - Encrypted at rest in memory (XSalsa20Poly1305)
//   - Locked against swapping via mlock
//   - Wiped when the locked view is destroyed
//   - Behind guard pages that catch overflows
//
// # Usage
//
// Seal sensitive bytes as soon as they enter the process. Empty input is
// rejected with ErrEmptyPayload, so a broken pipeline fails loudly instead
// of storing a zero-byte secret:
//
//	buf, err := secure.ReadAll(os.Stdin)
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//
//	// At request time, unlock briefly:
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	value := string(locked.Bytes())
//
// main() should defer memguard.Purge() so every enclave is wiped on exit,
// including the paths that return early on error.
//
// # Platform Behavior
//
//   - Linux: honors RLIMIT_MEMLOCK; degrades to plain allocation if locking fails
//   - macOS: works out of the box
//   - Windows: uses VirtualLock
//
// # Limits
//
// The enclave keeps secrets out of core dumps and swap. It does not defend
// against a root-level attacker inspecting the live process or against
// hardware-level attacks.
package secure
