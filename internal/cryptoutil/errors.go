package cryptoutil

import "errors"

// ErrDecrypt is returned when a sealed blob fails authentication: wrong
// passphrase, tampered bytes, or a too-short input.
var ErrDecrypt = errors.New("cryptoutil: decrypt failed")

// ErrKeyInit is returned when encryption is enabled but no passphrase was
// supplied at open time (spec §4.A: CryptoKeyInit).
var ErrKeyInit = errors.New("cryptoutil: encryption enabled but no passphrase supplied")
