package auth

import "encoding/base64"

// PHC strings use unpadded standard base64 for the salt and hash segments.
var phcEncoding = base64.RawStdEncoding

func b64Encode(b []byte) string {
	return phcEncoding.EncodeToString(b)
}

func b64Decode(s string) ([]byte, bool) {
	b, err := phcEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return b, true
}
