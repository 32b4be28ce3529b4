package discovery

// ProtocolVersion is the wire protocol version this server speaks
// (spec §4.H). Bumped whenever the handshake or envelope shape changes.
const ProtocolVersion = "1.0"

// HandshakeRequest is the body of the public handshake endpoint.
type HandshakeRequest struct {
	ClientVersion  string `json:"client_version"`
	ProtocolVersion string `json:"protocol_version"`
}

// HandshakeResponse describes this server to a connecting client.
type HandshakeResponse struct {
	ServerName             string `json:"server_name"`
	ServerVersion          string `json:"server_version"`
	ProtocolVersion        string `json:"protocol_version"`
	RequiresAuth           bool   `json:"requires_auth"`
	CertificateFingerprint string `json:"certificate_fingerprint,omitempty"`
}

// Handshaker resolves a HandshakeRequest into either a mismatch error
// (spec's ProtocolMismatch, HTTP 200) or a HandshakeResponse describing
// this server's identity and pinned certificate.
type Handshaker struct {
	serverName    string
	serverVersion string
	fingerprint   string
}

// NewHandshaker builds a Handshaker for this running instance.
func NewHandshaker(serverName, serverVersion, fingerprint string) *Handshaker {
	return &Handshaker{serverName: serverName, serverVersion: serverVersion, fingerprint: fingerprint}
}

// Negotiate returns ok=false when the caller's protocol version does
// not match ours; the caller is expected to translate that into
// errors.ProtocolMismatch(clientVersion, serverVersion).
func (h *Handshaker) Negotiate(req HandshakeRequest) (HandshakeResponse, bool) {
	if req.ProtocolVersion != ProtocolVersion {
		return HandshakeResponse{}, false
	}
	return HandshakeResponse{
		ServerName:             h.serverName,
		ServerVersion:          h.serverVersion,
		ProtocolVersion:        ProtocolVersion,
		RequiresAuth:           true,
		CertificateFingerprint: h.fingerprint,
	}, true
}
