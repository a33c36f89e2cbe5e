package auth

import "encoding/base64"

// JWK is a single RSA public key in JWK format (RFC 7517), as served at
// /.well-known/jwks.json per spec.md §3.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// JWKS renders every key the manager still tracks, retired ones included,
// so tokens signed before the last rotation continue to validate
// elsewhere (spec.md §3).
func (km *KeyManager) JWKS() JWKSet {
	set := JWKSet{Keys: make([]JWK, 0, len(km.keys))}
	for _, k := range km.keys {
		pub := k.Private.PublicKey
		set.Keys = append(set.Keys, JWK{
			Kty: "RSA",
			Use: "sig",
			Kid: k.KID,
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(bigEndianUint(pub.E)),
		})
	}
	return set
}

// bigEndianUint encodes a small exponent (almost always 65537) as the
// minimal big-endian byte slice JWK's "e" field expects.
func bigEndianUint(v int) []byte {
	if v == 0 {
		return []byte{0}
	}
	var b []byte
	for v > 0 {
		b = append([]byte{byte(v & 0xff)}, b...)
		v >>= 8
	}
	return b
}
