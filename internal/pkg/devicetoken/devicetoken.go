package devicetoken

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Device token errors
var (
	ErrInvalidSignature = errors.New("token payload signature is invalid")
	ErrPayloadMismatch  = errors.New("token payload does not match the request body")
	ErrPayloadExpired   = errors.New("token payload has expired")
	ErrMalformedPayload = errors.New("token payload is malformed")
)

// Claims are the device-bound fields of an action request. The signature
// covers their canonical JSON encoding, binding the action to the reporting
// device and position.
type Claims struct {
	RegisterID string  `json:"register_id"`
	EmployeeID string  `json:"employee_id"`
	Action     string  `json:"action"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	IssuedAt   int64   `json:"issued_at"`
}

// SignedPayload is the signed, device-bound claim accompanying each
// attendance action.
type SignedPayload struct {
	Claims    Claims `json:"claims"`
	Signature string `json:"signature"`
}

func canonical(c Claims) ([]byte, error) {
	// encoding/json writes struct fields in declaration order, which makes
	// this encoding canonical for a fixed Claims layout.
	return json.Marshal(c)
}

// Sign produces a signed payload over the claims with the device's ed25519
// private key.
func Sign(priv ed25519.PrivateKey, claims Claims) (SignedPayload, error) {
	msg, err := canonical(claims)
	if err != nil {
		return SignedPayload{}, fmt.Errorf("encode claims: %w", err)
	}
	sig := ed25519.Sign(priv, msg)
	return SignedPayload{
		Claims:    claims,
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// Verify checks the payload signature against the employee's registered
// public key.
func Verify(pub ed25519.PublicKey, p SignedPayload) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: bad public key size %d", ErrMalformedPayload, len(pub))
	}
	sig, err := base64.StdEncoding.DecodeString(p.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	msg, err := canonical(p.Claims)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !ed25519.Verify(pub, msg, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// MatchesBody verifies the anti-tamper property: the signed claims must
// structurally match the request body fields.
func (p SignedPayload) MatchesBody(action, registerID, employeeID string, latitude, longitude float64) error {
	c := p.Claims
	if c.Action != action || c.RegisterID != registerID || c.EmployeeID != employeeID ||
		c.Latitude != latitude || c.Longitude != longitude {
		return ErrPayloadMismatch
	}
	return nil
}

// CheckFreshness rejects payloads issued too far in the past (replay) or in
// the future (clock tamper beyond skew).
func (p SignedPayload) CheckFreshness(now time.Time, maxAge time.Duration) error {
	issued := time.Unix(p.Claims.IssuedAt, 0)
	if issued.After(now.Add(30 * time.Second)) {
		return ErrPayloadExpired
	}
	if now.Sub(issued) > maxAge {
		return ErrPayloadExpired
	}
	return nil
}
