package employee

import "time"

// Employee carries the identity and the registered device public key used to
// verify signed action payloads. Employee CRUD lives in an external system;
// this service only reads.
type Employee struct {
	ID        string
	RetailID  string
	FullName  string
	PublicKey []byte // ed25519 public key registered at device pairing
	CreatedAt time.Time
	UpdatedAt time.Time
}
