package model

// Certification status constants.
const (
	CertificationCertified = "certified"
	CertificationAbsent    = "absent"
	CertificationRevoked   = "revoked"
	CertificationExpired   = "expired"
)
