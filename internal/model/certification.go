package model

// CertificationKey identifies at most one certification record.
type CertificationKey struct {
	Technician    Identity `json:"technician"`
	EquipmentType string   `json:"equipment_type"`
}

type Certification struct {
	Technician         Identity `json:"technician"`
	EquipmentType      string   `json:"equipment_type"`
	CertificationDate  int64    `json:"certification_date"`
	ExpirationDate     int64    `json:"expiration_date"`
	CertificationLevel int64    `json:"certification_level"`
	Issuer             Identity `json:"issuer"`
	IsActive           bool     `json:"is_active"`
}

func (c Certification) Key() CertificationKey {
	return CertificationKey{Technician: c.Technician, EquipmentType: c.EquipmentType}
}

// IssuerAuthorization is the allow-list entry for a certification issuer.
type IssuerAuthorization struct {
	IsAuthorized bool `json:"is_authorized"`
}
