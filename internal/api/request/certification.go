package request

type AddIssuer struct {
	Issuer string `json:"issuer" validate:"required,max=256"`
}

type IssueCertification struct {
	Technician         string `json:"technician" validate:"required,max=256"`
	EquipmentType      string `json:"equipment_type" validate:"required,max=256"`
	CertificationDate  int64  `json:"certification_date"`
	ExpirationDate     int64  `json:"expiration_date"`
	CertificationLevel int64  `json:"certification_level"`
}

// CertificationKey addresses one certification record, from a body or from
// query parameters.
type CertificationKey struct {
	Technician    string `json:"technician" validate:"required,max=256"`
	EquipmentType string `json:"equipment_type" validate:"required,max=256"`
}
