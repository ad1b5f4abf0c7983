package request

// RegisterAsset fields are free text; the registry stores them as given.
type RegisterAsset struct {
	Name               string `json:"name"`
	Model              string `json:"model"`
	SerialNumber       string `json:"serial_number"`
	Manufacturer       string `json:"manufacturer"`
	InstallationDate   int64  `json:"installation_date"`
	WarrantyExpiration int64  `json:"warranty_expiration"`
}

type TransferAsset struct {
	NewOwner string `json:"new_owner" validate:"required,max=256"`
}
