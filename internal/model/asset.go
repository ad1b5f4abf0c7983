package model

// AssetID is assigned by the asset registry, starting at 1.
type AssetID uint64

type Asset struct {
	ID                 AssetID  `json:"id"`
	Name               string   `json:"name"`
	Model              string   `json:"model"`
	SerialNumber       string   `json:"serial_number"`
	Manufacturer       string   `json:"manufacturer"`
	InstallationDate   int64    `json:"installation_date"`
	WarrantyExpiration int64    `json:"warranty_expiration"`
	Owner              Identity `json:"owner"`
}
