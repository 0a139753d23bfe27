package domain

import "time"

type PropertyCategory string

const (
	CategoryApartment PropertyCategory = "Apartment"
	CategoryRiad      PropertyCategory = "Riad"
	CategoryVilla     PropertyCategory = "Villa"
	CategoryCottage   PropertyCategory = "Cottage"
)

func (c PropertyCategory) Valid() bool {
	switch c {
	case CategoryApartment, CategoryRiad, CategoryVilla, CategoryCottage:
		return true
	}
	return false
}

// CheckinInstructions is what the guest sees once verified: network
// credentials, the door code and the house rules, in display order.
type CheckinInstructions struct {
	WiFiNetwork  string   `json:"wifi_network"`
	WiFiPassword string   `json:"wifi_password"`
	DoorCode     string   `json:"door_code"`
	Rules        []string `json:"rules"`
}

type Property struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name" validate:"required"`
	Category            PropertyCategory    `json:"category" validate:"required"`
	Address             string              `json:"address" validate:"required"`
	ImageURL            string              `json:"image_url"`
	ImageHint           string              `json:"image_hint,omitempty"`
	GoogleMapsURL       string              `json:"google_maps_url"`
	CheckinInstructions CheckinInstructions `json:"checkin_instructions"`
	ContractTemplate    string              `json:"contract_template"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
