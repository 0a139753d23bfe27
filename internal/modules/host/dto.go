package host

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreatePropertyRequest struct {
	Name             string   `json:"name" binding:"required"`
	Category         string   `json:"category" binding:"required"`
	Address          string   `json:"address" binding:"required"`
	ImageURL         string   `json:"image_url"`
	GoogleMapsURL    string   `json:"google_maps_url"`
	WiFiNetwork      string   `json:"wifi_network"`
	WiFiPassword     string   `json:"wifi_password"`
	DoorCode         string   `json:"door_code"`
	Rules            []string `json:"rules"`
	ContractTemplate string   `json:"contract_template"`
}
