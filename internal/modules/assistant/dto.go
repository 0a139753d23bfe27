package assistant

type AskRequest struct {
	PropertyID   string `json:"property_id" binding:"required"`
	Question     string `json:"question" binding:"required"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
}

type SpeechRequest struct {
	Text string `json:"text" binding:"required"`
}
