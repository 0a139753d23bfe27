package checkin

import (
	"strings"
	"time"

	"keymaster/internal/domain"
)

// Contract template placeholders. The set is fixed; hosts author templates
// against it.
const (
	tokenGuestName       = "{{guest_name}}"
	tokenPropertyName    = "{{property_name}}"
	tokenPropertyAddress = "{{property_address}}"
	tokenCheckinDate     = "{{checkin_date}}"
	tokenCheckoutDate    = "{{checkout_date}}"
)

const contractDateLayout = "Jan 2, 2006"

// RenderContract substitutes the placeholder tokens into the property's
// contract template. Every occurrence of a token is replaced globally; a
// token whose value is absent is left untouched everywhere, never partially
// substituted.
func RenderContract(p *domain.Property, res *domain.Reservation, guestName string) string {
	out := p.ContractTemplate

	replace := func(token, value string) {
		if value == "" {
			return
		}
		out = strings.ReplaceAll(out, token, value)
	}

	replace(tokenGuestName, guestName)
	replace(tokenPropertyName, p.Name)
	replace(tokenPropertyAddress, p.Address)
	replace(tokenCheckinDate, formatContractDate(res.CheckInDate))
	replace(tokenCheckoutDate, formatContractDate(res.CheckOutDate))

	return out
}

// formatContractDate renders a stored calendar date in the short display
// format. Unparseable input passes through unchanged rather than blanking
// a contract field.
func formatContractDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format(contractDateLayout)
}
