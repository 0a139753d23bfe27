package checkin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"keymaster/internal/domain"
)

func TestRenderContract_ReplacesAllTokens(t *testing.T) {
	p := &domain.Property{
		Name:             "Downtown Loft",
		Address:          "456 Main Street, New York, NY",
		ContractTemplate: "Hi {{guest_name}}, stay at {{property_name}}",
	}
	res := &domain.Reservation{CheckInDate: "2024-09-05", CheckOutDate: "2024-09-10"}

	out := RenderContract(p, res, "Ada Lovelace")

	assert.Equal(t, "Hi Ada Lovelace, stay at Downtown Loft", out)
	assert.NotContains(t, out, "{{")
}

func TestRenderContract_GlobalReplacement(t *testing.T) {
	p := &domain.Property{
		Name:             "Paradise Villa",
		Address:          "123 Ocean Drive",
		ContractTemplate: "{{guest_name}} agrees. Signed: {{guest_name}} at {{property_name}} on {{checkin_date}}.",
	}
	res := &domain.Reservation{CheckInDate: "2024-09-01", CheckOutDate: "2024-09-08"}

	out := RenderContract(p, res, "Elon Tusk")

	assert.Equal(t, 2, strings.Count(out, "Elon Tusk"))
	assert.Contains(t, out, "Sep 1, 2024")
	assert.NotContains(t, out, "{{guest_name}}")
}

func TestRenderContract_AbsentValueLeavesTokenUntouched(t *testing.T) {
	p := &domain.Property{
		Name:             "Paradise Villa",
		Address:          "123 Ocean Drive",
		ContractTemplate: "Guest: {{guest_name}} and again {{guest_name}}",
	}
	res := &domain.Reservation{}

	out := RenderContract(p, res, "")

	// Never a partial substitution: with no guest name, every occurrence
	// stays in place.
	assert.Equal(t, 2, strings.Count(out, "{{guest_name}}"))
}

func TestFormatContractDate(t *testing.T) {
	assert.Equal(t, "Sep 5, 2024", formatContractDate("2024-09-05"))
	assert.Equal(t, "not-a-date", formatContractDate("not-a-date"))
}
