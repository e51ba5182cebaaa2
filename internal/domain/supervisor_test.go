package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	r := RawSupervisorRecord{Jurisdiction: "A", LastName: "Choi", FirstName: "Sam"}
	assert.Equal(t, "A - Choi, Sam", r.DisplayName())
}

func TestMissingFields(t *testing.T) {
	t.Run("complete record", func(t *testing.T) {
		r := RawSupervisorRecord{ID: "1", Jurisdiction: "A", LastName: "Choi", FirstName: "Sam", Phone: "2", IdentificationNumber: "X1"}
		assert.Empty(t, r.MissingFields())
	})

	t.Run("reports every empty field in order", func(t *testing.T) {
		r := RawSupervisorRecord{ID: "1", LastName: "Choi"}
		assert.Equal(t, []string{"jurisdiction", "firstName", "phone", "identificationNumber"}, r.MissingFields())
	})
}
