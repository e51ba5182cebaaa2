package domain

// Supervisor is the canonical, display-ready directory entry served to
// clients. Name is synthesized from the raw record and is never a matching key.
type Supervisor struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	IdentificationNumber string `json:"identificationNumber"`
}

// RawSupervisorRecord is the upstream directory shape. Only these fields are
// relied on; anything else the provider sends is ignored.
type RawSupervisorRecord struct {
	ID                   string `json:"id"`
	Jurisdiction         string `json:"jurisdiction"`
	LastName             string `json:"lastName"`
	FirstName            string `json:"firstName"`
	Phone                string `json:"phone"`
	IdentificationNumber string `json:"identificationNumber"`
}

// DisplayName renders "{jurisdiction} - {lastName}, {firstName}".
func (r RawSupervisorRecord) DisplayName() string {
	return r.Jurisdiction + " - " + r.LastName + ", " + r.FirstName
}

// MissingFields lists the JSON names of required fields that are empty.
func (r RawSupervisorRecord) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"id", r.ID},
		{"jurisdiction", r.Jurisdiction},
		{"lastName", r.LastName},
		{"firstName", r.FirstName},
		{"phone", r.Phone},
		{"identificationNumber", r.IdentificationNumber},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
