package directory

// Pet is a patient record owned by the portal client. Alerts is fetched
// separately after the pet list loads and stays nil until then.
type Pet struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Species    string  `json:"species"`
	Breed      string  `json:"breed,omitempty"`
	ProviderID string  `json:"providerId,omitempty"`
	Alerts     *string `json:"alerts,omitempty"`
}

// ClientProfile describes the logged-in portal client as the PIMS knows it.
type ClientProfile struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Phone          string `json:"phone"`
	PhysicalStreet string `json:"physicalStreet,omitempty"`
	PhysicalCity   string `json:"physicalCity,omitempty"`
	PhysicalState  string `json:"physicalState,omitempty"`
	PhysicalZip    string `json:"physicalZip,omitempty"`
	MailingStreet  string `json:"mailingStreet,omitempty"`
	MailingCity    string `json:"mailingCity,omitempty"`
	MailingState   string `json:"mailingState,omitempty"`
	MailingZip     string `json:"mailingZip,omitempty"`
}

// EmailCheck is the email-existence probe result.
type EmailCheck struct {
	Exists     bool `json:"exists"`
	HasAccount bool `json:"hasAccount"`
}
