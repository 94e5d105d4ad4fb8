package model

// Settings are the user-editable completion endpoint settings. Zero fields
// fall back to configuration defaults.
type Settings struct {
	APIKey  string `json:"apiKey,omitempty"` //nolint:gosec // stored locally, masked on read
	BaseURL string `json:"baseUrl,omitempty"`
	Model   string `json:"model,omitempty"`
}

// Merge overlays non-empty fields of o onto s.
func (s Settings) Merge(o Settings) Settings {
	if o.APIKey != "" {
		s.APIKey = o.APIKey
	}
	if o.BaseURL != "" {
		s.BaseURL = o.BaseURL
	}
	if o.Model != "" {
		s.Model = o.Model
	}
	return s
}
