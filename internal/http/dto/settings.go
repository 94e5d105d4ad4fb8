package dto

import "github.com/frankfika/gitlab-issuehelper/internal/model"

type SettingsResponse struct {
	APIKey    string `json:"api_key"` // masked
	APIKeySet bool   `json:"api_key_set"`
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
}

type UpdateSettingsRequest struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`
}

func (r UpdateSettingsRequest) ToModel() model.Settings {
	return model.Settings{APIKey: r.APIKey, BaseURL: r.BaseURL, Model: r.Model}
}

func ToSettingsResponse(s model.Settings) SettingsResponse {
	return SettingsResponse{
		APIKey:    model.MaskSecret(s.APIKey),
		APIKeySet: s.APIKey != "",
		BaseURL:   s.BaseURL,
		Model:     s.Model,
	}
}
