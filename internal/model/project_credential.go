package model

import (
	"strings"
	"time"
)

// ProjectCredential is a stored GitLab target: where to file issues and the
// private token to do it with.
type ProjectCredential struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GitLabURL string    `json:"gitlabUrl"`
	Token     string    `json:"token"`     //nolint:gosec // stored locally, masked in responses
	ProjectID string    `json:"projectId"` // numeric ID or namespace/name, passed through to GitLab
}

// Usable reports whether every field needed to talk to GitLab is present.
func (p ProjectCredential) Usable() bool {
	return strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.GitLabURL) != "" &&
		strings.TrimSpace(p.Token) != "" &&
		strings.TrimSpace(p.ProjectID) != ""
}

// MaskedToken keeps the first and last four characters.
func (p ProjectCredential) MaskedToken() string {
	return MaskSecret(p.Token)
}

func MaskSecret(s string) string {
	runes := []rune(s)
	if len(runes) <= 8 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return string(runes[:4]) + "…" + string(runes[len(runes)-4:])
}

// ProjectPatch is a partial update; nil fields are left untouched.
type ProjectPatch struct {
	Name      *string `json:"name,omitempty"`
	GitLabURL *string `json:"gitlabUrl,omitempty"`
	Token     *string `json:"token,omitempty"`
	ProjectID *string `json:"projectId,omitempty"`
}

// Apply returns a copy of p with the patch applied.
func (patch ProjectPatch) Apply(p ProjectCredential) ProjectCredential {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.GitLabURL != nil {
		p.GitLabURL = *patch.GitLabURL
	}
	if patch.Token != nil {
		p.Token = *patch.Token
	}
	if patch.ProjectID != nil {
		p.ProjectID = *patch.ProjectID
	}
	return p
}
