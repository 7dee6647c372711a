package models

import "strings"

// ChatRequest is one user question about previously captured page text.
type ChatRequest struct {
	Message        string `json:"message"`
	WebsiteContent string `json:"websiteContent"`
}

func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrEmptyMessage
	}
	return nil
}
