package api

import (
	"context"
	"net/http"
)

// ContactMessage is the contact form payload forwarded to the backend.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactResponse acknowledges a submitted contact message.
type ContactResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// SubmitContact forwards a validated contact message.
func (c *Client) SubmitContact(ctx context.Context, msg ContactMessage) (ContactResponse, error) {
	var resp ContactResponse
	if err := c.do(ctx, http.MethodPost, "/contact/submit", msg, "", &resp); err != nil {
		return ContactResponse{}, err
	}
	return resp, nil
}
