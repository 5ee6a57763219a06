package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// User reflects backend user payloads.
type User struct {
	ID           string            `json:"_id"`
	Email        string            `json:"email"`
	Username     string            `json:"username"`
	CreatedAt    string            `json:"created_at"`
	IsActive     bool              `json:"is_active"`
	Bio          string            `json:"bio,omitempty"`
	Location     string            `json:"location,omitempty"`
	Website      string            `json:"website,omitempty"`
	SocialLinks  map[string]string `json:"social_links,omitempty"`
	ProfileImage string            `json:"profile_image,omitempty"`
}

// AuthResponse captures the token payload emitted by the backend on login.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupInput is the account-creation payload.
type SignupInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileUpdateInput carries only the fields being changed.
type ProfileUpdateInput struct {
	Username    *string           `json:"username,omitempty"`
	Bio         *string           `json:"bio,omitempty"`
	Location    *string           `json:"location,omitempty"`
	Website     *string           `json:"website,omitempty"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
}

// VerifyResponse is the token verification result.
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email"`
}

// UploadImageResponse acknowledges a profile image upload.
type UploadImageResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, "", &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

// Signup creates a new account.
func (c *Client) Signup(ctx context.Context, input SignupInput) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/signup", input, "", &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Logout invalidates the bearer token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, token, nil)
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context, token string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, token, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateProfile sends changed fields and returns the server's user record.
func (c *Client) UpdateProfile(ctx context.Context, token string, input ProfileUpdateInput) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", input, token, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ChangePassword swaps the account password.
func (c *Client) ChangePassword(ctx context.Context, token, current, updated string) error {
	body := map[string]string{
		"current_password": current,
		"new_password":     updated,
	}
	return c.do(ctx, http.MethodPost, "/auth/change-password", body, token, nil)
}

// VerifyToken checks the bearer token against the backend.
func (c *Client) VerifyToken(ctx context.Context, token string) (VerifyResponse, error) {
	var resp VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/auth/verify-token", nil, token, &resp); err != nil {
		return VerifyResponse{}, err
	}
	return resp, nil
}

// DeleteAccount removes the account; hard deletion is permanent.
func (c *Client) DeleteAccount(ctx context.Context, token string, hard bool) error {
	path := fmt.Sprintf("/auth/delete-account?hard_delete=%t", hard)
	return c.do(ctx, http.MethodDelete, path, nil, token, nil)
}

// UploadProfileImage uploads an avatar via multipart form.
func (c *Client) UploadProfileImage(ctx context.Context, token, filename, contentType string, r io.Reader) (UploadImageResponse, error) {
	var resp UploadImageResponse
	err := c.doMultipart(ctx, "/auth/upload-profile-image", token, func(mw *multipart.Writer) error {
		part, err := createFilePart(mw, "file", filename, contentType)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, r)
		return err
	}, &resp)
	if err != nil {
		return UploadImageResponse{}, err
	}
	return resp, nil
}

// PublicProfile fetches another user's public profile by username.
func (c *Client) PublicProfile(ctx context.Context, username string) (User, error) {
	var user User
	path := "/auth/public-profile/" + url.PathEscape(username)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &user); err != nil {
		return User{}, err
	}
	return user, nil
}
