package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Theme reflects backend theme payloads.
type Theme struct {
	ID               string   `json:"id"`
	ThemeID          int      `json:"theme_id"`
	Name             string   `json:"name"`
	AuthorName       string   `json:"author_name"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	PreviewB64       string   `json:"preview_b64,omitempty"`
	IconB64          string   `json:"icon_b64,omitempty"`
	BGMInfo          string   `json:"bgm_info,omitempty"`
	DownloadCount    int      `json:"download_count,omitempty"`
	CreatedAt        string   `json:"created_at,omitempty"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

// ThemeList is a paginated catalogue query result.
type ThemeList struct {
	Themes []Theme `json:"themes"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// ThemeQuery narrows a catalogue listing.
type ThemeQuery struct {
	Page   int
	Limit  int
	Search string
	Tags   string
	Rating string
	Author string
}

// ThemeUpload carries the multipart payload for a new theme.
type ThemeUpload struct {
	Name             string
	ShortDescription string
	Description      string
	Tags             string
	BGMInfo          string
	Body             FilePart
	BGM              FilePart
	Preview          FilePart
	Icon             *FilePart
}

// FilePart is a named file stream for multipart uploads.
type FilePart struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Download is a streaming theme package response. Callers own Body.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Disposition   string
}

// ListThemes fetches a catalogue page.
func (c *Client) ListThemes(ctx context.Context, q ThemeQuery) (ThemeList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 15
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if strings.TrimSpace(q.Search) != "" {
		params.Set("search", q.Search)
	}
	if strings.TrimSpace(q.Tags) != "" {
		params.Set("tags", q.Tags)
	}
	if strings.TrimSpace(q.Rating) != "" {
		params.Set("rating", q.Rating)
	}
	if strings.TrimSpace(q.Author) != "" {
		params.Set("author", q.Author)
	}
	var list ThemeList
	if err := c.do(ctx, http.MethodGet, "/themes?"+params.Encode(), nil, "", &list); err != nil {
		return ThemeList{}, err
	}
	return list, nil
}

// GetTheme fetches a single theme by its numeric ID.
func (c *Client) GetTheme(ctx context.Context, id int) (Theme, error) {
	var theme Theme
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/themes/%d", id), nil, "", &theme); err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// UploadTheme submits a new theme package.
func (c *Client) UploadTheme(ctx context.Context, token string, input ThemeUpload) (Theme, error) {
	var theme Theme
	err := c.doMultipart(ctx, "/themes/upload", token, func(mw *multipart.Writer) error {
		fields := map[string]string{
			"name":              input.Name,
			"short_description": input.ShortDescription,
			"description":       input.Description,
			"tags":              input.Tags,
			"bgm_info":          input.BGMInfo,
		}
		for name, value := range fields {
			if err := mw.WriteField(name, value); err != nil {
				return err
			}
		}
		files := []struct {
			field string
			part  FilePart
		}{
			{"body_LZ_bin", input.Body},
			{"bgm_bcstm", input.BGM},
			{"preview_png", input.Preview},
		}
		if input.Icon != nil {
			files = append(files, struct {
				field string
				part  FilePart
			}{"icon_png", *input.Icon})
		}
		for _, f := range files {
			w, err := createFilePart(mw, f.field, f.part.Filename, f.part.ContentType)
			if err != nil {
				return err
			}
			if _, err := io.Copy(w, f.part.Reader); err != nil {
				return err
			}
		}
		return nil
	}, &theme)
	if err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// DownloadTheme streams the packaged theme ZIP. The caller must close Body.
func (c *Client) DownloadTheme(ctx context.Context, id int) (*Download, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/themes/download/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}
	return &Download{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Disposition:   resp.Header.Get("Content-Disposition"),
	}, nil
}
