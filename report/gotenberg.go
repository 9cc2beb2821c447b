// Package report wraps the Gotenberg HTML-to-PDF conversion API.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// PaperOptions control the Chromium page geometry for a conversion. Values
// are inches, per the Gotenberg API.
type PaperOptions struct {
	Width      float64
	Height     float64
	SinglePage bool
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts raw HTML into a PDF document using Gotenberg defaults.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	return c.render(ctx, html, nil)
}

// RenderHTMLWithPaper converts HTML using explicit paper geometry. With
// SinglePage set, Chromium sizes the page to the rendered content height,
// which is how thermal-style receipts get their exact length.
func (c *Client) RenderHTMLWithPaper(ctx context.Context, html string, paper PaperOptions) ([]byte, error) {
	return c.render(ctx, html, &paper)
}

func (c *Client) render(ctx context.Context, html string, paper *PaperOptions) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "document.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, bytes.NewBufferString(html)); err != nil {
		return nil, err
	}
	if paper != nil {
		if paper.Width > 0 {
			if err := writer.WriteField("paperWidth", fmt.Sprintf("%g", paper.Width)); err != nil {
				return nil, err
			}
		}
		if paper.Height > 0 {
			if err := writer.WriteField("paperHeight", fmt.Sprintf("%g", paper.Height)); err != nil {
				return nil, err
			}
		}
		if paper.SinglePage {
			if err := writer.WriteField("singlePage", "true"); err != nil {
				return nil, err
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/convert/html", c.baseURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
