// Package api provides the HTTP client for the remote product service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/swipeapp/catalog/internal/errors"
	"github.com/swipeapp/catalog/internal/models"
)

const (
	addProductPath   = "/api/public/add"
	listProductsPath = "/api/public/get"
)

// Config holds product service connection configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the remote product service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new product service client.
func NewClient(config *Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: false,
			},
		},
	}
}

// Submit uploads one pending product as a multipart form and returns the
// remote product id. The call itself never retries; retry happens at the
// sync cycle level. Errors are classified as SUBMIT_FAILED (transport),
// SUBMIT_REJECTED (non-success response) or MALFORMED_RESPONSE.
func (c *Client) Submit(ctx context.Context, p *models.PendingProduct) (int64, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"product_name": p.Name,
		"product_type": p.Category,
		"price":        strconv.FormatFloat(p.Price, 'f', -1, 64),
		"tax":          strconv.FormatFloat(p.TaxRate, 'f', -1, 64),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return 0, apperrors.Wrap(apperrors.ErrSubmitFailed, "failed to encode form field", err)
		}
	}

	// A submission without an image, or whose image file has gone missing,
	// is still uploaded; the file part is simply omitted.
	if p.ImagePath != "" {
		if err := attachImage(writer, p.ImagePath); err != nil && !os.IsNotExist(err) {
			return 0, apperrors.Wrap(apperrors.ErrSubmitFailed, "failed to attach image", err)
		}
	}

	if err := writer.Close(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrSubmitFailed, "failed to finalize form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+addProductPath, body)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrSubmitFailed, "failed to create request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrSubmitFailed, "submit request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, apperrors.New(apperrors.ErrSubmitRejected,
			fmt.Sprintf("submit failed with status %d: %s", resp.StatusCode, string(respBody)))
	}

	var result models.AddProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrMalformedResponse, "failed to decode submit response", err)
	}
	if !result.Success {
		return 0, apperrors.New(apperrors.ErrSubmitRejected,
			fmt.Sprintf("server rejected submission: %s", result.Message))
	}

	return result.ProductID, nil
}

// attachImage adds the image file part, sniffing its content type.
func attachImage(writer *multipart.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(path); err == nil {
		contentType = mtype.String()
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="files[]"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

// FetchProducts retrieves the remote catalog listing.
func (c *Client) FetchProducts(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+listProductsPath, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSubmitFailed, "failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSubmitFailed, "catalog request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.New(apperrors.ErrSubmitRejected,
			fmt.Sprintf("catalog fetch failed with status %d: %s", resp.StatusCode, string(respBody)))
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedResponse, "failed to decode catalog response", err)
	}
	return products, nil
}
