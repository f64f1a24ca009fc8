package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/readstackhq/readstack-backend/internal/config"
)

// ImageService is the client for the external image CDN that stores
// material cover images. When the CDN is not configured, Upload passes the
// given value through unchanged (useful in development, where clients send
// plain URLs) and Destroy is a no-op.
type ImageService struct {
	uploadURL  string
	destroyURL string
	apiKey     string
	client     *http.Client
}

func NewImageService(cfg *config.Config) *ImageService {
	return &ImageService{
		uploadURL:  cfg.ImageCDNUploadURL,
		destroyURL: cfg.ImageCDNDestroyURL,
		apiKey:     cfg.ImageCDNAPIKey,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *ImageService) IsConfigured() bool {
	return s.uploadURL != "" && s.apiKey != ""
}

type uploadRequest struct {
	File string `json:"file"`
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

type destroyRequest struct {
	PublicID string `json:"public_id"`
}

// Upload pushes a base64 image payload to the CDN and returns the hosted
// URL.
func (s *ImageService) Upload(image string) (string, error) {
	if !s.IsConfigured() {
		return image, nil
	}

	body, err := json.Marshal(uploadRequest{File: image})
	if err != nil {
		return "", fmt.Errorf("failed to marshal upload request: %w", err)
	}

	resp, err := s.post(s.uploadURL, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read CDN response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image CDN returned status %d: %s", resp.StatusCode, string(raw))
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(raw, &uploaded); err != nil {
		return "", fmt.Errorf("failed to parse CDN response: %w", err)
	}
	if uploaded.SecureURL == "" {
		return "", fmt.Errorf("image CDN returned no URL")
	}
	return uploaded.SecureURL, nil
}

// Destroy removes a hosted image given its URL. The public id is the URL's
// last path segment without extension.
func (s *ImageService) Destroy(imageURL string) error {
	if !s.IsConfigured() || s.destroyURL == "" {
		return nil
	}
	if !strings.HasPrefix(imageURL, s.cdnHost()) {
		// not one of ours, nothing to clean up
		return nil
	}

	publicID := strings.TrimSuffix(path.Base(imageURL), path.Ext(imageURL))
	body, err := json.Marshal(destroyRequest{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to marshal destroy request: %w", err)
	}

	resp, err := s.post(s.destroyURL, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("image CDN returned status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (s *ImageService) post(url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create CDN request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call image CDN: %w", err)
	}
	return resp, nil
}

func (s *ImageService) cdnHost() string {
	// upload and asset URLs share a scheme+host prefix
	parts := strings.SplitN(s.uploadURL, "/", 4)
	if len(parts) < 3 {
		return s.uploadURL
	}
	return strings.Join(parts[:3], "/")
}
