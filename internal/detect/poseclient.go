package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/fotogo/gallery-core/internal/pix"
)

// PoseClient computes pose landmarks via an external estimation service.
// The service is an optional sidecar; when it is down or absent the
// locator silently falls through to the face tier.
type PoseClient struct {
	baseURL string
	client  *http.Client
}

// NewPoseClient creates a pose client for the given base URL. Returns
// nil for an empty URL so callers can inject the result directly into a
// Locator.
func NewPoseClient(baseURL string) *PoseClient {
	if baseURL == "" {
		return nil
	}
	return &PoseClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// poseResponse is the wire format of the landmark endpoint.
type poseResponse struct {
	Landmarks []Landmark `json:"landmarks"`
}

// Landmarks posts the image to the estimation service and returns the
// detected landmarks. An empty slice (no subject) is returned as nil
// with no error so the caller's fallthrough logic stays uniform.
func (c *PoseClient) Landmarks(ctx context.Context, img *pix.Buffer) ([]Landmark, error) {
	data, err := pix.EncodeJPEG(img, 90)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pose/landmarks", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose service error (status %d): %s", resp.StatusCode, string(body))
	}

	var poseResp poseResponse
	if err := json.Unmarshal(body, &poseResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(poseResp.Landmarks) == 0 {
		return nil, nil
	}

	// Backends may emit indexed names; normalize to the canonical list.
	for i := range poseResp.Landmarks {
		if poseResp.Landmarks[i].Name == "" && i < len(poseLandmarkNames) {
			poseResp.Landmarks[i].Name = poseLandmarkNames[i]
		}
	}
	return poseResp.Landmarks, nil
}
