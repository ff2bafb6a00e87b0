package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chat-importer/internal/domain/dto"
)

type apiClient struct {
	base string
	user string
	http *http.Client
}

func newAPIClient(base, user string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		user: user,
		http: &http.Client{Timeout: 2 * time.Minute},
	}
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.Body.Error, e.Body.Message)
}

// retryable reports whether sending the same request again can succeed.
func retryable(err error) bool {
	if ae, ok := err.(*apiError); ok {
		return ae.Status >= 500
	}
	return true
}

func (c *apiClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("X-User-ID", c.user)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		ae := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(body, &ae.Body)
		return ae
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *apiClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	var buf bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *apiClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *apiClient) uploadChunk(ctx context.Context, uploadID string, index int, data []byte) (*dto.UploadChunkResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("upload_id", uploadID)
	writer.WriteField("chunk_index", strconv.Itoa(index))

	part, err := writer.CreateFormFile("chunk", fmt.Sprintf("chunk_%d", index))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload/chunk", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp dto.UploadChunkResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
