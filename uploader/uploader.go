package uploader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const DefaultAPIBase = "https://api.github.com"

type GitHubUploadRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type contentResponse struct {
	SHA string `json:"sha"`
}

// Uploader publishes files to a GitHub repository through the contents API.
type Uploader struct {
	Client  *http.Client
	APIBase string
	Token   string
	// Repo is "owner/name".
	Repo    string
}

func New(token, repo string) *Uploader {
	return &Uploader{
		Client:  &http.Client{Timeout: 30 * time.Second},
		APIBase: DefaultAPIBase,
		Token:   token,
		Repo:    repo,
	}
}

// UploadToGitHub reads filename and stores it at path in repo.
func UploadToGitHub(ctx context.Context, token, repo, path, filename string) error {
	fileContent, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	return New(token, repo).Upload(ctx, path, fileContent, "Update "+path)
}

// Upload creates or replaces the file at path.
func (u *Uploader) Upload(ctx context.Context, path string, content []byte, message string) error {
	sha, err := u.currentSHA(ctx, path)
	if err != nil {
		return err
	}

	body := GitHubUploadRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := u.newRequest(ctx, http.MethodPut, path, bytes.NewReader(bodyJSON))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.Client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("error uploading to GitHub, status code: %d, response: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// currentSHA returns the blob sha of path, or "" when it does not exist yet.
func (u *Uploader) currentSHA(ctx context.Context, path string) (string, error) {
	req, err := u.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", nil
	case resp.StatusCode >= 400:
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("error reading %s from GitHub, status code: %d, response: %s", path, resp.StatusCode, string(respBody))
	}

	var existing contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
		return "", fmt.Errorf("error decoding GitHub response: %w", err)
	}
	return existing.SHA, nil
}

func (u *Uploader) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	base := u.APIBase
	if base == "" {
		base = DefaultAPIBase
	}
	url := fmt.Sprintf("%s/repos/%s/contents/%s", base, u.Repo, path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	return req, nil
}
