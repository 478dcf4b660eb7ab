// Package github is the diff source: it fetches the changed files of a
// pull request together with their post-change content and the line
// ranges the change touched.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"review-bot-go/internal/config"
	"review-bot-go/internal/model"

	"go.uber.org/zap"
)

// Client talks to the GitHub REST API
type Client struct {
	apiURL  string
	token   string
	httpCli *http.Client
	logger  *zap.Logger
}

// NewClient creates a GitHub client. The configured token is the
// default credential; a per-request token overrides it.
func NewClient(cfg config.GitHubConfig, logger *zap.Logger) *Client {
	return &Client{
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		token:   cfg.Token,
		httpCli: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		logger:  logger,
	}
}

// ParseRepo accepts either a full GitHub repository URL or the
// owner/name shorthand and returns the owner and repository name
func ParseRepo(ref string) (owner, name string, err error) {
	path := ref
	if strings.Contains(ref, "://") {
		u, perr := url.Parse(ref)
		if perr != nil {
			return "", "", fmt.Errorf("invalid repository URL %q: %w", ref, perr)
		}
		path = u.Path
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository reference %q", ref)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

type prInfo struct {
	Head struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

type prFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchChangedFiles returns the files changed by a pull request with
// their full post-change text and touched line ranges. Files removed
// by the change are skipped; a file whose content cannot be fetched is
// skipped with a warning rather than failing the whole fetch.
func (c *Client) FetchChangedFiles(ctx context.Context, repository string, prNumber int, credential string) ([]model.ChangedFile, error) {
	owner, name, err := ParseRepo(repository)
	if err != nil {
		return nil, &SourceError{Kind: KindNotFound, Message: err.Error()}
	}
	token := credential
	if token == "" {
		token = c.token
	}

	prURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, name, prNumber)

	var info prInfo
	if err := c.getJSON(ctx, prURL, token, &info); err != nil {
		return nil, err
	}

	var files []prFile
	if err := c.getJSON(ctx, prURL+"/files", token, &files); err != nil {
		return nil, err
	}

	diff, err := c.getRaw(ctx, prURL, token, "application/vnd.github.v3.diff")
	if err != nil {
		return nil, err
	}
	touched := parseDiff(diff)

	changed := make([]model.ChangedFile, 0, len(files))
	for _, f := range files {
		if f.Status == "removed" {
			continue
		}
		content, err := c.fileContent(ctx, owner, name, f.Filename, info.Head.SHA, token)
		if err != nil {
			c.logger.Warn("Could not fetch file content",
				zap.String("path", f.Filename),
				zap.Error(err))
			continue
		}
		changed = append(changed, model.NewChangedFile(f.Filename, content, touched[f.Filename]))
	}

	c.logger.Info("Fetched pull request files",
		zap.String("repository", owner+"/"+name),
		zap.Int("pr_number", prNumber),
		zap.Int("files", len(changed)))
	return changed, nil
}

func (c *Client) fileContent(ctx context.Context, owner, name, path, ref, token string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.apiURL, owner, name, url.PathEscape(path), url.QueryEscape(ref))
	var resp contentsResponse
	if err := c.getJSON(ctx, u, token, &resp); err != nil {
		return "", err
	}
	if resp.Encoding == "base64" {
		raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("failed to decode content of %s: %w", path, err)
		}
		return string(raw), nil
	}
	return resp.Content, nil
}

func (c *Client) getJSON(ctx context.Context, url, token string, out any) error {
	body, err := c.getRaw(ctx, url, token, "application/vnd.github.v3+json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return &SourceError{Kind: KindTransient, Message: fmt.Sprintf("malformed response from %s: %v", url, err)}
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, url, token, accept string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "review-bot-go/1.0")
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// network failures and timeouts are transient by definition
		return "", &SourceError{Kind: KindTransient, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SourceError{Kind: KindTransient, Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, string(body))
	}
	return string(body), nil
}
