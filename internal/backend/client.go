/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golabeldesigner/internal/config"
	"golabeldesigner/internal/domain"
)

// Client is a minimal HTTP client for the shared template library.
// The desktop app uses it behind a feature flag to browse and fetch
// templates published by other users.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a client against baseURL. A trailing slash is
// normalized away. A timeout of zero falls back to 10 seconds.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewClientFromConfig builds a client from the backend section of the
// user configuration plus the keychain token.
func NewClientFromConfig(cfg config.BackendConfig, token string) *Client {
	c := NewClient(cfg.BaseURL, token, time.Duration(cfg.TimeoutMs)*time.Millisecond)
	if cfg.TLSInsecure {
		c.client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return c
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Template is the listing projection of a shared label template.
type Template struct {
	ID           int64     `json:"id"`
	StableID     string    `json:"stable_id"`
	Name         string    `json:"name"`
	CanvasWidth  float64   `json:"canvas_width"`
	CanvasHeight float64   `json:"canvas_height"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int64     `json:"version"`
}

// TemplateEnvelope carries one template together with its document.
type TemplateEnvelope struct {
	Template
	Document domain.LabelDocument `json:"document"`
}

// ListTemplates returns the templates available on the server.
func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var list []Template
	if err := c.doJSON(ctx, http.MethodGet, "/api/templates", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetTemplate fetches one template including its full document.
func (c *Client) GetTemplate(ctx context.Context, id int64) (*TemplateEnvelope, error) {
	var env TemplateEnvelope
	path := fmt.Sprintf("/api/templates/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PublishTemplate uploads a document as a named shared template and
// returns the stored listing entry.
func (c *Client) PublishTemplate(ctx context.Context, name string, doc domain.LabelDocument) (*Template, error) {
	req := struct {
		Name     string               `json:"name"`
		Document domain.LabelDocument `json:"document"`
	}{Name: name, Document: doc}
	var tpl Template
	if err := c.doJSON(ctx, http.MethodPost, "/api/templates", req, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}
