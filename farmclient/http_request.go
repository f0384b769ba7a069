// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farmclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

// StatusError is returned when the api responds other than 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error - Status Code %d - %s", e.Code, strings.TrimSpace(e.Body))
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNot200Status:
		return true
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

// StatusCode returns the status code carried by err, 0 if none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func (c *Client) rawHTTPRequest(method, url string, payload io.Reader) ([]byte, int, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading response body: %w", err)
	}
	return responseBody, resp.StatusCode, nil
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	body, code, err := c.rawHTTPRequest(method, url, payload)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, &StatusError{Code: code, Body: string(body)}
	}
	return body, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpSend(method, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return c.httpRequest(method, url, bytes.NewReader(data))
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	return c.httpSend(http.MethodPost, url, payload)
}

func (c *Client) httpPUT(url string, payload any) ([]byte, error) {
	return c.httpSend(http.MethodPut, url, payload)
}

func decode[T any](body []byte, what string) (*T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s - %w", what, err)
	}
	return &v, nil
}
