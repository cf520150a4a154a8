package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type apiClient struct {
	baseURL string
	token   string
}

func newAPIClient() *apiClient {
	return &apiClient{baseURL: strings.TrimRight(serverURL, "/"), token: authToken}
}

func (c *apiClient) post(path string, body any) ([]byte, error) {
	a := fiber.Post(c.baseURL + path)
	a.JSON(body)
	return c.send(a)
}

func (c *apiClient) get(path, query string) ([]byte, error) {
	a := fiber.Get(c.baseURL + path)
	a.QueryString(query)
	return c.send(a)
}

func (c *apiClient) send(a *fiber.Agent) ([]byte, error) {
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code >= fiber.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", code, apiErr.Error)
		}
		return nil, fmt.Errorf("server returned %d", code)
	}
	return body, nil
}

// pretty re-indents a JSON body for the terminal.
func pretty(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
