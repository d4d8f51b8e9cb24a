// Package verify habla con el servicio externo de verificación telefónica
// (API estilo Authy). No persiste estado local del handshake: el proveedor
// es quien recuerda qué código emitió para cada (dialing code, número).
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
)

const (
	defaultBaseURL = "https://api.authy.com"
	apiKeyHeader   = "X-Authy-API-Key"

	startPath = "/protected/json/phones/verification/start"
	checkPath = "/protected/json/phones/verification/check"
)

// StartResponse es la respuesta del endpoint de inicio.
type StartResponse struct {
	Carrier         string `json:"carrier"`
	IsCellphone     bool   `json:"is_cellphone"`
	Message         string `json:"message"`
	SecondsToExpire string `json:"seconds_to_expire"`
	UUID            string `json:"uuid"`
	Success         bool   `json:"success"`
}

// CheckResponse es la respuesta del endpoint de chequeo.
type CheckResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Config del cliente.
type Config struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"` // duración parseable, default 10s
}

// Client llama a la API del proveedor.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := 10 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Start pide al proveedor que envíe un código por SMS al número dado.
func (c *Client) Start(ctx context.Context, countryCode int, phoneNumber string) (*StartResponse, error) {
	form := url.Values{
		"via":          {"sms"},
		"country_code": {strconv.Itoa(countryCode)},
		"phone_number": {phoneNumber},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+startPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, wrapExternal("start verification", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(apiKeyHeader, c.apiKey)

	var out StartResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Check valida el código que tipeó el usuario contra el proveedor.
func (c *Client) Check(ctx context.Context, countryCode int, phoneNumber, code string) (*CheckResponse, error) {
	q := url.Values{
		"country_code":      {strconv.Itoa(countryCode)},
		"phone_number":      {phoneNumber},
		"verification_code": {code},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+checkPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, wrapExternal("check verification", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	var out CheckResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do ejecuta el request y decodifica el body JSON sin importar el status:
// el proveedor reporta fallos de negocio con success=false y 4xx a la vez.
func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		logger.From(ctx).Warn("verification provider unreachable",
			logger.Component("verify"), logger.Err(err))
		return wrapExternal("call provider", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return wrapExternal("read provider response", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		logger.From(ctx).Warn("verification provider sent malformed response",
			logger.Component("verify"), logger.Int("status", resp.StatusCode))
		return wrapExternal("decode provider response", err)
	}
	return nil
}

func wrapExternal(op string, err error) error {
	return fmt.Errorf("%w: verify: %s: %v", identity.ErrExternalService, op, err)
}
