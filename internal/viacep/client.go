// Package viacep предоставляет клиент для внешнего сервиса адресов ViaCEP.
package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmeshcher/cantina-gateway/internal/model"
)

// ErrCEPNotFound возвращается, если сервис сообщил, что CEP не существует.
var ErrCEPNotFound = errors.New("CEP not found.")

// Client инкапсулирует HTTP-взаимодействие с сервисом ViaCEP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// cepResponse описывает ответ ViaCEP по одному CEP.
// Поле erro присутствует только в ответе "не найдено" и может быть
// как булевым значением, так и строкой, поэтому читается сырым.
type cepResponse struct {
	Logradouro string          `json:"logradouro"`
	Bairro     string          `json:"bairro"`
	Localidade string          `json:"localidade"`
	UF         string          `json:"uf"`
	Erro       json.RawMessage `json:"erro"`
}

// NewClient создаёт HTTP-клиент для обращения к сервису адресов по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetAddress запрашивает адресные данные для указанного CEP.
// Возвращает ErrCEPNotFound, если сервис пометил ответ флагом erro.
func (c *Client) GetAddress(ctx context.Context, cep string) (*model.Address, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("viacep client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	url := fmt.Sprintf("%s/ws/%s/json", base, cep)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result cepResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Erro) > 0 {
		return nil, ErrCEPNotFound
	}

	return &model.Address{
		CEP:    cep,
		Rua:    result.Logradouro,
		Bairro: result.Bairro,
		Cidade: result.Localidade,
		Estado: result.UF,
	}, nil
}
