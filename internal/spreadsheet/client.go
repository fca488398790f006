// Package spreadsheet предоставляет клиент журналов заказов в Google Sheets.
package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client добавляет строки заказов в именованные вкладки одной таблицы.
type Client struct {
	spreadsheetID string
	service       *sheets.Service
}

// NewClient создаёт клиент Sheets API по файлу ключа сервисного аккаунта.
func NewClient(ctx context.Context, spreadsheetID, keyFile string) (*Client, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		spreadsheetID: spreadsheetID,
		service:       service,
	}, nil
}

// AppendRow добавляет одну строку в конец указанной вкладки.
func (c *Client) AppendRow(ctx context.Context, tab string, row []any) error {
	appendRange := fmt.Sprintf("'%s'!A1", tab)
	valueRange := &sheets.ValueRange{
		MajorDimension: "ROWS",
		Range:          appendRange,
		Values:         [][]any{row},
	}

	_, err := c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, appendRange, valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		IncludeValuesInResponse(false).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	return nil
}

// IsAPIError сообщает, является ли ошибка ошибкой Google API.
func IsAPIError(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr)
}
