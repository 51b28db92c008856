package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Client struct {
	service *sheets.Service
}

type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	} else if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	} else {
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{
		service: service,
	}, nil
}

// AppendRows appends rows after the last filled row of rangeA1, as raw values
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, rangeA1 string, rows [][]interface{}) error {
	if c.service == nil {
		return fmt.Errorf("sheets: service is nil")
	}

	valueRange := &sheets.ValueRange{
		Values: rows,
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, rangeA1, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append rows: %w", err)
	}

	return nil
}
