// Package sheets constructs the Google Sheets v4 client shared by the catalog and order log.
package sheets

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

type Config struct {
	APIKey string
	// Endpoint overrides the API base URL, e.g. for an emulator.
	Endpoint   string
	HTTPClient *http.Client
}

// NewService builds a Sheets client. Without an API key or HTTP client it falls back to
// application default credentials.
func NewService(ctx context.Context, cfg Config) (*gsheets.Service, error) {
	var opts []option.ClientOption
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.Endpoint != "":
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return svc, nil
}

// Cell renders a cell value the way the Sheets API hands it back.
func Cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}
