package main

import (
	"fmt"
	"log/slog"

	"github.com/whiskerworthy/dogdiet/internal/apiclient"
)

// newAPIClient builds the backend client from the loaded config. Tests
// replace it to point at an httptest server.
var newAPIClient = func() (*apiclient.Client, error) {
	c, err := apiclient.New(appConfig.API.BaseURL,
		apiclient.WithTimeout(appConfig.RequestTimeout()),
		apiclient.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("configuring API client: %w", err)
	}
	return c, nil
}
