package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL joins a base Postgres URL with a database name.
// An empty name returns the base URL untouched. sslmode=disable is added
// when the URL does not already choose an sslmode.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	databaseURL := fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), databaseName)
	if hasQuery {
		databaseURL += "?" + query
	}

	if strings.Contains(databaseURL, "sslmode=") {
		return databaseURL
	}
	if hasQuery {
		return databaseURL + "&sslmode=disable"
	}
	return databaseURL + "?sslmode=disable"
}
