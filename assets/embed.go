// Package assets embeds the default country pool and the SQL migrations so the
// server runs without any files next to the binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed countries.yaml
var countriesYAML []byte

//go:embed sql/*.sql
var sqlFS embed.FS

// CountriesYAML returns the embedded default country pool document.
func CountriesYAML() []byte {
	return countriesYAML
}

// Migrations exposes the embedded migration files rooted at "sql".
func Migrations() fs.FS {
	return sqlFS
}
