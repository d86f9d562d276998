// Package source reads debt records from TOML, JSON and JSONL files.
package source

import "github.com/theirongolddev/debtburn/internal/model"

// Format is a debt file encoding.
type Format string

const (
	FormatTOML  Format = "toml"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// tomlFile is the TOML layout: one [[debt]] table per record.
type tomlFile struct {
	Debts []model.Debt `toml:"debt"`
}

// jsonFile accepts {"debts": [...]} in addition to a bare array.
type jsonFile struct {
	Debts []model.Debt `json:"debts"`
}

// ParseResult holds the output of parsing one file.
type ParseResult struct {
	Path        string
	Debts       []model.Debt
	ParseErrors int
	Err         error
}

// DiscoveredFile is a debt file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}
