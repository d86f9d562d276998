package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/debtburn/internal/model"
)

// maxLineSize bounds one JSONL record.
const maxLineSize = 1 << 20

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unsupported debt file %s (want .toml, .json or .jsonl)", path)
}

// ParseFile reads one debt file. Err is set when the file cannot be read or
// decoded as a whole; malformed JSONL lines are skipped and counted instead.
func ParseFile(path string) ParseResult {
	result := ParseResult{Path: path}

	format, err := DetectFormat(path)
	if err != nil {
		result.Err = err
		return result
	}

	f, err := os.Open(path) //nolint:gosec // user-supplied import path
	if err != nil {
		result.Err = err
		return result
	}
	defer func() { _ = f.Close() }()

	result.Debts, result.ParseErrors, result.Err = Parse(f, format)
	return result
}

// Parse decodes debts from r and normalizes their kinds.
func Parse(r io.Reader, format Format) ([]model.Debt, int, error) {
	var (
		debts     []model.Debt
		badLines  int
		decodeErr error
	)

	switch format {
	case FormatTOML:
		var file tomlFile
		if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
			return nil, 0, fmt.Errorf("decoding toml: %w", err)
		}
		debts = file.Debts
	case FormatJSON:
		debts, decodeErr = parseJSON(r)
	case FormatJSONL:
		debts, badLines, decodeErr = parseJSONL(r)
	default:
		return nil, 0, fmt.Errorf("unknown format %q", format)
	}
	if decodeErr != nil {
		return nil, badLines, decodeErr
	}

	for i := range debts {
		kind, err := model.ParseKind(string(debts[i].Kind))
		if err != nil {
			return nil, badLines, fmt.Errorf("debt %d (%s): %w", i+1, debts[i].Name, err)
		}
		debts[i].Kind = kind
		if debts[i].Principal.IsZero() {
			debts[i].Principal = debts[i].Outstanding
		}
	}
	return debts, badLines, nil
}

func parseJSON(r io.Reader) ([]model.Debt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var debts []model.Debt
		if err := json.Unmarshal(data, &debts); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
		return debts, nil
	}
	var file jsonFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return file.Debts, nil
}

func parseJSONL(r io.Reader) ([]model.Debt, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var debts []model.Debt
	bad := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		var d model.Debt
		if err := json.Unmarshal(line, &d); err != nil {
			bad++
			continue
		}
		debts = append(debts, d)
	}
	return debts, bad, scanner.Err()
}
