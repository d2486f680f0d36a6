package tickers

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Dictionary is the static ticker-code to company-name mapping. Loaded once
// at startup and never mutated afterwards.
type Dictionary struct {
	companies map[string]string // code -> company name, NFC-normalized
	codeRe    *regexp.Regexp
}

// Load reads the dictionary from a JSON file mapping ticker codes to company
// names, e.g. {"SSI": "Công ty Cổ phần Chứng khoán SSI"}.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticker file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ticker file: %w", err)
	}

	return New(raw)
}

// New builds a dictionary from an in-memory mapping.
func New(raw map[string]string) (*Dictionary, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("ticker dictionary is empty")
	}

	companies := make(map[string]string, len(raw))
	for code, name := range raw {
		companies[strings.ToUpper(strings.TrimSpace(code))] = norm.NFC.String(strings.TrimSpace(name))
	}

	// One token scan plus a set lookup instead of one regexp per code.
	codeRe := regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,9}\b`)

	return &Dictionary{companies: companies, codeRe: codeRe}, nil
}

func (d *Dictionary) Size() int {
	return len(d.companies)
}

// CompanyName returns the company name for a code, or "" when unknown.
func (d *Dictionary) CompanyName(code string) string {
	return d.companies[strings.ToUpper(code)]
}

// Extract returns the sorted set of tickers mentioned in the text. A ticker
// matches either as an exact word-boundary code or through its full company
// name. Text and names are compared in NFC form so that composed and
// decomposed Vietnamese spellings agree.
func (d *Dictionary) Extract(text string) []string {
	if text == "" {
		return nil
	}

	normalized := norm.NFC.String(text)
	found := make(map[string]struct{})

	for _, token := range d.codeRe.FindAllString(normalized, -1) {
		if _, ok := d.companies[token]; ok {
			found[token] = struct{}{}
		}
	}

	for code, name := range d.companies {
		if name == "" {
			continue
		}
		if _, ok := found[code]; ok {
			continue
		}
		if strings.Contains(normalized, name) {
			found[code] = struct{}{}
		}
	}

	if len(found) == 0 {
		return nil
	}

	result := make([]string, 0, len(found))
	for code := range found {
		result = append(result, code)
	}
	sort.Strings(result)

	return result
}
