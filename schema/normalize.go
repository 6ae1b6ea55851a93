package schema

import (
	"strings"
	"unicode"
)

// ValidateTabID ensures a tab id is non-empty, has no surrounding space and is made of
// letters, digits, '.', '_' or '-'.
func ValidateTabID(id TabID) error {
	if !validID(string(id)) {
		return ErrInvalidRequest
	}
	return nil
}

// ValidateDocumentID applies the tab id rules to a document id.
func ValidateDocumentID(id DocumentID) error {
	if !validID(string(id)) {
		return ErrInvalidRequest
	}
	return nil
}

func validID(raw string) bool {
	if raw == "" || strings.TrimSpace(raw) != raw {
		return false
	}
	for _, r := range raw {
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// NormalizeEncoding maps an empty or unknown encoding to EncodingHTML.
func NormalizeEncoding(value Encoding) Encoding {
	switch Encoding(strings.ToLower(strings.TrimSpace(string(value)))) {
	case EncodingJSON:
		return EncodingJSON
	default:
		return EncodingHTML
	}
}
