package utils

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxMessageSize = 16 * 1024 // 16KB - single stream message size limit
)

// Field limits for tab pages
const (
	MaxURLLength   = 8192
	MaxTitleLength = 1024
	MaxBatchSize   = 500
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateURL validates a page address. Empty is allowed and means a
// blank page.
func ValidateURL(raw string) error {
	if err := ValidateString(raw, "url", 1, MaxURLLength, false); err != nil {
		return err
	}
	if strings.IndexFunc(raw, unicode.IsControl) >= 0 {
		return fmt.Errorf("url contains control characters")
	}
	if _, err := url.Parse(raw); err != nil {
		return fmt.Errorf("url is malformed: %w", err)
	}
	return nil
}

// ValidateTitle validates a page title
func ValidateTitle(title string) error {
	return ValidateString(title, "title", 1, MaxTitleLength, false)
}

// ValidatePage validates the fields of a page about to be opened
func ValidatePage(rawURL, title string) error {
	if err := ValidateURL(rawURL); err != nil {
		return err
	}
	return ValidateTitle(title)
}

// ValidateBatchSize validates the number of tabs opened in one batch
func ValidateBatchSize(n int) error {
	if n == 0 {
		return fmt.Errorf("tabs must not be empty")
	}
	if n > MaxBatchSize {
		return fmt.Errorf("tabs must not exceed %d entries", MaxBatchSize)
	}
	return nil
}
