// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-provided names before they reach the graph
// or the snapshot database.
//
// Page labels come from edge files and HTTP queries. Snapshot names become
// database keys and default to file names, so they are held to a stricter
// pattern.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Length limits.
const (
	// MaxLabelLength bounds a page label in bytes. Long enough for a URL.
	MaxLabelLength = 2048

	// MaxSnapshotNameLength bounds a snapshot name in bytes.
	MaxSnapshotNameLength = 128
)

// Sentinel errors for validation failures.
var (
	// ErrEmpty is returned for an empty label or name.
	ErrEmpty = errors.New("value is empty")

	// ErrTooLong is returned when a value exceeds its length limit.
	ErrTooLong = errors.New("value too long")

	// ErrInvalidCharacter is returned for whitespace, control characters or,
	// in snapshot names, anything outside the allowed set.
	ErrInvalidCharacter = errors.New("value contains an invalid character")
)

// snapshotNamePattern allows letters, digits, dots, underscores and hyphens,
// starting with a letter or digit.
var snapshotNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]*$`)

// ValidateLabel checks a page label.
//
// Valid labels:
//   - 1 to MaxLabelLength bytes
//   - No whitespace
//   - No control characters
//
// Labels are case sensitive and otherwise free form: "umd.edu",
// "https://umd.edu/about" and "A" are all valid.
func ValidateLabel(label string) error {
	if label == "" {
		return ErrEmpty
	}
	if len(label) > MaxLabelLength {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLong, len(label), MaxLabelLength)
	}
	if i := strings.IndexFunc(label, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}); i >= 0 {
		return fmt.Errorf("%w: %q at byte %d", ErrInvalidCharacter, label, i)
	}
	return nil
}

// ValidateLabels validates multiple labels.
// Returns an error listing all invalid labels if any fail validation.
func ValidateLabels(labels []string) error {
	var invalid []string
	var first error
	for _, l := range labels {
		if err := ValidateLabel(l); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", l))
			if first == nil {
				first = err
			}
		}
	}
	if first != nil {
		return fmt.Errorf("invalid labels [%s]: %w", strings.Join(invalid, ", "), first)
	}
	return nil
}

// SanitizeLabel trims surrounding whitespace and validates the result.
//
// Use this for labels read from files, where padding is common:
//
//	label, err := validation.SanitizeLabel(raw)
//	if err != nil {
//	    return err
//	}
func SanitizeLabel(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if err := ValidateLabel(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// ValidateSnapshotName checks a snapshot name.
//
// Valid names:
//   - 1 to MaxSnapshotNameLength bytes
//   - Letters, digits, dots, underscores and hyphens
//   - Starting with a letter or digit
func ValidateSnapshotName(name string) error {
	if name == "" {
		return ErrEmpty
	}
	if len(name) > MaxSnapshotNameLength {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLong, len(name), MaxSnapshotNameLength)
	}
	if !snapshotNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (use letters, digits, '.', '_' or '-')", ErrInvalidCharacter, name)
	}
	return nil
}
