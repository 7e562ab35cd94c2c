// Package locale resolves the user-facing locale (English or French) and
// normalizes free-form language names to ISO 639-1 codes for catalog filters.
package locale
