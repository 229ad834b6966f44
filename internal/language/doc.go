// Package language maps ISO 639 language codes to display names and knows
// which three-letter codes are synonyms (for example zho and chi).
//
// Stream matching itself stays an exact tag comparison; this package only
// feeds human-readable output and hints.
package language
