// SPDX-License-Identifier: MPL-2.0

package osascript

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// AppleScript selects the AppleScript OSA component.
	AppleScript Language = "AppleScript"
	// JavaScript selects the JavaScript for Automation (JXA) OSA component.
	JavaScript Language = "JavaScript"

	// DefaultLanguage is used when no language is given.
	DefaultLanguage = AppleScript
)

// ErrInvalidLanguage is the sentinel error wrapped by InvalidLanguageError.
var ErrInvalidLanguage = errors.New("invalid language")

type (
	// Language selects the OSA scripting component the interpreter loads.
	Language string

	// InvalidLanguageError is returned when a Language value is not one of
	// the supported components.
	InvalidLanguageError struct {
		Value Language
	}
)

// languageAliases maps lower-cased user input to a supported language.
var languageAliases = map[string]Language{
	"applescript": AppleScript,
	"as":          AppleScript,
	"javascript":  JavaScript,
	"js":          JavaScript,
	"jxa":         JavaScript,
}

// Error implements the error interface.
func (e *InvalidLanguageError) Error() string {
	return fmt.Sprintf("invalid language %q (expected one of: %s)", e.Value, strings.Join(languageNames(), ", "))
}

// Unwrap returns ErrInvalidLanguage so callers can use errors.Is.
func (e *InvalidLanguageError) Unwrap() error { return ErrInvalidLanguage }

// Languages returns the supported languages in display order.
func Languages() []Language {
	return []Language{AppleScript, JavaScript}
}

// Aliases returns the accepted spellings for l, sorted.
func (l Language) Aliases() []string {
	var out []string
	for alias, lang := range languageAliases {
		if lang == l {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// ParseLanguage resolves user input (case-insensitive, aliases allowed) to a
// Language. An empty string resolves to DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return DefaultLanguage, nil
	}
	if lang, ok := languageAliases[key]; ok {
		return lang, nil
	}
	return "", &InvalidLanguageError{Value: Language(s)}
}

// IsValid returns whether the Language is a supported component,
// and a list of validation errors if it is not.
func (l Language) IsValid() (bool, []error) {
	switch l {
	case AppleScript, JavaScript:
		return true, nil
	default:
		return false, []error{&InvalidLanguageError{Value: l}}
	}
}

// Parameter returns the value passed to the interpreter's -l flag.
// The zero value maps to the default language.
func (l Language) Parameter() string {
	if l == "" {
		return string(DefaultLanguage)
	}
	return string(l)
}

// String returns the language name.
func (l Language) String() string { return l.Parameter() }

func languageNames() []string {
	langs := Languages()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = string(l)
	}
	return names
}
