package main

import (
	"errors"
	"unicode/utf8"

	"github.com/jxsl13/attr-state/model"
)

// exitCode returns ExitCodeUsage for invalid input and ExitCodeError for everything else.
func exitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return ExitCodeUsage
	}
	return ExitCodeError
}

// longestValue returns the widest attribute column of m.
func longestValue(m model.PathAttributes) int {
	max := 0
	for _, v := range m {
		l := utf8.RuneCountInString(string(v))
		if l > max {
			max = l
		}
	}

	return max
}
