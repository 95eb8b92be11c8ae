package attr

import (
	"strings"

	"github.com/jxsl13/attr-state/model"
)

// ParseOutput converts lsattr style output into a path mapping.
// Every line is expected to look like "<attrs> <path>", other lines are skipped.
func ParseOutput(out []byte) model.PathAttributes {
	result := make(model.PathAttributes)

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimLeft(line, " \t")

		idx := strings.IndexAny(line, " \t")
		if idx < 0 {
			// directory headers of -R and empty lines
			continue
		}
		dump := line[:idx]
		path := strings.TrimLeft(line[idx:], " \t")
		if path == "" {
			continue
		}
		result[path] = model.FilterAttributes(dump)
	}
	return result
}
