// Package shared provides common utility functions used across multiple
// packages in the resengine codebase.
package shared

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"resengine/internal/types"
)

// ParseResID parses a hexadecimal resource id such as "0x7f010000". A
// leading '@' or '?' is ignored.
func ParseResID(value string) (types.ResID, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(value), "@?")
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "0x") {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("resource id %q must be hexadecimal with a 0x prefix", value))
	}
	id, err := strconv.ParseUint(lower[2:], 16, 32)
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid resource id %q", value)).
			WithCause(err)
	}
	return types.ResID(id), nil
}

// IsHexResID reports whether value looks like a hexadecimal resource id.
func IsHexResID(value string) bool {
	trimmed := strings.ToLower(strings.TrimLeft(strings.TrimSpace(value), "@?"))
	return strings.HasPrefix(trimmed, "0x")
}

// FormatFlags renders a type spec flag mask.
func FormatFlags(flags uint32) string {
	return fmt.Sprintf("0x%08x", flags)
}

// ParseResourceName splits "[@|?][package:][type/]entry" into its parts.
// Missing parts are returned empty.
func ParseResourceName(value string) (types.ResourceName, error) {
	name := strings.TrimSpace(value)
	name = strings.TrimPrefix(name, "@")
	name = strings.TrimPrefix(name, "?")
	var out types.ResourceName
	if i := strings.IndexByte(name, ':'); i >= 0 {
		out.Package = name[:i]
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '/'); i >= 0 {
		out.Type = name[:i]
		name = name[i+1:]
	}
	out.Entry = name
	if out.Entry == "" {
		return types.ResourceName{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("resource name %q has no entry", value))
	}
	return out, nil
}
