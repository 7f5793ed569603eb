// Package token models values that are only known once the monitoring graph
// has been deployed.
//
// A deferred value is an ordinary string carrying one or more placeholders:
//
//	${AWS::Region}     the deployment region
//	${AWS::AccountId}  the deployment account
//	${<logicalID>}     the physical name of the resource with that logical id
//
// Composition code embeds placeholders freely (in markdown, URLs, ARNs) and
// the provisioning side calls [Resolve] with an [Environment] at its own
// rendering time. A literal "${" is written "$${"; see [Escape].
package token

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// Region resolves to [Environment.Region].
	Region = "${AWS::Region}"

	// Account resolves to [Environment.Account].
	Account = "${AWS::AccountId}"
)

const (
	regionKey  = "AWS::Region"
	accountKey = "AWS::AccountId"
)

// placeholderPattern matches an escaped "$${" or a ${...} placeholder.
// Group 1: the key (pseudo parameter or logical id), empty for an escape
var placeholderPattern = regexp.MustCompile(`\$\$\{|\$\{([^}]+)\}`)

// Environment carries the values the provisioning system knows at deploy time.
type Environment struct {
	// Region is the deployment region, e.g. "us-east-1".
	Region string

	// Account is the deployment account id.
	Account string

	// PhysicalIDs maps logical ids to the names the provisioning system
	// assigned to them.
	PhysicalIDs map[string]string
}

// Ref returns a placeholder for the physical name of the resource with the
// given logical id.
func Ref(logicalID string) string {
	return "${" + logicalID + "}"
}

// Escape returns s with every "${" escaped, so Resolve reproduces s verbatim.
func Escape(s string) string {
	return strings.ReplaceAll(s, "${", "$${")
}

// IsUnresolved reports whether s still contains any placeholder. Escaped
// sequences do not count.
func IsUnresolved(s string) bool {
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			return true
		}
	}
	return false
}

// Resolve substitutes every placeholder in s using env.
//
// Strings without placeholders are returned unchanged and "$${" becomes a
// literal "${". Referencing a logical
// id missing from env.PhysicalIDs, or a region/account that env leaves empty,
// is an error.
func Resolve(s string, env Environment) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	var firstErr error

	result := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := placeholderPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}
		if submatches[1] == "" {
			return "${"
		}

		key := submatches[1]
		switch key {
		case regionKey:
			if env.Region == "" {
				firstErr = fmt.Errorf("unresolved %s: region is not set", match)
				return match
			}
			return env.Region
		case accountKey:
			if env.Account == "" {
				firstErr = fmt.Errorf("unresolved %s: account is not set", match)
				return match
			}
			return env.Account
		}

		value, ok := env.PhysicalIDs[key]
		if !ok {
			firstErr = fmt.Errorf("unresolved reference %q", key)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}
