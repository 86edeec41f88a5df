package model

import "strings"

// RuleType categorizes a rule kind for resolution filtering
type RuleType string

const (
	// RuleTypeAny matches every target (no filter)
	RuleTypeAny RuleType = ""

	RuleTypeTest    RuleType = "test"
	RuleTypeBinary  RuleType = "binary"
	RuleTypeLibrary RuleType = "library"
	RuleTypeUnknown RuleType = "unknown"
)

// RuleTypeForKind derives the rule type from a Bazel rule kind name.
// The mapping is by naming convention: "java_test" -> test,
// "go_binary" -> binary, "cc_library" -> library.
func RuleTypeForKind(kind string) RuleType {
	switch {
	case strings.HasSuffix(kind, "_test") || kind == "test_suite":
		return RuleTypeTest
	case strings.HasSuffix(kind, "_binary"):
		return RuleTypeBinary
	case strings.HasSuffix(kind, "_library") || strings.HasSuffix(kind, "_proto_library"):
		return RuleTypeLibrary
	default:
		return RuleTypeUnknown
	}
}

// ParseRuleType converts a user-supplied filter string to a RuleType.
// An empty string means no filter.
func ParseRuleType(s string) (RuleType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RuleTypeAny, true
	case "test":
		return RuleTypeTest, true
	case "binary":
		return RuleTypeBinary, true
	case "library":
		return RuleTypeLibrary, true
	default:
		return RuleTypeUnknown, false
	}
}

// Matches reports whether a target of the given rule type passes this filter
func (rt RuleType) Matches(target RuleType) bool {
	return rt == RuleTypeAny || rt == target
}
