package config

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// =============================================================================
// FIELD TRANSFORMATION RULES
// =============================================================================

// Transformation types accepted in profile files.
const (
	TransformPrependString      = "prepend_string"
	TransformAppendString       = "append_string"
	TransformTrim               = "trim"
	TransformUppercase          = "uppercase"
	TransformLowercase          = "lowercase"
	TransformReplace            = "replace"
	TransformRegexReplace       = "regex_replace"
	TransformPadZerosToLength   = "pad_zeros_to_length"
	TransformEnsureLength       = "ensure_length"
	TransformRemoveLeadingZeros = "remove_leading_zeros"
	TransformLookup             = "lookup"
	TransformLookupWithDefault  = "lookup_with_default"
	TransformIfEmptyUseDefault  = "if_empty_use_default"
	TransformIfEmptyUseField    = "if_empty_use_field"
	TransformExtractDigits      = "extract_digits"
	TransformRemoveSpecialChars = "remove_special_chars"
	TransformNormalizeSpace     = "normalize_whitespace"
)

// TransformTypes lists every supported transformation type.
var TransformTypes = []string{
	TransformPrependString,
	TransformAppendString,
	TransformTrim,
	TransformUppercase,
	TransformLowercase,
	TransformReplace,
	TransformRegexReplace,
	TransformPadZerosToLength,
	TransformEnsureLength,
	TransformRemoveLeadingZeros,
	TransformLookup,
	TransformLookupWithDefault,
	TransformIfEmptyUseDefault,
	TransformIfEmptyUseField,
	TransformExtractDigits,
	TransformRemoveSpecialChars,
	TransformNormalizeSpace,
}

// TransformRule is a list of actions applied to one canonical field after
// mapping and before caller overrides.
//
// Example (profiles/propelr.yaml):
//
//	transforms:
//	  - field: TSYS_Store_Number
//	    actions:
//	      - type: pad_zeros_to_length
//	        value: "4"
//	  - field: Merchant_Name
//	    actions:
//	      - type: normalize_whitespace
//	      - type: uppercase
type TransformRule struct {
	Field   string            `yaml:"field"`
	Actions []TransformAction `yaml:"actions"`
}

// TransformAction is a single transformation step.
type TransformAction struct {
	// Type is one of TransformTypes.
	Type string `yaml:"type"`

	// Value is the argument: the string to add, the target length, the
	// replacement, the default, or the source field name.
	Value string `yaml:"value"`

	// Find is the substring or pattern for replace and regex_replace.
	Find string `yaml:"find"`

	// LookupTable maps source values to replacements for lookup types.
	LookupTable map[string]string `yaml:"lookup_table"`
}

// validateTransforms canonicalizes rule field names in place and rejects
// unknown types, bad lengths and invalid patterns.
func validateTransforms(rules []TransformRule) error {
	known := make(map[string]bool, len(TransformTypes))
	for _, t := range TransformTypes {
		known[t] = true
	}

	for i := range rules {
		rule := &rules[i]
		key, ok := types.LookupCanonicalKey(rule.Field)
		if !ok {
			return fmt.Errorf("transforms[%d]: %q is not a canonical field", i, rule.Field)
		}
		rule.Field = key

		for j, action := range rule.Actions {
			if !known[action.Type] {
				return fmt.Errorf("transforms[%d].actions[%d]: unknown transformation type %q", i, j, action.Type)
			}
			switch action.Type {
			case TransformPadZerosToLength, TransformEnsureLength:
				if n, err := strconv.Atoi(action.Value); err != nil || n <= 0 {
					return fmt.Errorf("transforms[%d].actions[%d]: %s needs a positive length, got %q", i, j, action.Type, action.Value)
				}
			case TransformRegexReplace:
				if _, err := regexp.Compile(action.Find); err != nil {
					return fmt.Errorf("transforms[%d].actions[%d]: invalid regex pattern: %w", i, j, err)
				}
			case TransformIfEmptyUseField:
				src, ok := types.LookupCanonicalKey(action.Value)
				if !ok {
					return fmt.Errorf("transforms[%d].actions[%d]: %q is not a canonical field", i, j, action.Value)
				}
				rule.Actions[j].Value = src
			}
		}
	}
	return nil
}
