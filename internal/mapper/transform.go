package mapper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/config"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// =============================================================================
// PROFILE TRANSFORMATIONS
// =============================================================================

var (
	digitsPattern       = regexp.MustCompile(`\d+`)
	specialCharsPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// applyTransforms runs each rule against fields in order. Rules see the
// values left by earlier rules.
func applyTransforms(fields types.FieldMap, rules []config.TransformRule) error {
	for _, rule := range rules {
		value := fields[rule.Field]
		for _, action := range rule.Actions {
			var err error
			value, err = ApplyTransformation(value, action, fields)
			if err != nil {
				return fmt.Errorf("transformation '%s' on %s failed: %w", action.Type, rule.Field, err)
			}
		}
		fields[rule.Field] = value
	}
	return nil
}

// ApplyTransformation applies a single transformation action.
//
// PARAMETERS:
//   - value: The current value.
//   - action: The transformation action to apply.
//   - allFields: The field map being built (for if_empty_use_field).
//
// RETURNS:
//   - The transformed value.
//   - An error for an unknown type or an invalid pattern.
func ApplyTransformation(value string, action config.TransformAction, allFields types.FieldMap) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case config.TransformPrependString:
		return action.Value + value, nil

	case config.TransformAppendString:
		return value + action.Value, nil

	case config.TransformTrim:
		return strings.TrimSpace(value), nil

	case config.TransformUppercase:
		return strings.ToUpper(value), nil

	case config.TransformLowercase:
		return strings.ToLower(value), nil

	case config.TransformReplace:
		// EXAMPLE:
		//   Input: "CORNER-DELI"
		//   Action: replace with find "-" and value " "
		//   Output: "CORNER DELI"
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case config.TransformRegexReplace:
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	// =========================================================================
	// NUMERIC FORMATTING
	// =========================================================================

	case config.TransformPadZerosToLength:
		// EXAMPLE:
		//   Input: "1"
		//   Action: pad_zeros_to_length with value "4"
		//   Output: "0001"
		//
		// Empty values stay empty so that defaults and validation still see
		// a missing field.
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 || value == "" {
			return value, nil
		}
		return PadLeft(value, targetLength, '0'), nil

	case config.TransformEnsureLength:
		// Truncate from the right or pad with leading zeros.
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 || value == "" {
			return value, nil
		}
		if len(value) > targetLength {
			return value[:targetLength], nil
		}
		return PadLeft(value, targetLength, '0'), nil

	case config.TransformRemoveLeadingZeros:
		// EXAMPLE:
		//   Input: "00012345"
		//   Output: "12345"
		if value == "" {
			return value, nil
		}
		result := strings.TrimLeft(value, "0")
		if result == "" {
			return "0", nil
		}
		return result, nil

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case config.TransformLookup:
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	case config.TransformLookupWithDefault:
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return action.Value, nil

	// =========================================================================
	// EMPTY VALUE HANDLING
	// =========================================================================

	case config.TransformIfEmptyUseDefault:
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case config.TransformIfEmptyUseField:
		// EXAMPLE:
		//   Merchant_ID empty, value "TSYS_Merchant_ID"
		//   Output: the TSYS merchant number
		if strings.TrimSpace(value) == "" {
			return allFields[action.Value], nil
		}
		return value, nil

	// =========================================================================
	// CLEANUP
	// =========================================================================

	case config.TransformExtractDigits:
		// EXAMPLE:
		//   Input: "(816) 555-0100"
		//   Output: "8165550100"
		return strings.Join(digitsPattern.FindAllString(value, -1), ""), nil

	case config.TransformRemoveSpecialChars:
		return specialCharsPattern.ReplaceAllString(value, ""), nil

	case config.TransformNormalizeSpace:
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " ")), nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}
