package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// =============================================================================
// DIALECT PROFILE STRUCTURE
// =============================================================================

// RKL device group names assigned by dialect.
const (
	RKLGroupWellsTSYS      = "WellsTFTSYS-1301"
	RKLGroupTSYSCurbstone  = "TSYSCurbstone-1301"
	DefaultTerminalPadding = "0001"
)

// MHCConstants are the debit network values applied when the caller selects
// MHC debit processing.
type MHCConstants struct {
	SharingGroup           string `yaml:"sharing_group"`
	MerchantABA            string `yaml:"merchant_aba"`
	SettlementAgent        string `yaml:"settlement_agent"`
	ReimbursementAttribute string `yaml:"reimbursement_attribute"`
}

// DefaultMHC holds the MHC debit constants.
var DefaultMHC = MHCConstants{
	SharingGroup:           "G8E7LYWQNZV",
	MerchantABA:            "990025276",
	SettlementAgent:        "V074",
	ReimbursementAttribute: "Z",
}

// DialectProfile holds the mapping constants for one dialect.
//
// Example (profiles/heartland.yaml):
//
//	dialect: Heartland
//	rkl_group_name: TSYSCurbstone-1301
//	defaults:
//	  Contactless_Signature: "Y"
//	name_rejections:
//	  - "(?i)^CURBSTONE\\b"
//	transforms:
//	  - field: Merchant_Name
//	    actions:
//	      - type: normalize_whitespace
type DialectProfile struct {
	// Dialect is the tag the profile applies to. Required in profile files.
	Dialect types.Dialect `yaml:"dialect"`

	// RKLGroupName is written to KeyManagement_RKL_Device_GroupName.
	RKLGroupName string `yaml:"rkl_group_name"`

	// Defaults fill canonical fields the source document left empty.
	Defaults map[string]string `yaml:"defaults"`

	// MHC overrides individual MHC debit constants. Empty values keep the
	// built-in constant.
	MHC MHCConstants `yaml:"mhc"`

	// NameRejections replaces the Heartland merchant name rejection list.
	// Omit the key to keep the built-in list; an empty list disables it.
	NameRejections []string `yaml:"name_rejections"`

	// Transforms normalize mapped values before caller overrides apply.
	// A profile file that sets the key replaces the whole list.
	Transforms []TransformRule `yaml:"transforms"`
}

// Profiles maps each dialect to its profile.
type Profiles map[types.Dialect]*DialectProfile

// DefaultProfiles returns the built-in profiles, one per dialect including
// Unknown. Unknown has no RKL group name.
func DefaultProfiles() Profiles {
	return Profiles{
		types.DialectTSYS: {
			Dialect:      types.DialectTSYS,
			RKLGroupName: RKLGroupWellsTSYS,
			Defaults:     map[string]string{},
			MHC:          DefaultMHC,
		},
		types.DialectPropelr: {
			Dialect:      types.DialectPropelr,
			RKLGroupName: RKLGroupWellsTSYS,
			Defaults: map[string]string{
				types.FieldTSYSStoreNumber:    DefaultTerminalPadding,
				types.FieldTSYSTerminalNumber: DefaultTerminalPadding,
			},
			MHC: DefaultMHC,
		},
		types.DialectHeartland: {
			Dialect:      types.DialectHeartland,
			RKLGroupName: RKLGroupTSYSCurbstone,
			Defaults:     map[string]string{},
			MHC:          DefaultMHC,
		},
		types.DialectUR: {
			Dialect:      types.DialectUR,
			RKLGroupName: RKLGroupWellsTSYS,
			Defaults:     map[string]string{},
			MHC:          DefaultMHC,
		},
		types.DialectUnknown: {
			Dialect:  types.DialectUnknown,
			Defaults: map[string]string{},
			MHC:      DefaultMHC,
		},
	}
}

// Get returns the profile for d, falling back to the built-in one.
func (p Profiles) Get(d types.Dialect) *DialectProfile {
	if prof, ok := p[d]; ok && prof != nil {
		return prof
	}
	if prof, ok := DefaultProfiles()[d]; ok {
		return prof
	}
	return &DialectProfile{Dialect: d, Defaults: map[string]string{}, MHC: DefaultMHC}
}

// NameRejections returns the Heartland name rejection list, or nil for the
// parser's built-in list.
func (p Profiles) NameRejections() []string {
	return p.Get(types.DialectHeartland).NameRejections
}

// =============================================================================
// PROFILE LOADING FUNCTIONS
// =============================================================================

// LoadProfiles loads all dialect profiles from a directory on top of the
// built-in profiles.
//
// PARAMETERS:
//   - profilesDir: The directory containing *.yaml / *.yml profile files.
//     A directory that does not exist yields the built-in profiles.
//
// RETURNS:
//   - The merged profiles, keyed by dialect.
//   - An error if a file cannot be read or parsed, names an unknown
//     dialect, or sets a default for a non-canonical field.
func LoadProfiles(profilesDir string) (Profiles, error) {
	profiles := DefaultProfiles()

	if _, err := os.Stat(profilesDir); os.IsNotExist(err) {
		return profiles, nil
	}

	// Find all YAML files in the profiles directory.
	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}

	// Also check for .yml extension.
	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	for _, file := range files {
		prof, err := loadProfile(file)
		if err != nil {
			return nil, apperrors.NewConfigInvalidError(filepath.Base(file), err)
		}
		profiles[prof.Dialect] = mergeProfile(profiles.Get(prof.Dialect), prof)
	}

	return profiles, nil
}

// loadProfile loads a single profile file.
func loadProfile(filePath string) (*DialectProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var prof DialectProfile
	if err := yaml.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if prof.Dialect == "" {
		return nil, fmt.Errorf("dialect is required")
	}
	d, err := types.ParseDialect(string(prof.Dialect))
	if err != nil {
		return nil, err
	}
	prof.Dialect = d

	defaults := make(map[string]string, len(prof.Defaults))
	for k, v := range prof.Defaults {
		key, ok := types.LookupCanonicalKey(k)
		if !ok {
			return nil, fmt.Errorf("defaults: %q is not a canonical field", k)
		}
		defaults[key] = v
	}
	prof.Defaults = defaults

	if err := validateTransforms(prof.Transforms); err != nil {
		return nil, err
	}

	return &prof, nil
}

// mergeProfile lays the values set in override on top of base.
func mergeProfile(base, override *DialectProfile) *DialectProfile {
	out := &DialectProfile{
		Dialect:        base.Dialect,
		RKLGroupName:   base.RKLGroupName,
		Defaults:       make(map[string]string, len(base.Defaults)+len(override.Defaults)),
		MHC:            base.MHC,
		NameRejections: base.NameRejections,
		Transforms:     base.Transforms,
	}
	for k, v := range base.Defaults {
		out.Defaults[k] = v
	}
	for k, v := range override.Defaults {
		out.Defaults[k] = v
	}
	if override.RKLGroupName != "" {
		out.RKLGroupName = override.RKLGroupName
	}
	if override.MHC.SharingGroup != "" {
		out.MHC.SharingGroup = override.MHC.SharingGroup
	}
	if override.MHC.MerchantABA != "" {
		out.MHC.MerchantABA = override.MHC.MerchantABA
	}
	if override.MHC.SettlementAgent != "" {
		out.MHC.SettlementAgent = override.MHC.SettlementAgent
	}
	if override.MHC.ReimbursementAttribute != "" {
		out.MHC.ReimbursementAttribute = override.MHC.ReimbursementAttribute
	}
	if override.NameRejections != nil {
		out.NameRejections = override.NameRejections
	}
	if override.Transforms != nil {
		out.Transforms = override.Transforms
	}
	return out
}
