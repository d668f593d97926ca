package lenient

import (
	"strconv"

	"github.com/reoring/lenient/i18n"
)

// FlagKind identifies a degradation applied while coercing.
type FlagKind int

const (
	// structural recoveries
	FlagFixedJSON FlagKind = iota
	FlagPickedAmbiguous
	FlagUnionResolved
	FlagEnumNormalized
	// value-level guesses
	FlagDuplicateKey
	FlagExtraKey
	FlagDefaultFromSchema
	FlagMissingNull
	FlagStringToNumber
	FlagStringToBool
	FlagJSONToString
	FlagFloatToInt
	FlagEnumFromSubstring
	FlagImpliedKey
	// last-resort substitutions
	FlagPartialMissing
	FlagArrayItemDropped
	FlagMapEntryDropped
	FlagOptionalFallback
	FlagSingleToList
	FlagDefaultSubstituted
)

// flagWeights is the single ranked table scoring reads. Every weight is at
// least 1 so an added flag always costs something.
var flagWeights = [...]struct {
	code   string
	weight int
}{
	FlagFixedJSON:          {"fixed_json", 1},
	FlagPickedAmbiguous:    {"picked_ambiguous", 1},
	FlagUnionResolved:      {"union_resolved", 1},
	FlagEnumNormalized:     {"enum_normalized", 1},
	FlagDuplicateKey:       {"duplicate_key", 2},
	FlagExtraKey:           {"extra_key", 2},
	FlagDefaultFromSchema:  {"default_from_schema", 2},
	FlagMissingNull:        {"missing_null", 2},
	FlagStringToNumber:     {"string_to_number", 2},
	FlagStringToBool:       {"string_to_bool", 2},
	FlagJSONToString:       {"json_to_string", 2},
	FlagFloatToInt:         {"float_to_int", 3},
	FlagEnumFromSubstring:  {"enum_from_substring", 3},
	FlagImpliedKey:         {"implied_key", 3},
	FlagPartialMissing:     {"partial_missing", 4},
	FlagArrayItemDropped:   {"array_item_dropped", 4},
	FlagMapEntryDropped:    {"map_entry_dropped", 4},
	FlagOptionalFallback:   {"optional_fallback", 5},
	FlagSingleToList:       {"single_to_list", 5},
	FlagDefaultSubstituted: {"default_substituted", 5},
}

func (k FlagKind) valid() bool { return k >= 0 && int(k) < len(flagWeights) }

// Code is the stable snake_case name of the flag kind.
func (k FlagKind) Code() string {
	if !k.valid() {
		return "flag_" + strconv.Itoa(int(k))
	}
	return flagWeights[k].code
}

// Weight is the fixed scoring weight of the flag kind.
func (k FlagKind) Weight() int {
	if !k.valid() {
		return 0
	}
	return flagWeights[k].weight
}

// String returns the translated description.
func (k FlagKind) String() string { return i18n.T(k.Code(), nil) }

// Flag records one degradation at the JSON Pointer of the node it was
// applied to.
type Flag struct {
	Kind   FlagKind
	Path   string
	Detail string
}

func (f Flag) String() string {
	s := f.Path + ": " + f.Kind.String()
	if f.Detail != "" {
		s += " (" + f.Detail + ")"
	}
	return s
}

// MarshalText renders the flag for logs and JSON side channels.
func (f Flag) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func flagAt(p PathRef, kind FlagKind, detail string) Flag {
	return Flag{Kind: kind, Path: p.Pointer(), Detail: detail}
}
