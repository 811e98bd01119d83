package order

import (
	"regexp"
	"strings"
)

// Material is the fabric a product is made of.
type Material string

const (
	MaterialCotton Material = "Cotton"
	MaterialTencel Material = "Tencel"
)

// SizeClass is one of the nine canonical size buckets, or Unknown when the
// description carries no recognizable size.
type SizeClass string

const (
	SizeKid100  SizeClass = "Kid-100-110"
	SizeKid110  SizeClass = "Kid-110-120"
	SizeKid120  SizeClass = "Kid-120-130"
	SizeKid130  SizeClass = "Kid-130-140"
	SizeXS      SizeClass = "XS"
	SizeS       SizeClass = "S"
	SizeM       SizeClass = "M"
	SizeL       SizeClass = "L"
	SizeXL      SizeClass = "XL"
	SizeUnknown SizeClass = "Unknown"
)

// sizeRanges maps the numeric height range found in a product description to
// its canonical size class. The numeric range is authoritative; size-letter
// tokens in the description are never trusted over it. This table is the
// designated edit point when the size chart changes.
var sizeRanges = map[string]SizeClass{
	"100-110": SizeKid100,
	"110-120": SizeKid110,
	"120-130": SizeKid120,
	"130-140": SizeKid130,
	"140-150": SizeXS,
	"150-160": SizeS,
	"160-170": SizeM,
	"170-180": SizeL,
	"180-190": SizeXL,
}

// sizeLetters maps adult size classes to their letter token. Kid sizes have
// no letter; they are identified by range only.
var sizeLetters = map[SizeClass]string{
	SizeXS: "XS",
	SizeS:  "S",
	SizeM:  "M",
	SizeL:  "L",
	SizeXL: "XL",
}

// sizePattern matches the first size occurrence in an upper-cased
// description: an optional letter token, then a three-digit range, optionally
// wrapped in parentheses and suffixed with CM, e.g. "L (170-180CM)",
// "(100-110)", "XS 140-150". Both range numbers are anchored on digit
// boundaries so longer figures such as SKU codes ("1001-1200") cannot bleed
// a spurious three-digit window into the lookup.
var sizePattern = regexp.MustCompile(`(?:\b(XS|XL|S|M|L)\s*)?\(?\s*\b(\d{3})\s*-\s*(\d{3})(?:\D|$)`)

// Bundle markers recognized in line-item descriptions.
var bundleMarkers = []string{"BUNDLE", "2 PAIRS"}

// ParsedProduct holds the structured attributes extracted from a free-text
// line-item description. Computed per order, never stored back.
type ParsedProduct struct {
	Material  Material
	IsBundle  bool
	SizeClass SizeClass

	// SizeToken is the letter token found next to the numeric range, if any.
	// TokenMismatch is set when that token disagrees with the class derived
	// from the range; the range wins, the mismatch is reported upstream.
	SizeToken     string
	TokenMismatch bool
}

// Pieces returns the number of physical units the product represents.
func (p ParsedProduct) Pieces() int {
	if p.IsBundle {
		return 2
	}
	return 1
}

// Letter returns the size letter for adult classes, the bare range for kid
// classes, and an empty string for Unknown.
func (c SizeClass) Letter() string {
	if l, ok := sizeLetters[c]; ok {
		return l
	}
	if c == SizeUnknown {
		return ""
	}
	return strings.TrimPrefix(string(c), "Kid-")
}

// LowerBound returns the lower height bound of the class ("100", "170"), or
// an empty string for Unknown. Used for the compact kid-size display on
// manifests.
func (c SizeClass) LowerBound() string {
	for r, cls := range sizeRanges {
		if cls == c {
			return r[:strings.Index(r, "-")]
		}
	}
	return ""
}

// ParseProduct extracts material, bundle flag, and size class from a
// line-item description.
//
// Material defaults to Cotton unless the premium fiber name appears. The
// first numeric range in the string wins; a range not present in the size
// table, or no range at all, yields SizeUnknown. Size mismatch is a
// reportable data-quality condition, never an error.
func ParseProduct(description string) ParsedProduct {
	upper := strings.ToUpper(description)

	p := ParsedProduct{Material: MaterialCotton, SizeClass: SizeUnknown}
	if strings.Contains(upper, "TENCEL") {
		p.Material = MaterialTencel
	}
	for _, marker := range bundleMarkers {
		if strings.Contains(upper, marker) {
			p.IsBundle = true
			break
		}
	}

	m := sizePattern.FindStringSubmatch(upper)
	if m == nil {
		return p
	}
	p.SizeToken = m[1]
	if cls, ok := sizeRanges[m[2]+"-"+m[3]]; ok {
		p.SizeClass = cls
	}
	if p.SizeToken != "" && p.SizeToken != sizeLetters[p.SizeClass] {
		p.TokenMismatch = true
	}
	return p
}
