package model

// Region is a storefront partition. Every API request derives its base URL
// and X-Branch header from the active region, and phone validation follows
// the region's national numbering rules.
type Region struct {
	// Code is the X-Branch header value and the persisted region preference.
	Code string
	// Name is the human-readable storefront name.
	Name string
	// BaseURL is the backend origin for this region.
	BaseURL string
	// PhoneDigits is the exact national number length.
	PhoneDigits int
	// PhoneLead is the required leading digit, empty when unrestricted.
	PhoneLead string
}

var (
	// RegionOman is the Omani storefront.
	RegionOman = Region{
		Code:        "om",
		Name:        "Oman",
		BaseURL:     "https://api.om.bunhouse.coffee",
		PhoneDigits: 8,
		PhoneLead:   "9",
	}

	// RegionKSA is the Saudi storefront.
	RegionKSA = Region{
		Code:        "sa",
		Name:        "Saudi Arabia",
		BaseURL:     "https://api.sa.bunhouse.coffee",
		PhoneDigits: 9,
		PhoneLead:   "5",
	}
)

// Regions returns the storefronts in display order.
func Regions() []Region {
	return []Region{RegionOman, RegionKSA}
}

// RegionByCode resolves a persisted region code.
func RegionByCode(code string) (Region, bool) {
	for _, r := range Regions() {
		if r.Code == code {
			return r, true
		}
	}
	return Region{}, false
}

// ValidPhone reports whether phone satisfies the region's numbering rules:
// exact digit count, digits only, and the required leading digit when set.
func (r Region) ValidPhone(phone string) bool {
	if len(phone) != r.PhoneDigits {
		return false
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return false
		}
	}
	if r.PhoneLead != "" && phone[:1] != r.PhoneLead {
		return false
	}
	return true
}
