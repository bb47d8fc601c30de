package validator

import (
	"net/url"
	"regexp"
	"time"
)

// ValidateURL reports whether s parses as an absolute URL.
func ValidateURL(s string) bool {
	if s == "" {
		return false
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}

var offsetRegex = regexp.MustCompile(`^[+-](0[0-9]|1[0-4]):([0-5][0-9])$`)

// ValidateTimezone reports whether s is a valid IANA timezone name (e.g.
// "America/New_York") or a "+HH:MM"/"-HH:MM" numeric offset.
func ValidateTimezone(s string) bool {
	if s == "" {
		return false
	}

	if offsetRegex.MatchString(s) {
		return true
	}

	_, err := time.LoadLocation(s)
	return err == nil
}

// BCP-47 is permissive here: language subtag, optional script/region/variant
// subtags separated by hyphens. A full BCP-47 grammar is out of scope for a
// provisioning core; this rejects obviously malformed tags.
var localeRegex = regexp.MustCompile(`^[a-zA-Z]{2,8}(-[a-zA-Z0-9]{1,8})*$`)

// ValidateLocale reports whether s looks like a BCP-47 language tag.
func ValidateLocale(s string) bool {
	if s == "" {
		return false
	}

	return localeRegex.MatchString(s)
}

var base64Regex = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// ValidateX509Certificate reports whether s looks like a base64-encoded DER
// certificate: base64 alphabet, at least 100 characters. This
// is a shape check, not a cryptographic validation of the certificate itself.
func ValidateX509Certificate(s string) bool {
	if len(s) < 100 {
		return false
	}

	return base64Regex.MatchString(s)
}
