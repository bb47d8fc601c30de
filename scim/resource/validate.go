package resource

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/internal/validator"
)

// Validate enforces the core's structural requirements plus a few
// supplemental guards (array-length cap, formatted name length,
// whitespace-free employeeNumber).
func Validate(d Descriptor, doc map[string]any) error {
	unique, _ := doc[d.UniqueAttr].(string)
	if strings.TrimSpace(unique) == "" {
		return errs.InvalidValue(d.UniqueAttr + " is required and must not be empty")
	}

	if d.ResourceType == "User" {
		if err := validateUser(doc); err != nil {
			return err
		}
	} else {
		if err := validateGroup(doc); err != nil {
			return err
		}
	}

	return validateArrayLengths(doc)
}

func validateUser(doc map[string]any) error {
	if name, ok := doc["name"].(map[string]any); ok {
		if formatted, ok := name["formatted"].(string); ok && utf8.RuneCountInString(formatted) > MaxFormattedNameRunes {
			return errs.InvalidValue("name.formatted exceeds 256 characters")
		}
	}

	if err := validateEmails(doc); err != nil {
		return err
	}
	if u, ok := doc["profileUrl"].(string); ok && u != "" && !validator.ValidateURL(u) {
		return errs.InvalidValue("profileUrl is not a valid URL")
	}
	if tz, ok := doc["timezone"].(string); ok && tz != "" && !validator.ValidateTimezone(tz) {
		return errs.InvalidValue("timezone is not a valid IANA name or offset")
	}
	if loc, ok := doc["locale"].(string); ok && loc != "" && !validator.ValidateLocale(loc) {
		return errs.InvalidValue("locale is not a valid BCP-47 tag")
	}
	if err := validateX509Certs(doc); err != nil {
		return err
	}

	ext, _ := doc["urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"].(map[string]any)
	if ext != nil {
		if mgr, ok := ext["manager"].(map[string]any); ok {
			if v, ok := mgr["value"].(string); ok && strings.TrimSpace(v) == "" {
				return errs.InvalidValue("manager.value must not be empty when present")
			}
		}
		if num, ok := ext["employeeNumber"].(string); ok && strings.ContainsAny(num, " \t\n\r") {
			return errs.InvalidValue("employeeNumber must not contain whitespace")
		}
	}

	return nil
}

func validateEmails(doc map[string]any) error {
	emails, _ := doc["emails"].([]any)
	for _, e := range emails {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		v, _ := m["value"].(string)
		if v == "" {
			continue
		}
		if !validator.ValidateEmail(v) {
			return errs.InvalidValue("email value is not a valid address: " + v)
		}
	}
	return nil
}

func validateX509Certs(doc map[string]any) error {
	certs, _ := doc["x509Certificates"].([]any)
	for _, c := range certs {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		v, _ := m["value"].(string)
		if v != "" && !validator.ValidateX509Certificate(v) {
			return errs.InvalidValue("x509Certificates value does not look like a base64 DER certificate")
		}
	}
	return nil
}

func validateGroup(doc map[string]any) error {
	return nil
}

// validateArrayLengths caps every multi-valued attribute array at
// MaxMultiValuedElements, a DoS-shaped guard a naive implementation misses.
func validateArrayLengths(doc map[string]any) error {
	for k, v := range doc {
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		if len(arr) > MaxMultiValuedElements {
			return errs.InvalidValue(k + " exceeds the maximum of " + strconv.Itoa(MaxMultiValuedElements) + " elements")
		}
	}
	return nil
}
