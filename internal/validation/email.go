// Package validation holds custom request-validation rules registered
// on gin's binding validator.
package validation

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Domains of throwaway-inbox providers. Registrations from these are
// rejected before they reach the auth service.
var disposableDomains = map[string]struct{}{
	"10minutemail.com":  {},
	"10minutemail.net":  {},
	"10minutemail.org":  {},
	"20minutemail.com":  {},
	"33mail.com":        {},
	"airmail.cc":        {},
	"anonbox.net":       {},
	"guerrillamail.com": {},
	"guerrillamail.net": {},
	"guerrillamail.org": {},
	"mailinator.com":    {},
	"mailinator.net":    {},
	"mailinator.org":    {},
	"maildrop.cc":       {},
	"maildrop.xyz":      {},
	"mailnesia.com":     {},
	"mintemail.com":     {},
	"moakt.com":         {},
	"mytemp.email":      {},
	"noclickemail.com":  {},
	"noref.in":          {},
	"nospam.today":      {},
	"nada.email":        {},
	"getnada.com":       {},
	"spambog.com":       {},
	"spam4.me":          {},
	"spamgourmet.com":   {},
	"temp-mail.org":     {},
	"temp-mail.com":     {},
	"tempmail.dev":      {},
	"tempmail.io":       {},
	"tempmail.net":      {},
	"tempinbox.com":     {},
	"temp-mail.io":      {},
	"throwawaymail.com": {},
	"trashmail.com":     {},
	"trashmail.net":     {},
	"yopmail.com":       {},
	"yopmail.net":       {},
	"yopmail.fr":        {},
	"fakeinbox.com":     {},
	"fakemail.net":      {},
	"instant-mail.de":   {},
	"sharklasers.com":   {},
}

// NotDisposable is the "not_disposable" rule: the email's domain must
// not belong to a known disposable-inbox provider.
func NotDisposable(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	at := strings.LastIndex(value, "@")
	if at < 0 || at == len(value)-1 {
		// Not an address at all; leave that to the email rule.
		return true
	}
	_, blocked := disposableDomains[strings.ToLower(value[at+1:])]
	return !blocked
}

// Register wires custom rules and json-tag field names into gin's
// binding validator. Call once at startup.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	// Validation errors report json field names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v.RegisterValidation("not_disposable", NotDisposable)
}
