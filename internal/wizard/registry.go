package wizard

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownWizard is returned by Lookup for an unregistered kind.
var ErrUnknownWizard = errors.New("unknown wizard")

// Kind names a wizard.
type Kind string

// Wizard kinds.
const (
	KindPayment Kind = "payment"
	KindTax     Kind = "tax"
)

// Definition describes the ordered steps of a wizard.
type Definition struct {
	Kind  Kind
	Title string
	Steps []string
}

// Registry holds every wizard definition.
var Registry = map[Kind]Definition{
	KindPayment: {
		Kind:  KindPayment,
		Title: "Payment setup",
		Steps: []string{"api_keys", "webhooks", "currencies", "fraud_rules", "confirmation"},
	},
	KindTax: {
		Kind:  KindTax,
		Title: "Tax setup",
		Steps: []string{"provider", "regional_rates", "confirmation"},
	},
}

// Lookup returns the definition for kind.
func Lookup(kind Kind) (Definition, error) {
	def, ok := Registry[kind]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownWizard, kind)
	}
	return def, nil
}

// Kinds lists registered wizard kinds, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(Registry))
	for k := range Registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
