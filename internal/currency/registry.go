package currency

import (
	"fmt"
	"strings"
	"sync"
)

var defaultCurrencies = []Currency{
	{ISOCode: "USD", Symbol: "$", Name: "United States Dollar", SubunitToUnit: 100},
	{ISOCode: "EUR", Symbol: "€", Name: "Euro", SubunitToUnit: 100},
	{ISOCode: "GBP", Symbol: "£", Name: "British Pound", SubunitToUnit: 100},
	{ISOCode: "JPY", Symbol: "¥", Name: "Japanese Yen", SubunitToUnit: 1},
	{ISOCode: "CHF", Symbol: "CHF", Name: "Swiss Franc", SubunitToUnit: 100},
	{ISOCode: "CAD", Symbol: "C$", Name: "Canadian Dollar", SubunitToUnit: 100},
	{ISOCode: "AUD", Symbol: "A$", Name: "Australian Dollar", SubunitToUnit: 100},
	{ISOCode: "NZD", Symbol: "NZ$", Name: "New Zealand Dollar", SubunitToUnit: 100},
	{ISOCode: "CNY", Symbol: "元", Name: "Chinese Renminbi Yuan", SubunitToUnit: 100},
	{ISOCode: "HKD", Symbol: "HK$", Name: "Hong Kong Dollar", SubunitToUnit: 100},
	{ISOCode: "SGD", Symbol: "S$", Name: "Singapore Dollar", SubunitToUnit: 100},
	{ISOCode: "SEK", Symbol: "kr", Name: "Swedish Krona", SubunitToUnit: 100},
	{ISOCode: "NOK", Symbol: "NOK", Name: "Norwegian Krone", SubunitToUnit: 100},
	{ISOCode: "INR", Symbol: "₹", Name: "Indian Rupee", SubunitToUnit: 100},
	{ISOCode: "MXN", Symbol: "MX$", Name: "Mexican Peso", SubunitToUnit: 100},
	{ISOCode: "KRW", Symbol: "₩", Name: "South Korean Won", SubunitToUnit: 1},
	{ISOCode: "KWD", Symbol: "KD", Name: "Kuwaiti Dinar", SubunitToUnit: 1000},
	{ISOCode: "BHD", Symbol: "BD", Name: "Bahraini Dinar", SubunitToUnit: 1000},
	{ISOCode: "TND", Symbol: "DT", Name: "Tunisian Dinar", SubunitToUnit: 1000},
	{ISOCode: "MGA", Symbol: "Ar", Name: "Malagasy Ariary", SubunitToUnit: 5},
	{ISOCode: "MRU", Symbol: "UM", Name: "Mauritanian Ouguiya", SubunitToUnit: 5},
}

// Registry resolves currency identifiers (ISO codes, symbols or Currency values) to canonical descriptors.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byCode   map[string]Currency
	bySymbol map[string]Currency
}

// NewRegistry creates a registry pre-populated with the built-in currency table.
func NewRegistry() *Registry {
	r := &Registry{
		byCode:   make(map[string]Currency, len(defaultCurrencies)),
		bySymbol: make(map[string]Currency, len(defaultCurrencies)),
	}
	for _, c := range defaultCurrencies {
		_ = r.Register(c)
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces a currency. The first currency registered for a symbol keeps it.
func (r *Registry) Register(c Currency) error {
	if !IsValidCode(c.ISOCode) {
		return &InvalidCurrencyError{Identifier: c.ISOCode}
	}
	if c.SubunitToUnit <= 0 {
		return fmt.Errorf("currency %s: subunit_to_unit must be positive, got %d", c.ISOCode, c.SubunitToUnit)
	}
	c.ISOCode = strings.ToUpper(c.ISOCode)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode[c.ISOCode] = c
	if c.Symbol != "" {
		if _, taken := r.bySymbol[c.Symbol]; !taken {
			r.bySymbol[c.Symbol] = c
		}
	}
	return nil
}

// Wrap resolves an identifier to a Currency. Accepted identifiers are a Currency, a *Currency,
// an ISO code (case-insensitive) or a registered symbol.
func (r *Registry) Wrap(identifier any) (Currency, error) {
	switch id := identifier.(type) {
	case Currency:
		return r.lookup(id.ISOCode, identifier)
	case *Currency:
		if id == nil {
			return Currency{}, &InvalidCurrencyError{Identifier: identifier}
		}
		return r.lookup(id.ISOCode, identifier)
	case string:
		return r.lookup(strings.TrimSpace(id), identifier)
	case fmt.Stringer:
		return r.lookup(id.String(), identifier)
	default:
		return Currency{}, &InvalidCurrencyError{Identifier: identifier}
	}
}

// MustWrap is like Wrap but panics on unknown identifiers. Intended for tests and static tables.
func (r *Registry) MustWrap(identifier any) Currency {
	c, err := r.Wrap(identifier)
	if err != nil {
		panic(err)
	}
	return c
}

// ISOCode resolves identifier and returns only its ISO code.
func (r *Registry) ISOCode(identifier any) (string, error) {
	c, err := r.Wrap(identifier)
	if err != nil {
		return "", err
	}
	return c.ISOCode, nil
}

// IsSupported returns true if the code resolves to a registered currency.
func (r *Registry) IsSupported(code string) bool {
	_, err := r.Wrap(code)
	return err == nil
}

func (r *Registry) lookup(key string, identifier any) (Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byCode[strings.ToUpper(key)]; ok {
		return c, nil
	}
	if c, ok := r.bySymbol[key]; ok {
		return c, nil
	}
	return Currency{}, &InvalidCurrencyError{Identifier: identifier}
}
