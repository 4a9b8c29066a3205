package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Amount is a configured decimal, written as a number or as a string such
// as "1,00,00,000" or "87.5".
type Amount struct {
	value decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount { return Amount{value: d} }

func (a Amount) Decimal() decimal.Decimal { return a.value }
func (a Amount) String() string           { return a.value.String() }

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a number or a string", node.Line)
	}
	d, err := parseAmount(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	a.value = d
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by TOML.
func (a *Amount) UnmarshalText(text []byte) error {
	d, err := parseAmount(string(text))
	if err != nil {
		return err
	}
	a.value = d
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.value.String()), nil
}
