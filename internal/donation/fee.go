package donation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type FeeKind int

const (
	FeeNone FeeKind = iota
	FeeFlat
	FeePercentage
)

var hundred = decimal.NewFromInt(100)

// FeeRule is either a flat amount or a percentage of the donation.
type FeeRule struct {
	Kind  FeeKind
	Value decimal.Decimal
}

func FlatFee(amount decimal.Decimal) FeeRule {
	return FeeRule{Kind: FeeFlat, Value: amount}
}

func PercentageFee(percent decimal.Decimal) FeeRule {
	return FeeRule{Kind: FeePercentage, Value: percent}
}

// ParseFeeRule reads a configured rule: "2.9%" is a percentage and "4000" is
// a flat amount. Anything else yields a rule that charges nothing.
func ParseFeeRule(raw string) FeeRule {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FeeRule{}
	}
	if strings.HasSuffix(raw, "%") {
		p, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(raw, "%")))
		if err != nil || p.IsNegative() {
			return FeeRule{}
		}
		return PercentageFee(p)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		return FeeRule{}
	}
	return FlatFee(v)
}

// ComputeFee never fails: flat rules ignore amount, percentage rules round
// up to the next whole unit, unknown rules cost zero.
func ComputeFee(amount decimal.Decimal, rule FeeRule) decimal.Decimal {
	switch rule.Kind {
	case FeeFlat:
		return rule.Value
	case FeePercentage:
		return amount.Mul(rule.Value).Div(hundred).Ceil()
	default:
		return decimal.Zero
	}
}

// FeeTable maps payment method keys to their fee rule.
type FeeTable map[string]FeeRule

func NewFeeTable(raw map[string]string) FeeTable {
	table := make(FeeTable, len(raw))
	for method, rule := range raw {
		table[strings.ToLower(strings.TrimSpace(method))] = ParseFeeRule(rule)
	}
	return table
}

func (t FeeTable) Has(method string) bool {
	_, ok := t[method]
	return ok
}

// Methods returns the configured payment methods in a stable order.
func (t FeeTable) Methods() []string {
	methods := make([]string, 0, len(t))
	for m := range t {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

func (t FeeTable) FeeFor(method string, amount decimal.Decimal) decimal.Decimal {
	return ComputeFee(amount, t[method])
}
