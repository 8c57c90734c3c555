package discounts

import "github.com/shopspring/decimal"

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// ClampPercent bounds p to [0,100].
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(zero) {
		return zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// Matches reports whether rule applies to the customer and product. Unset
// scopes match everything.
func (r Rule) Matches(customerID, productID int64) bool {
	if !r.IsActive {
		return false
	}
	if r.CustomerID != nil && *r.CustomerID != customerID {
		return false
	}
	if r.ProductID != nil && *r.ProductID != productID {
		return false
	}
	return true
}

// Resolve sums the percents of every matching rule and clamps the total.
func Resolve(rules []Rule, customerID, productID int64) Resolution {
	res := Resolution{TotalPercent: zero, Rules: []Rule{}}
	sum := zero
	for _, rule := range rules {
		if !rule.Matches(customerID, productID) {
			continue
		}
		sum = sum.Add(rule.DiscountPercent)
		res.Rules = append(res.Rules, rule)
	}
	res.TotalPercent = ClampPercent(sum)
	return res
}

// ResolveAll resolves every product id against the same rule set.
func ResolveAll(rules []Rule, customerID int64, productIDs []int64) map[int64]Resolution {
	out := make(map[int64]Resolution, len(productIDs))
	for _, pid := range productIDs {
		if _, done := out[pid]; done {
			continue
		}
		out[pid] = Resolve(rules, customerID, pid)
	}
	return out
}

// PriceLine applies percent to base and returns the discounted unit price,
// rounded to cents, and the discount over qty units.
func PriceLine(base decimal.Decimal, qty int64, percent decimal.Decimal) (unitPrice, discountAmount decimal.Decimal) {
	pct := ClampPercent(percent)
	unitPrice = base.Mul(hundred.Sub(pct)).Div(hundred).Round(2)
	discountAmount = base.Sub(unitPrice).Mul(decimal.NewFromInt(qty))
	return unitPrice, discountAmount
}
