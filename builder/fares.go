package builder

import (
	"sort"

	"golang.org/x/text/currency"

	"github.com/theoremus-urban-solutions/transit-router/fare"
)

// fareService builds the fare engine from fare_attributes.txt and
// fare_rules.txt. Rows of one fare id are gathered into a single rule set.
// A feed without rules gets one unconditional rule set per fare.
func (f *PatternHopFactory) fareService() *fare.Service {
	if len(f.feed.FareAttributes) == 0 {
		return nil
	}
	warnings := fare.NewWarningAggregator()

	ids := make([]string, 0, len(f.feed.FareAttributes))
	for id := range f.feed.FareAttributes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	attrs := make([]*fare.Attribute, 0, len(ids))
	for _, id := range ids {
		fa := f.feed.FareAttributes[id]
		cur, err := currency.ParseISO(fa.CurrencyType)
		if err != nil {
			warnings.Add(fare.WarningUnknownCurrency, fa.ID)
			continue
		}
		agency := fa.AgencyID
		if agency == "" {
			agency = f.feed.DefaultAgencyID()
		}
		attrs = append(attrs, &fare.Attribute{
			ID:               fa.ID,
			AgencyID:         agency,
			Prices:           map[fare.Type]fare.Money{fare.Regular: fare.MoneyFromDecimal(cur, fa.Price)},
			Transfers:        fa.Transfers,
			TransferDuration: fa.TransferDuration,
		})
	}

	byFare := make(map[string]*fare.RuleSet)
	var rules []*fare.RuleSet
	for _, r := range f.feed.FareRules {
		rs := byFare[r.FareID]
		if rs == nil {
			rs = fare.NewRuleSet(r.FareID)
			byFare[r.FareID] = rs
			rules = append(rules, rs)
		}
		if r.OriginID != "" || r.DestinationID != "" {
			rs.AddOriginDestination(r.OriginID, r.DestinationID)
		}
		if r.ContainsID != "" {
			rs.AddContains(r.ContainsID)
		}
		if r.RouteID != "" {
			rs.AddRoute(r.RouteID)
		}
	}
	if len(f.feed.FareRules) == 0 {
		for _, a := range attrs {
			rules = append(rules, fare.NewRuleSet(a.ID))
		}
	}

	svc := fare.NewService(attrs, rules,
		fare.WithLogger(f.log.New("component", "fare")),
		fare.WithWarnings(warnings))
	warnings.LogAll(f.log, f.agencyID)
	return svc
}
