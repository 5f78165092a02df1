package fare

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/inconshreveable/log15"
)

// Warning type constants
const (
	WarningNoFareRule      = "no_fare_rule"
	WarningNoPriceForType  = "no_price_for_type"
	WarningUnknownCurrency = "unknown_currency"
	WarningRuleWithoutFare = "rule_without_fare"
	WarningMixedCurrencies = "mixed_currencies"
)

// warningInfo holds aggregated information about a specific warning type
type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects fare warnings and outputs consolidated summaries.
// It is safe for concurrent use.
type WarningAggregator struct {
	mu       sync.Mutex
	warnings map[string]*warningInfo
}

// NewWarningAggregator creates a new warning aggregator
func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{
		warnings: make(map[string]*warningInfo),
	}
}

// Add records a warning occurrence with an example ID
func (w *WarningAggregator) Add(warningType, exampleID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.warnings[warningType] == nil {
		w.warnings[warningType] = &warningInfo{
			examples: make([]string, 0, 3),
		}
	}

	info := w.warnings[warningType]
	info.count++

	// Store up to 3 examples
	if len(info.examples) < 3 {
		info.examples = append(info.examples, exampleID)
	}
}

// Count returns how often a warning type was recorded
func (w *WarningAggregator) Count(warningType string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if info := w.warnings[warningType]; info != nil {
		return info.count
	}
	return 0
}

// Counts returns the number of occurrences per warning type
func (w *WarningAggregator) Counts() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.warnings))
	for t, info := range w.warnings {
		out[t] = info.count
	}
	return out
}

// LogAll outputs all collected warnings in consolidated format
func (w *WarningAggregator) LogAll(logger log15.Logger, agencyID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	types := make([]string, 0, len(w.warnings))
	for t := range w.warnings {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		info := w.warnings[t]
		logger.Warn(formatWarningMessage(t, agencyID, info), "type", t, "count", info.count)
	}
}

// formatWarningMessage creates a human-readable warning message
func formatWarningMessage(warningType, agencyID string, info *warningInfo) string {
	var description, action string

	switch warningType {
	case WarningNoFareRule:
		description = "rides not matched by any fare rule"
		action = "Pricing them at zero"
	case WarningNoPriceForType:
		description = "fares without a price for the requested rider type"
		action = "Skipping the fare for that type"
	case WarningUnknownCurrency:
		description = "fare attributes with an unknown currency"
		action = "Dropping the fare attribute"
	case WarningRuleWithoutFare:
		description = "fare rules naming an undefined fare_id"
		action = "Ignoring the rule"
	case WarningMixedCurrencies:
		description = "rides priced in different currencies"
		action = "Keeping the currency of the first fare"
	default:
		description = "unknown issue"
		action = "Continuing"
	}

	return fmt.Sprintf("Fares for agency %s have %s (%d occurrences). %s. Examples: %s",
		agencyID, description, info.count, action, strings.Join(info.examples, ", "))
}
