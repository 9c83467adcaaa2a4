package extract

import "strings"

// DefaultCategory is the catch-all when no keyword matches.
const DefaultCategory = "Misc"

// DefaultIncomeSource is the catch-all income source.
const DefaultIncomeSource = "Other"

// categoryRules maps keyword groups to spending categories. Order matters:
// the first group with a match wins.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"Groceries", []string{"grocery", "supermarket"}},
	{"Rent", []string{"rent"}},
	{"Travel", []string{"travel", "uber", "ola"}},
	{"Food", []string{"food", "restaurant", "cafe", "zomato", "swiggy"}},
	{"Shopping", []string{"shopping", "store", "mall"}},
	{"Medical", []string{"medical", "pharma"}},
	{"Bills", []string{"bill", "electricity", "utility"}},
	{"Entertainment", []string{"movie", "netflix", "entertainment"}},
}

// incomeSourceRules maps keyword groups to income sources, first match wins.
var incomeSourceRules = []struct {
	source   string
	keywords []string
}{
	{"Salary", []string{"salary", "payslip", "ctc", "net pay"}},
	{"Freelancing", []string{"freelance", "contract", "gig"}},
	{"Investments Return", []string{"dividend", "interest", "roi", "return", "capital gain"}},
	{"Business", []string{"business", "invoice", "sales", "revenue"}},
	{"Gift", []string{"gift", "present", "donation"}},
}

// GuessCategory assigns a spending category to a free-text description by
// case-insensitive substring matching. Deterministic and total: unknown text
// maps to DefaultCategory.
func GuessCategory(description string) string {
	lower := strings.ToLower(description)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return DefaultCategory
}

// GuessIncomeSource assigns an income source label to extracted payslip or
// income-proof text.
func GuessIncomeSource(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range incomeSourceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.source
			}
		}
	}
	return DefaultIncomeSource
}
