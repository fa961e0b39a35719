package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidBudgetEntry is returned when an expense or income fails validation.
var ErrInvalidBudgetEntry = errors.New("invalid budget entry")

// ExpenseCategory buckets spending the 50/30/20 way.
type ExpenseCategory string

const (
	ExpenseFixed ExpenseCategory = "FIXED"
	ExpenseNeeds ExpenseCategory = "NEEDS"
	ExpenseWants ExpenseCategory = "WANTS"
)

// IncomeCategory classifies where money came from.
type IncomeCategory string

const (
	IncomeSalary             IncomeCategory = "SALARY"
	IncomeFreelance          IncomeCategory = "FREELANCE"
	IncomeInvestments        IncomeCategory = "INVESTMENTS"
	IncomeBusiness           IncomeCategory = "BUSINESS"
	IncomeGiftsAndBonuses    IncomeCategory = "GIFTS_AND_BONUSES"
	IncomeRental             IncomeCategory = "RENTAL"
	IncomeGovernmentBenefits IncomeCategory = "GOVERNMENT_BENEFITS"
	IncomeOther              IncomeCategory = "OTHER_INCOME"
)

var validExpenseCategories = map[ExpenseCategory]bool{
	ExpenseFixed: true,
	ExpenseNeeds: true,
	ExpenseWants: true,
}

var validIncomeCategories = map[IncomeCategory]bool{
	IncomeSalary:             true,
	IncomeFreelance:          true,
	IncomeInvestments:        true,
	IncomeBusiness:           true,
	IncomeGiftsAndBonuses:    true,
	IncomeRental:             true,
	IncomeGovernmentBenefits: true,
	IncomeOther:              true,
}

// Tag is a free label from a fixed vocabulary attached to budget entries.
type Tag string

const (
	TagFood               Tag = "FOOD"
	TagBarsAndRestaurants Tag = "BARS_AND_RESTAURANTS"
	TagTransport          Tag = "TRANSPORT"
	TagEntertainment      Tag = "ENTERTAINMENT"
	TagShopping           Tag = "SHOPPING"
	TagHealth             Tag = "HEALTH"
	TagEducation          Tag = "EDUCATION"
	TagHousing            Tag = "HOUSING"
	TagClothing           Tag = "CLOTHING"
	TagUtilities          Tag = "UTILITIES"
	TagInsurance          Tag = "INSURANCE"
	TagPets               Tag = "PETS"
	TagSubscriptions      Tag = "SUBSCRIPTIONS"
	TagSportsAndHobbies   Tag = "SPORTS_AND_HOBBIES"
	TagPersonalCare       Tag = "PERSONAL_CARE"
	TagGifts              Tag = "GIFTS"
	TagDonations          Tag = "DONATIONS"
	TagBankingAndTaxes    Tag = "BANKING_AND_TAXES"
	TagTravel             Tag = "TRAVEL"
	TagVices              Tag = "VICES"
	TagOther              Tag = "OTHER"
)

var validTags = map[Tag]bool{
	TagFood:               true,
	TagBarsAndRestaurants: true,
	TagTransport:          true,
	TagEntertainment:      true,
	TagShopping:           true,
	TagHealth:             true,
	TagEducation:          true,
	TagHousing:            true,
	TagClothing:           true,
	TagUtilities:          true,
	TagInsurance:          true,
	TagPets:               true,
	TagSubscriptions:      true,
	TagSportsAndHobbies:   true,
	TagPersonalCare:       true,
	TagGifts:              true,
	TagDonations:          true,
	TagBankingAndTaxes:    true,
	TagTravel:             true,
	TagVices:              true,
	TagOther:              true,
}

// Expense is money spent.
type Expense struct {
	TransactionBase
	Category ExpenseCategory `json:"category"`
	Tags     []Tag           `json:"tags"`
}

// Income is money received.
type Income struct {
	TransactionBase
	Category IncomeCategory `json:"category"`
	Tags     []Tag          `json:"tags"`
}

// BudgetEntryRequest is the client payload for creating or updating an expense or income.
type BudgetEntryRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags,omitempty"`
}

func (r BudgetEntryRequest) validateCommon() ([]Tag, error) {
	if !r.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidBudgetEntry)
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidBudgetEntry)
	}
	tags := make([]Tag, 0, len(r.Tags))
	for _, raw := range r.Tags {
		t := Tag(strings.ToUpper(strings.TrimSpace(raw)))
		if !validTags[t] {
			return nil, fmt.Errorf("%w: unknown tag %q", ErrInvalidBudgetEntry, raw)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// ToExpense validates r and returns the expense it describes.
func (r BudgetEntryRequest) ToExpense() (*Expense, error) {
	tags, err := r.validateCommon()
	if err != nil {
		return nil, err
	}
	cat := ExpenseCategory(strings.ToUpper(strings.TrimSpace(r.Category)))
	if !validExpenseCategories[cat] {
		return nil, fmt.Errorf("%w: unknown expense category %q", ErrInvalidBudgetEntry, r.Category)
	}
	return &Expense{
		TransactionBase: TransactionBase{Amount: r.Amount, Name: strings.TrimSpace(r.Name), Description: r.Description},
		Category:        cat,
		Tags:            tags,
	}, nil
}

// ToIncome validates r and returns the income it describes.
func (r BudgetEntryRequest) ToIncome() (*Income, error) {
	tags, err := r.validateCommon()
	if err != nil {
		return nil, err
	}
	cat := IncomeCategory(strings.ToUpper(strings.TrimSpace(r.Category)))
	if !validIncomeCategories[cat] {
		return nil, fmt.Errorf("%w: unknown income category %q", ErrInvalidBudgetEntry, r.Category)
	}
	return &Income{
		TransactionBase: TransactionBase{Amount: r.Amount, Name: strings.TrimSpace(r.Name), Description: r.Description},
		Category:        cat,
		Tags:            tags,
	}, nil
}
