package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AssetType classifies what kind of instrument an asset is.
type AssetType string

const (
	AssetTypeIndexETF   AssetType = "INDEX_ETF"
	AssetTypeStock      AssetType = "STOCK"
	AssetTypeBond       AssetType = "BOND"
	AssetTypeCommodity  AssetType = "COMMODITY"
	AssetTypeCrypto     AssetType = "CRYPTO"
	AssetTypeDerivative AssetType = "DERIVATIVE"
)

var validAssetTypes = map[AssetType]bool{
	AssetTypeIndexETF:   true,
	AssetTypeStock:      true,
	AssetTypeBond:       true,
	AssetTypeCommodity:  true,
	AssetTypeCrypto:     true,
	AssetTypeDerivative: true,
}

// ValidAssetType returns true if t is a known asset type.
func ValidAssetType(t AssetType) bool {
	return validAssetTypes[t]
}

// InvestmentStyle is the holder's intent for an asset.
type InvestmentStyle string

const (
	StyleGrowth      InvestmentStyle = "GROWTH"
	StyleValue       InvestmentStyle = "VALUE"
	StyleSpeculation InvestmentStyle = "SPECULATION"
	StyleFixedIncome InvestmentStyle = "FIXED_INCOME"
)

var validInvestmentStyles = map[InvestmentStyle]bool{
	StyleGrowth:      true,
	StyleValue:       true,
	StyleSpeculation: true,
	StyleFixedIncome: true,
}

// ValidInvestmentStyle returns true if s is a known investment style.
func ValidInvestmentStyle(s InvestmentStyle) bool {
	return validInvestmentStyles[s]
}

// Defaults applied to assets created implicitly by a transaction or an import.
const (
	DefaultAssetType       = AssetTypeStock
	DefaultInvestmentStyle = StyleGrowth
)

const maxISINLength = 12

// ErrInvalidAsset is returned when an asset is missing required identity fields.
var ErrInvalidAsset = errors.New("invalid asset")

// Asset is a tradable instrument identified by ISIN when known, otherwise by ticker.
type Asset struct {
	ID              string          `json:"id"`
	Ticker          string          `json:"ticker"`
	ISIN            string          `json:"isin,omitempty"`
	Name            string          `json:"name"`
	AssetType       AssetType       `json:"asset_type"`
	InvestmentStyle InvestmentStyle `json:"investment_style"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AssetRef carries the identity fields a transaction uses to locate its asset.
type AssetRef struct {
	Ticker string `json:"ticker"`
	ISIN   string `json:"isin,omitempty"`
	Name   string `json:"name"`
}

// Normalize trims whitespace and upper-cases the ISIN.
func (r AssetRef) Normalize() AssetRef {
	return AssetRef{
		Ticker: strings.TrimSpace(r.Ticker),
		ISIN:   strings.ToUpper(strings.TrimSpace(r.ISIN)),
		Name:   strings.TrimSpace(r.Name),
	}
}

// NewAsset builds an asset with the default type and style.
func NewAsset(ref AssetRef) (*Asset, error) {
	ref = ref.Normalize()
	if ref.Ticker == "" {
		return nil, fmt.Errorf("%w: ticker is required", ErrInvalidAsset)
	}
	if ref.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAsset)
	}
	if len(ref.ISIN) > maxISINLength {
		return nil, fmt.Errorf("%w: isin %q exceeds %d characters", ErrInvalidAsset, ref.ISIN, maxISINLength)
	}
	return &Asset{
		Ticker:          ref.Ticker,
		ISIN:            ref.ISIN,
		Name:            ref.Name,
		AssetType:       DefaultAssetType,
		InvestmentStyle: DefaultInvestmentStyle,
	}, nil
}

// Clone returns a copy of a that shares no mutable state.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
