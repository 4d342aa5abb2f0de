package models

// AllocateRequest is the HTTP payload for a portfolio allocation run.
// Defaults and bounds follow the configuration contract: risk profile is an
// enum, max assets is bounded, sectors are matched case-insensitively.
type AllocateRequest struct {
	AssetIDs    []string `json:"asset_ids" validate:"omitempty,dive,required"`
	Currency    string   `json:"currency" default:"usd" validate:"required"`
	RiskProfile string   `json:"risk_profile" default:"medium" validate:"required,oneof=low medium high"`
	Sectors     []string `json:"sectors"`
	MaxAssets   int      `json:"max_assets" default:"10" validate:"gte=1,lte=15"`
}

// AnalyticsRequest asks for market analytics without an allocation. Bound
// from query parameters.
type AnalyticsRequest struct {
	AssetIDs []string `json:"asset_ids" query:"asset_ids" validate:"omitempty,dive,required"`
	Currency string   `json:"currency" query:"currency" default:"usd" validate:"required"`
}
