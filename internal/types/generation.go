//nolint:revive // types is a standard Go package name pattern
package types

// PlanStep is one step as returned by plan generation, before ids are assigned.
type PlanStep struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`
	Category      string `json:"category"`
	DeepLink      string `json:"deepLink,omitempty"`
	ExternalLink  string `json:"externalLink,omitempty"`
}

// GeneratedPlan is the AI output that seeds a new Project.
type GeneratedPlan struct {
	ProjectName        string     `json:"projectName"`
	ProjectDescription string     `json:"projectDescription"`
	FeasibilityScore   *float64   `json:"feasibilityScore,omitempty"`
	Steps              []PlanStep `json:"steps"`
}

// ExternalTool is a third-party tool suggested alongside step advice.
type ExternalTool struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// StepAdvice is the detailed guidance for a single step.
type StepAdvice struct {
	DetailedInstructions  string        `json:"detailedInstructions"`
	WhyItMatters          string        `json:"whyItMatters"`
	CommonPitfalls        []string      `json:"commonPitfalls"`
	SuggestedAdminPath    string        `json:"suggestedAdminPath,omitempty"`
	SuggestedExternalTool *ExternalTool `json:"suggestedExternalTool,omitempty"`
}

// PriceTier is a quantity break in a tiered price list.
type PriceTier struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// PricingRecommendation is the AI suggested price for a product.
type PricingRecommendation struct {
	SuggestedPrice float64     `json:"suggestedPrice"`
	Margin         float64     `json:"margin"`
	Reasoning      string      `json:"reasoning"`
	CompetitorAvg  float64     `json:"competitorAvg"`
	TieredPricing  []PriceTier `json:"tieredPricing"`
}

// Carrier is a supported shipping carrier.
type Carrier string

// Carriers the logistics advisor may pick from.
const (
	CarrierUSPS  Carrier = "USPS"
	CarrierFedEx Carrier = "FedEx"
	CarrierUPS   Carrier = "UPS"
	CarrierDHL   Carrier = "DHL"
)

// LogisticsAdvice is the AI carrier recommendation for a shipment.
type LogisticsAdvice struct {
	OptimalCarrier      Carrier  `json:"optimalCarrier"`
	EstimatedCost       float64  `json:"estimatedCost"`
	EstimatedDays       string   `json:"estimatedDays"`
	CustomsRequirements string   `json:"customsRequirements,omitempty"`
	Pros                []string `json:"pros"`
	Cons                []string `json:"cons"`
}

// SourceKind distinguishes web citations from map references.
type SourceKind string

// Citation kinds.
const (
	SourceWeb  SourceKind = "web"
	SourceMaps SourceKind = "maps"
)

// GroundingSource selects which grounding tools a research call may use.
type GroundingSource string

// Grounding tool sets.
const (
	GroundWeb  GroundingSource = "web"
	GroundMaps GroundingSource = "maps"
)

// Citation is one source backing a grounded answer.
type Citation struct {
	Kind  SourceKind `json:"kind"`
	Title string     `json:"title"`
	URI   string     `json:"uri"`
}

// GroundedInfo is free text plus the sources it was grounded on.
type GroundedInfo struct {
	Text    string     `json:"text"`
	Sources []Citation `json:"sources"`
}

// BundleSuggestion is a co-purchase bundle proposed for a project.
type BundleSuggestion struct {
	Title           string   `json:"title"`
	Products        []string `json:"products"`
	DiscountPercent float64  `json:"discountPercent"`
	Rationale       string   `json:"rationale"`
}
