package types

// TaxProvider selects who computes sales tax.
type TaxProvider string

// Tax providers offered by the tax wizard.
const (
	TaxNative  TaxProvider = "native"
	TaxAvalara TaxProvider = "avalara"
	TaxTaxJar  TaxProvider = "taxjar"
)

// StripeCurrencies is the set of currencies the payment wizard offers.
var StripeCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CNY", "HKD", "SGD", "NZD"}

// FraudRules are the Radar rules configured in step 4 of the payment wizard.
type FraudRules struct {
	BlockProxy    bool `json:"blockProxy"`
	BlockMismatch bool `json:"blockMismatch"`
	Require3DS    bool `json:"require3DS"`
}

// PaymentMethods are the wallet methods shown on checkout.
type PaymentMethods struct {
	ApplePay  bool `json:"applePay"`
	GooglePay bool `json:"googlePay"`
	ShopPay   bool `json:"shopPay"`
}

// TaxRate is a per-region nexus rate in percent.
type TaxRate struct {
	Region string  `json:"region"`
	Rate   float64 `json:"rate" validate:"gte=0"`
}

// PaymentConfig is the payments panel configuration.
type PaymentConfig struct {
	StripeActive        bool           `json:"stripeActive"`
	PaypalActive        bool           `json:"paypalActive"`
	TestMode            bool           `json:"testMode"`
	PublishableKey      string         `json:"publishableKey,omitempty"`
	SecretKey           string         `json:"secretKey,omitempty"`
	WebhookSecret       string         `json:"webhookSecret,omitempty"`
	TaxProvider         TaxProvider    `json:"taxProvider" validate:"omitempty,oneof=native avalara taxjar"`
	SupportedCurrencies []string       `json:"supportedCurrencies"`
	FraudProtection     bool           `json:"fraudProtection"`
	FraudRules          FraudRules     `json:"fraudRules"`
	PaymentMethods      PaymentMethods `json:"paymentMethods"`
	SubscriptionEnabled bool           `json:"subscriptionEnabled"`
	TaxRates            []TaxRate      `json:"taxRates" validate:"dive"`
}

// DefaultPaymentConfig is materialized the first time the payments panel opens.
func DefaultPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		TestMode:            true,
		TaxProvider:         TaxNative,
		SupportedCurrencies: []string{"USD"},
		FraudProtection:     true,
		FraudRules:          FraudRules{BlockProxy: true, Require3DS: true},
		PaymentMethods:      PaymentMethods{ApplePay: true, GooglePay: true, ShopPay: true},
		TaxRates:            []TaxRate{{Region: "Primary Warehouse", Rate: 0}},
	}
}

func (c *PaymentConfig) clone() *PaymentConfig {
	out := *c
	out.SupportedCurrencies = append([]string(nil), c.SupportedCurrencies...)
	out.TaxRates = append([]TaxRate(nil), c.TaxRates...)
	return &out
}

// AutomationFlows are the marketing lifecycle flows.
type AutomationFlows struct {
	AbandonedCart bool `json:"abandonedCart"`
	PostPurchase  bool `json:"postPurchase"`
	WinBack       bool `json:"winBack"`
}

// MarketingConfig is the marketing panel configuration.
type MarketingConfig struct {
	KlaviyoActive   bool            `json:"klaviyoActive"`
	MailchimpActive bool            `json:"mailchimpActive"`
	SMSMarketing    bool            `json:"smsMarketing"`
	AutomationFlows AutomationFlows `json:"automationFlows"`
	UGCEnabled      bool            `json:"ugcEnabled"`
}

// DefaultMarketingConfig has every channel off.
func DefaultMarketingConfig() *MarketingConfig {
	return &MarketingConfig{}
}

// RateType is the pricing basis of a shipping rate.
type RateType string

// Shipping rate types.
const (
	RateFlat   RateType = "flat"
	RateFree   RateType = "free"
	RateWeight RateType = "weight"
	RatePrice  RateType = "price"
)

// ShippingRate is one rate inside a zone.
type ShippingRate struct {
	ID    string   `json:"id" validate:"required"`
	Name  string   `json:"name"`
	Price float64  `json:"price" validate:"gte=0"`
	Type  RateType `json:"type"`
}

// ShippingZone groups destination countries under a set of rates.
type ShippingZone struct {
	ID        string         `json:"id" validate:"required"`
	Name      string         `json:"name"`
	Countries []string       `json:"countries"`
	Rates     []ShippingRate `json:"rates" validate:"dive"`
}

// IntegrationConfig is the connection state of one third-party service.
type IntegrationConfig struct {
	IsActive   bool   `json:"isActive"`
	APIKey     string `json:"apiKey,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
	DatabaseID string `json:"databaseId,omitempty"`
	LastSync   int64  `json:"lastSync,omitempty"`
}

// IntegrationSettings holds every supported integration.
type IntegrationSettings struct {
	Proton IntegrationConfig `json:"proton"`
	Zapier IntegrationConfig `json:"zapier"`
	Notion IntegrationConfig `json:"notion"`
}

// DefaultIntegrationSettings has every integration inactive.
func DefaultIntegrationSettings() *IntegrationSettings {
	return &IntegrationSettings{}
}

// WholesaleProvider is a sourcing marketplace.
type WholesaleProvider string

// Wholesale providers.
const (
	ProviderAlibaba  WholesaleProvider = "alibaba"
	ProviderFaire    WholesaleProvider = "faire"
	ProviderModalyst WholesaleProvider = "modalyst"
	ProviderPrintful WholesaleProvider = "printful"
	ProviderSpocket  WholesaleProvider = "spocket"
)

// WholesaleConfig is a connected sourcing provider.
type WholesaleConfig struct {
	Provider WholesaleProvider `json:"provider" validate:"required,oneof=alibaba faire modalyst printful spocket"`
	IsActive bool              `json:"isActive"`
	APIKey   string            `json:"apiKey,omitempty"`
	LastSync int64             `json:"lastSync,omitempty"`
}

// PricingConfig is the pricing panel configuration.
type PricingConfig struct {
	MarginGoal            float64 `json:"marginGoal"`
	DynamicPricingEnabled bool    `json:"dynamicPricingEnabled"`
	CompetitorTracking    bool    `json:"competitorTracking"`
}

// DefaultPricingConfig targets a 40% margin with tracking off.
func DefaultPricingConfig() *PricingConfig {
	return &PricingConfig{MarginGoal: 40}
}

// AutomationFlow is a trigger/action rule in the automation center.
type AutomationFlow struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	Trigger  string `json:"trigger"`
	Action   string `json:"action"`
	IsActive bool   `json:"isActive"`
}

// GamingMerchConfig configures merch drops for gaming ventures.
type GamingMerchConfig struct {
	TwitchSync      bool     `json:"twitchSync"`
	DiscordWebhooks []string `json:"discordWebhooks"`
	SteamWorkshopID string   `json:"steamWorkshopId,omitempty"`
	PreOrderMode    bool     `json:"preOrderMode"`
}

// GithubConfig links a workflow repository.
type GithubConfig struct {
	RepoURL           string `json:"repoUrl"`
	AutoIssueCreation bool   `json:"autoIssueCreation"`
	LastSync          int64  `json:"lastSync,omitempty"`
}

// PrivacySettings are the privacy-first analytics switches.
type PrivacySettings struct {
	EncryptedComms     bool `json:"encryptedComms"`
	PixelFreeAnalytics bool `json:"pixelFreeAnalytics"`
	GDPRStrict         bool `json:"gdprStrict"`
}
