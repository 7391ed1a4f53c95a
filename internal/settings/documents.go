package settings

// Settings document kinds as stored per tenant.
const (
	KindAI            = "ai"
	KindPayout        = "payout"
	KindSiteConfig    = "site_config"
	KindCommunication = "communication"
)

// AISettings configures the tenant's AI-assisted tooling.
type AISettings struct {
	Enabled          bool    `json:"enabled"`
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	MaxSuggestions   int     `json:"maxSuggestions"`
	AutoReplyEnabled bool    `json:"autoReplyEnabled"`
}

// PayoutSettings configures contractor and creator payouts.
type PayoutSettings struct {
	Schedule           string `json:"schedule"` // "weekly", "biweekly", "monthly"
	MinimumPayoutCents int64  `json:"minimumPayoutCents"`
	Currency           string `json:"currency"`
	PaypalEnabled      bool   `json:"paypalEnabled"`
	StripeEnabled      bool   `json:"stripeEnabled"`
}

// SiteConfig is the storefront's per-tenant appearance and contact
// settings. Fixed shape, not an open dictionary, so the admin surface and
// storage agree on fields.
type SiteConfig struct {
	StoreName       string `json:"storeName"`
	SupportEmail    string `json:"supportEmail"`
	PrimaryColor    string `json:"primaryColor"`
	AccentColor     string `json:"accentColor"`
	LogoURL         string `json:"logoUrl"`
	MaintenanceMode bool   `json:"maintenanceMode"`
}

// CommunicationSettings configures outbound creator messaging.
type CommunicationSettings struct {
	FromName          string `json:"fromName"`
	FromEmail         string `json:"fromEmail"`
	ReplyTo           string `json:"replyTo"`
	BulkSendBatchSize int    `json:"bulkSendBatchSize"`
	UnsubscribeFooter bool   `json:"unsubscribeFooter"`
}

func DefaultAI() AISettings {
	return AISettings{
		Enabled:        true,
		Model:          "gpt-4o-mini",
		Temperature:    0.7,
		MaxSuggestions: 3,
	}
}

func DefaultPayout() PayoutSettings {
	return PayoutSettings{
		Schedule:           "monthly",
		MinimumPayoutCents: 5000,
		Currency:           "USD",
		StripeEnabled:      true,
	}
}

func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		StoreName:    "My Store",
		PrimaryColor: "#1a1a2e",
		AccentColor:  "#e94560",
	}
}

func DefaultCommunication() CommunicationSettings {
	return CommunicationSettings{
		FromName:          "The Team",
		BulkSendBatchSize: 50,
		UnsubscribeFooter: true,
	}
}
