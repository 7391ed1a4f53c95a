package store

import "time"

type TestState string

const (
	StateDraft     TestState = "draft"
	StateRunning   TestState = "running"
	StatePaused    TestState = "paused"
	StateCompleted TestState = "completed"
)

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// Variant is one arm of an A/B test. TrafficAllocation is an integer
// percentage; allocations across a test's variants sum to 100.
type Variant struct {
	Name              string `json:"name"`
	URL               string `json:"url"`
	TrafficAllocation int    `json:"trafficAllocation"`
	IsControl         bool   `json:"isControl"`
}

// TargetingRule narrows which visitors enter a test. Targeting is optional.
type TargetingRule struct {
	Attribute string `json:"attribute"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
}

type Test struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	Name          string          `json:"name"`
	TestType      string          `json:"testType"`
	GoalEvent     string          `json:"goalEvent"`
	BaseURL       string          `json:"baseUrl"`
	Variants      []Variant       `json:"variants"`
	Targeting     []TargetingRule `json:"targeting,omitempty"`
	StartOption   string          `json:"startOption"` // "immediately" or "scheduled"
	StartAt       *time.Time      `json:"startAt,omitempty"`
	EndAt         *time.Time      `json:"endAt,omitempty"`
	Timezone      string          `json:"timezone"`
	State         TestState       `json:"state"`
	WinnerVariant *int            `json:"winnerVariant,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type Event struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenantId"`
	TestID    string    `json:"testId"`
	Variant   int       `json:"variant"`
	EventType string    `json:"eventType"` // "view" or "convert"
	VisitorID string    `json:"visitorId"`
	CreatedAt time.Time `json:"createdAt"`
}

type VariantStats struct {
	Variant     int `json:"variant"`
	Views       int `json:"views"`
	Conversions int `json:"conversions"`
}

type ContractorStatus string

const (
	ContractorActive   ContractorStatus = "active"
	ContractorPaused   ContractorStatus = "paused"
	ContractorArchived ContractorStatus = "archived"
)

type Contractor struct {
	ID         string           `json:"id"`
	TenantID   string           `json:"tenantId"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Role       string           `json:"role"`
	HourlyRate float64          `json:"hourlyRate"`
	Status     ContractorStatus `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

type Creator struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Platform  string    `json:"platform"` // "youtube", "tiktok", "instagram"
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"createdAt"`
}

type MessageStatus string

const (
	MessageQueued  MessageStatus = "queued"
	MessageSending MessageStatus = "sending"
	MessageSent    MessageStatus = "sent"
	MessageFailed  MessageStatus = "failed"
)

type Message struct {
	ID        string        `json:"id"`
	TenantID  string        `json:"tenantId"`
	CreatorID string        `json:"creatorId"`
	Subject   string        `json:"subject"`
	Body      string        `json:"body"`
	Status    MessageStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	SentAt    *time.Time    `json:"sentAt,omitempty"`
}

type Product struct {
	ID          string           `json:"id"`
	TenantID    string           `json:"tenantId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	PriceCents  int64            `json:"priceCents"`
	Variants    []ProductVariant `json:"variants,omitempty"` // Decoded from JSON
	CreatedAt   time.Time        `json:"createdAt"`
}

type ProductVariant struct {
	SKU        string `json:"sku"`
	Option     string `json:"option"`
	PriceCents int64  `json:"priceCents"`
	InStock    bool   `json:"inStock"`
}

type Review struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	ProductID string    `json:"productId"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"` // 1-5
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type Order struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	TotalCents int64     `json:"totalCents"`
	CostCents  int64     `json:"costCents"`
	Country    string    `json:"country"`
	Channel    string    `json:"channel"` // "organic", "paid", "email", "referral"
	CreatedAt  time.Time `json:"createdAt"`
}

type Expense struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Category  string    `json:"category"` // "ad_spend", "payroll", "tooling", ...
	Channel   string    `json:"channel"`  // set for ad_spend rows, empty otherwise
	Cents     int64     `json:"cents"`
	CreatedAt time.Time `json:"createdAt"`
}

type FunnelEvent struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenantId"`
	Stage     string    `json:"stage"`
	VisitorID string    `json:"visitorId"`
	CreatedAt time.Time `json:"createdAt"`
}

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobComplete   JobStatus = "complete"
	JobError      JobStatus = "error"
	JobTimeout    JobStatus = "timeout"
)

// Terminal reports whether a job in this status will never change again.
func (s JobStatus) Terminal() bool {
	return s == JobComplete || s == JobError || s == JobTimeout
}

type VideoJob struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Title     string    `json:"title"`
	SourceURL string    `json:"sourceUrl"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"` // 0-100
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
