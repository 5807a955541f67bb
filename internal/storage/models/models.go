package models

import "time"

type BillingRecord struct {
	ID            int
	InvoiceMonth  string
	AccountID     string
	Subscription  string
	Service       string
	ResourceGroup string
	ResourceID    string
	Region        string
	UsageQty      float64
	UnitCost      float64
	Cost          float64
	CreatedAt     time.Time
}

type Resource struct {
	ID         int
	ResourceID string
	Owner      string
	Env        string
	TagsJSON   string
	CreatedAt  time.Time
}

// MonthlyTotal is one invoice month's aggregate spend.
type MonthlyTotal struct {
	Month         string
	TotalCost     float64
	ResourceCount int
}

// CategoryCost is a service or resource-group aggregate.
type CategoryCost struct {
	Name          string
	Cost          float64
	ResourceCount int
}

type TrendPoint struct {
	Month string  `json:"month"`
	Cost  float64 `json:"cost"`
}

type IdleResource struct {
	ResourceID       string  `json:"resource_id"`
	Service          string  `json:"service"`
	ResourceGroup    string  `json:"resource_group"`
	AvgUsage         float64 `json:"avg_usage"`
	Cost             float64 `json:"cost"`
	PotentialSavings float64 `json:"potential_savings"`
}

type UntaggedResource struct {
	ResourceID    string  `json:"resource_id"`
	Service       string  `json:"service"`
	ResourceGroup string  `json:"resource_group"`
	Cost          float64 `json:"cost"`
}

type QueryRecord struct {
	ID             string
	Question       string
	Classification string
	Confidence     float64
	DataAvailable  bool
	TotalTokens    int
	LatencyMS      int
	CreatedAt      time.Time
}
