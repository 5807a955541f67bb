package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/storage/models"
	"github.com/cost-copilot/backend/pkg/logger"
)

// Client wraps the billing ledger and resource metadata store.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err = db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS billing (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_month TEXT NOT NULL,
		account_id TEXT NOT NULL,
		subscription TEXT NOT NULL,
		service TEXT NOT NULL,
		resource_group TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		region TEXT NOT NULL,
		usage_qty REAL NOT NULL,
		unit_cost REAL NOT NULL,
		cost REAL NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_billing_month ON billing(invoice_month);
	CREATE INDEX IF NOT EXISTS idx_billing_service ON billing(service);
	CREATE INDEX IF NOT EXISTS idx_billing_resource ON billing(resource_id);

	CREATE TABLE IF NOT EXISTS resources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		resource_id TEXT UNIQUE NOT NULL,
		owner TEXT,
		env TEXT,
		tags_json TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_resources_owner ON resources(owner);

	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		classification TEXT,
		confidence REAL,
		data_available INTEGER DEFAULT 0,
		total_tokens INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// MonthTotal aggregates spend for a single invoice month. The aggregate
// always yields one row; an empty ledger scans as NULL and reports zero.
func (c *Client) MonthTotal(month string) (*models.MonthlyTotal, error) {
	query := `
		SELECT SUM(cost), COUNT(DISTINCT resource_id)
		FROM billing WHERE invoice_month = ?
	`

	var cost sql.NullFloat64
	var resources sql.NullInt64

	err := c.db.QueryRow(query, month).Scan(&cost, &resources)
	if err != nil {
		return nil, fmt.Errorf("failed to query month total: %w", err)
	}

	return &models.MonthlyTotal{
		Month:         month,
		TotalCost:     cost.Float64,
		ResourceCount: int(resources.Int64),
	}, nil
}

// MonthlyTotals returns per-month aggregates for the most recent months.
func (c *Client) MonthlyTotals(limit int) ([]models.MonthlyTotal, error) {
	query := `
		SELECT invoice_month, SUM(cost), COUNT(DISTINCT resource_id)
		FROM billing GROUP BY invoice_month
		ORDER BY invoice_month DESC LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []models.MonthlyTotal
	for rows.Next() {
		var t models.MonthlyTotal
		if err := rows.Scan(&t.Month, &t.TotalCost, &t.ResourceCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

// ServiceBreakdown aggregates spend per service, optionally filtered to a month.
func (c *Client) ServiceBreakdown(month string) ([]models.CategoryCost, error) {
	return c.breakdown("service", month, 0)
}

// ResourceGroupBreakdown aggregates spend per resource group, optionally
// filtered to a month, capped to the top groups by cost.
func (c *Client) ResourceGroupBreakdown(month string, limit int) ([]models.CategoryCost, error) {
	return c.breakdown("resource_group", month, limit)
}

func (c *Client) breakdown(column, month string, limit int) ([]models.CategoryCost, error) {
	query := fmt.Sprintf(`
		SELECT %s, SUM(cost), COUNT(DISTINCT resource_id)
		FROM billing
	`, column)

	args := []interface{}{}
	if month != "" {
		query += " WHERE invoice_month = ?"
		args = append(args, month)
	}
	query += fmt.Sprintf(" GROUP BY %s ORDER BY SUM(cost) DESC", column)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s breakdown: %w", column, err)
	}
	defer rows.Close()

	var result []models.CategoryCost
	for rows.Next() {
		var cc models.CategoryCost
		if err := rows.Scan(&cc.Name, &cc.Cost, &cc.ResourceCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, cc)
	}

	return result, rows.Err()
}

// MonthlyTrend returns total spend per month, most recent first.
func (c *Client) MonthlyTrend(limit int) ([]models.TrendPoint, error) {
	query := `
		SELECT invoice_month, SUM(cost)
		FROM billing
		GROUP BY invoice_month
		ORDER BY invoice_month DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend: %w", err)
	}
	defer rows.Close()

	var trend []models.TrendPoint
	for rows.Next() {
		var p models.TrendPoint
		if err := rows.Scan(&p.Month, &p.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		trend = append(trend, p)
	}

	return trend, rows.Err()
}

// IdleResources finds resources whose average usage is below usageBelow
// while total cost exceeds costAbove, ordered by cost descending.
func (c *Client) IdleResources(usageBelow, costAbove float64, limit int) ([]models.IdleResource, error) {
	query := `
		SELECT resource_id, service, resource_group, AVG(usage_qty), SUM(cost)
		FROM billing
		WHERE cost > ?
		GROUP BY resource_id, service, resource_group
		HAVING AVG(usage_qty) < ?
		ORDER BY SUM(cost) DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, costAbove, usageBelow, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query idle resources: %w", err)
	}
	defer rows.Close()

	var idle []models.IdleResource
	for rows.Next() {
		var r models.IdleResource
		if err := rows.Scan(&r.ResourceID, &r.Service, &r.ResourceGroup, &r.AvgUsage, &r.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		idle = append(idle, r)
	}

	return idle, rows.Err()
}

// UntaggedResources finds billed resources missing owner or environment
// metadata, above a cost floor, ordered by cost descending.
func (c *Client) UntaggedResources(minCost float64, limit int) ([]models.UntaggedResource, error) {
	query := `
		SELECT b.resource_id, b.service, b.resource_group, SUM(b.cost)
		FROM billing b
		LEFT JOIN resources r ON b.resource_id = r.resource_id
		WHERE (r.owner IS NULL OR r.owner = '' OR r.env IS NULL OR r.env = '')
		AND b.cost > ?
		GROUP BY b.resource_id, b.service, b.resource_group
		ORDER BY SUM(b.cost) DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, minCost, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query untagged resources: %w", err)
	}
	defer rows.Close()

	var untagged []models.UntaggedResource
	for rows.Next() {
		var r models.UntaggedResource
		if err := rows.Scan(&r.ResourceID, &r.Service, &r.ResourceGroup, &r.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		untagged = append(untagged, r)
	}

	return untagged, rows.Err()
}

// TopResources returns the most expensive resources, optionally for one month.
func (c *Client) TopResources(month string, limit int) ([]models.CategoryCost, error) {
	return c.breakdown("resource_id", month, limit)
}

func (c *Client) InsertBillingRecord(rec *models.BillingRecord) error {
	query := `
		INSERT INTO billing (invoice_month, account_id, subscription, service,
			resource_group, resource_id, region, usage_qty, unit_cost, cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		rec.InvoiceMonth,
		rec.AccountID,
		rec.Subscription,
		rec.Service,
		rec.ResourceGroup,
		rec.ResourceID,
		rec.Region,
		rec.UsageQty,
		rec.UnitCost,
		rec.Cost,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert billing record: %w", err)
	}

	return nil
}

func (c *Client) UpsertResource(res *models.Resource) error {
	query := `
		INSERT INTO resources (resource_id, owner, env, tags_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(resource_id) DO UPDATE SET
			owner = excluded.owner,
			env = excluded.env,
			tags_json = excluded.tags_json
	`

	_, err := c.db.Exec(query, res.ResourceID, res.Owner, res.Env, res.TagsJSON, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert resource: %w", err)
	}

	return nil
}

func (c *Client) InsertQueryRecord(rec *models.QueryRecord) error {
	query := `
		INSERT INTO query_history (id, question, classification, confidence,
			data_available, total_tokens, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	dataAvailable := 0
	if rec.DataAvailable {
		dataAvailable = 1
	}

	_, err := c.db.Exec(
		query,
		rec.ID,
		rec.Question,
		rec.Classification,
		rec.Confidence,
		dataAvailable,
		rec.TotalTokens,
		rec.LatencyMS,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	logger.Debug("Query recorded",
		zap.String("query_id", rec.ID),
		zap.String("classification", rec.Classification),
	)

	return nil
}

func (c *Client) RecentQueries(limit int) ([]models.QueryRecord, error) {
	query := `
		SELECT id, question, classification, confidence, data_available,
			total_tokens, latency_ms, created_at
		FROM query_history
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var r models.QueryRecord
		var dataAvailable int
		var createdAt int64

		err := rows.Scan(&r.ID, &r.Question, &r.Classification, &r.Confidence,
			&dataAvailable, &r.TotalTokens, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.DataAvailable = dataAvailable == 1
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Stats reports ledger size and coverage for health checks.
func (c *Client) Stats() (billingRecords, resourceRecords int, firstMonth, lastMonth string, err error) {
	if err = c.db.QueryRow("SELECT COUNT(*) FROM billing").Scan(&billingRecords); err != nil {
		return 0, 0, "", "", fmt.Errorf("failed to count billing records: %w", err)
	}

	if err = c.db.QueryRow("SELECT COUNT(*) FROM resources").Scan(&resourceRecords); err != nil {
		return 0, 0, "", "", fmt.Errorf("failed to count resources: %w", err)
	}

	var minMonth, maxMonth sql.NullString
	if err = c.db.QueryRow("SELECT MIN(invoice_month), MAX(invoice_month) FROM billing").Scan(&minMonth, &maxMonth); err != nil {
		return 0, 0, "", "", fmt.Errorf("failed to query month range: %w", err)
	}

	return billingRecords, resourceRecords, minMonth.String, maxMonth.String, nil
}
