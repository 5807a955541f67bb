package seed

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/cost-copilot/backend/internal/storage/models"
	"github.com/cost-copilot/backend/internal/storage/sqlite"
	"github.com/cost-copilot/backend/pkg/logger"
	"go.uber.org/zap"
)

// serviceProfile controls how much a service category spends per month and
// how much individual resources deviate from that baseline.
type serviceProfile struct {
	Name        string
	BaseCost    float64
	Variability float64
}

var services = []serviceProfile{
	{"Compute", 45000, 0.3},
	{"Storage", 25000, 0.2},
	{"Database", 20000, 0.25},
	{"Networking", 15000, 0.4},
	{"AI/ML", 18000, 0.5},
	{"Security", 8000, 0.15},
	{"Monitoring", 12000, 0.2},
	{"Analytics", 22000, 0.35},
}

var resourceGroups = []string{
	"prod-app-rg", "prod-web-rg", "staging-rg", "dev-rg", "analytics-rg",
	"shared-services-rg", "security-rg", "monitoring-rg", "ml-platform-rg",
	"data-pipeline-rg", "backup-rg", "network-rg",
}

var regions = []string{
	"East US", "West US 2", "Central US", "West Europe", "Southeast Asia", "UK South",
}

var accounts = []string{"acc-prod-001", "acc-dev-002", "acc-analytics-003"}

var subscriptions = []string{"sub-main-prod", "sub-dev-test", "sub-analytics", "sub-shared"}

// months and their growth factors shape a recognizable spend story:
// a baseline, a summer peak, an August dip, then renewed growth.
var months = []struct {
	Month  string
	Growth float64
}{
	{"2024-05", 1.0},
	{"2024-06", 1.15},
	{"2024-07", 1.35},
	{"2024-08", 0.85},
	{"2024-09", 1.25},
	{"2024-10", 1.40},
}

var owners = []string{
	"john.doe@company.com", "jane.smith@company.com", "mike.johnson@company.com",
	"sarah.wilson@company.com", "david.brown@company.com", "lisa.davis@company.com",
	"", "", "",
}

var environments = []string{"prod", "staging", "dev", "test", ""}

var projects = []string{"webapp", "analytics", "ml-platform", "data-pipeline"}

var costCenters = []string{"engineering", "data-science", "operations", "security"}

// Generator writes a synthetic six-month billing dataset suitable for
// exercising cost, trend, optimization and governance analysis.
type Generator struct {
	store *sqlite.Client
	rng   *rand.Rand
	log   *zap.Logger
}

func NewGenerator(store *sqlite.Client, randSeed int64) *Generator {
	return &Generator{
		store: store,
		rng:   rand.New(rand.NewSource(randSeed)),
		log:   logger.GetLogger(),
	}
}

// Run populates the billing and resources tables. Existing schema is assumed
// to be in place; rows are appended, so call it against a fresh database.
func (g *Generator) Run() error {
	billingCount := 0
	resourceIDs := make(map[string]bool)

	for _, m := range months {
		monthCount := 0

		for _, svc := range services {
			baseMonthly := svc.BaseCost * m.Growth
			numResources := 15 + g.rng.Intn(31)

			for i := 0; i < numResources; i++ {
				group := resourceGroups[g.rng.Intn(len(resourceGroups))]
				region := regions[g.rng.Intn(len(regions))]
				account := accounts[g.rng.Intn(len(accounts))]
				subscription := subscriptions[g.rng.Intn(len(subscriptions))]

				resourceID := fmt.Sprintf(
					"/subscriptions/%s/resourceGroups/%s/providers/Microsoft.%s/%s-%s-%03d",
					subscription, group, strings.ReplaceAll(svc.Name, "/", ""),
					strings.ToLower(svc.Name), m.Month, i,
				)
				resourceIDs[resourceID] = true

				resourceCost := (baseMonthly / float64(numResources)) *
					(1 + (g.rng.Float64()*2-1)*svc.Variability)
				if resourceCost < 1.0 {
					resourceCost = 1.0
				}

				usageQty := 1 + g.rng.Float64()*999
				unitCost := resourceCost / usageQty

				// Several billing rows per resource per month, mirroring
				// daily or weekly invoice granularity.
				recordsPerMonth := 4 + g.rng.Intn(27)
				for r := 0; r < recordsPerMonth; r++ {
					rec := &models.BillingRecord{
						InvoiceMonth:  m.Month,
						AccountID:     account,
						Subscription:  subscription,
						Service:       svc.Name,
						ResourceGroup: group,
						ResourceID:    resourceID,
						Region:        region,
						UsageQty:      usageQty / float64(recordsPerMonth),
						UnitCost:      unitCost,
						Cost:          resourceCost / float64(recordsPerMonth),
					}
					if err := g.store.InsertBillingRecord(rec); err != nil {
						return fmt.Errorf("insert billing record: %w", err)
					}
					monthCount++
				}
			}
		}

		billingCount += monthCount
		g.log.Info("generated month",
			zap.String("month", m.Month),
			zap.Int("records", monthCount))
	}

	if err := g.seedIdleResources(resourceIDs); err != nil {
		return err
	}

	resourceCount := 0
	for resourceID := range resourceIDs {
		res := &models.Resource{
			ResourceID: resourceID,
			Owner:      owners[g.rng.Intn(len(owners))],
			Env:        environments[g.rng.Intn(len(environments))],
		}
		res.TagsJSON = g.buildTags(res.Owner, res.Env)

		if err := g.store.UpsertResource(res); err != nil {
			return fmt.Errorf("upsert resource: %w", err)
		}
		resourceCount++
	}

	g.log.Info("sample data generation complete",
		zap.Int("billing_records", billingCount),
		zap.Int("resource_records", resourceCount),
		zap.Int("months", len(months)))

	return nil
}

// seedIdleResources plants a handful of expensive, barely used resources so
// optimization queries have something concrete to surface.
func (g *Generator) seedIdleResources(resourceIDs map[string]bool) error {
	for i := 0; i < 6; i++ {
		group := resourceGroups[g.rng.Intn(len(resourceGroups))]
		resourceID := fmt.Sprintf(
			"/subscriptions/sub-main-prod/resourceGroups/%s/providers/Microsoft.Compute/idle-vm-%03d",
			group, i,
		)
		resourceIDs[resourceID] = true

		for _, m := range months {
			rec := &models.BillingRecord{
				InvoiceMonth:  m.Month,
				AccountID:     "acc-prod-001",
				Subscription:  "sub-main-prod",
				Service:       "Compute",
				ResourceGroup: group,
				ResourceID:    resourceID,
				Region:        regions[g.rng.Intn(len(regions))],
				UsageQty:      g.rng.Float64() * 3,
				UnitCost:      50 + g.rng.Float64()*100,
				Cost:          150 + g.rng.Float64()*350,
			}
			if err := g.store.InsertBillingRecord(rec); err != nil {
				return fmt.Errorf("insert idle billing record: %w", err)
			}
		}
	}
	return nil
}

func (g *Generator) buildTags(owner, env string) string {
	tags := make(map[string]string)
	if owner != "" {
		tags["owner"] = owner
	}
	if env != "" {
		tags["environment"] = env
	}
	if g.rng.Intn(2) == 0 {
		tags["project"] = projects[g.rng.Intn(len(projects))]
	}
	if g.rng.Intn(2) == 0 {
		tags["cost-center"] = costCenters[g.rng.Intn(len(costCenters))]
	}

	b, _ := json.Marshal(tags)
	return string(b)
}
