package seeder

import (
	"context"
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sk-intls/ecommerce-simulation/pkg/domain/model"
	"github.com/sk-intls/ecommerce-simulation/pkg/domain/service"
)

type customerRecord struct {
	name         string
	customerType model.CustomerType
	birth        string
}

var customerRecords = []customerRecord{
	{"Alice Johnson", model.Premium, "1988-03-15"},
	{"Bob Smith", model.Regular, "1992-07-22"},
	{"Carol Davis", model.Premium, "1985-11-08"},
	{"David Wilson", model.Regular, "1990-01-30"},
	{"Emma Thompson", model.Premium, "1987-09-12"},
	{"Frank Miller", model.Regular, "1993-04-18"},
	{"Grace Chen", model.Premium, "1986-12-05"},
	{"Henry Rodriguez", model.Regular, "1991-08-27"},
	{"Isabella Martinez", model.Premium, "1989-06-14"},
	{"Jack Anderson", model.Regular, "1994-02-09"},
}

type CustomerSeeder struct {
	store service.Store
	// pickTier chooses the tier for premium records.
	pickTier func() model.Tier
}

func NewCustomerSeeder(store service.Store) *CustomerSeeder {
	return &CustomerSeeder{store: store, pickTier: randomTier}
}

// Seed adds the fixed customer list; records that fail are logged and skipped.
func (s *CustomerSeeder) Seed(ctx context.Context) int {
	log.Info("seeding customers")

	seeded := 0
	for _, record := range customerRecords {
		data := service.NewCustomer{
			Name: record.name,
			Type: string(record.customerType),
		}
		if birth, err := time.Parse("2006-01-02", record.birth); err == nil {
			data.Birth = &birth
		}
		if record.customerType == model.Premium {
			data.Tier = string(s.pickTier())
		}

		if _, err := s.store.AddCustomer(ctx, data); err != nil {
			log.WithError(err).WithField("customer", record.name).Error("failed to add customer")
			continue
		}
		seeded++
	}
	return seeded
}

func randomTier() model.Tier {
	return model.Tiers[rand.IntN(len(model.Tiers))]
}
