package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// repositoryImpl is the concrete implementation of Repository interface.
type repositoryImpl struct {
	db       *sqlx.DB
	contact  ContactRepository
	template TemplateRepository
	campaign CampaignRepository
	delivery DeliveryRepository
	profile  ProfileRepository
}

// NewRepository creates a new repository instance.
func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{
		db:       db,
		contact:  NewContactRepository(db),
		template: NewTemplateRepository(db),
		campaign: NewCampaignRepository(db),
		delivery: NewDeliveryRepository(db),
		profile:  NewProfileRepository(db),
	}
}

func (r *repositoryImpl) Contact() ContactRepository {
	return r.contact
}

func (r *repositoryImpl) Template() TemplateRepository {
	return r.template
}

func (r *repositoryImpl) Campaign() CampaignRepository {
	return r.campaign
}

func (r *repositoryImpl) Delivery() DeliveryRepository {
	return r.delivery
}

func (r *repositoryImpl) Profile() ProfileRepository {
	return r.profile
}

// Ping checks if the database connection is healthy.
func (r *repositoryImpl) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return r.db.PingContext(ctx)
}
