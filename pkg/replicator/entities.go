package replicator

import (
	"context"

	"github.com/targc/tasksync/pkg/identity"
	"github.com/targc/tasksync/pkg/models"
)

// NewCompanyReplicator builds the replicator for companies. Companies
// carry no foreign keys, so only mutable fields are copied.
func NewCompanyReplicator(deps Deps) Replicator {
	return &entityReplicator[models.Company, *models.Company]{
		deps: deps,
		copyFields: func(dst, src *models.Company) {
			dst.Title = src.Title
			dst.Description = src.Description
		},
		mapPushFKs: noFKs[models.Company],
		mapPullFKs: noFKs[models.Company],
	}
}

// NewUserReplicator builds the replicator for users. The company FK is
// remapped through the company's external id in both directions.
func NewUserReplicator(deps Deps) Replicator {
	return &entityReplicator[models.User, *models.User]{
		deps: deps,
		copyFields: func(dst, src *models.User) {
			dst.UserName = src.UserName
			dst.Email = src.Email
			dst.Phone = src.Phone
			dst.Telegram = src.Telegram
			dst.Status = src.Status
		},
		mapPushFKs: func(ctx context.Context, m *identity.Mapper, src, dst *models.User) error {
			companyID, err := m.RemoteID(ctx, models.KindCompany, src.CompanyID)

			if err != nil {
				return err
			}

			dst.CompanyID = companyID

			return nil
		},
		mapPullFKs: func(ctx context.Context, m *identity.Mapper, src, dst *models.User) error {
			companyID, err := m.LocalID(ctx, models.KindCompany, src.CompanyID)

			if err != nil {
				return err
			}

			dst.CompanyID = companyID

			return nil
		},
	}
}

// NewTaskReplicator builds the replicator for tasks. Both the assignee
// and the company FK are remapped; a parent that has not crossed the
// store boundary yet resolves to nil and is picked up on a later cycle.
func NewTaskReplicator(deps Deps) Replicator {
	return &entityReplicator[models.Task, *models.Task]{
		deps: deps,
		copyFields: func(dst, src *models.Task) {
			dst.Title = src.Title
			dst.Description = src.Description
			dst.DueDate = src.DueDate
			dst.Priority = src.Priority
			dst.Status = src.Status
		},
		mapPushFKs: func(ctx context.Context, m *identity.Mapper, src, dst *models.Task) error {
			assigneeID, err := m.RemoteID(ctx, models.KindUser, src.AssigneeID)

			if err != nil {
				return err
			}

			companyID, err := m.RemoteID(ctx, models.KindCompany, src.CompanyID)

			if err != nil {
				return err
			}

			dst.AssigneeID = assigneeID
			dst.CompanyID = companyID

			return nil
		},
		mapPullFKs: func(ctx context.Context, m *identity.Mapper, src, dst *models.Task) error {
			assigneeID, err := m.LocalID(ctx, models.KindUser, src.AssigneeID)

			if err != nil {
				return err
			}

			companyID, err := m.LocalID(ctx, models.KindCompany, src.CompanyID)

			if err != nil {
				return err
			}

			dst.AssigneeID = assigneeID
			dst.CompanyID = companyID

			return nil
		},
	}
}

func noFKs[T any](context.Context, *identity.Mapper, *T, *T) error {
	return nil
}
