package docstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

type staffRepository struct {
	client *firestore.Client
}

func NewStaffRepository(client *firestore.Client) repository.StaffRepository {
	return &staffRepository{client: client}
}

func (r *staffRepository) col() *firestore.CollectionRef {
	return r.client.Collection(staffCollection)
}

func setStaffID(s *model.Staff, id string) { s.ID = id }

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	ref := r.col().NewDoc()
	now := time.Now()
	staff.ID = ref.ID
	staff.CreatedAt, staff.UpdatedAt = now, now
	if staff.Role == "" {
		staff.Role = model.RoleStaff
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		other, err := takenBy(tx, r.col().Where("email", "==", staff.Email), staff.ID)
		if err != nil {
			return err
		}
		if other != "" {
			return fmt.Errorf("%w: email %s", repository.ErrDuplicate, staff.Email)
		}
		return tx.Create(ref, staff)
	})
	if err != nil {
		logger.Error("Failed to create staff document", err, map[string]interface{}{
			"email": staff.Email,
		})
		return translate(err)
	}
	return nil
}

func (r *staffRepository) FindByID(ctx context.Context, id string) (*model.Staff, error) {
	s, err := getDoc[model.Staff](ctx, r.col().Doc(id))
	if err != nil {
		return nil, err
	}
	s.ID = id
	return s, nil
}

func (r *staffRepository) FindByEmail(ctx context.Context, email string) (*model.Staff, error) {
	staff, err := collect(r.col().Where("email", "==", email).Limit(1).Documents(ctx), setStaffID)
	if err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return nil, repository.ErrNotFound
	}
	return &staff[0], nil
}

func (r *staffRepository) FindAll(ctx context.Context, pendingOnly bool) ([]model.Staff, error) {
	q := r.col().Query
	if pendingOnly {
		q = q.Where("approved", "==", false)
	}
	return collect(q.OrderBy("createdAt", firestore.Asc).Documents(ctx), setStaffID)
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	staff.UpdatedAt = time.Now()
	if _, err := r.col().Doc(staff.ID).Set(ctx, staff); err != nil {
		logger.Error("Failed to update staff document", err, map[string]interface{}{
			"staff_id": staff.ID,
		})
		return translate(err)
	}
	return nil
}
