package persistence

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormElectronicPaymentRepository implements ElectronicPaymentRepository using GORM
type GormElectronicPaymentRepository struct {
	db *gorm.DB
}

// NewGormElectronicPaymentRepository creates a new GormElectronicPaymentRepository
func NewGormElectronicPaymentRepository(db *gorm.DB) *GormElectronicPaymentRepository {
	return &GormElectronicPaymentRepository{db: db}
}

// FindByID finds an electronic payment by its ID
func (r *GormElectronicPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.ElectronicPayment, error) {
	var m models.ElectronicPaymentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate("find electronic payment", err)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads several payments in the order the ids were given
func (r *GormElectronicPaymentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]settlement.ElectronicPayment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.ElectronicPaymentModel
	if err := forUpdate(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate("find electronic payments", err)
	}
	if err := missingIDs(ids, len(rows)); err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.ElectronicPaymentModel, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	out := make([]settlement.ElectronicPayment, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id].ToDomain())
	}
	return out, nil
}

// FindByStatus lists payments in one status, by payment number
func (r *GormElectronicPaymentRepository) FindByStatus(ctx context.Context, status settlement.ElectronicPaymentStatus) ([]settlement.ElectronicPayment, error) {
	var rows []models.ElectronicPaymentModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("payment_number ASC").
		Find(&rows).Error; err != nil {
		return nil, translate("find electronic payments by status", err)
	}
	return paymentsToDomain(rows), nil
}

// FindByDistribution lists the payments of a distribution
func (r *GormElectronicPaymentRepository) FindByDistribution(ctx context.Context, distributionID uuid.UUID) ([]settlement.ElectronicPayment, error) {
	var rows []models.ElectronicPaymentModel
	if err := r.db.WithContext(ctx).
		Where("distribution_id = ?", distributionID).
		Order("payment_number ASC").
		Find(&rows).Error; err != nil {
		return nil, translate("find distribution payments", err)
	}
	return paymentsToDomain(rows), nil
}

// Create inserts a new electronic payment
func (r *GormElectronicPaymentRepository) Create(ctx context.Context, payment *settlement.ElectronicPayment) error {
	if err := r.db.WithContext(ctx).Create(models.ElectronicPaymentModelFromDomain(payment)).Error; err != nil {
		return translate("create electronic payment", err)
	}
	return nil
}

// SaveWithLock updates a payment under a version check
func (r *GormElectronicPaymentRepository) SaveWithLock(ctx context.Context, payment *settlement.ElectronicPayment) error {
	m := models.ElectronicPaymentModelFromDomain(payment)
	m.Version = payment.Version + 1
	if err := updateVersioned(r.db.WithContext(ctx), m, payment.ID, payment.Version); err != nil {
		return translate("save electronic payment", err)
	}
	payment.Version = m.Version
	payment.UpdatedAt = m.UpdatedAt
	return nil
}

func paymentsToDomain(rows []models.ElectronicPaymentModel) []settlement.ElectronicPayment {
	out := make([]settlement.ElectronicPayment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ settlement.ElectronicPaymentRepository = (*GormElectronicPaymentRepository)(nil)
