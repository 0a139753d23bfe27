package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"keymaster/internal/domain"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type reservationModel struct {
	BookingReference    string    `gorm:"column:booking_reference;primaryKey"`
	PropertyID          string    `gorm:"column:property_id;index"`
	GuestName           string    `gorm:"column:guest_name"`
	CheckInDate         string    `gorm:"column:check_in_date"`
	CheckOutDate        string    `gorm:"column:check_out_date"`
	Status              string    `gorm:"column:status"`
	VerificationPending bool      `gorm:"column:verification_pending"`
	VerificationReason  *string   `gorm:"column:verification_reason"`
	VerifiedName        *string   `gorm:"column:verified_name"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "reservations" }

func toDomainReservation(m reservationModel) *domain.Reservation {
	var reason, verifiedName string
	if m.VerificationReason != nil {
		reason = *m.VerificationReason
	}
	if m.VerifiedName != nil {
		verifiedName = *m.VerifiedName
	}

	return &domain.Reservation{
		BookingReference:    m.BookingReference,
		PropertyID:          m.PropertyID,
		GuestName:           m.GuestName,
		CheckInDate:         m.CheckInDate,
		CheckOutDate:        m.CheckOutDate,
		Status:              domain.ReservationStatus(m.Status),
		VerificationPending: m.VerificationPending,
		VerificationReason:  reason,
		VerifiedName:        verifiedName,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toReservationModel(res *domain.Reservation) reservationModel {
	var reason, verifiedName *string
	if res.VerificationReason != "" {
		v := res.VerificationReason
		reason = &v
	}
	if res.VerifiedName != "" {
		v := res.VerifiedName
		verifiedName = &v
	}

	return reservationModel{
		BookingReference:    strings.ToUpper(strings.TrimSpace(res.BookingReference)),
		PropertyID:          res.PropertyID,
		GuestName:           res.GuestName,
		CheckInDate:         res.CheckInDate,
		CheckOutDate:        res.CheckOutDate,
		Status:              string(res.Status),
		VerificationPending: res.VerificationPending,
		VerificationReason:  reason,
		VerifiedName:        verifiedName,
		CreatedAt:           res.CreatedAt,
		UpdatedAt:           res.UpdatedAt,
	}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*res = *toDomainReservation(m)
	return nil
}

// GetByReference looks a reservation up by booking reference,
// case-insensitively. Returns (nil, nil) when no such booking exists.
func (r *ReservationRepository) GetByReference(ctx context.Context, ref string) (*domain.Reservation, error) {
	var m reservationModel
	tx := r.db.WithContext(ctx).
		Where("UPPER(booking_reference) = ?", strings.ToUpper(strings.TrimSpace(ref))).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainReservation(m), nil
}

func (r *ReservationRepository) GetAll(ctx context.Context) ([]domain.Reservation, error) {
	var models []reservationModel
	tx := r.db.WithContext(ctx).Order("check_in_date ASC").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}

	reservations := make([]domain.Reservation, 0, len(models))
	for _, m := range models {
		reservations = append(reservations, *toDomainReservation(m))
	}
	return reservations, nil
}

// UpdateStatus moves a reservation to status without ever regressing the
// lifecycle: a late or duplicate write behind the current status is a no-op.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, ref string, status domain.ReservationStatus) error {
	res, err := r.GetByReference(ctx, ref)
	if err != nil {
		return err
	}
	if res == nil {
		return gorm.ErrRecordNotFound
	}
	if res.Status.Regresses(status) {
		return nil
	}

	return r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("booking_reference = ?", res.BookingReference).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		}).Error
}

// RecordVerificationOutcome lands the real adapter result after an
// optimistic advance. The status write goes through UpdateStatus so the
// monotonic lifecycle holds even when the guest has already checked in.
func (r *ReservationRepository) RecordVerificationOutcome(
	ctx context.Context,
	ref string,
	status domain.ReservationStatus,
	reason string,
	verifiedName string,
) error {
	if err := r.UpdateStatus(ctx, ref, status); err != nil {
		return err
	}

	updates := map[string]any{
		"verification_pending": false,
		"verification_reason":  reason,
		"updated_at":           time.Now(),
	}
	if verifiedName != "" {
		updates["verified_name"] = verifiedName
	}

	return r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("UPPER(booking_reference) = ?", strings.ToUpper(strings.TrimSpace(ref))).
		Updates(updates).Error
}

// MarkVerificationPending flags the reservation while the adapter call is
// still in flight.
func (r *ReservationRepository) MarkVerificationPending(ctx context.Context, ref string) error {
	return r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("UPPER(booking_reference) = ?", strings.ToUpper(strings.TrimSpace(ref))).
		Updates(map[string]any{
			"verification_pending": true,
			"updated_at":           time.Now(),
		}).Error
}
