package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// RegistrationRepository interface for registration data operations
type RegistrationRepository interface {
	Upsert(ctx context.Context, reg *models.Registration) (*models.Registration, error)
	GetLatestByUserAndKind(ctx context.Context, userID int, kind models.RegistrationKind) (*models.Registration, error)
	GetByEvent(ctx context.Context, eventID int, kind models.RegistrationKind, status models.RegistrationRecordStatus) ([]*models.Registration, error)
}

// RegistrationEventRepository is the slice of the event store the
// registration service needs for roster access checks
type RegistrationEventRepository interface {
	GetByID(ctx context.Context, id int) (*models.Event, error)
}

// RegistrationService handles vendor and volunteer registration forms.
// The cart itself lives in the caller's session; this service mutates
// it and the caller is responsible for saving the session afterwards.
type RegistrationService struct {
	registrationRepo RegistrationRepository
	eventRepo        RegistrationEventRepository
	validate         *validator.Validate
	logger           zerolog.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(registrationRepo RegistrationRepository, eventRepo RegistrationEventRepository, logger zerolog.Logger) *RegistrationService {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report validation failures by json field name so API clients can
	// map them back onto form fields
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RegistrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		validate:         validate,
		logger:           logger,
	}
}

// RegistrationItemSummary describes the cart item a registration form
// belongs to
type RegistrationItemSummary struct {
	CartItemID string                    `json:"cart_item_id"`
	Name       string                    `json:"name"`
	Quantity   int                       `json:"quantity"`
	UnitPrice  int                       `json:"unit_price"`
	Subtotal   int                       `json:"subtotal"`
	EventID    int                       `json:"event_id"`
	Status     models.RegistrationStatus `json:"status"`
}

// RegistrationPrefill is the payload served to a registration form: the
// item being registered plus the best known previous answers
type RegistrationPrefill struct {
	Item RegistrationItemSummary `json:"item"`
	Kind models.RegistrationKind `json:"kind"`
	Data map[string]string       `json:"data,omitempty"`
}

// RegistrationResult reports a saved registration and where the
// checkout flow goes next
type RegistrationResult struct {
	Registration *models.Registration `json:"registration"`
	NextPath     string               `json:"next_path"`
}

// Prefill builds the form payload for a cart item's registration page.
// Previous answers are reused in order of freshness: the item's own
// saved data when revisiting a completed form, then the latest
// completed form of the same kind in this cart, then the user's most
// recent registration on record.
func (s *RegistrationService) Prefill(ctx context.Context, user *models.User, cart *models.Cart, cartItemID string, kind models.RegistrationKind) (*RegistrationPrefill, error) {
	item, err := s.cartItemForKind(cart, cartItemID, kind)
	if err != nil {
		return nil, err
	}

	data := item.RegistrationData
	if data == nil {
		data = cart.LatestRegistrationData(item.ProductType)
	}
	if data == nil {
		previous, err := s.registrationRepo.GetLatestByUserAndKind(ctx, user.ID, kind)
		switch {
		case err == nil:
			data = previous.Data
		case errors.Is(err, models.ErrRegistrationNotFound):
			// First registration of this kind, nothing to pre-fill
		default:
			s.logger.Warn().Err(err).Int("user_id", user.ID).Msg("failed to load previous registration for pre-fill")
		}
	}

	return &RegistrationPrefill{
		Item: RegistrationItemSummary{
			CartItemID: item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.Price,
			Subtotal:   item.Subtotal(),
			EventID:    item.EventID,
			Status:     item.RegistrationStatus,
		},
		Kind: kind,
		Data: data,
	}, nil
}

// SubmitVendor validates and saves a vendor profile for a cart item,
// then marks the item's registration complete and reports the next
// route. A validation or save failure leaves the cart untouched so the
// user stays on the form and can retry.
func (s *RegistrationService) SubmitVendor(ctx context.Context, user *models.User, cart *models.Cart, cartItemID string, req *models.VendorRegistrationRequest) (*RegistrationResult, error) {
	if err := s.validateForm(req); err != nil {
		return nil, err
	}
	return s.submit(ctx, user, cart, cartItemID, models.RegistrationVendor, req.ToData())
}

// SubmitVolunteer is SubmitVendor for volunteer shift registrations
func (s *RegistrationService) SubmitVolunteer(ctx context.Context, user *models.User, cart *models.Cart, cartItemID string, req *models.VolunteerRegistrationRequest) (*RegistrationResult, error) {
	if err := s.validateForm(req); err != nil {
		return nil, err
	}
	return s.submit(ctx, user, cart, cartItemID, models.RegistrationVolunteer, req.ToData())
}

func (s *RegistrationService) submit(ctx context.Context, user *models.User, cart *models.Cart, cartItemID string, kind models.RegistrationKind, data map[string]string) (*RegistrationResult, error) {
	item, err := s.cartItemForKind(cart, cartItemID, kind)
	if err != nil {
		return nil, err
	}

	reg := &models.Registration{
		UserID:     user.ID,
		EventID:    item.EventID,
		ProductID:  item.ProductID,
		CartItemID: item.ID,
		Kind:       kind,
		Data:       data,
	}

	saved, err := s.registrationRepo.Upsert(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	// Only after the profile is durably saved does the cart item advance
	nextPath := cart.CompleteRegistration(item.ID, data)

	s.logger.Info().
		Int("registration_id", saved.ID).
		Str("cart_item_id", item.ID).
		Str("kind", string(kind)).
		Str("next_path", nextPath).
		Msg("registration saved")

	return &RegistrationResult{Registration: saved, NextPath: nextPath}, nil
}

// ListEventRegistrations returns an event's vendor or volunteer roster
// for its organizer. Kind and status are optional filters.
func (s *RegistrationService) ListEventRegistrations(ctx context.Context, user *models.User, eventID int, kind models.RegistrationKind, status models.RegistrationRecordStatus) ([]*models.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() && event.OrganizerID != user.ID {
		return nil, fmt.Errorf("%w: event belongs to another organizer", models.ErrUnauthorized)
	}

	regs, err := s.registrationRepo.GetByEvent(ctx, eventID, kind, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	return regs, nil
}

// cartItemForKind resolves a cart item and checks it takes the given
// form. A missing item or a form/product mismatch both read as
// not-found; registration pages can be deep-linked long after the item
// left the cart.
func (s *RegistrationService) cartItemForKind(cart *models.Cart, cartItemID string, kind models.RegistrationKind) (*models.CartItem, error) {
	item := cart.Item(cartItemID)
	if item == nil {
		return nil, models.ErrCartItemNotFound
	}

	itemKind, ok := item.ProductType.Kind()
	if !ok || itemKind != kind {
		return nil, models.ErrCartItemNotFound
	}

	return item, nil
}

// validateForm runs struct tag validation and folds the result into the
// shared invalid-input sentinel with the offending fields listed
func (s *RegistrationService) validateForm(req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Errorf("%w: invalid fields: %s", models.ErrInvalidInput, strings.Join(fields, ", "))
	}

	return fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
}
