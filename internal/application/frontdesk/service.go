package frontdesk

import (
	"context"
	"time"

	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceDeps wires the collaborators of FrontDeskService
type ServiceDeps struct {
	Rooms    room.RoomRepository
	Payments billing.PaymentRepository
	Charges  billing.ServiceChargeRepository
	Catalog  billing.ServiceCatalog
	Locker   RoomLocker
	Clock    shared.Clock
	Logger   *zap.Logger
	Policy   room.Policy
	// DefaultVATRate applies when a request carries no VAT rate.
	DefaultVATRate decimal.Decimal
}

// FrontDeskService exposes the front-desk operations. Every mutating
// operation holds the room lock for its whole duration; reads take no lock.
type FrontDeskService struct {
	rooms          room.RoomRepository
	locker         RoomLocker
	clock          shared.Clock
	logger         *zap.Logger
	policy         room.Policy
	defaultVATRate decimal.Decimal
	engine         *billing.PricingEngine
	ledger         *ServiceLedger
	settlement     *PaymentSettlement
	eventPublisher shared.EventPublisher
}

// NewFrontDeskService creates a new FrontDeskService
func NewFrontDeskService(deps ServiceDeps) *FrontDeskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}

	engine := billing.NewPricingEngine(deps.Policy)
	ledger := NewServiceLedger(deps.Catalog, deps.Charges, clock, logger)

	return &FrontDeskService{
		rooms:          deps.Rooms,
		locker:         deps.Locker,
		clock:          clock,
		logger:         logger,
		policy:         deps.Policy,
		defaultVATRate: deps.DefaultVATRate,
		engine:         engine,
		ledger:         ledger,
		settlement:     NewPaymentSettlement(deps.Rooms, deps.Payments, ledger, engine, deps.Policy, clock, logger),
	}
}

// SetEventPublisher sets the publisher that receives room events after each save
func (s *FrontDeskService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ==================== Rooms ====================

// CreateRoom registers a new vacant-clean room
func (s *FrontDeskService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.rooms.FindByNumber(ctx, req.BuildingID, req.Number); err == nil {
		return nil, shared.NewConflictError("ROOM_EXISTS", "Room "+req.Number+" already exists")
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	r, err := room.NewRoom(req.Number, req.Floor, req.BuildingID, req.Rates(), s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.rooms.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("room created", zap.String("room_id", r.ID.String()), zap.String("room_number", r.Number))
	return s.respond(r), nil
}

// GetRoom returns a room with its active stay
func (s *FrontDeskService) GetRoom(ctx context.Context, roomID uuid.UUID) (*RoomResponse, error) {
	r, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.respond(r), nil
}

// ListRooms returns the room board, due-out rooms first
func (s *FrontDeskService) ListRooms(ctx context.Context, buildingID *uuid.UUID) ([]RoomResponse, error) {
	rooms, err := s.rooms.FindAll(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return ToRoomBoard(rooms, s.clock.Now(), s.policy), nil
}

// ==================== Stay lifecycle ====================

// CheckIn attaches a new stay to a vacant room
func (s *FrontDeskService) CheckIn(ctx context.Context, req CheckInRequest) (*RoomResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	rentalType, err := room.ParseRentalType(req.RentalType)
	if err != nil {
		return nil, err
	}

	var out *RoomResponse
	err = s.withRoom(ctx, req.RoomID, func(r *room.Room, now time.Time) error {
		checkIn := req.CheckInDate
		if checkIn.IsZero() {
			checkIn = now
		}
		stay, err := room.NewStay(room.StayParams{
			GuestName:    req.GuestName,
			Phone:        req.Phone,
			IDNumber:     req.IDNumber,
			Nationality:  req.Nationality,
			Notes:        req.Notes,
			CheckInDate:  checkIn,
			CheckOutDate: req.CheckOutDate,
			RentalType:   rentalType,
			Months:       req.Months,
			CheckedInBy:  req.CheckedInBy,
		}, now)
		if err != nil {
			return err
		}
		if err := r.CheckIn(stay, s.engine, s.policy, now); err != nil {
			return err
		}
		if err := s.save(ctx, r); err != nil {
			return err
		}

		s.logger.Info("guest checked in",
			zap.String("room_id", r.ID.String()),
			zap.String("room_number", r.Number),
			zap.String("stay_id", stay.ID.String()),
			zap.String("rental_type", stay.RentalType.String()),
		)
		out = s.respond(r)
		return nil
	})
	return out, err
}

// ShortenStay moves the committed checkout of the active stay earlier
func (s *FrontDeskService) ShortenStay(ctx context.Context, req ShortenStayRequest) (*RoomResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var out *RoomResponse
	err := s.withRoom(ctx, req.RoomID, func(r *room.Room, now time.Time) error {
		if err := r.ShortenStay(req.CheckOutDate, s.engine, now); err != nil {
			return err
		}
		if err := s.save(ctx, r); err != nil {
			return err
		}
		out = s.respond(r)
		return nil
	})
	return out, err
}

// CheckOut settles the active stay and leaves the room vacant-dirty.
// The payment is persisted before the room transition.
func (s *FrontDeskService) CheckOut(ctx context.Context, req CheckOutRequest) (*PaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	method, err := billing.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var final time.Time
	if req.FinalCheckOut != nil {
		final = *req.FinalCheckOut
	}

	result, err := s.settlement.Settle(ctx, SettleCommand{
		RoomID:        req.RoomID,
		FinalCheckOut: final,
		Method:        method,
		ProcessedBy:   req.ProcessedBy,
		VATRate:       s.vatRate(req.VATRate),
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, result.Room)

	resp := ToPaymentResponse(result.Payment)
	return &resp, nil
}

// CancelStay removes a stay entered by mistake. No payment is created and the
// stay's service charges are discarded after the room is saved. The reason is
// optional.
func (s *FrontDeskService) CancelStay(ctx context.Context, req CancelStayRequest) (*RoomResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var out *RoomResponse
	err := s.withRoom(ctx, req.RoomID, func(r *room.Room, now time.Time) error {
		stay, err := r.CancelStay(req.Reason, now)
		if err != nil {
			return err
		}
		// Charges go only once the room no longer references the stay.
		if err := s.save(ctx, r); err != nil {
			return err
		}
		if err := s.ledger.DiscardStay(ctx, stay.ID); err != nil {
			s.logger.Error("failed to discard charges of cancelled stay",
				zap.String("room_id", r.ID.String()),
				zap.String("stay_id", stay.ID.String()),
				zap.Error(err),
			)
		}

		s.logger.Warn("stay cancelled",
			zap.String("room_id", r.ID.String()),
			zap.String("room_number", r.Number),
			zap.String("stay_id", stay.ID.String()),
			zap.String("reason", req.Reason),
		)
		out = s.respond(r)
		return nil
	})
	return out, err
}

// ==================== Housekeeping ====================

// MarkClean completes housekeeping on a vacant-dirty room
func (s *FrontDeskService) MarkClean(ctx context.Context, roomID uuid.UUID) (*RoomResponse, error) {
	var out *RoomResponse
	err := s.withRoom(ctx, roomID, func(r *room.Room, now time.Time) error {
		if err := r.MarkClean(now); err != nil {
			return err
		}
		if err := s.save(ctx, r); err != nil {
			return err
		}
		out = s.respond(r)
		return nil
	})
	return out, err
}

// ToggleMaintenance takes a vacant room out of order or returns it to service
func (s *FrontDeskService) ToggleMaintenance(ctx context.Context, roomID uuid.UUID) (*RoomResponse, error) {
	var out *RoomResponse
	err := s.withRoom(ctx, roomID, func(r *room.Room, now time.Time) error {
		if err := r.ToggleMaintenance(now); err != nil {
			return err
		}
		if err := s.save(ctx, r); err != nil {
			return err
		}
		s.logger.Info("room maintenance toggled",
			zap.String("room_id", r.ID.String()),
			zap.String("status", r.Status.String()),
		)
		out = s.respond(r)
		return nil
	})
	return out, err
}

// ==================== Services ====================

// AddService charges a catalog service to the room's active stay
func (s *FrontDeskService) AddService(ctx context.Context, req AddServiceRequest) (*ChargeResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var out *ChargeResponse
	err := s.withRoom(ctx, req.RoomID, func(r *room.Room, _ time.Time) error {
		if !r.IsOccupied() || r.Guest == nil {
			return shared.NewTransitionError("add service", r.Status.String())
		}
		charge, err := s.ledger.AddCharge(ctx, r.Guest.ID, req.ServiceID, req.Quantity, req.AddedBy)
		if err != nil {
			return err
		}
		resp := ToChargeResponse(charge)
		out = &resp
		return nil
	})
	return out, err
}

// RemoveService deletes a charge from the room's active stay
func (s *FrontDeskService) RemoveService(ctx context.Context, req RemoveServiceRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	return s.withRoom(ctx, req.RoomID, func(r *room.Room, _ time.Time) error {
		if !r.IsOccupied() || r.Guest == nil {
			return shared.NewTransitionError("remove service", r.Status.String())
		}
		charge, err := s.ledger.GetCharge(ctx, req.ChargeID)
		if err != nil {
			return err
		}
		if charge.StayID != r.Guest.ID {
			return shared.NewNotFoundError("CHARGE_NOT_FOUND", "Charge does not belong to the active stay of room "+r.Number)
		}
		return s.ledger.RemoveCharge(ctx, req.ChargeID)
	})
}

// ListCharges lists the service charges of the room's active stay
func (s *FrontDeskService) ListCharges(ctx context.Context, roomID uuid.UUID) ([]ChargeResponse, error) {
	r, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.Guest == nil {
		return []ChargeResponse{}, nil
	}
	charges, err := s.ledger.Charges(ctx, r.Guest.ID)
	if err != nil {
		return nil, err
	}
	return ToChargeResponses(charges), nil
}

// ==================== Reads ====================

// PreviewTotal prices the active stay without side effects
func (s *FrontDeskService) PreviewTotal(ctx context.Context, req PreviewTotalRequest) (*InvoicePreview, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	r, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if r.Guest == nil {
		return nil, shared.NewTransitionError("preview bill", r.Status.String())
	}

	asOf := r.Guest.CheckOutDate
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	return s.settlement.Preview(ctx, r, asOf, s.vatRate(req.VATRate))
}

// ScanCheckoutAlerts derives the current checkout alerts of all occupied rooms
func (s *FrontDeskService) ScanCheckoutAlerts(ctx context.Context) ([]AlertResponse, error) {
	rooms, err := s.rooms.FindOccupied(ctx)
	if err != nil {
		return nil, err
	}
	return ToAlertResponses(room.ScanCheckoutAlerts(rooms, s.clock.Now(), s.policy)), nil
}

// ==================== helpers ====================

// withRoom runs fn on a freshly loaded room while holding its lock
func (s *FrontDeskService) withRoom(ctx context.Context, roomID uuid.UUID, fn func(r *room.Room, now time.Time) error) error {
	unlock, err := s.locker.Lock(ctx, roomID)
	if err != nil {
		return err
	}
	defer unlock()

	r, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	return fn(r, s.clock.Now())
}

// save persists the room and publishes its pending events
func (s *FrontDeskService) save(ctx context.Context, r *room.Room) error {
	if err := s.rooms.Save(ctx, r); err != nil {
		s.logger.Error("failed to save room",
			zap.String("room_id", r.ID.String()),
			zap.Error(err),
		)
		return err
	}
	s.publish(ctx, r)
	return nil
}

func (s *FrontDeskService) publish(ctx context.Context, r *room.Room) {
	events := r.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish room events",
				zap.String("room_id", r.ID.String()),
				zap.Error(err),
			)
		}
	}
	r.ClearDomainEvents()
}

func (s *FrontDeskService) vatRate(rate *decimal.Decimal) decimal.Decimal {
	if rate != nil {
		return *rate
	}
	return s.defaultVATRate
}

func (s *FrontDeskService) respond(r *room.Room) *RoomResponse {
	resp := ToRoomResponse(r, s.clock.Now(), s.policy)
	return &resp
}
