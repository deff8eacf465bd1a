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

// SettleCommand carries the inputs of a checkout settlement
type SettleCommand struct {
	RoomID uuid.UUID
	// FinalCheckOut is the actual departure. Zero means now, capped at the
	// committed checkout so overstays bill to the committed time.
	FinalCheckOut time.Time
	Method        billing.PaymentMethod
	ProcessedBy   string
	VATRate       decimal.Decimal
}

// Settlement is the result of a successful settlement
type Settlement struct {
	Payment *billing.Payment
	Room    *room.Room
	// Reused is true when a payment persisted by an earlier attempt was used.
	Reused bool
}

// PaymentSettlement turns an occupied room into a Payment and a vacant-dirty
// room. The payment is always persisted before the room changes, so a store
// failure can never free a room without a revenue record.
type PaymentSettlement struct {
	rooms    room.RoomRepository
	payments billing.PaymentRepository
	ledger   *ServiceLedger
	engine   *billing.PricingEngine
	policy   room.Policy
	clock    shared.Clock
	logger   *zap.Logger
}

// NewPaymentSettlement creates a new PaymentSettlement
func NewPaymentSettlement(
	rooms room.RoomRepository,
	payments billing.PaymentRepository,
	ledger *ServiceLedger,
	engine *billing.PricingEngine,
	policy room.Policy,
	clock shared.Clock,
	logger *zap.Logger,
) *PaymentSettlement {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &PaymentSettlement{
		rooms:    rooms,
		payments: payments,
		ledger:   ledger,
		engine:   engine,
		policy:   policy,
		clock:    clock,
		logger:   logger,
	}
}

// Settle prices the stay at its actual departure, persists the Payment and
// only then checks the room out. Callers must hold the room lock.
func (s *PaymentSettlement) Settle(ctx context.Context, cmd SettleCommand) (*Settlement, error) {
	r, err := s.rooms.FindByID(ctx, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	if !r.IsOccupied() || r.Guest == nil {
		return nil, shared.NewTransitionError("check out", r.Status.String())
	}
	stay := *r.Guest
	requested := cmd.FinalCheckOut
	if cmd.FinalCheckOut.IsZero() {
		cmd.FinalCheckOut = s.clock.Now()
		if cmd.FinalCheckOut.After(stay.CheckOutDate) {
			cmd.FinalCheckOut = stay.CheckOutDate
		}
	}

	log := s.logger.With(
		zap.String("room_id", r.ID.String()),
		zap.String("room_number", r.Number),
		zap.String("stay_id", stay.ID.String()),
	)

	payment, reused, err := s.paymentFor(ctx, r, stay, cmd)
	if err != nil {
		return nil, err
	}
	if reused {
		warnOnReusedPayment(log, payment, cmd, requested)
	}

	if err := s.ledger.DiscardStay(ctx, stay.ID); err != nil {
		log.Error("failed to discard service charges after payment",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	receipt := room.Receipt{PaymentID: payment.ID, Total: payment.Total, Method: string(payment.Method)}
	if _, err := r.Checkout(receipt, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.rooms.Save(ctx, r); err != nil {
		log.Error("room checkout failed after payment was persisted",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	log.Info("stay settled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("total", payment.Total.String()),
		zap.Bool("reused_payment", reused),
	)

	return &Settlement{Payment: payment, Room: r, Reused: reused}, nil
}

// paymentFor returns the payment already persisted for the stay by an earlier
// attempt, or computes and appends a new one
func (s *PaymentSettlement) paymentFor(ctx context.Context, r *room.Room, stay room.Stay, cmd SettleCommand) (*billing.Payment, bool, error) {
	existing, err := s.payments.FindByStayID(ctx, stay.ID)
	if err == nil {
		return existing, true, nil
	}
	if !shared.IsNotFound(err) {
		return nil, false, err
	}

	if err := stay.ValidateFinalCheckOut(cmd.FinalCheckOut); err != nil {
		return nil, false, err
	}

	quote, err := s.engine.Quote(stay.WithCheckOut(cmd.FinalCheckOut), r.Rates, cmd.FinalCheckOut)
	if err != nil {
		return nil, false, err
	}

	services, err := s.ledger.Subtotal(ctx, stay.ID)
	if err != nil {
		return nil, false, err
	}

	payment, err := billing.NewPayment(billing.PaymentParams{
		RoomID:           r.ID,
		RoomNumber:       r.Number,
		Stay:             stay,
		FinalCheckOut:    cmd.FinalCheckOut,
		Quote:            quote,
		ServicesSubtotal: services,
		VATRate:          cmd.VATRate,
		Currency:         s.policy.Currency,
		Method:           cmd.Method,
		ProcessedBy:      cmd.ProcessedBy,
	}, s.clock.Now())
	if err != nil {
		return nil, false, err
	}

	if err := s.payments.Append(ctx, payment); err != nil {
		return nil, false, err
	}
	return payment, false, nil
}

// warnOnReusedPayment logs the inputs of a retried checkout that differ from
// the payment already stored for the stay. The stored payment wins.
func warnOnReusedPayment(log *zap.Logger, p *billing.Payment, cmd SettleCommand, requested time.Time) {
	var fields []zap.Field
	if cmd.Method != p.Method {
		fields = append(fields, zap.String("requested_method", string(cmd.Method)), zap.String("stored_method", string(p.Method)))
	}
	if !cmd.VATRate.Equal(p.VATRate) {
		fields = append(fields, zap.String("requested_vat_rate", cmd.VATRate.String()), zap.String("stored_vat_rate", p.VATRate.String()))
	}
	if !requested.IsZero() && !requested.Equal(p.CheckOutDate) {
		fields = append(fields, zap.Time("requested_check_out", requested), zap.Time("stored_check_out", p.CheckOutDate))
	}
	if len(fields) == 0 {
		return
	}
	log.Warn("checkout retry differs from the stored payment; keeping the stored payment",
		append(fields, zap.String("payment_id", p.ID.String()))...)
}

// Preview prices the stay as if it ended at asOf. Nothing is persisted.
func (s *PaymentSettlement) Preview(ctx context.Context, r *room.Room, asOf time.Time, vatRate decimal.Decimal) (*InvoicePreview, error) {
	if !r.IsOccupied() || r.Guest == nil {
		return nil, shared.NewTransitionError("preview bill", r.Status.String())
	}
	stay := *r.Guest
	if err := stay.ValidateFinalCheckOut(asOf); err != nil {
		return nil, err
	}

	quote, err := s.engine.Quote(stay.WithCheckOut(asOf), r.Rates, asOf)
	if err != nil {
		return nil, err
	}
	charges, err := s.ledger.Charges(ctx, stay.ID)
	if err != nil {
		return nil, err
	}

	// Same arithmetic as the settled payment
	payment, err := billing.NewPayment(billing.PaymentParams{
		RoomID:           r.ID,
		RoomNumber:       r.Number,
		Stay:             stay,
		FinalCheckOut:    asOf,
		Quote:            quote,
		ServicesSubtotal: billing.SumCharges(charges),
		VATRate:          vatRate,
		Currency:         s.policy.Currency,
		Method:           billing.PaymentMethodCash,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}

	return &InvoicePreview{
		RoomID:           r.ID,
		RoomNumber:       r.Number,
		StayID:           stay.ID,
		RentalType:       stay.RentalType,
		BilledUnits:      quote.Units,
		CheckInDate:      stay.CheckInDate,
		CheckOutDate:     asOf,
		RoomCharge:       payment.RoomCharge,
		Charges:          ToChargeResponses(charges),
		ServicesSubtotal: payment.ServicesSubtotal,
		Subtotal:         payment.Subtotal(),
		VATRate:          payment.VATRate,
		VATAmount:        payment.VATAmount,
		Total:            payment.Total,
	}, nil
}
