package frontdesk

import (
	"sort"
	"time"

	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Room DTOs ====================

// CreateRoomRequest represents a request to register a room
type CreateRoomRequest struct {
	Number          string           `json:"number" validate:"required,min=1,max=20"`
	Floor           int              `json:"floor" validate:"min=0,max=200"`
	BuildingID      *uuid.UUID       `json:"building_id"`
	DailyPrice      decimal.Decimal  `json:"daily_price"`
	HourlyBasePrice *decimal.Decimal `json:"hourly_base_price"`
	HourlyRate      *decimal.Decimal `json:"hourly_rate"`
	OvernightPrice  *decimal.Decimal `json:"overnight_price"`
	MonthlyPrice    *decimal.Decimal `json:"monthly_price"`
}

// Rates converts the request prices into room rates
func (r CreateRoomRequest) Rates() room.Rates {
	return room.Rates{
		DailyPrice:      r.DailyPrice,
		HourlyBasePrice: r.HourlyBasePrice,
		HourlyRate:      r.HourlyRate,
		OvernightPrice:  r.OvernightPrice,
		MonthlyPrice:    r.MonthlyPrice,
	}
}

// RoomResponse represents a room on the front-desk board
type RoomResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	Floor         int             `json:"floor"`
	BuildingID    *uuid.UUID      `json:"building_id,omitempty"`
	Status        room.RoomStatus `json:"status"`
	DisplayStatus room.RoomStatus `json:"display_status"`
	DailyPrice    decimal.Decimal `json:"daily_price"`
	Guest         *StayResponse   `json:"guest,omitempty"`
	Version       int             `json:"version"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StayResponse represents the active stay of a room
type StayResponse struct {
	ID           uuid.UUID       `json:"id"`
	GuestName    string          `json:"guest_name"`
	Phone        string          `json:"phone,omitempty"`
	IDNumber     string          `json:"id_number,omitempty"`
	Nationality  string          `json:"nationality,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	RentalType   room.RentalType `json:"rental_type"`
	Months       int             `json:"months,omitempty"`
	CheckInDate  time.Time       `json:"check_in_date"`
	CheckOutDate time.Time       `json:"check_out_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CheckedInBy  string          `json:"checked_in_by,omitempty"`
}

// ToRoomResponse converts a room to its board representation at now
func ToRoomResponse(r *room.Room, now time.Time, policy room.Policy) RoomResponse {
	resp := RoomResponse{
		ID:            r.ID,
		Number:        r.Number,
		Floor:         r.Floor,
		BuildingID:    r.BuildingID,
		Status:        r.Status,
		DisplayStatus: r.DisplayStatus(now, policy),
		DailyPrice:    r.Rates.DailyPrice,
		Version:       r.Version,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Guest != nil {
		resp.Guest = &StayResponse{
			ID:           r.Guest.ID,
			GuestName:    r.Guest.GuestName,
			Phone:        r.Guest.Phone,
			IDNumber:     r.Guest.IDNumber,
			Nationality:  r.Guest.Nationality,
			Notes:        r.Guest.Notes,
			RentalType:   r.Guest.RentalType,
			Months:       r.Guest.Months,
			CheckInDate:  r.Guest.CheckInDate,
			CheckOutDate: r.Guest.CheckOutDate,
			TotalAmount:  r.Guest.TotalAmount,
			CheckedInBy:  r.Guest.CheckedInBy,
		}
	}
	return resp
}

// ToRoomBoard converts rooms and orders them by display priority, then number
func ToRoomBoard(rooms []room.Room, now time.Time, policy room.Policy) []RoomResponse {
	board := make([]RoomResponse, len(rooms))
	for i := range rooms {
		board[i] = ToRoomResponse(&rooms[i], now, policy)
	}
	sort.SliceStable(board, func(i, j int) bool {
		pi, pj := board[i].DisplayStatus.DisplayPriority(), board[j].DisplayStatus.DisplayPriority()
		if pi != pj {
			return pi < pj
		}
		return board[i].Number < board[j].Number
	})
	return board
}

// ==================== Stay DTOs ====================

// CheckInRequest represents the check-in form
type CheckInRequest struct {
	RoomID       uuid.UUID `json:"room_id" validate:"required"`
	GuestName    string    `json:"guest_name" validate:"required,min=1,max=200"`
	Phone        string    `json:"phone" validate:"max=30"`
	IDNumber     string    `json:"id_number" validate:"max=50"`
	Nationality  string    `json:"nationality" validate:"max=100"`
	Notes        string    `json:"notes" validate:"max=1000"`
	RentalType   string    `json:"rental_type" validate:"required"`
	CheckInDate  time.Time `json:"check_in_date"`
	CheckOutDate time.Time `json:"check_out_date"`
	// Months is required for monthly rentals; the checkout is derived from it.
	Months      int    `json:"months" validate:"min=0,max=120"`
	CheckedInBy string `json:"checked_in_by" validate:"max=100"`
}

// ShortenStayRequest moves the committed checkout earlier
type ShortenStayRequest struct {
	RoomID       uuid.UUID `json:"room_id" validate:"required"`
	CheckOutDate time.Time `json:"check_out_date" validate:"required"`
}

// CancelStayRequest removes a stay entered by mistake
type CancelStayRequest struct {
	RoomID uuid.UUID `json:"room_id" validate:"required"`
	Reason string    `json:"reason" validate:"omitempty,max=500"`
}

// CheckOutRequest settles and closes a stay
type CheckOutRequest struct {
	RoomID uuid.UUID `json:"room_id" validate:"required"`
	// FinalCheckOut defaults to now, capped at the committed checkout.
	FinalCheckOut *time.Time `json:"final_check_out"`
	Method        string     `json:"method" validate:"required"`
	ProcessedBy   string     `json:"processed_by" validate:"max=100"`
	// VATRate is a percentage; nil uses the configured default.
	VATRate *decimal.Decimal `json:"vat_rate"`
}

// PreviewTotalRequest prices a stay without side effects
type PreviewTotalRequest struct {
	RoomID uuid.UUID `json:"room_id" validate:"required"`
	// AsOf defaults to the committed checkout.
	AsOf    *time.Time       `json:"as_of"`
	VATRate *decimal.Decimal `json:"vat_rate"`
}

// ==================== Service DTOs ====================

// AddServiceRequest adds a catalog service to a room's active stay
type AddServiceRequest struct {
	RoomID    uuid.UUID       `json:"room_id" validate:"required"`
	ServiceID uuid.UUID       `json:"service_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	AddedBy   string          `json:"added_by" validate:"max=100"`
}

// RemoveServiceRequest removes a charge from a room's active stay
type RemoveServiceRequest struct {
	RoomID   uuid.UUID `json:"room_id" validate:"required"`
	ChargeID uuid.UUID `json:"charge_id" validate:"required"`
}

// ChargeResponse represents a service charge line
type ChargeResponse struct {
	ID          uuid.UUID       `json:"id"`
	StayID      uuid.UUID       `json:"stay_id"`
	ServiceID   uuid.UUID       `json:"service_id"`
	ServiceName string          `json:"service_name"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToChargeResponse converts a service charge to a response
func ToChargeResponse(c *billing.ServiceCharge) ChargeResponse {
	return ChargeResponse{
		ID:          c.ID,
		StayID:      c.StayID,
		ServiceID:   c.ServiceID,
		ServiceName: c.ServiceName,
		Unit:        c.Unit,
		Quantity:    c.Quantity,
		UnitPrice:   c.UnitPrice,
		TotalPrice:  c.TotalPrice,
		CreatedAt:   c.CreatedAt,
	}
}

// ToChargeResponses converts a list of charges
func ToChargeResponses(charges []billing.ServiceCharge) []ChargeResponse {
	out := make([]ChargeResponse, len(charges))
	for i := range charges {
		out[i] = ToChargeResponse(&charges[i])
	}
	return out
}

// ==================== Billing DTOs ====================

// InvoicePreview is the priced bill of an active stay. Nothing is persisted.
type InvoicePreview struct {
	RoomID           uuid.UUID        `json:"room_id"`
	RoomNumber       string           `json:"room_number"`
	StayID           uuid.UUID        `json:"stay_id"`
	RentalType       room.RentalType  `json:"rental_type"`
	BilledUnits      int              `json:"billed_units"`
	CheckInDate      time.Time        `json:"check_in_date"`
	CheckOutDate     time.Time        `json:"check_out_date"`
	RoomCharge       decimal.Decimal  `json:"room_charge"`
	Charges          []ChargeResponse `json:"charges"`
	ServicesSubtotal decimal.Decimal  `json:"services_subtotal"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	VATRate          decimal.Decimal  `json:"vat_rate"`
	VATAmount        decimal.Decimal  `json:"vat_amount"`
	Total            decimal.Decimal  `json:"total"`
}

// PaymentResponse represents a settled payment
type PaymentResponse struct {
	ID               uuid.UUID             `json:"id"`
	RoomID           uuid.UUID             `json:"room_id"`
	RoomNumber       string                `json:"room_number"`
	StayID           uuid.UUID             `json:"stay_id"`
	GuestName        string                `json:"guest_name"`
	RentalType       room.RentalType       `json:"rental_type"`
	BilledUnits      int                   `json:"billed_units"`
	CheckInDate      time.Time             `json:"check_in_date"`
	CheckOutDate     time.Time             `json:"check_out_date"`
	RoomCharge       decimal.Decimal       `json:"room_charge"`
	ServicesSubtotal decimal.Decimal       `json:"services_subtotal"`
	VATRate          decimal.Decimal       `json:"vat_rate"`
	VATAmount        decimal.Decimal       `json:"vat_amount"`
	Total            decimal.Decimal       `json:"total"`
	Currency         string                `json:"currency"`
	Method           billing.PaymentMethod `json:"method"`
	ProcessedBy      string                `json:"processed_by"`
	CreatedAt        time.Time             `json:"created_at"`
}

// ToPaymentResponse converts a payment to a response
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		RoomID:           p.RoomID,
		RoomNumber:       p.RoomNumber,
		StayID:           p.StayID,
		GuestName:        p.GuestName,
		RentalType:       p.RentalType,
		BilledUnits:      p.BilledUnits,
		CheckInDate:      p.CheckInDate,
		CheckOutDate:     p.CheckOutDate,
		RoomCharge:       p.RoomCharge,
		ServicesSubtotal: p.ServicesSubtotal,
		VATRate:          p.VATRate,
		VATAmount:        p.VATAmount,
		Total:            p.Total,
		Currency:         string(p.Currency),
		Method:           p.Method,
		ProcessedBy:      p.ProcessedBy,
		CreatedAt:        p.CreatedAt,
	}
}

// ==================== Alert DTOs ====================

// AlertResponse represents an upcoming checkout
type AlertResponse struct {
	RoomID               uuid.UUID    `json:"room_id"`
	RoomNumber           string       `json:"room_number"`
	StayID               uuid.UUID    `json:"stay_id"`
	GuestName            string       `json:"guest_name"`
	CheckOutDate         time.Time    `json:"check_out_date"`
	MinutesUntilCheckout int          `json:"minutes_until_checkout"`
	Urgency              room.Urgency `json:"urgency"`
}

// ToAlertResponses converts derived alerts to responses
func ToAlertResponses(alerts []room.CheckoutAlert) []AlertResponse {
	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = AlertResponse{
			RoomID:               a.RoomID,
			RoomNumber:           a.RoomNumber,
			StayID:               a.StayID,
			GuestName:            a.GuestName,
			CheckOutDate:         a.CheckOutDate,
			MinutesUntilCheckout: a.MinutesUntilCheckout,
			Urgency:              a.Urgency,
		}
	}
	return out
}
