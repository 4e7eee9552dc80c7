package bookings

import (
	"net/mail"
	"strings"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentFailed:
		return true
	}
	return false
}

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

type Place struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type AddOn struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Booking struct {
	ID              string        `json:"id"`
	BookingNumber   string        `json:"bookingNumber"`
	PackageID       string        `json:"packageId"`
	PackageName     string        `json:"packageName"`
	PackageType     string        `json:"package"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Date            time.Time     `json:"date"`
	StartTime       string        `json:"startTime,omitempty"`
	BookingHours    float64       `json:"bookingHours,omitempty"`
	Adults          int           `json:"adults"`
	Children        int           `json:"children"`
	Infants         int           `json:"infants"`
	Guests          int           `json:"guests"`
	PickupPoint     *Place        `json:"pickupPoint,omitempty"`
	MeetingPoint    *Place        `json:"meetingPoint,omitempty"`
	AddOns          []AddOn       `json:"addOns,omitempty"`
	SpecialRequests string        `json:"specialRequests,omitempty"`
	Subtotal        float64       `json:"subtotal"`
	VAT             float64       `json:"vat"`
	VATPercent      float64       `json:"vatPercentage"`
	TotalAmount     float64       `json:"totalAmount"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentMethod   string        `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Request is the guest-facing booking body shared by booking creation and
// payment-intent creation.
type Request struct {
	PackageID       string  `json:"packageId"`
	PackageName     string  `json:"packageName"`
	PackageType     string  `json:"package"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	BookingHours    float64 `json:"bookingHours"`
	Adults          int     `json:"adults"`
	Children        int     `json:"children"`
	Infants         int     `json:"infants"`
	Guests          int     `json:"guests"`
	PickupPoint     *Place  `json:"pickupPoint"`
	MeetingPoint    *Place  `json:"meetingPoint"`
	AddOns          []AddOn `json:"addOns"`
	SpecialRequests string  `json:"specialRequests"`
}

// Normalize trims free-text fields in place.
func (r *Request) Normalize() {
	r.PackageID = strings.TrimSpace(r.PackageID)
	r.PackageType = strings.TrimSpace(r.PackageType)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Date = strings.TrimSpace(r.Date)
}

// Validate checks presence of the contact, date, package and party fields.
// The package is identified by PackageID alone; its type comes from the
// catalog. Guests is taken as given and not reconciled with the
// adult/child/infant split.
func (r Request) Validate() error {
	var f apperr.Fields
	f.Add(r.Name == "", "name")
	f.Add(r.Email == "" || !validEmail(r.Email), "email")
	f.Add(r.Phone == "", "phone")
	_, dateErr := r.ParsedDate()
	f.Add(dateErr != nil, "date")
	f.Add(r.PackageID == "", "packageId")
	f.Add(r.Guests <= 0, "guests")
	f.Add(r.Adults < 0, "adults")
	f.Add(r.Children < 0, "children")
	f.Add(r.Infants < 0, "infants")
	f.Add(r.BookingHours < 0, "bookingHours")
	for _, a := range r.AddOns {
		f.Add(a.Name == "" || a.Price < 0, "addOns")
	}
	return f.Err()
}

// ParsedDate accepts a calendar date or a full RFC3339 timestamp.
func (r Request) ParsedDate() (time.Time, error) {
	if d, err := time.Parse(DateLayout, r.Date); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, r.Date)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// validEmail accepts a bare address only; "Name <addr>" forms are rejected.
func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

// Totals is the pricing snapshot stored on the booking.
type Totals struct {
	Subtotal   float64
	VAT        float64
	VATPercent float64
	Total      float64
}

// New builds a pending booking from a validated request.
func New(r Request, t Totals) Booking {
	date, _ := r.ParsedDate()
	return Booking{
		PackageID:       r.PackageID,
		PackageName:     r.PackageName,
		PackageType:     r.PackageType,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Date:            date,
		StartTime:       r.StartTime,
		BookingHours:    r.BookingHours,
		Adults:          r.Adults,
		Children:        r.Children,
		Infants:         r.Infants,
		Guests:          r.Guests,
		PickupPoint:     r.PickupPoint,
		MeetingPoint:    r.MeetingPoint,
		AddOns:          r.AddOns,
		SpecialRequests: r.SpecialRequests,
		Subtotal:        t.Subtotal,
		VAT:             t.VAT,
		VATPercent:      t.VATPercent,
		TotalAmount:     t.Total,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
	}
}

// StatusUpdate is a partial update; nil fields are kept.
type StatusUpdate struct {
	Status        *Status        `json:"status"`
	PaymentStatus *PaymentStatus `json:"paymentStatus"`
	PaymentMethod *string        `json:"paymentMethod"`
}

func (u StatusUpdate) Validate() error {
	var f apperr.Fields
	f.Add(u.Status == nil && u.PaymentStatus == nil && u.PaymentMethod == nil, "status")
	f.Add(u.Status != nil && !u.Status.Valid(), "status")
	f.Add(u.PaymentStatus != nil && !u.PaymentStatus.Valid(), "paymentStatus")
	return f.Err()
}

type Filter struct {
	Status Status
}

// PageSize bounds admin listings.
const PageSize = 50
