package reservation

import (
	"errors"
	"testing"
	"time"

	"github.com/agriport/farm2market/internal/fault"
	"github.com/agriport/farm2market/internal/listing"
)

func testListing() *listing.Listing {
	return &listing.Listing{
		ID:          "11111111-1111-1111-1111-111111111111",
		FarmerID:    "farmer-1",
		ProductName: "Tomatoes",
		PriceCents:  500,
		Quantity:    50,
		Unit:        "kg",
		Status:      listing.StatusAvailable,
		CreatedAt:   time.Now(),
	}
}

func testInput() CreateInput {
	return CreateInput{
		BuyerID:       "buyer-1",
		BuyerName:     "Ada",
		BuyerApproved: true,
		Quantity:      10,
	}
}

func TestNew_ComputesTotalFromListingPrice(t *testing.T) {
	l := testListing()
	r, notice, err := New(l, testInput(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.UnitPriceCents != 500 {
		t.Errorf("expected unit price 500, got %d", r.UnitPriceCents)
	}
	if r.TotalCents != 5000 {
		t.Errorf("expected total 5000, got %d", r.TotalCents)
	}
	if r.Status != StatusPending {
		t.Errorf("expected status pending, got %q", r.Status)
	}
	if notice.UserID != "farmer-1" {
		t.Errorf("expected notice for the farmer, got %q", notice.UserID)
	}
	// Creating never touches the listing
	if l.Quantity != 50 {
		t.Errorf("expected listing quantity unchanged at 50, got %d", l.Quantity)
	}
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*listing.Listing, *CreateInput)
	}{
		{"unapproved buyer", func(_ *listing.Listing, in *CreateInput) { in.BuyerApproved = false }},
		{"own listing", func(l *listing.Listing, in *CreateInput) { in.BuyerID = l.FarmerID }},
		{"archived listing", func(l *listing.Listing, _ *CreateInput) { l.Archived = true }},
		{"sold listing", func(l *listing.Listing, _ *CreateInput) { l.Status = listing.StatusSold }},
		{"zero quantity", func(_ *listing.Listing, in *CreateInput) { in.Quantity = 0 }},
		{"negative quantity", func(_ *listing.Listing, in *CreateInput) { in.Quantity = -3 }},
		{"exceeds available", func(_ *listing.Listing, in *CreateInput) { in.Quantity = 60 }},
		{"delivery without address", func(_ *listing.Listing, in *CreateInput) { in.DeliveryMethod = DeliveryDelivery }},
		{"bogus delivery method", func(_ *listing.Listing, in *CreateInput) { in.DeliveryMethod = "drone" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := testListing()
			in := testInput()
			tc.mutate(l, &in)
			_, _, err := New(l, in, time.Now())
			var ve *fault.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestApprove_DecrementsInventory(t *testing.T) {
	l := testListing()
	r, _, err := New(l, testInput(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notice, err := Approve(l, r, "farmer-1", "see you saturday", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Quantity != 40 {
		t.Errorf("expected listing quantity 40 after approval, got %d", l.Quantity)
	}
	if l.Status != listing.StatusAvailable {
		t.Errorf("expected listing still available, got %q", l.Status)
	}
	if r.Status != StatusApproved {
		t.Errorf("expected status approved, got %q", r.Status)
	}
	if r.ApprovedBy != "farmer-1" || r.ApprovedAt == nil {
		t.Error("expected approver and approval time to be stamped")
	}
	if r.FarmerNotes != "see you saturday" {
		t.Errorf("expected farmer notes kept, got %q", r.FarmerNotes)
	}
	if notice.UserID != "buyer-1" {
		t.Errorf("expected notice for the buyer, got %q", notice.UserID)
	}
}

func TestApprove_FlipsListingToSoldAtZero(t *testing.T) {
	l := testListing()
	in := testInput()
	in.Quantity = 50
	r, _, err := New(l, in, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Approve(l, r, "farmer-1", "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", l.Quantity)
	}
	if l.Status != listing.StatusSold {
		t.Errorf("expected listing sold at zero quantity, got %q", l.Status)
	}
}

func TestApprove_InsufficientInventoryLeavesRecordsUnchanged(t *testing.T) {
	l := testListing()
	r, _, err := New(l, testInput(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Stock drained by another approval between create and approve
	l.Quantity = 4

	_, err = Approve(l, r, "farmer-1", "", time.Now())
	var iie *fault.InsufficientInventoryError
	if !errors.As(err, &iie) {
		t.Fatalf("expected InsufficientInventoryError, got %v", err)
	}
	if iie.Requested != 10 || iie.Available != 4 {
		t.Errorf("expected requested=10 available=4, got %+v", iie)
	}
	if l.Quantity != 4 {
		t.Errorf("expected listing untouched at 4, got %d", l.Quantity)
	}
	if r.Status != StatusPending {
		t.Errorf("expected reservation still pending, got %q", r.Status)
	}
}

func TestApprove_OnlyListingFarmer(t *testing.T) {
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())

	_, err := Approve(l, r, "farmer-2", "", time.Now())
	var pe *fault.PermissionError
	if !errors.As(err, &pe) {
		t.Errorf("expected PermissionError, got %v", err)
	}
}

func TestApprove_OnlyFromPending(t *testing.T) {
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())
	if _, err := Approve(l, r, "farmer-1", "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := Approve(l, r, "farmer-1", "", time.Now())
	var sc *fault.StateConflictError
	if !errors.As(err, &sc) {
		t.Errorf("expected StateConflictError on double approve, got %v", err)
	}
}

func TestReject_RequiresReason(t *testing.T) {
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())

	_, err := Reject(l, r, "farmer-1", "  ", time.Now())
	var ve *fault.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for blank reason, got %v", err)
	}
	if r.Status != StatusPending {
		t.Errorf("expected reservation still pending, got %q", r.Status)
	}
}

func TestReject_KeepsListingUntouched(t *testing.T) {
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())

	notice, err := Reject(l, r, "farmer-1", "sold at the market", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Quantity != 50 {
		t.Errorf("expected listing quantity unchanged at 50, got %d", l.Quantity)
	}
	if r.Status != StatusRejected {
		t.Errorf("expected status rejected, got %q", r.Status)
	}
	if r.RejectionReason != "sold at the market" {
		t.Errorf("expected reason recorded, got %q", r.RejectionReason)
	}
	if notice.UserID != "buyer-1" {
		t.Errorf("expected notice for the buyer, got %q", notice.UserID)
	}
}

func TestMarkReady_FromApprovedAndPaid(t *testing.T) {
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())
	if _, err := Approve(l, r, "farmer-1", "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notice, err := MarkReady(l, r, "farmer-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error marking approved ready: %v", err)
	}
	if r.Status != StatusReadyForPickup {
		t.Errorf("expected ready_for_pickup, got %q", r.Status)
	}
	if notice.UserID != "buyer-1" {
		t.Errorf("expected notice for the buyer, got %q", notice.UserID)
	}

	l = testListing()
	r, _, _ = New(l, testInput(), time.Now())
	if _, err := Approve(l, r, "farmer-1", "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Status = StatusPaid
	if _, err := MarkReady(l, r, "farmer-1", time.Now()); err != nil {
		t.Fatalf("unexpected error marking paid ready: %v", err)
	}
}

func TestMarkReady_Guards(t *testing.T) {
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())

	// still pending
	_, err := MarkReady(l, r, "farmer-1", time.Now())
	var sc *fault.StateConflictError
	if !errors.As(err, &sc) {
		t.Errorf("expected StateConflictError from pending, got %v", err)
	}

	// wrong actor
	if _, err := Approve(l, r, "farmer-1", "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = MarkReady(l, r, "buyer-1", time.Now())
	var pe *fault.PermissionError
	if !errors.As(err, &pe) {
		t.Errorf("expected PermissionError for non-farmer, got %v", err)
	}
}

func TestCancel_BuyerOnly(t *testing.T) {
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())

	_, err := Cancel(l, r, "farmer-1", time.Now())
	var pe *fault.PermissionError
	if !errors.As(err, &pe) {
		t.Errorf("expected PermissionError, got %v", err)
	}
}

func TestCancel_FromPendingAndApproved(t *testing.T) {
	// pending -> cancelled
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())
	if _, err := Cancel(l, r, "buyer-1", time.Now()); err != nil {
		t.Fatalf("unexpected error cancelling pending: %v", err)
	}
	if r.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %q", r.Status)
	}

	// approved -> cancelled, committed inventory stays committed
	l = testListing()
	r, _, _ = New(l, testInput(), time.Now())
	if _, err := Approve(l, r, "farmer-1", "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Cancel(l, r, "buyer-1", time.Now()); err != nil {
		t.Fatalf("unexpected error cancelling approved: %v", err)
	}
	if l.Quantity != 40 {
		t.Errorf("expected listing quantity to stay at 40 after cancel, got %d", l.Quantity)
	}
}

func TestCancel_TerminalStates(t *testing.T) {
	l := testListing()
	r, _, _ := New(l, testInput(), time.Now())
	if _, err := Reject(l, r, "farmer-1", "no stock", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := Cancel(l, r, "buyer-1", time.Now())
	var sc *fault.StateConflictError
	if !errors.As(err, &sc) {
		t.Errorf("expected StateConflictError cancelling a rejected reservation, got %v", err)
	}
}

// Two buyers want more than the stock can satisfy: the first approval
// wins, the second fails and changes nothing.
func TestApprove_SequentialContention(t *testing.T) {
	l := testListing() // 50 kg

	first, _, err := New(l, testInput(), time.Now()) // 10 kg
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := testInput()
	in.BuyerID = "buyer-2"
	in.Quantity = 45
	second, _, err := New(l, in, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Approve(l, first, "farmer-1", "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Quantity != 40 {
		t.Fatalf("expected 40 remaining, got %d", l.Quantity)
	}

	_, err = Approve(l, second, "farmer-1", "", time.Now())
	var iie *fault.InsufficientInventoryError
	if !errors.As(err, &iie) {
		t.Fatalf("expected InsufficientInventoryError, got %v", err)
	}
	if l.Quantity != 40 || second.Status != StatusPending {
		t.Error("failed approval must leave the listing and reservation unchanged")
	}
}
