package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/meganoshop/megano-backend/api/middleware"
	"github.com/meganoshop/megano-backend/internal/cart"
	"github.com/meganoshop/megano-backend/pkg/session"
)

type stubCartService struct {
	addedUser    *uuid.UUID
	addedListing uuid.UUID
	addedQty     int

	sessionAdds int
	getCalls    int
	mergeCalls  int
}

func (s *stubCartService) AddProduct(ctx context.Context, userID, sellerProductID uuid.UUID, quantity int) error {
	s.addedUser = &userID
	s.addedListing = sellerProductID
	s.addedQty = quantity
	return nil
}

func (s *stubCartService) UpdateProduct(ctx context.Context, userID, sellerProductID uuid.UUID, quantity int) error {
	return nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, sellerProductID uuid.UUID) error {
	return nil
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (cart.DTO, error) {
	s.getCalls++
	return cart.DTO{}, nil
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (s *stubCartService) AddSessionProduct(ctx context.Context, state *session.State, sellerProductID uuid.UUID, quantity int) error {
	s.sessionAdds++
	s.addedListing = sellerProductID
	s.addedQty = quantity
	return nil
}

func (s *stubCartService) UpdateSessionProduct(state *session.State, sellerProductID uuid.UUID, quantity int) error {
	return nil
}

func (s *stubCartService) RemoveSessionItem(state *session.State, sellerProductID uuid.UUID) {}

func (s *stubCartService) GetSession(ctx context.Context, state *session.State) (cart.DTO, error) {
	return cart.DTO{}, nil
}

func (s *stubCartService) MergeSessionCart(ctx context.Context, userID uuid.UUID, state *session.State) error {
	s.mergeCalls++
	return nil
}

func sessionRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithSession(req.Context(), "sid-1", session.NewState())
	return req.WithContext(ctx)
}

func TestCartAddRoutesGuestsToSessionCart(t *testing.T) {
	svc := &stubCartService{}
	listing := uuid.New()

	req := sessionRequest(http.MethodPost, "/api/v1/cart", `{"seller_product_id":"`+listing.String()+`","quantity":2}`)
	w := httptest.NewRecorder()
	CartAdd(svc, nil)(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 but got %d: %s", w.Code, w.Body.String())
	}
	if svc.sessionAdds != 1 {
		t.Fatalf("expected one session add, got %d", svc.sessionAdds)
	}
	if svc.addedUser != nil {
		t.Fatal("guest request must not touch the persisted cart")
	}
	if svc.addedListing != listing || svc.addedQty != 2 {
		t.Fatalf("unexpected add %s x%d", svc.addedListing, svc.addedQty)
	}
}

func TestCartAddRoutesUsersToPersistedCart(t *testing.T) {
	svc := &stubCartService{}
	listing := uuid.New()
	userID := uuid.New()

	req := sessionRequest(http.MethodPost, "/api/v1/cart", `{"seller_product_id":"`+listing.String()+`","quantity":1}`)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	w := httptest.NewRecorder()
	CartAdd(svc, nil)(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 but got %d: %s", w.Code, w.Body.String())
	}
	if svc.addedUser == nil || *svc.addedUser != userID {
		t.Fatalf("expected persisted add for user %s", userID)
	}
	if svc.sessionAdds != 0 {
		t.Fatal("signed-in request must not touch the session cart")
	}
}

func TestCartAddRejectsMalformedListing(t *testing.T) {
	svc := &stubCartService{}

	req := sessionRequest(http.MethodPost, "/api/v1/cart", `{"seller_product_id":"not-a-uuid","quantity":1}`)
	w := httptest.NewRecorder()
	CartAdd(svc, nil)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 but got %d", w.Code)
	}
}

func TestCartMergeRequiresUser(t *testing.T) {
	svc := &stubCartService{}

	req := sessionRequest(http.MethodPost, "/api/v1/cart/merge", "")
	w := httptest.NewRecorder()
	CartMerge(svc, nil)(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 but got %d", w.Code)
	}
	if svc.mergeCalls != 0 {
		t.Fatal("merge must not run for anonymous callers")
	}
}

func TestCartMergeReturnsMergedCart(t *testing.T) {
	svc := &stubCartService{}
	userID := uuid.New()

	req := sessionRequest(http.MethodPost, "/api/v1/cart/merge", "")
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	w := httptest.NewRecorder()
	CartMerge(svc, nil)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d: %s", w.Code, w.Body.String())
	}
	if svc.mergeCalls != 1 {
		t.Fatalf("expected one merge, got %d", svc.mergeCalls)
	}
	if svc.getCalls != 1 {
		t.Fatalf("expected the merged cart to be fetched, got %d fetches", svc.getCalls)
	}

	var body struct {
		Data cart.DTO `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}
