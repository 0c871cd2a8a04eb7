package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velocar/velocar/internal/core/domain"
	"github.com/velocar/velocar/internal/core/service"
	"github.com/velocar/velocar/internal/port"
)

type HTTPHandler struct {
	cart      *service.CartService
	checkout  *service.CheckoutService
	favorites *service.FavoriteService
}

func NewHTTPHandler(cart *service.CartService, checkout *service.CheckoutService, favorites *service.FavoriteService) *HTTPHandler {
	return &HTTPHandler{cart: cart, checkout: checkout, favorites: favorites}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("POST /api/cart", h.AddToCart)
	mux.HandleFunc("GET /api/cart", h.ListCart)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)
	mux.HandleFunc("PATCH /api/cart/{id}", h.UpdateCartLine)
	mux.HandleFunc("DELETE /api/cart/{id}", h.RemoveCartLine)

	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)

	mux.HandleFunc("POST /api/favorites", h.AddFavorite)
	mux.HandleFunc("GET /api/favorites", h.ListFavorites)
	mux.HandleFunc("DELETE /api/favorites", h.RemoveFavorites)
}

type AddToCartRequest struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	EngineID  int64 `json:"engine_id,omitempty"`
	ColorID   int64 `json:"color_id,omitempty"`
	TrimID    int64 `json:"trim_id,omitempty"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	UserID    int64  `json:"user_id"`
	RequestID string `json:"request_id,omitempty"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Comment   string `json:"comment,omitempty"`
}

type FavoriteRequest struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
}

type CartLineResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	EngineID  int64     `json:"engine_id,omitempty"`
	ColorID   int64     `json:"color_id,omitempty"`
	TrimID    int64     `json:"trim_id,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
	Image     string          `json:"image,omitempty"`
}

type VariantResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

type CartLineViewResponse struct {
	CartLineResponse
	Product   ProductResponse  `json:"product"`
	Engine    *VariantResponse `json:"engine,omitempty"`
	Color     *VariantResponse `json:"color,omitempty"`
	Trim      *VariantResponse `json:"trim,omitempty"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
}

type OrderItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	EngineID     int64           `json:"engine_id,omitempty"`
	ColorID      int64           `json:"color_id,omitempty"`
	TrimID       int64           `json:"trim_id,omitempty"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

type OrderResponse struct {
	OrderID    string              `json:"id"`
	UserID     int64               `json:"user_id"`
	Status     string              `json:"status"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	FullName   string              `json:"full_name"`
	Phone      string              `json:"phone"`
	Email      string              `json:"email"`
	Address    string              `json:"address"`
	City       string              `json:"city"`
	Comment    string              `json:"comment,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	Items      []OrderItemResponse `json:"items"`
}

type FavoriteResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

type FavoriteViewResponse struct {
	FavoriteResponse
	Product ProductResponse `json:"product"`
}

type ClearedResponse struct {
	Removed int64 `json:"removed"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == 0 || req.ProductID == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "user_id and product_id are required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	sel := domain.Selection{ProductID: req.ProductID, EngineID: req.EngineID, ColorID: req.ColorID, TrimID: req.TrimID}
	line, err := h.cart.AddLine(r.Context(), req.UserID, sel, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartLineJSON(line))
}

func (h *HTTPHandler) UpdateCartLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid cart line id"})
		return
	}

	var req UpdateCartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	line, err := h.cart.UpdateQuantity(r.Context(), lineID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartLineJSON(line))
}

func (h *HTTPHandler) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid cart line id"})
		return
	}

	if err := h.cart.RemoveLine(r.Context(), lineID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	removed, err := h.cart.Clear(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearedResponse{Removed: removed})
}

func (h *HTTPHandler) ListCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	views, err := h.cart.ListLines(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]CartLineViewResponse, 0, len(views))
	for i := range views {
		out = append(out, cartLineViewJSON(&views[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	shipping := domain.ShippingInfo{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		City:     req.City,
		Comment:  req.Comment,
	}
	order, err := h.checkout.Checkout(r.Context(), req.UserID, shipping, req.RequestID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderJSON(order))
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderJSON(order))
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	orders, err := h.checkout.ListOrders(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, orderJSON(&orders[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == 0 || req.ProductID == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "user_id and product_id are required"})
		return
	}

	fav, err := h.favorites.Add(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteJSON(fav))
}

// RemoveFavorites deletes one favorite when product_id is supplied and clears
// the user's whole list otherwise.
func (h *HTTPHandler) RemoveFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	if raw := r.URL.Query().Get("product_id"); raw != "" {
		productID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
			return
		}
		if err := h.favorites.Remove(r.Context(), userID, productID); err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	removed, err := h.favorites.Clear(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearedResponse{Removed: removed})
}

func (h *HTTPHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	views, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]FavoriteViewResponse, 0, len(views))
	for i := range views {
		out = append(out, favoriteViewJSON(&views[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var notFound *domain.NotFoundError
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: notFound.Error()})
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrVariantMismatch),
		errors.Is(err, service.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrCartLineNotFound),
		errors.Is(err, service.ErrFavoriteNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrCheckoutInProgress),
		errors.Is(err, port.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func queryUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "user_id query parameter is required"})
		return 0, false
	}
	return userID, true
}

func cartLineJSON(line *domain.CartLine) CartLineResponse {
	return CartLineResponse{
		ID:        line.ID,
		UserID:    line.UserID,
		ProductID: line.ProductID,
		EngineID:  line.EngineID,
		ColorID:   line.ColorID,
		TrimID:    line.TrimID,
		Quantity:  line.Quantity,
		CreatedAt: line.CreatedAt,
		UpdatedAt: line.UpdatedAt,
	}
}

func cartLineViewJSON(v *domain.CartLineView) CartLineViewResponse {
	out := CartLineViewResponse{
		CartLineResponse: cartLineJSON(&v.CartLine),
		Product: ProductResponse{
			ID:        v.Product.ID,
			Name:      v.Product.Name,
			BasePrice: v.Product.BasePrice,
			Image:     v.Product.Image,
		},
		UnitPrice: v.UnitPrice,
	}
	if v.Engine != nil {
		out.Engine = &VariantResponse{ID: v.Engine.ID, Name: v.Engine.Name, PriceModifier: v.Engine.PriceModifier}
	}
	if v.Color != nil {
		out.Color = &VariantResponse{ID: v.Color.ID, Name: v.Color.Name, PriceModifier: v.Color.PriceModifier}
	}
	if v.Trim != nil {
		out.Trim = &VariantResponse{ID: v.Trim.ID, Name: v.Trim.Name, PriceModifier: v.Trim.PriceModifier}
	}
	return out
}

func orderJSON(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			EngineID:     item.EngineID,
			ColorID:      item.ColorID,
			TrimID:       item.TrimID,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit,
		})
	}
	return OrderResponse{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		FullName:   o.Shipping.FullName,
		Phone:      o.Shipping.Phone,
		Email:      o.Shipping.Email,
		Address:    o.Shipping.Address,
		City:       o.Shipping.City,
		Comment:    o.Shipping.Comment,
		CreatedAt:  o.CreatedAt,
		Items:      items,
	}
}

func favoriteJSON(f *domain.Favorite) FavoriteResponse {
	return FavoriteResponse{ID: f.ID, UserID: f.UserID, ProductID: f.ProductID, CreatedAt: f.CreatedAt}
}

func favoriteViewJSON(v *domain.FavoriteView) FavoriteViewResponse {
	return FavoriteViewResponse{
		FavoriteResponse: favoriteJSON(&v.Favorite),
		Product: ProductResponse{
			ID:        v.Product.ID,
			Name:      v.Product.Name,
			BasePrice: v.Product.BasePrice,
			Image:     v.Product.Image,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
