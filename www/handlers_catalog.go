package www

import (
	"encoding/json"
	"net/http"
	"time"

	"plancore/store"
)

func (h *Handlers) apiListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []*store.Product
		err      error
	)
	if r.URL.Query().Get("all") == "1" {
		products, err = h.engine.DB().ListProducts()
	} else {
		products, err = h.engine.DB().ListActiveProducts()
	}
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, products)
}

func (h *Handlers) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p store.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Code == "" || p.Name == "" {
		h.jsonError(w, "code and name are required", http.StatusBadRequest)
		return
	}
	if p.UnitsPerPackage <= 0 {
		p.UnitsPerPackage = 1
	}
	p.Active = true
	if err := h.engine.DB().CreateProduct(&p); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.NotifyChange("orders")
	h.jsonOK(w, p)
}

func (h *Handlers) apiUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var p store.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = id
	if err := h.engine.DB().UpdateProduct(&p); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.NotifyChange("orders")
	h.jsonOK(w, p)
}

func (h *Handlers) apiDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().DeleteProduct(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.NotifyChange("orders")
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.engine.DB().ListClients()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, clients)
}

func (h *Handlers) apiCreateClient(w http.ResponseWriter, r *http.Request) {
	var c store.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Name == "" {
		h.jsonError(w, "client name is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().CreateClient(&c); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, c)
}

func (h *Handlers) apiListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.engine.DB().ListOrders()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, orders)
}

func (h *Handlers) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	order, err := h.engine.DB().GetOrder(id)
	if err != nil {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	items, err := h.engine.DB().ListOrderItems(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{"order": order, "items": items})
}

// apiCreateOrder accepts an order with its lines in one request, the shape
// upstream order intake posts.
func (h *Handlers) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID int64 `json:"client_id"`
		Items    []struct {
			ProductID    int64   `json:"product_id"`
			DeliveryDate string  `json:"delivery_date"`
			RequestedQty float64 `json:"requested_qty"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ClientID <= 0 || len(req.Items) == 0 {
		h.jsonError(w, "client_id and items are required", http.StatusBadRequest)
		return
	}

	order := &store.Order{ClientID: req.ClientID}
	if err := h.engine.DB().CreateOrder(order); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, item := range req.Items {
		date, err := time.ParseInLocation("2006-01-02", item.DeliveryDate, time.Local)
		if err != nil {
			h.jsonError(w, "invalid delivery_date", http.StatusBadRequest)
			return
		}
		it := &store.OrderItem{
			OrderID:      order.ID,
			ProductID:    item.ProductID,
			DeliveryDate: date,
			RequestedQty: item.RequestedQty,
		}
		if err := h.engine.DB().AddOrderItem(it); err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	h.engine.NotifyChange("orders")
	h.jsonOK(w, order)
}

func (h *Handlers) apiSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	switch req.Status {
	case store.OrderOpen, store.OrderPartial, store.OrderDelivered, store.OrderCancelled:
	default:
		h.jsonError(w, "invalid status", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().SetOrderStatus(id, req.Status); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.NotifyChange("orders")
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiSetItemDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		DeliveredQty float64 `json:"delivered_qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeliveredQty < 0 {
		h.jsonError(w, "invalid delivered_qty", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().SetOrderItemDelivered(id, req.DeliveredQty); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.NotifyChange("orders")
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiListInventory(w http.ResponseWriter, r *http.Request) {
	records, err := h.engine.DB().ListInventory()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, records)
}

func (h *Handlers) apiSetInventory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64   `json:"product_id"`
		Location  string  `json:"location"`
		Quantity  float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID <= 0 || req.Quantity < 0 {
		h.jsonError(w, "product_id and a non-negative quantity are required", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().SetInventory(req.ProductID, req.Location, req.Quantity); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.NotifyChange("inventory")
	h.jsonOK(w, map[string]string{"status": "ok"})
}
