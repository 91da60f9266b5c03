// Package api speaks the ProcureTrack backend's JSON wire format: a
// read-all endpoint, a single-field update endpoint and a read-only stock
// detail endpoint. The client is the only component that touches the
// network; everything it returns is plain domain data.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/airock47/proctrack/internal/grid"
)

// FetchError is a failed read-all request. Fatal to rendering: the caller
// shows it and leaves any prior table state untouched.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch failed: status %d: %s", e.Status, e.Message)
	}
	return "fetch failed: " + e.Message
}

// UpdateError is a failed single-field update. Recoverable: the field stays
// dirty for a retry.
type UpdateError struct {
	RowID   int64
	Field   grid.Field
	Status  int
	Message string
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update row %d field %s failed: status %d: %s", e.RowID, e.Field, e.Status, e.Message)
}

// rowPayload mirrors one procure_items record as the backend serializes it.
type rowPayload struct {
	ID           int64  `json:"id"`
	PONumber     string `json:"po_number"`
	ProductCode  string `json:"product_code"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	WarehouseQty int    `json:"warehouse_qty"`
	DeliveryDate string `json:"delivery_date"`
	DispatchDate string `json:"dispatch_date"`
	Warehouse    string `json:"warehouse"`
	ArrivalDate  string `json:"arrival_date"`
	Status       string `json:"status"`
	GoodsStatus  string `json:"goods_status"`
	Remarks      string `json:"remarks"`
	GoodStock    int    `json:"good_stock"`
}

type updatePayload struct {
	ID       int64  `json:"id"`
	PONumber string `json:"po_number"`
	Field    string `json:"field"`
	Value    string `json:"value"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// WarehouseQty is one warehouse's good-stock quantity for a product.
type WarehouseQty struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// StockDetail is the per-warehouse breakdown for one product.
type StockDetail struct {
	Warehouses []WarehouseQty `json:"warehouses"`
	Total      int            `json:"total"`
}

// Client is a resty-backed ProcureTrack API client. It implements
// grid.Updater.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// New builds a client for the given base URL, e.g. "http://host/procure".
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{http: rc, log: log}
}

// FetchAll retrieves every procurement row in server order.
func (c *Client) FetchAll(ctx context.Context) ([]grid.Row, error) {
	var payload []rowPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/api/data")
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &FetchError{Status: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
	}

	rows := make([]grid.Row, 0, len(payload))
	for _, p := range payload {
		rows = append(rows, grid.Row{
			ID:           p.ID,
			PONumber:     p.PONumber,
			ProductCode:  p.ProductCode,
			ProductName:  p.ProductName,
			ExcelStatus:  p.Status,
			GoodsStatus:  p.GoodsStatus,
			Quantity:     p.Quantity,
			DeliveryDate: p.DeliveryDate,
			DispatchDate: p.DispatchDate,
			ArrivalDate:  p.ArrivalDate,
			Warehouse:    p.Warehouse,
			GoodStock:    p.GoodStock,
			WarehouseQty: p.WarehouseQty,
			Remarks:      p.Remarks,
		})
	}
	c.log.Info("fetched procurement rows", zap.Int("count", len(rows)))
	return rows, nil
}

// UpdateField persists one field of one row. The server's acceptance rules
// are checked locally first; a request the server is certain to reject never
// goes on the wire.
func (c *Client) UpdateField(ctx context.Context, rowID int64, poNumber string, field grid.Field, value string) error {
	if field == grid.FieldGoodsStatus && !grid.ValidStatus(value) {
		return &UpdateError{RowID: rowID, Field: field, Message: fmt.Sprintf("invalid goods status %q", value)}
	}
	if field == grid.FieldRemarks && len([]rune(value)) > grid.MaxRemarksLen {
		return &UpdateError{RowID: rowID, Field: field, Message: fmt.Sprintf("remarks exceeds %d characters", grid.MaxRemarksLen)}
	}

	apiErr := new(errorPayload)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(updatePayload{ID: rowID, PONumber: poNumber, Field: string(field), Value: value}).
		SetError(apiErr).
		Post("/api/update")
	if err != nil {
		return &UpdateError{RowID: rowID, Field: field, Message: err.Error()}
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		msg := apiErr.Error
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return &UpdateError{RowID: rowID, Field: field, Status: resp.StatusCode(), Message: msg}
	}
	return nil
}

// StockDetail fetches the per-warehouse good-stock breakdown for a product.
// Purely informational; it never interacts with dirty state.
func (c *Client) StockDetail(ctx context.Context, code, name string) (StockDetail, error) {
	var detail StockDetail
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("code", code).
		SetQueryParam("name", name).
		SetResult(&detail).
		Get("/api/stock_detail")
	if err != nil {
		return StockDetail{}, fmt.Errorf("stock detail: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return StockDetail{}, fmt.Errorf("stock detail: status %d", resp.StatusCode())
	}
	return detail, nil
}
