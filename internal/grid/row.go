package grid

import (
	"strings"
	"time"
)

// Row is the canonical server-known state of one procurement line. A Row is
// only ever mutated through Store.Replace or Store.ApplyFieldUpdate after a
// confirmed server acknowledgement; everything the user has typed but not
// saved lives in the Tracker instead.
type Row struct {
	ID           int64
	PONumber     string
	ProductCode  string
	ProductName  string
	ExcelStatus  string // lifecycle status from the import; 結案 means closed
	GoodsStatus  string
	Quantity     int
	DeliveryDate string
	DispatchDate string
	ArrivalDate  string
	Warehouse    string
	GoodStock    int
	WarehouseQty int
	Remarks      string
}

// Outstanding is the still-undelivered quantity. It is derived, never
// persisted; a non-positive value means the line is complete.
func (r Row) Outstanding() int {
	return r.Quantity - r.WarehouseQty
}

// Field names one of the editable columns of a Row. The string value doubles
// as the wire name the update endpoint expects.
type Field string

const (
	FieldArrivalDate  Field = "arrival_date"
	FieldDispatchDate Field = "dispatch_date"
	FieldGoodsStatus  Field = "goods_status"
	FieldRemarks      Field = "remarks"
)

// SaveOrder is the fixed order in which changed fields of a single row are
// persisted. Within one row updates must stay sequential in this order, since
// each success mutates the canonical row that later diffs read.
var SaveOrder = [...]Field{FieldArrivalDate, FieldDispatchDate, FieldGoodsStatus, FieldRemarks}

// StatusOptions are the accepted goods-status values, in menu order.
var StatusOptions = []string{
	"生產中",
	"空運運送中",
	"海運運送中",
	"已抵港",
	"已報關",
	"貨運中",
	"延誤",
	"結案",
}

// StatusClosed is the lifecycle sentinel for a closed procurement line.
const StatusClosed = "結案"

// MaxRemarksLen is the server-side cap on the remarks column.
const MaxRemarksLen = 300

// ValidStatus reports whether s is one of the fixed goods-status options.
func ValidStatus(s string) bool {
	for _, opt := range StatusOptions {
		if s == opt {
			return true
		}
	}
	return false
}

// FieldValue returns the canonical value of an editable field.
func (r Row) FieldValue(f Field) string {
	switch f {
	case FieldArrivalDate:
		return r.ArrivalDate
	case FieldDispatchDate:
		return r.DispatchDate
	case FieldGoodsStatus:
		return r.GoodsStatus
	case FieldRemarks:
		return r.Remarks
	}
	return ""
}

func (r *Row) setFieldValue(f Field, v string) bool {
	switch f {
	case FieldArrivalDate:
		r.ArrivalDate = v
	case FieldDispatchDate:
		r.DispatchDate = v
	case FieldGoodsStatus:
		r.GoodsStatus = v
	case FieldRemarks:
		r.Remarks = v
	default:
		return false
	}
	return true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NormalizeDate reduces a date value to its YYYY-MM-DD form. Empty, absent
// and null-ish inputs all normalize to "" so they compare equal to each
// other. Unparsable non-empty input is returned trimmed, so two identical
// malformed values still match.
func NormalizeDate(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "nat":
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// normalizeField applies field-appropriate equality normalization: dates on
// their YYYY-MM-DD form, status and remarks as exact strings. Remarks is
// deliberately NOT trimmed; whitespace the user typed is significant.
func normalizeField(f Field, v string) string {
	switch f {
	case FieldArrivalDate, FieldDispatchDate:
		return NormalizeDate(v)
	}
	return v
}
