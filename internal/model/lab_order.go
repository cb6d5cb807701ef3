package model

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LabOrderStatus string

const (
	LabOrderStatusPending      LabOrderStatus = "Pending"
	LabOrderStatusInProduction LabOrderStatus = "InProduction"
	LabOrderStatusReadyToShip  LabOrderStatus = "ReadyToShip"
	LabOrderStatusDelivered    LabOrderStatus = "Delivered"
	LabOrderStatusRejected     LabOrderStatus = "Rejected"
)

// Product is one fabricated item within a laboratory order.
type Product struct {
	ProductType    string `json:"product_type" bson:"product_type" validate:"required"`
	Specifications string `json:"specifications,omitempty" bson:"specifications,omitempty"`
	Quantity       int    `json:"quantity" bson:"quantity" validate:"gte=1"`
}

// NotesKind tags the normalized shape of a free-form observations value.
type NotesKind string

const (
	NotesKindText  NotesKind = "text"
	NotesKindItems NotesKind = "items"
	NotesKindRaw   NotesKind = "raw"
	NotesKindOther NotesKind = "other"
)

// OrderNotes is the closed tagged variant a free-form observations value is
// normalized into. Clients may send a plain string, a list, or an object;
// normalization is total, so every input lands in exactly one variant.
type OrderNotes struct {
	Kind  NotesKind              `json:"kind" bson:"kind"`
	Text  string                 `json:"text,omitempty" bson:"text,omitempty"`
	Items []string               `json:"items,omitempty" bson:"items,omitempty"`
	Raw   map[string]interface{} `json:"raw,omitempty" bson:"raw,omitempty"`
	Value interface{}            `json:"value,omitempty" bson:"value,omitempty"`
}

// NormalizeNotes maps an arbitrary decoded JSON value onto the tagged
// variant.
func NormalizeNotes(v interface{}) OrderNotes {
	switch val := v.(type) {
	case nil:
		return OrderNotes{Kind: NotesKindText}
	case string:
		return OrderNotes{Kind: NotesKindText, Text: val}
	case []interface{}:
		items := make([]string, 0, len(val))
		for _, it := range val {
			if s, ok := it.(string); ok {
				items = append(items, s)
			} else {
				items = append(items, fmt.Sprint(it))
			}
		}
		return OrderNotes{Kind: NotesKindItems, Items: items}
	case map[string]interface{}:
		return OrderNotes{Kind: NotesKindRaw, Raw: val}
	default:
		return OrderNotes{Kind: NotesKindOther, Value: val}
	}
}

// UnmarshalJSON accepts either an already-normalized variant or any
// free-form value. An object carrying a recognized "kind" tag is decoded
// verbatim; everything else goes through NormalizeNotes.
func (n *OrderNotes) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind NotesKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err == nil {
		switch probe.Kind {
		case NotesKindText, NotesKindItems, NotesKindRaw, NotesKindOther:
			type plain OrderNotes
			var p plain
			if err := json.Unmarshal(data, &p); err != nil {
				return err
			}
			*n = OrderNotes(p)
			return nil
		}
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = NormalizeNotes(v)
	return nil
}

type LabOrder struct {
	Base          `bson:",inline"`
	AppointmentID primitive.ObjectID `json:"appointment_id" bson:"appointment_id"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id"`
	CreationDate  time.Time          `json:"creation_date" bson:"creation_date"`
	Status        LabOrderStatus     `json:"status" bson:"status"`
	Products      []Product          `json:"products" bson:"products"`
	Notes         OrderNotes         `json:"notes" bson:"notes"`
}

type CreateLabOrderRequest struct {
	AppointmentID string     `json:"appointment_id" binding:"required"`
	UserID        string     `json:"user_id" binding:"required"`
	Status        string     `json:"status" binding:"omitempty,oneof=Pending InProduction ReadyToShip Delivered Rejected"`
	Products      []Product  `json:"products"`
	Notes         OrderNotes `json:"notes"`
}

// LabOrderPatchOp selects one of the array mutation operations on products.
type LabOrderPatchOp string

const (
	LabOrderOpReplace       LabOrderPatchOp = "replace"
	LabOrderOpAppend        LabOrderPatchOp = "append"
	LabOrderOpPatchAtIndex  LabOrderPatchOp = "patch"
	LabOrderOpDeleteAtIndex LabOrderPatchOp = "delete"
)

// ProductPatch holds the partial fields of a merge-patch on one product.
type ProductPatch struct {
	ProductType    *string `json:"product_type"`
	Specifications *string `json:"specifications"`
	Quantity       *int    `json:"quantity" binding:"omitempty,gte=1"`
}

// UpdateLabOrderRequest carries scalar updates and, optionally, one products
// array operation.
type UpdateLabOrderRequest struct {
	Status *string     `json:"status" binding:"omitempty,oneof=Pending InProduction ReadyToShip Delivered Rejected"`
	Notes  *OrderNotes `json:"notes"`

	Op       LabOrderPatchOp `json:"op" binding:"omitempty,oneof=replace append patch delete"`
	Products []Product       `json:"products"`
	Index    *int            `json:"index" binding:"omitempty,gte=0"`
	Patch    *ProductPatch   `json:"patch"`
}

// LabOrderFilters represents lab order search parameters
type LabOrderFilters struct {
	AppointmentID string `form:"appointment_id"`
	UserID        string `form:"user_id"`
	Status        string `form:"status"`
	Pagination
}
