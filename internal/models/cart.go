package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// CartSchemaVersion is written with every persisted cart snapshot.
const CartSchemaVersion = 1

// ProductID is an opaque product identifier. Storefront payloads carry it as
// either a JSON string or a JSON number; both decode to the same value.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("product id is required")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("product id must be a string or a number")
	}
	if i, err := n.Int64(); err == nil {
		*id = ProductID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

// CartLine is one purchasable line. Prices are in minor currency units.
type CartLine struct {
	ID        ProductID `json:"id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"price"`
	Image     string    `json:"image,omitempty"`
	Variant   string    `json:"variant,omitempty"`
	Quantity  int       `json:"quantity"`
}

// LineTotal returns UnitPrice × Quantity.
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart is an ordered list of lines, at most one per product ID.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

func (c Cart) TotalPrice() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.LineTotal()
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// IndexOf returns the position of the line with the given ID, or -1.
func (c Cart) IndexOf(id ProductID) int {
	for i, line := range c.Lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

// CartSnapshot is the persisted form of a cart.
type CartSnapshot struct {
	Version   int        `json:"version"`
	Revision  int64      `json:"revision"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DecodeCartSnapshot parses stored cart data. A bare JSON array of lines is
// the unversioned layout and is read as version 0.
func DecodeCartSnapshot(data []byte) (*CartSnapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty cart data")
	}

	var snapshot CartSnapshot
	if data[0] == '[' {
		if err := json.Unmarshal(data, &snapshot.Lines); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}

	if snapshot.Version > CartSchemaVersion {
		return nil, errors.New("cart data written by a newer schema version")
	}
	if err := validateLines(snapshot.Lines); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func validateLines(lines []CartLine) error {
	seen := make(map[ProductID]struct{}, len(lines))
	for _, line := range lines {
		if line.ID == "" {
			return errors.New("cart line without product id")
		}
		if line.Quantity < 1 {
			return errors.New("cart line with non-positive quantity")
		}
		if line.UnitPrice < 0 {
			return errors.New("cart line with negative price")
		}
		if _, dup := seen[line.ID]; dup {
			return errors.New("duplicate cart line " + string(line.ID))
		}
		seen[line.ID] = struct{}{}
	}
	return nil
}
