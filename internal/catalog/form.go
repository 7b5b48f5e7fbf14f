package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	maxFormBytes = 1 << 20

	// Bounds keep prices inside PostgreSQL numeric and their decimal text
	// small enough to render.
	maxPriceExponent = 1000
	maxPriceDigits   = 1000
)

var (
	errBadForm       = errors.New("bad form")
	ErrPriceTooLarge = errors.New("price out of range")
)

// CheckPrice rejects decimals whose exponent or digit count is outside the
// range the catalog stores and renders.
func CheckPrice(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > maxPriceExponent || exp < -maxPriceExponent || d.NumDigits() > maxPriceDigits {
		return ErrPriceTooLarge
	}
	return nil
}

// FieldError names the form field that failed type coercion or was missing.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

func (e *FieldError) Unwrap() error { return errBadForm }

// parseProductForm reads name, price, stock and image_url from a
// form-encoded body. A blank image_url means no image.
func parseProductForm(w http.ResponseWriter, r *http.Request) (ProductInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return ProductInput{}, fmt.Errorf("%w: %w", errBadForm, err)
	}

	var in ProductInput

	name, ok := formValue(r, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return ProductInput{}, &FieldError{Field: "name", Reason: "required"}
	}
	in.Name = name

	price, ok := formValue(r, "price")
	if !ok {
		return ProductInput{}, &FieldError{Field: "price", Reason: "required"}
	}
	price = strings.TrimSpace(price)
	if len(price) > 2*maxPriceDigits {
		return ProductInput{}, &FieldError{Field: "price", Reason: ErrPriceTooLarge.Error()}
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return ProductInput{}, &FieldError{Field: "price", Reason: "must be a number"}
	}
	if err := CheckPrice(d); err != nil {
		return ProductInput{}, &FieldError{Field: "price", Reason: err.Error()}
	}
	in.Price = d

	stock, ok := formValue(r, "stock")
	if !ok {
		return ProductInput{}, &FieldError{Field: "stock", Reason: "required"}
	}
	n, err := strconv.Atoi(strings.TrimSpace(stock))
	if err != nil {
		return ProductInput{}, &FieldError{Field: "stock", Reason: "must be an integer"}
	}
	in.Stock = n

	if img, ok := formValue(r, "image_url"); ok && strings.TrimSpace(img) != "" {
		img = strings.TrimSpace(img)
		in.ImageURL = &img
	}

	return in, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &FieldError{Field: "product_id", Reason: "must be an integer"}
	}
	return id, nil
}
