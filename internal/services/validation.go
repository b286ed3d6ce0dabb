package services

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
)

const (
	shopNameMin    = 2
	shopNameMax    = 15
	productNameMin = 2
	productNameMax = 100
)

func normalizeShopName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < shopNameMin {
		return "", validationError(fmt.Sprintf("Shop name must be at least %d characters.", shopNameMin))
	}
	if n > shopNameMax {
		return "", validationError(fmt.Sprintf("Shop name must be at most %d characters.", shopNameMax))
	}
	return name, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", validationError("A valid owner email is required.")
	}
	return email, nil
}

func normalizeProductName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < productNameMin {
		return "", validationError(fmt.Sprintf("Product name must be at least %d characters.", productNameMin))
	}
	if n > productNameMax {
		return "", validationError(fmt.Sprintf("Product name must be at most %d characters.", productNameMax))
	}
	return name, nil
}

func normalizeStock(stock int) (int, error) {
	if stock < 0 {
		return 0, validationError("Stock count must be a non-negative integer.")
	}
	return stock, nil
}

// normalizeMetric defaults an empty metric to KG.
func normalizeMetric(m models.Metric) (models.Metric, error) {
	if m == "" {
		return models.MetricKG, nil
	}
	m = models.Metric(strings.ToUpper(string(m)))
	if !m.Valid() {
		return "", validationError(fmt.Sprintf("Invalid metric %q: must be one of KG, PIECE, DOZEN.", m))
	}
	return m, nil
}

// normalizeImage turns a blank image into nil and rejects anything that is
// not an absolute http(s) URL.
func normalizeImage(image *string) (*string, error) {
	if image == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*image)
	if trimmed == "" {
		return nil, nil
	}
	u, err := url.Parse(trimmed)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, validationError("Invalid URL format")
	}
	return &trimmed, nil
}

func normalizeProductInput(in dto.ProductInput) (dto.ProductInput, error) {
	var err error
	if in.Name, err = normalizeProductName(in.Name); err != nil {
		return in, err
	}
	if in.StockCount, err = normalizeStock(in.StockCount); err != nil {
		return in, err
	}
	if in.Metric, err = normalizeMetric(in.Metric); err != nil {
		return in, err
	}
	if in.Image, err = normalizeImage(in.Image); err != nil {
		return in, err
	}
	return in, nil
}

// normalizeProductInputs validates a desired product list. A name appearing
// twice is a conflict within the request itself.
func normalizeProductInputs(items []dto.ProductInput) ([]dto.ProductInput, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]dto.ProductInput, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		norm, err := normalizeProductInput(item)
		if err != nil {
			return nil, err
		}
		if seen[norm.Name] {
			return nil, &Error{Kind: ErrConflict, Msg: fmt.Sprintf("Duplicate product name %q in request.", norm.Name)}
		}
		seen[norm.Name] = true
		out = append(out, norm)
	}
	return out, nil
}
