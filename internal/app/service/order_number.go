package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/pkg/util"
)

const (
	// no 0/O, 1/I/L
	orderNumberAlphabet    = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	orderNumberTokenLength = 6
	maxOrderNumberAttempts = 5
	defaultOrderPrefix     = "ACS"
)

var ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")

// OrderNumberGenerator issues <PREFIX>-<YYMMDD>-<TOKEN> numbers, e.g. ACS-261016-K7M4QX.
type OrderNumberGenerator struct {
	prefix    string
	orderRepo repository.OrderRepository
	now       func() time.Time
	token     func() (string, error)
}

func NewOrderNumberGenerator(prefix string, orderRepo repository.OrderRepository) *OrderNumberGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = defaultOrderPrefix
	}
	return &OrderNumberGenerator{
		prefix:    prefix,
		orderRepo: orderRepo,
		now:       time.Now,
		token: func() (string, error) {
			return util.RandomToken(orderNumberAlphabet, orderNumberTokenLength)
		},
	}
}

func (g *OrderNumberGenerator) candidate() (string, error) {
	token, err := g.token()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", g.prefix, g.now().Format("060102"), token), nil
}

// Next returns a number not yet used by any stored order.
func (g *OrderNumberGenerator) Next() (string, error) {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		number, err := g.candidate()
		if err != nil {
			return "", err
		}
		exists, err := g.orderRepo.OrderNumberExists(number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrOrderNumberExhausted
}
