package model

import (
	"strings"
	"time"
)

// DefaultService услуга по умолчанию для свободного слота
const DefaultService = "General"

// MaxCustomerNameLength ограничение колонки customer
const MaxCustomerNameLength = 128

// AllowedServices услуги, которые принимает HTTP API
var AllowedServices = []string{"Corte", "Barba", "Tinte", "Peinado", DefaultService}

// Slot временной слот для записи.
// Customer == nil означает, что слот свободен - отдельного статуса нет.
type Slot struct {
	ID        int64     `json:"id"`
	When      time.Time `json:"when"`
	Service   string    `json:"service"`
	Customer  *string   `json:"customer"` // указатель - может быть nil
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAvailable возвращает true, если слот никем не занят
func (s *Slot) IsAvailable() bool {
	return s.Customer == nil
}

// CustomerName возвращает имя клиента или пустую строку
func (s *Slot) CustomerName() string {
	if s.Customer == nil {
		return ""
	}
	return *s.Customer
}

// CanonicalService приводит название услуги к виду из AllowedServices.
// Второе значение false, если услуга неизвестна.
func CanonicalService(service string) (string, bool) {
	service = strings.TrimSpace(service)
	if service == "" {
		return DefaultService, true
	}
	for _, allowed := range AllowedServices {
		if strings.EqualFold(allowed, service) {
			return allowed, true
		}
	}
	return "", false
}
