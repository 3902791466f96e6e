package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

// ItemDTO is the transfer representation of an item, shared by HTTP and gRPC.
type ItemDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=200"`
	Brand       string `json:"brand" validate:"required,max=200"`
	MaxCapacity int    `json:"maxCapacity" validate:"required,min=1,max=500"`
	Quantity    int    `json:"quantity" validate:"min=0,ltefield=MaxCapacity"`
	Type        string `json:"type" validate:"required,itemtype"`
}

type IncrementRequest struct {
	Amount int `json:"amount" validate:"required,min=1,max=500"`
}

func ToDomain(dto ItemDTO) domain.Item {
	return domain.Item{
		ID:          dto.ID,
		Name:        dto.Name,
		Brand:       dto.Brand,
		MaxCapacity: dto.MaxCapacity,
		Quantity:    dto.Quantity,
		Type:        domain.Type(dto.Type),
	}
}

func FromDomain(item domain.Item) ItemDTO {
	return ItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Brand:       item.Brand,
		MaxCapacity: item.MaxCapacity,
		Quantity:    item.Quantity,
		Type:        string(item.Type),
	}
}

func FromDomainList(items []domain.Item) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, FromDomain(item))
	}
	return dtos
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("itemtype", func(fl validator.FieldLevel) bool {
		return domain.Type(fl.Field().String()).Valid()
	})
	return v
}

func validationMessages(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fe.Field()+": failed on '"+fe.Tag()+"'")
	}
	return messages
}
