package server

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/samber/lo"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

var (
	validate       = newValidator()
	sortOrderNames = strings.Join(lo.Map(entities.SortOrders, func(order entities.SortOrder, _ int) string {
		return string(order)
	}), ", ")
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("sort_order", func(fl validator.FieldLevel) bool {
		_, ok := entities.ToSortOrder(fl.Field().String())
		return ok
	})
	return v
}

type SearchRequest struct {
	Query     string `form:"q" validate:"max=200"`
	Category  string `form:"category" validate:"max=200"`
	Location  string `form:"location" validate:"max=200"`
	SalaryMin string `form:"salary_min" validate:"omitempty,number,max=9"`
	SalaryMax string `form:"salary_max" validate:"omitempty,number,max=9"`
	Page      string `form:"page" validate:"omitempty,number,max=9"`
	Limit     string `form:"limit" validate:"omitempty,number,max=9"`
	Sort      string `form:"sort" validate:"omitempty,sort_order"`
}

func (r SearchRequest) toQuery() entities.SearchQuery {
	sort, _ := entities.ToSortOrder(r.Sort)
	return entities.NewSearchQuery(r.Query, r.Category, r.Location,
		optionalInt(r.SalaryMin), optionalInt(r.SalaryMax), sort)
}

type PageRequest struct {
	Page  string `form:"page" validate:"omitempty,number,max=9"`
	Limit string `form:"limit" validate:"omitempty,number,max=9"`
}

// pagination applies the defaults and clamps the page size to maxLimit.
func pagination(page, limit string) (int, int) {
	p, l := defaultPage, defaultLimit
	if value := optionalInt(page); value != nil && *value > 0 {
		p = *value
	}
	if value := optionalInt(limit); value != nil && *value > 0 {
		l = min(*value, maxLimit)
	}
	return p, l
}

// optionalInt expects a value that already passed the number validation.
func optionalInt(value string) *int {
	if value == "" {
		return nil
	}
	number, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &number
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type JobsResponse[T any] struct {
	Jobs       []T        `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	CacheStatus string `json:"cacheStatus"`
	CacheSize   int    `json:"cacheSize"`
	FetchedAt   string `json:"fetchedAt,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func fieldErrors(err error) []FieldError {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Message: err.Error()}}
	}

	result := make([]FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		result = append(result, FieldError{Field: fieldErr.Field(), Message: fieldMessage(fieldErr)})
	}
	return result
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "number":
		return err.Field() + " must be a number"
	case "sort_order":
		return err.Field() + " must be one of: " + sortOrderNames
	case "max":
		return err.Field() + " is too long"
	default:
		return err.Field() + " is invalid"
	}
}
