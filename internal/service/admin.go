package service

import (
	"context"
	"fmt"
)

// Overview is the admin dashboard summary.
type Overview struct {
	Products int `json:"products"`
	Users    int `json:"users"`
}

// AdminService aggregates back-office figures.
type AdminService struct {
	products *ProductService
	users    *UserService
}

func NewAdminService(products *ProductService, users *UserService) *AdminService {
	return &AdminService{products: products, users: users}
}

// Overview counts products and users.
func (s *AdminService) Overview(ctx context.Context) (*Overview, error) {
	products, err := s.products.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &Overview{Products: products, Users: users}, nil
}
