package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Seller struct {
	UserID string `yaml:"user_id"`
	Name   string `yaml:"name"`
}

// SellerConfig token 中沒有 seller 角色時的補充名單
type SellerConfig struct {
	Sellers []Seller `yaml:"sellers"`
	ids     map[string]struct{}
}

func NewSellerConfig(sellers ...Seller) *SellerConfig {
	config := &SellerConfig{Sellers: sellers}
	config.index()
	return config
}

func LoadSellerConfig(path string) (*SellerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &SellerConfig{}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}
	config.index()
	return config, nil
}

func (s *SellerConfig) index() {
	s.ids = make(map[string]struct{}, len(s.Sellers))
	for _, seller := range s.Sellers {
		s.ids[seller.UserID] = struct{}{}
	}
}

func (s *SellerConfig) IsSeller(userID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[userID]
	return ok
}
