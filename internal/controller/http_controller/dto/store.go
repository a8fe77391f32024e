package dto

import "github.com/horockey/settingsapp/internal/model"

type StoreUpdate struct {
	Data    map[string]any `json:"data"`
	Updated int64          `json:"updated"`
}

func NewStoreUpdate(su model.StoreUpdate) StoreUpdate {
	return StoreUpdate{
		Data:    su.Data,
		Updated: su.Updated,
	}
}

type LastUpdated struct {
	Updated int64 `json:"updated"`
}
