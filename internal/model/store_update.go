package model

// StoreUpdate is the result of a successful store update.
type StoreUpdate struct {
	Data    map[string]any `json:"data"`
	Updated int64          `json:"updated"`
}
