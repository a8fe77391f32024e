package model

import (
	"fmt"
)

var (
	_ error = KeyNotFoundError{}
	_ error = StorageWriteError{}
	_ error = ModuleLoadError{}
	_ error = RouteNotFoundError{}
)

type KeyNotFoundError struct {
	Key string
}

func (err KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %s not found", err.Key)
}

// StorageWriteError is returned when persistent store write fails.
type StorageWriteError struct {
	Key string
	Err error
}

func (err StorageWriteError) Error() string {
	return fmt.Sprintf("writing %s to storage: %v", err.Key, err.Err)
}

func (err StorageWriteError) Unwrap() error {
	return err.Err
}

// ModuleLoadError is returned when lazily loaded view module can not be resolved.
type ModuleLoadError struct {
	Module string
	Err    error
}

func (err ModuleLoadError) Error() string {
	return fmt.Sprintf("loading module %s: %v", err.Module, err.Err)
}

func (err ModuleLoadError) Unwrap() error {
	return err.Err
}

type RouteNotFoundError struct {
	Path string
	Name string
}

func (err RouteNotFoundError) Error() string {
	if err.Name != "" {
		return fmt.Sprintf("route named %s not found", err.Name)
	}
	return fmt.Sprintf("route %s not found", err.Path)
}
