// Package service implements the application-level use cases: provider
// management, intent routing, chat orchestration, and indexing.
package service

import "errors"

// ErrActiveSettingDelete indicates an attempt to delete the provider
// setting that is currently active. The setting must be deactivated or
// replaced first.
var ErrActiveSettingDelete = errors.New("cannot delete the active provider setting")
