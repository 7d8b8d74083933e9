// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/iconsmith/internal/adapters/config"
	_ "go.trai.ch/iconsmith/internal/adapters/fs"
	_ "go.trai.ch/iconsmith/internal/adapters/logger"
	_ "go.trai.ch/iconsmith/internal/adapters/telemetry"
	_ "go.trai.ch/iconsmith/internal/adapters/vector"
	// Register app nodes.
	_ "go.trai.ch/iconsmith/internal/app"
)
