// Package service implements the application's business logic on top of the
// store, points ledger, search index and challenge catalog.
package service

import (
	"github.com/habitloop/habitloop-server/internal/validation"
)

// validate is the shared request validator for all services.
var validate = validation.New()
